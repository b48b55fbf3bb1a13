// Copyright 2016 Aleksandr Demakin. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/nxgtw/go-rawshm/internal/logger"
	"github.com/nxgtw/go-rawshm/internal/metrics"
	"github.com/nxgtw/go-rawshm/mapping"

	"github.com/spf13/cobra"
)

var (
	// CLI flags
	logLevel  string
	logFormat string
	osID      string
	flink     string
	mapSize   int
	dumpStats bool

	rootLog = logger.Default()
)

var rootCmd = &cobra.Command{
	Use:   "rawshm",
	Short: "Raw shared memory mutex and event demos",
	Long: `rawshm creates or opens a named shared memory mapping, formats a mutex
and an event inside it, or attaches to them, if another process has already done it.

Layout of the mapping: an initialization flag at offset 0, a mutex at 8,
the 8-byte counter protected by the mutex at 24, and an event at 32.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if !dumpStats {
			return nil
		}
		return metrics.Dump(cmd.OutOrStdout())
	},
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogger() error {
	log, err := logger.New(logger.Config{Level: logLevel, Format: logFormat})
	if err != nil {
		return err
	}
	rootLog = log
	logger.SetDefault(log)
	return nil
}

func conf() *mapping.Conf {
	return mapping.NewConf().Size(mapSize).OSID(osID).Flink(flink).Logger(rootLog)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format: json, text")
	rootCmd.PersistentFlags().StringVar(&osID, "id", "rawshm-demo",
		"OS id of the mapping")
	rootCmd.PersistentFlags().StringVar(&flink, "flink", "",
		"Path of a link file holding the OS id. Takes precedence over --id on open")
	rootCmd.PersistentFlags().IntVar(&mapSize, "size", 4096,
		"Size of the mapping")
	rootCmd.PersistentFlags().BoolVar(&dumpStats, "metrics", false,
		"Print metrics of this process in the prometheus text format on exit")
}
