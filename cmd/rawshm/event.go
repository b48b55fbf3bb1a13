// Copyright 2016 Aleksandr Demakin. All rights reserved.

package main

import (
	"fmt"

	"github.com/nxgtw/go-rawshm/sync"

	"github.com/spf13/cobra"
)

var (
	waitLimit   = sync.Infinite
	manualReset bool
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "The first instance waits for the event, the second one signals it",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		s, err := openAndBringUp(cmd.Context(), conf(), manualReset)
		if err != nil {
			return err
		}
		defer s.close()
		if s.h.IsOwner() {
			fmt.Fprintln(out, "Created event in shared memory")
			fmt.Fprintln(out, "Launch another instance of this command to signal the event!")
			if err := s.ev.Wait(waitLimit); err != nil {
				return err
			}
			fmt.Fprintln(out, "Got signal!")
			return nil
		}
		fmt.Fprintln(out, "Opened event from shared memory")
		if err := s.ev.Set(sync.Signaled); err != nil {
			return err
		}
		fmt.Fprintln(out, "Signaled!")
		return nil
	},
}

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Waits for the event",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openAndBringUp(cmd.Context(), conf(), manualReset)
		if err != nil {
			return err
		}
		defer s.close()
		if err := s.ev.Wait(waitLimit); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "signaled")
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Signals the event",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openAndBringUp(cmd.Context(), conf(), manualReset)
		if err != nil {
			return err
		}
		defer s.close()
		return s.ev.Set(sync.Signaled)
	},
}

func init() {
	for _, c := range []*cobra.Command{eventCmd, waitCmd, setCmd} {
		c.Flags().BoolVar(&manualReset, "manual-reset", false, "Format a manual-reset event")
	}
	eventCmd.Flags().DurationVar(&waitLimit, "timeout", sync.Infinite, "Wait timeout, negative means infinite")
	waitCmd.Flags().DurationVar(&waitLimit, "timeout", sync.Infinite, "Wait timeout, negative means infinite")
	rootCmd.AddCommand(eventCmd, waitCmd, setCmd)
}
