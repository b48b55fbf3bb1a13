// Copyright 2016 Aleksandr Demakin. All rights reserved.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Prints the state of an existing mapping",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := conf().Size(0).Open()
		if err != nil {
			return err
		}
		defer h.Release()
		hdr, err := h.Header()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "id: %s\nsize: %d\nready: %v\n", h.Name(), h.Size(), hdr.IsReady())
		if !hdr.IsReady() {
			return nil
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Second)
		defer cancel()
		s, err := bringUp(ctx, h, false)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "mutex locked: %v\nmutex holder: %d\ncounter: %d\nevent: %s\n",
			s.mu.Locked(), s.mu.Holder(), s.value(), s.ev.State())
		return nil
	},
}

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Removes the mapping and its link file",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := conf().Size(0).Open()
		if err != nil {
			return err
		}
		return h.Destroy()
	},
}

func init() {
	rootCmd.AddCommand(infoCmd, destroyCmd)
}
