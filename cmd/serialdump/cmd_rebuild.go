package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/serialdump/trace"
)

func newRebuildCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild <trace> <out>",
		Short: "Rebuild stream bytes from a trace and check that they parse",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open trace: %w", err)
			}
			defer in.Close()

			var out bytes.Buffer
			if _, err := trace.Reconstruct(in, &out, cmd.OutOrStdout()); err != nil {
				return err
			}
			if err := os.WriteFile(args[1], out.Bytes(), 0644); err != nil {
				return fmt.Errorf("write rebuilt stream: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Done, rebuilt stream written to %s\n", args[1])
			return nil
		},
	}
}
