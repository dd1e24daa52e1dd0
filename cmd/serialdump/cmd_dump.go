package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dhamidi/serialdump/format"
	"github.com/dhamidi/serialdump/stream"
	"github.com/dhamidi/serialdump/trace"
)

func newDumpCmd(a *app) *cobra.Command {
	var src inputSource
	var dumpFormat string

	cmd := &cobra.Command{
		Use:   "dump [hex]",
		Short: "Print the annotated trace of a serialization stream",
		Long: `Print the annotated trace of a serialization stream.

The stream is read from a hex argument, a hex file (-f), a raw file (-r),
or stdin when it is not a terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				src.hexArg = args[0]
			}
			if !cmd.Flags().Changed("input") {
				src.stdinMode = a.cfg.Dump.Input
			}
			if !cmd.Flags().Changed("format") {
				dumpFormat = a.cfg.Dump.Format
			}

			data, err := src.read(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return dump(cmd.OutOrStdout(), data, dumpFormat)
		},
	}

	cmd.Flags().StringVarP(&src.hexFile, "file", "f", "", "read a hex dump from this file")
	cmd.Flags().StringVarP(&src.rawFile, "raw", "r", "", "read raw stream bytes from this file")
	cmd.Flags().StringVar(&src.stdinMode, "input", "hex", "how stdin is read (hex, raw)")
	cmd.Flags().StringVar(&dumpFormat, "format", "text", "output format (text, json, cbor)")

	return cmd
}

// dump writes data in the requested format. The text trace is streamed, so
// a failing parse still leaves everything decoded before the failure.
func dump(w io.Writer, data []byte, dumpFormat string) error {
	if dumpFormat == "text" {
		_, err := stream.Parse(data, stream.WithRenderer(trace.NewWriter(w)))
		return err
	}

	enc, err := format.NewEncoder(dumpFormat, w)
	if err != nil {
		return err
	}
	st, err := stream.Parse(data)
	if err != nil {
		return err
	}
	if err := enc.Encode(st); err != nil {
		return fmt.Errorf("encode %s: %w", dumpFormat, err)
	}
	return nil
}
