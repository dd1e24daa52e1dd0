package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/serialdump/catalog"
	"github.com/dhamidi/serialdump/stream"
)

func newIndexCmd(a *app) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "index <file>...",
		Short: "Record the class descriptors of stream files in the catalog",
		Long: `Record the class descriptors of stream files in the catalog.

Files ending in .hex or .txt are read as hex dumps, others as raw bytes.
Indexing a file again replaces what was recorded for it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Open(a.dbPath(cmd, dbPath))
			if err != nil {
				return err
			}
			defer cat.Close()

			log := commonlog.GetLogger("serialdump.index")
			for _, path := range args {
				data, err := readStreamFile(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				st, parseErr := stream.Parse(data)
				if parseErr != nil {
					log.Warningf("%s: indexing classes read before: %s", path, parseErr)
				}
				n, err := cat.Index(cmd.Context(), path, st)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d classes\n", path, n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "catalog database (default from serialdump.toml)")

	return cmd
}

// dbPath prefers the --db flag over the configured catalog.
func (a *app) dbPath(cmd *cobra.Command, flag string) string {
	if cmd.Flags().Changed("db") {
		return flag
	}
	return a.cfg.Catalog.DB
}
