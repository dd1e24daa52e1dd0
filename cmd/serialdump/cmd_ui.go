package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/serialdump/catalog"
	"github.com/dhamidi/serialdump/ui"
)

func newUICmd(a *app) *cobra.Command {
	var addr string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the web UI server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.UI.Addr
			}

			// The class listing is served only when a catalog exists.
			var cat *catalog.Catalog
			path := a.dbPath(cmd, dbPath)
			if _, err := os.Stat(path); err == nil {
				cat, err = catalog.Open(path)
				if err != nil {
					return err
				}
				defer cat.Close()
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("catalog: %w", err)
			}

			server, err := ui.NewServer(cat)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			displayAddr := addr
			if strings.HasPrefix(addr, ":") {
				displayAddr = "localhost" + addr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Starting server at http://%s\n", displayAddr)
			return http.ListenAndServe(addr, server)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "address to listen on")
	cmd.Flags().StringVar(&dbPath, "db", "", "catalog database to browse (default from serialdump.toml)")

	return cmd
}
