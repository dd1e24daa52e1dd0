package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/serialdump/catalog"
)

func newClassesCmd(a *app) *cobra.Command {
	var dbPath string
	var long bool

	cmd := &cobra.Command{
		Use:   "classes [pattern]",
		Short: "List catalogued classes whose name matches a glob pattern",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Open(a.dbPath(cmd, dbPath))
			if err != nil {
				return err
			}
			defer cat.Close()

			var pattern string
			if len(args) == 1 {
				pattern = args[0]
			}
			classes, err := cat.Classes(cmd.Context(), pattern)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, cl := range classes {
				fmt.Fprintln(out, cl.Describe())
				if !long {
					continue
				}
				for _, f := range cl.Fields {
					if f.Type.IsPrimitive() {
						fmt.Fprintf(out, "  %c %s\n", byte(f.Type), f.Name)
					} else {
						fmt.Fprintf(out, "  %c %s %s\n", byte(f.Type), f.Name, f.ClassName)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "catalog database (default from serialdump.toml)")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "list fields too")

	return cmd
}
