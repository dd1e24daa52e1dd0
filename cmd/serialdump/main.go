package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/serialdump/config"
)

const version = "0.1.0"

// app carries the settings shared by every command.
type app struct {
	cfg       *config.Config
	verbosity int
	logFile   string
	configDir string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:               "serialdump",
		Short:             "Inspect and rebuild Java serialization streams",
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&a.verbosity, "verbose", "v", "log verbosity (repeat for more)")
	flags.StringVar(&a.logFile, "log", "", "write logs to this file instead of stderr")
	flags.StringVar(&a.configDir, "config", "", "directory holding serialdump.toml (default: search upward from the working directory)")

	rootCmd.AddCommand(newDumpCmd(a))
	rootCmd.AddCommand(newRebuildCmd(a))
	rootCmd.AddCommand(newIndexCmd(a))
	rootCmd.AddCommand(newClassesCmd(a))
	rootCmd.AddCommand(newLSPCmd(a))
	rootCmd.AddCommand(newUICmd(a))

	return rootCmd
}

// setup loads the configuration and configures logging. Flags given on the
// command line win over the file.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	var err error
	if a.configDir != "" {
		a.cfg, err = config.Load(a.configDir)
	} else {
		wd, wdErr := os.Getwd()
		if wdErr != nil {
			return fmt.Errorf("get working directory: %w", wdErr)
		}
		a.cfg, err = config.FindAndLoad(wd)
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("verbose") {
		a.verbosity = a.cfg.Log.Verbosity
	}
	if !flags.Changed("log") {
		a.logFile = a.cfg.Log.File
	}

	var path *string
	if a.logFile != "" {
		path = &a.logFile
	}
	commonlog.Configure(a.verbosity, path)

	if a.cfg.Path != "" {
		commonlog.GetLogger("serialdump").Debugf("using configuration %s", a.cfg.Path)
	}
	return nil
}
