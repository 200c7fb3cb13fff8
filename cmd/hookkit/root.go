package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/hookkit/internal/config"
)

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "hookkit",
		Short: "Register and run filter and action hooks",
		Long: `hookkit registers filter and action callbacks declared in a manifest,
before or after the host event engine boots, and dispatches them.`,
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to TOML configuration file")
	pf.StringVar(&flags.envFile, "env-file", "", "Path to .env file (default ./.env)")
	pf.StringVarP(&flags.manifest, "manifest", "m", "", "Path to bindings manifest (.yaml or .toml)")
	pf.StringVar(&flags.basePath, "base-path", "", "Host installation path; definitions load from here on first registration ([engine] config overrides its hooks.toml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.BoolVar(&flags.early, "early", false, "Register bindings before the host boots")

	cmd.AddCommand(
		newApplyCmd(flags),
		newDoCmd(flags),
		newInspectCmd(flags),
		newWatchCmd(flags),
	)
	return cmd
}

// withApp loads configuration, wires an app, and runs fn.
func withApp(flags *globalFlags, start bool, fn func(*app) error) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	return runApp(cfg, start, fn)
}

func runApp(cfg *config.Config, start bool, fn func(*app) error) error {
	a := newApp(cfg)
	defer a.close()

	if start {
		if err := a.start(); err != nil {
			return err
		}
	}
	return fn(a)
}
