package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/hookkit/internal/config"
	"github.com/dshills/hookkit/internal/hook"
	"github.com/dshills/hookkit/internal/watcher"
)

func newApplyCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <hook> <value> [args...]",
		Short: "Run a value through a filter hook",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, true, func(a *app) error {
				extra := make([]any, 0, len(args)-2)
				for _, s := range args[2:] {
					extra = append(extra, s)
				}
				out := a.engine.ApplyFilters(args[0], args[1], extra...)
				_, err := fmt.Fprintln(cmd.OutOrStdout(), out)
				return err
			})
		},
	}
}

func newDoCmd(flags *globalFlags) *cobra.Command {
	var times int

	cmd := &cobra.Command{
		Use:   "do <action> [args...]",
		Short: "Run an action hook",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, true, func(a *app) error {
				extra := make([]any, 0, len(args)-1)
				for _, s := range args[1:] {
					extra = append(extra, s)
				}
				for i := 0; i < times; i++ {
					a.engine.DoAction(args[0], extra...)
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: dispatched %d time(s), %d callback(s) remain\n",
					args[0], a.engine.DidAction(args[0]), a.engine.Count(args[0]))
				return err
			})
		},
	}
	cmd.Flags().IntVarP(&times, "times", "n", 1, "Number of dispatches")
	return cmd
}

func newInspectCmd(flags *globalFlags) *cobra.Command {
	var (
		pending bool
		follow  bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print registered hooks as YAML",
		Long: `Print registered hooks as YAML.

With --pending the host is never booted; the manifest is applied and the
pre-initialization table is printed instead of the live registry.

With --watch, or manifest.watch in the configuration, the registry is
printed again every time the manifest changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if follow {
				cfg.Manifest.Watch = true
			}
			if cfg.Manifest.Watch && !pending {
				return watchManifest(cmd, cfg)
			}

			return runApp(cfg, !pending, func(a *app) error {
				if pending {
					if err := a.applyManifest(); err != nil {
						return err
					}
					if _, ok := a.env.Host(); ok {
						fmt.Fprintln(cmd.ErrOrStderr(), "host definitions were loaded from the base path; pending table is empty")
					}
					return dumpTable(cmd.OutOrStdout(), a.env.Pending())
				}
				return dumpTable(cmd.OutOrStdout(), a.engine.Snapshot())
			})
		},
	}
	cmd.Flags().BoolVar(&pending, "pending", false, "Show the pre-init table instead of the booted registry")
	cmd.Flags().BoolVarP(&follow, "watch", "w", false, "Print again whenever the manifest changes")
	return cmd
}

func newWatchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-apply the manifest whenever it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return watchManifest(cmd, cfg)
		},
	}
}

// watchManifest runs watch until the command context ends or the process
// is interrupted.
func watchManifest(cmd *cobra.Command, cfg *config.Config) error {
	if cfg.Manifest.Path == "" {
		return fmt.Errorf("watch requires --manifest or manifest.path")
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return watch(ctx, cfg, cmd.OutOrStdout())
}

// watch rebuilds a fresh environment per change so no registration from a
// previous revision of the manifest survives.
func watch(ctx context.Context, cfg *config.Config, out io.Writer) error {
	reload := func() {
		a := newApp(cfg)
		defer a.close()
		if err := a.start(); err != nil {
			a.log.Error().Err(err).Msg("reload failed")
			return
		}
		fmt.Fprintf(out, "# %s: %d registration(s)\n", time.Now().Format(time.TimeOnly), a.applied)
		if err := dumpTable(out, a.engine.Snapshot()); err != nil {
			a.log.Error().Err(err).Msg("dump failed")
		}
	}

	w, err := watcher.New(cfg.Manifest.Path, watcher.WithDebounce(time.Duration(cfg.Manifest.DebounceMS)*time.Millisecond))
	if err != nil {
		return err
	}
	defer w.Close()

	reload()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if ev.Removed {
				fmt.Fprintf(out, "# %s removed\n", ev.Path)
				continue
			}
			reload()
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "# watch error: %v\n", err)
		}
	}
}

func dumpTable(w io.Writer, t hook.Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return err
	}
	return enc.Close()
}
