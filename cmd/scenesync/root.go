package main

import (
	"context"
	"fmt"
	"io"

	"github.com/containerd/log"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-scenesync"
	"github.com/goliatone/go-scenesync/pkg/fate"
)

type rootOptions struct {
	cfg   Config
	yes   bool
	setup fate.NewSceneSetup
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cfg, cfgErr := loadConfig()
	opts.cfg = cfg

	cmd := &cobra.Command{
		Use:           "scenesync",
		Short:         "Keep the Fate table widgets of a scene in sync",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return cfgErr
			}
			if err := log.SetFormat(log.OutputFormat(opts.cfg.LogFormat)); err != nil {
				return err
			}
			return log.SetLevel(opts.cfg.LogLevel)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfg.Scene, "scene", cfg.Scene, "scene id")
	flags.StringVar(&opts.cfg.Store, "store", cfg.Store, `object store path, or "memory"`)
	flags.StringVar(&opts.cfg.Settings, "settings", cfg.Settings, `settings database path, or "memory"`)
	flags.StringVar(&opts.cfg.Journal, "journal", cfg.Journal, "settings journal")
	flags.StringVar(&opts.cfg.Campaign, "campaign", cfg.Campaign, "campaign YAML file")
	flags.StringVar(&opts.cfg.Engine, "engine", cfg.Engine, "format engine: expr, cel or js")
	flags.StringVar(&opts.cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	flags.StringVar(&opts.cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	flags.StringVar(&opts.cfg.Actor, "actor", cfg.Actor, "actor id recorded on activity events")
	flags.BoolVarP(&opts.yes, "yes", "y", false, "answer yes to confirmations")

	cmd.AddCommand(
		newPointsCommand(opts),
		newPanelsCommand(opts),
		newAspectsCommand(opts),
		newChallengeCommand(opts),
		newContestCommand(opts),
		newSettingsCommand(opts),
		newRollCommand(),
		newObjectsCommand(opts),
	)
	return cmd
}

// run opens the stores, calls fn and closes them again.
func (o *rootOptions) run(cmd *cobra.Command, fn func(context.Context, *app) error) (err error) {
	ctx := cmd.Context()
	prompter := fate.StaticPrompter{Setup: o.setup, Confirmed: o.yes}
	a, err := openApp(ctx, o.cfg, prompter)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(ctx); err == nil {
			err = cerr
		}
	}()
	return fn(ctx, a)
}

func printResults(w io.Writer, results ...scenesync.Result) {
	for _, r := range results {
		fmt.Fprintf(w, "%s: created %d, updated %d, deleted %d, unchanged %d\n",
			r.Group, len(r.Created), len(r.Updated), len(r.Deleted), r.Unchanged)
	}
}
