package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-scenesync"
)

func newPointsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "points",
		Short: "Manage fate-point markers",
	}

	single := func(use, short string, args cobra.PositionalArgs, fn func(context.Context, *app, []string) (scenesync.Result, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  args,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, func(ctx context.Context, a *app) error {
					res, err := fn(ctx, a, args)
					if err != nil {
						return err
					}
					printResults(cmd.OutOrStdout(), res)
					return nil
				})
			},
		}
	}

	newScene := &cobra.Command{
		Use:   "new-scene",
		Short: "Start a new scene: keep chosen aspects, reset the GM pool, clear fleeting stress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				return a.table.Points().NewScene(ctx)
			})
		},
	}
	newScene.Flags().IntVar(&opts.setup.PlayerCount, "players", 0, "number of players, the new GM fate points")
	newScene.Flags().StringSliceVar(&opts.setup.Keep, "keep", nil, "situation aspects to keep")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "sync",
			Short: "Synchronise every player pool and the GM pool",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, func(ctx context.Context, a *app) error {
					results, err := a.table.Points().SyncAll(ctx)
					printResults(cmd.OutOrStdout(), results...)
					return err
				})
			},
		},
		single("give SLOT", "Give one fate point to a player", cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (scenesync.Result, error) {
			return a.table.Points().Give(ctx, args[0])
		}),
		single("take SLOT", "Take one fate point from a player", cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (scenesync.Result, error) {
			return a.table.Points().Take(ctx, args[0])
		}),
		single("give-gm", "Give one fate point to the GM", cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (scenesync.Result, error) {
			return a.table.Points().GiveGM(ctx)
		}),
		single("take-gm", "Take one fate point from the GM", cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (scenesync.Result, error) {
			return a.table.Points().TakeGM(ctx)
		}),
		&cobra.Command{
			Use:   "refresh",
			Short: "Raise every player to their refresh",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, func(ctx context.Context, a *app) error {
					results, err := a.table.Points().Refresh(ctx)
					printResults(cmd.OutOrStdout(), results...)
					return err
				})
			},
		},
		newScene,
	)
	return cmd
}
