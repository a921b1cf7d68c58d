package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-scenesync"
	"github.com/goliatone/go-scenesync/pkg/fate"
)

func newAspectsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aspects",
		Short: "Edit the situation aspects of the scene",
	}

	edit := func(use, short string, args cobra.PositionalArgs, fn func(context.Context, *fate.AspectBoard, []string) (scenesync.Result, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  args,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, func(ctx context.Context, a *app) error {
					res, err := fn(ctx, a.table.Aspects(), args)
					if err != nil {
						return err
					}
					printResults(cmd.OutOrStdout(), res)
					return nil
				})
			},
		}
	}

	var invokes int
	add := edit("add NAME", "Add an aspect", cobra.ExactArgs(1), func(ctx context.Context, b *fate.AspectBoard, args []string) (scenesync.Result, error) {
		return b.Add(ctx, args[0], invokes)
	})
	add.Flags().IntVar(&invokes, "invokes", 0, "free invokes")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the aspects",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, func(ctx context.Context, a *app) error {
					list, err := a.table.Aspects().List(ctx)
					if err != nil {
						return err
					}
					for i, aspect := range list {
						fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%d\n", i, aspect.Name, aspect.FreeInvokes)
					}
					return nil
				})
			},
		},
		add,
		edit("rename INDEX NAME", "Rename an aspect", cobra.ExactArgs(2), func(ctx context.Context, b *fate.AspectBoard, args []string) (scenesync.Result, error) {
			i, err := strconv.Atoi(args[0])
			if err != nil {
				return scenesync.Result{}, err
			}
			return b.Rename(ctx, i, args[1])
		}),
		edit("delete INDEX", "Delete an aspect", cobra.ExactArgs(1), func(ctx context.Context, b *fate.AspectBoard, args []string) (scenesync.Result, error) {
			i, err := strconv.Atoi(args[0])
			if err != nil {
				return scenesync.Result{}, err
			}
			return b.Delete(ctx, i)
		}),
		edit("invoke INDEX DELTA", "Add or spend free invokes", cobra.ExactArgs(2), func(ctx context.Context, b *fate.AspectBoard, args []string) (scenesync.Result, error) {
			i, err := strconv.Atoi(args[0])
			if err != nil {
				return scenesync.Result{}, err
			}
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return scenesync.Result{}, err
			}
			return b.Invoke(ctx, i, delta)
		}),
		edit("sync", "Render the aspect widget", cobra.NoArgs, func(ctx context.Context, b *fate.AspectBoard, _ []string) (scenesync.Result, error) {
			return b.Sync(ctx)
		}),
	)
	return cmd
}
