package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-scenesync"
)

func newObjectsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "objects",
		Short: "Inspect the managed objects of the scene",
	}

	var prefix string
	list := &cobra.Command{
		Use:   "list",
		Short: "List managed objects in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				objs, err := a.syncer.Store().List(ctx, opts.cfg.Scene, scenesync.Filter{TagPrefix: scenesync.Tag(prefix)})
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tCOLLECTION\tTAG\tX\tY\tTEXT")
				for _, o := range objs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%q\n", o.ID, o.Collection, o.Tag, o.Position.X, o.Position.Y, o.Text)
				}
				return w.Flush()
			})
		},
	}
	list.Flags().StringVar(&prefix, "prefix", "", "only tags within this group")

	cmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "clear GROUP",
			Short: "Delete every object within a tag group",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, func(ctx context.Context, a *app) error {
					res, err := a.syncer.Clear(ctx, opts.cfg.Scene, scenesync.Tag(args[0]))
					if err != nil {
						return err
					}
					printResults(cmd.OutOrStdout(), res)
					return nil
				})
			},
		},
	)
	return cmd
}
