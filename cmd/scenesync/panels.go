package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newPanelsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "panels [SLOT]",
		Short: "Render the player panels",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				if len(args) == 1 {
					res, err := a.table.Panels().SyncSlot(ctx, args[0])
					if err != nil {
						return err
					}
					printResults(cmd.OutOrStdout(), res)
					return nil
				}
				results, err := a.table.Panels().SyncAll(ctx)
				printResults(cmd.OutOrStdout(), results...)
				return err
			})
		},
	}
}
