package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-scenesync/pkg/fate"
)

func newRollCommand() *cobra.Command {
	var (
		req  fate.RollRequest
		seed uint64
	)
	cmd := &cobra.Command{
		Use:   "roll",
		Short: "Make an ad-hoc Fate roll",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}
			res, err := fate.NewRoller(seed).Roll(req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&req.Formula, "formula", fate.DefaultFormula, "dice formula, NdF")
	flags.StringVar(&req.Actor, "name", "", "who rolls")
	flags.StringVar(&req.Skill, "skill", "", "skill name")
	flags.IntVar(&req.Modifier, "modifier", 0, "skill rank and modifiers")
	flags.StringVar(&req.Description, "description", "", "what the roll is for")
	flags.Uint64Var(&seed, "seed", 0, "random seed")
	return cmd
}
