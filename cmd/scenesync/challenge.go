package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-scenesync"
	"github.com/goliatone/go-scenesync/pkg/fate"
)

func newChallengeCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "challenge",
		Short: "Create and tick challenge checklists",
	}

	var at string
	create := &cobra.Command{
		Use:   "create TASK[:DIFFICULTY]...",
		Short: "Draw a challenge checklist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			center, err := parsePoint(at)
			if err != nil {
				return err
			}
			tasks := make([]fate.Task, len(args))
			for i, arg := range args {
				text, n, err := splitCount(arg)
				if err != nil {
					return err
				}
				tasks[i] = fate.Task{Text: text, Difficulty: n}
			}
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				tag, err := a.table.Challenges().CreateChallenge(ctx, center, tasks)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), tag)
				return nil
			})
		},
	}
	create.Flags().StringVar(&at, "at", "0,0", "view centre as X,Y")

	cmd.AddCommand(create, newTickCommand(opts))
	return cmd
}

func newContestCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contest",
		Short: "Create and tick contest rows",
	}

	var at string
	create := &cobra.Command{
		Use:   "create SIDE[:BOXES]...",
		Short: "Draw one contest row per side",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			center, err := parsePoint(at)
			if err != nil {
				return err
			}
			sides := make([]fate.Side, len(args))
			for i, arg := range args {
				name, n, err := splitCount(arg)
				if err != nil {
					return err
				}
				sides[i] = fate.Side{Name: name, Boxes: n}
			}
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				tags, err := a.table.Challenges().CreateContest(ctx, center, sides)
				if err != nil {
					return err
				}
				for _, tag := range tags {
					fmt.Fprintln(cmd.OutOrStdout(), tag)
				}
				return nil
			})
		},
	}
	create.Flags().StringVar(&at, "at", "0,0", "view centre as X,Y")

	cmd.AddCommand(create, newTickCommand(opts))
	return cmd
}

func newTickCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tick TAG",
		Short: "Check the first empty box",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				_, err := a.table.Challenges().TickNext(ctx, scenesync.Tag(args[0]))
				return err
			})
		},
	}
}

func parsePoint(s string) (scenesync.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return scenesync.Point{}, fmt.Errorf("point %q: want X,Y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return scenesync.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return scenesync.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	return scenesync.Point{X: x, Y: y}, nil
}

// splitCount splits "text:n". A missing count is zero.
func splitCount(s string) (string, int, error) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return s, 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s[i+1:]))
	if err != nil {
		return "", 0, fmt.Errorf("%q: count must be a number", s)
	}
	return s[:i], n, nil
}
