package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-scenesync/pkg/fate"
	"github.com/goliatone/go-scenesync/pkg/settings"
)

func newSettingsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and edit the settings journal",
	}

	var trace string
	show := &cobra.Command{
		Use:   "show PAGE",
		Short: "Print the resolved values of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := findPage(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				resolved, err := a.resolver.Resolve(ctx, page, nil)
				if err != nil {
					return err
				}
				if trace != "" {
					out, err := resolved.Trace(trace).ToJSON()
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), string(out))
					return nil
				}
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				defer enc.Close()
				return enc.Encode(map[string]any(resolved.Values))
			})
		},
	}
	show.Flags().StringVar(&trace, "trace", "", "print the provenance of one key")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "pages",
			Short: "List the settings pages",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, p := range fate.Pages() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.Name, p.Label)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create missing pages with their defaults",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, func(ctx context.Context, a *app) error {
					for _, p := range fate.Pages() {
						if _, _, err := a.resolver.Ensure(ctx, p); err != nil {
							return err
						}
					}
					return nil
				})
			},
		},
		show,
		&cobra.Command{
			Use:   "set PAGE KEY=VALUE...",
			Short: "Change values of a page",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				page, err := findPage(args[0])
				if err != nil {
					return err
				}
				updates := settings.Record{}
				for _, pair := range args[1:] {
					key, value, ok := strings.Cut(pair, "=")
					if !ok {
						return fmt.Errorf("%q: want KEY=VALUE", pair)
					}
					if _, known := page.Field(key); !known {
						return fmt.Errorf("%s has no field %q", page.Name, key)
					}
					updates[key] = value
				}
				return opts.run(cmd, func(ctx context.Context, a *app) error {
					_, meta, err := a.resolver.Mutate(ctx, page, settings.Meta{}, func(r settings.Record) error {
						for k, v := range updates {
							r[k] = v
						}
						return nil
					})
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), meta.ETag)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "schema PAGE",
			Short: "Print the JSON schema of a page",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				page, err := findPage(args[0])
				if err != nil {
					return err
				}
				out, err := json.MarshalIndent(settings.JSONSchema(page), "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			},
		},
	)
	return cmd
}

func findPage(name string) (settings.Page, error) {
	for _, p := range fate.Pages() {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return settings.Page{}, fmt.Errorf("unknown settings page %q", name)
}
