package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alanyoungcy/quiverx/internal/app"
	"github.com/alanyoungcy/quiverx/internal/config"
	"github.com/alanyoungcy/quiverx/internal/render"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var (
		liquidity bool
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print missed-profit analytics",
		Long: `Print the missed-profit summary and daily series, optionally followed by
the liquidity analysis.

Examples:
  quiverx stats
  quiverx stats --liquidity`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, app.Requirements{}, func(ctx context.Context, _ *config.Config, a *app.App) error {
				svc := a.Service()
				out := cmd.OutOrStdout()

				av, err := svc.Analytics(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return json.NewEncoder(out).Encode(av)
				}
				if err := render.Analytics(out, av); err != nil {
					return err
				}
				if !liquidity {
					return nil
				}

				lv, err := svc.Liquidity(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				return render.Liquidity(out, lv)
			})
		},
	}
	cmd.Flags().BoolVar(&liquidity, "liquidity", false, "also print the liquidity analysis")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the analytics view as JSON")
	return cmd
}
