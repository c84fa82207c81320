package main

import (
	"log/slog"

	"github.com/mosaicfin/reconpilot/internal/autopilot"
	"github.com/mosaicfin/reconpilot/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the interactive reconciliation dashboard",
		Long: `Open the full-screen dashboard: transaction list, audit timeline, and
the agent panel. Single keys drive the agent (a analyze, e email,
v validate, p predict, r auto-pilot).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			client, err := createAgentClient()
			if err != nil {
				return err
			}
			defer client.Close()

			runnerCfg := autopilot.DefaultConfig()
			if delay := viper.GetDuration("autopilot.step_delay"); delay > 0 {
				runnerCfg.StepDelay = delay
			}
			runner := autopilot.New(client, nil, runnerCfg, slog.Default())

			return tui.Run(ctx, tui.Config{
				Storage: store,
				Agent:   client,
				Runner:  runner,
			})
		},
	}
}
