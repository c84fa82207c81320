package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mosaicfin/reconpilot/internal/autopilot"
	"github.com/mosaicfin/reconpilot/internal/model"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func autopilotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autopilot <transaction-id>",
		Short: "Let the agent plan and execute resolution steps",
		Long: `Engage auto-pilot on a FAILED transaction. The agent generates a plan
and the runner executes it step by step, logging each step to the
audit trail. Steps run with a fixed pause between them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			txn, err := loadTransaction(ctx, store, args[0])
			if err != nil {
				return err
			}

			if client.Simulated() {
				fmt.Println("(simulated mode: no API key configured)")
			}

			runnerCfg := autopilot.DefaultConfig()
			if delay := viper.GetDuration("autopilot.step_delay"); delay > 0 {
				runnerCfg.StepDelay = delay
			}

			runner := autopilot.New(client, nil, runnerCfg, slog.Default())

			var bar *progressbar.ProgressBar
			sinks := autopilot.Sinks{
				PlanGenerated: func(plan model.Plan) {
					if len(plan.Steps) > 0 {
						bar = newStepBar(len(plan.Steps))
					}
				},
				AppendLog: func(entry model.AuditLogEntry) {
					if err := store.AppendAuditEntry(ctx, &entry); err != nil {
						slog.Error("Failed to persist audit entry",
							"transaction_id", entry.TransactionID, "error", err)
					}
					if bar != nil {
						_ = bar.Add(1)
					}
				},
				SetStatus: func(status model.Status) {
					if err := store.UpdateTransactionStatus(ctx, txn.ID, status); err != nil {
						slog.Error("Failed to update status",
							"transaction_id", txn.ID, "error", err)
					}
				},
				PhaseChanged: func(phase autopilot.Phase) {
					slog.Info("Auto-pilot phase changed", "phase", phase.String())
				},
				StepStarted: func(index int, step model.PlanStep) {
					if bar != nil {
						bar.Describe(fmt.Sprintf("[cyan][bold]Step %d: %s[reset]", index+1, step.Action))
					}
				},
			}

			result, err := runner.Run(ctx, *txn, sinks)
			if err != nil {
				return fmt.Errorf("auto-pilot failed: %w", err)
			}

			fmt.Printf("\nAuto-pilot complete: %d of %d steps executed.\n",
				result.StepsRun, len(result.Plan.Steps))
			if result.Plan.Reasoning != "" {
				fmt.Printf("Plan reasoning: %s\n", result.Plan.Reasoning)
			}

			return nil
		},
	}

	cmd.Flags().Duration("step-delay", 0, "pause between auto-pilot steps")
	_ = viper.BindPFlag("autopilot.step_delay", cmd.Flags().Lookup("step-delay"))

	return cmd
}

func newStepBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Running auto-pilot...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}
