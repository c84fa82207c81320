package main

import (
	"fmt"

	"github.com/mosaicfin/reconpilot/internal/model"
	"github.com/spf13/cobra"
)

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <transaction-id>",
		Short: "Generate a failure analysis for a transaction",
		Args:  cobra.ExactArgs(1),
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

			analysis := client.AnalyzeFailure(ctx, *txn)
			fmt.Println(analysis)

			return recordAgentAction(ctx, store, txn.ID, model.RoleAuditor,
				"FAILURE ANALYZED", analysis, map[string]string{"analysis": analysis})
		},
	}
}
