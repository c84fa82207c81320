package main

import (
	"fmt"

	"github.com/mosaicfin/reconpilot/internal/model"
	"github.com/spf13/cobra"
)

func predictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict <transaction-id>",
		Short: "Predict the likelihood a failed transaction gets resolved",
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

			prediction := client.PredictResolution(ctx, *txn)

			fmt.Printf("Resolution likelihood: %d%% (%s)\n", prediction.Score, prediction.Label)
			fmt.Println(prediction.Rationale)

			details := fmt.Sprintf("%d%% (%s)", prediction.Score, prediction.Label)
			meta := map[string]string{"rationale": prediction.Rationale}
			return recordAgentAction(ctx, store, txn.ID, model.RoleController,
				"RESOLUTION PREDICTED", details, meta)
		},
	}
}
