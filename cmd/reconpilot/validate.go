package main

import (
	"fmt"
	"strings"

	"github.com/mosaicfin/reconpilot/internal/agent"
	"github.com/mosaicfin/reconpilot/internal/model"
	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <transaction-id> <proposed adjustment...>",
		Short: "Validate a proposed rectification against controls",
		Long: `Validate a proposed rectification. An approved adjustment moves the
transaction to RECTIFIED; anything else leaves it untouched.`,
		Args: cobra.MinimumNArgs(2),
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

			adjustment := strings.Join(args[1:], " ")
			verdict := client.ValidateRectification(ctx, *txn, adjustment)
			fmt.Println(verdict)

			meta := map[string]string{"adjustment": adjustment, "verdict": verdict}
			if err := recordAgentAction(ctx, store, txn.ID, model.RoleController,
				"RECTIFICATION VALIDATED", verdict, meta); err != nil {
				return err
			}

			if agent.IsApproved(verdict) {
				if err := store.UpdateTransactionStatus(ctx, txn.ID, model.StatusRectified); err != nil {
					return fmt.Errorf("failed to mark transaction rectified: %w", err)
				}
				fmt.Printf("Transaction %s marked RECTIFIED.\n", txn.ID)
			}

			return nil
		},
	}
}
