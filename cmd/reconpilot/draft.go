package main

import (
	"fmt"

	"github.com/mosaicfin/reconpilot/internal/model"
	"github.com/spf13/cobra"
)

func draftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "draft <transaction-id>",
		Short: "Draft a vendor email about a payment problem",
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

			draft := client.DraftVendorEmail(ctx, *txn)

			fmt.Printf("To:      %s\n", txn.VendorEmail)
			fmt.Printf("Subject: %s\n\n", draft.Subject)
			fmt.Println(draft.Body)

			meta := map[string]string{"subject": draft.Subject, "body": draft.Body}
			return recordAgentAction(ctx, store, txn.ID, model.RoleLiaison,
				"VENDOR EMAIL DRAFTED", draft.Subject, meta)
		},
	}
}
