package main

import (
	"fmt"

	"github.com/mosaicfin/reconpilot/internal/model"
	"github.com/mosaicfin/reconpilot/internal/service"
	"github.com/spf13/cobra"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txns"},
		Short:   "List and inspect tracked transactions",
	}

	cmd.AddCommand(transactionsListCmd())
	cmd.AddCommand(transactionsShowCmd())

	return cmd
}

func transactionsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, optionally filtered by status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			filter := service.TransactionFilter{}
			if statusFlag, _ := cmd.Flags().GetString("status"); statusFlag != "" {
				status, err := model.ParseStatus(statusFlag)
				if err != nil {
					return err
				}
				filter.Status = &status
			}
			filter.Limit, _ = cmd.Flags().GetInt("limit")

			txns, err := store.GetTransactions(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}

			if len(txns) == 0 {
				fmt.Println("No transactions found. Run 'reconpilot seed' or 'reconpilot import'.")
				return nil
			}

			fmt.Printf("%-12s %-12s %-24s %-14s %10s %-4s %s\n",
				"ID", "DATE", "VENDOR", "INVOICE", "AMOUNT", "CUR", "STATUS")
			for _, txn := range txns {
				fmt.Printf("%-12s %-12s %-24s %-14s %10.2f %-4s %s\n",
					txn.ID,
					txn.Date.Format("2006-01-02"),
					txn.VendorName,
					txn.InvoiceID,
					txn.Amount,
					txn.Currency,
					txn.Status)
			}

			return nil
		},
	}

	cmd.Flags().String("status", "", "filter by status (CLEARED, FAILED, RECTIFYING, RECTIFIED)")
	cmd.Flags().Int("limit", 0, "maximum number of transactions to show")

	return cmd
}

func transactionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <transaction-id>",
		Short: "Show one transaction with its audit trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			txn, err := loadTransaction(ctx, store, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Transaction %s\n", txn.ID)
			fmt.Printf("  Vendor:  %s", txn.VendorName)
			if txn.VendorEmail != "" {
				fmt.Printf(" <%s>", txn.VendorEmail)
			}
			fmt.Println()
			fmt.Printf("  Invoice: %s\n", txn.InvoiceID)
			fmt.Printf("  Amount:  %.2f %s\n", txn.Amount, txn.Currency)
			fmt.Printf("  Date:    %s\n", txn.Date.Format("2006-01-02"))
			fmt.Printf("  Status:  %s\n", txn.Status)
			if txn.FailureReason != "" {
				fmt.Printf("  Reason:  %s\n", txn.FailureReason)
			}

			entries, err := store.GetAuditEntries(ctx, txn.ID)
			if err != nil {
				return fmt.Errorf("failed to load audit trail: %w", err)
			}

			fmt.Printf("\nAudit trail (%d entries):\n", len(entries))
			printAuditEntries(entries)

			return nil
		},
	}
}
