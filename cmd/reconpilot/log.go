package main

import (
	"fmt"

	"github.com/mosaicfin/reconpilot/internal/model"
	"github.com/spf13/cobra"
)

func logCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log [transaction-id]",
		Short: "Show the audit log, for one transaction or across all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			var entries []model.AuditLogEntry
			if len(args) == 1 {
				entries, err = store.GetAuditEntries(ctx, args[0])
			} else {
				limit, _ := cmd.Flags().GetInt("limit")
				entries, err = store.ListAuditEntries(ctx, limit)
			}
			if err != nil {
				return fmt.Errorf("failed to load audit log: %w", err)
			}

			if len(entries) == 0 {
				fmt.Println("No audit entries.")
				return nil
			}

			printAuditEntries(entries)
			return nil
		},
	}

	cmd.Flags().Int("limit", 50, "maximum number of entries to show")

	return cmd
}

func printAuditEntries(entries []model.AuditLogEntry) {
	for _, entry := range entries {
		fmt.Printf("%s  %-12s %-10s %s\n",
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.TransactionID,
			entry.Role,
			entry.Action)
		if entry.Details != "" {
			fmt.Printf("    %s\n", entry.Details)
		}
	}
}
