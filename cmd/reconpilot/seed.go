package main

import (
	"fmt"

	"github.com/mosaicfin/reconpilot/internal/storage"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo ledger for offline exploration",
		Long: `Load a small demo ledger, including failed transactions to exercise the
agent workflow. Seeding is idempotent; existing rows are left alone.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			sqlStore, ok := store.(*storage.SQLiteStorage)
			if !ok {
				return fmt.Errorf("seeding requires SQLite storage")
			}

			if err := sqlStore.SeedDemoData(ctx); err != nil {
				return fmt.Errorf("failed to seed demo data: %w", err)
			}

			fmt.Printf("Seeded %d demo transactions.\n", len(storage.DemoTransactions()))
			return nil
		},
	}
}
