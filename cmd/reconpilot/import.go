package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mosaicfin/reconpilot/internal/model"
	"github.com/mosaicfin/reconpilot/internal/ofx"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX (Quicken) files exported from your
bank. Duplicate transactions are detected by content hash and skipped.

Examples:
  reconpilot import ~/Downloads/statement_may.qfx
  reconpilot import ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	slog.Info("Importing OFX files", "file_count", len(allFiles), "dry_run", dryRun)

	parser := ofx.NewParser()
	seen := make(map[string]bool)
	var allTransactions []model.Transaction

	bar := newStepBar(len(allFiles))
	bar.Describe("[cyan][bold]Parsing statements...[reset]")

	for _, filePath := range allFiles {
		f, err := os.Open(filePath)
		if err != nil {
			slog.Error("Failed to open file", "file", filePath, "error", err)
			_ = bar.Add(1)
			continue
		}

		transactions, err := parser.ParseFile(ctx, f)
		f.Close()
		_ = bar.Add(1)

		if err != nil {
			slog.Error("Failed to parse OFX file", "file", filePath, "error", err)
			continue
		}

		added := 0
		for _, tx := range transactions {
			if !seen[tx.Hash] {
				seen[tx.Hash] = true
				allTransactions = append(allTransactions, tx)
				added++
			}
		}

		slog.Info("Processed file",
			"file", filepath.Base(filePath),
			"transactions_found", len(transactions),
			"added", added,
			"duplicates", len(transactions)-added)
	}

	if len(allTransactions) == 0 {
		slog.Warn("No transactions found in any file")
		return nil
	}

	if dryRun {
		fmt.Printf("Dry run: would import %d transactions.\n", len(allTransactions))
		for i, tx := range allTransactions {
			if i >= 10 {
				fmt.Printf("  ... and %d more\n", len(allTransactions)-i)
				break
			}
			fmt.Printf("  %s  %-24s %10.2f %s\n",
				tx.Date.Format("2006-01-02"), tx.VendorName, tx.Amount, tx.Currency)
		}
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveTransactions(ctx, allTransactions); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	fmt.Printf("Imported %d transactions from %d files.\n", len(allTransactions), len(allFiles))
	return nil
}
