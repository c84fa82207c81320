package storage

import (
	"context"
	"time"

	"github.com/mosaicfin/reconpilot/internal/model"
)

// DemoTransactions returns the built-in demo dataset. It exists so the
// dashboard is fully explorable before any real data is imported, and
// includes one failed payment to exercise the agent workflow.
func DemoTransactions() []model.Transaction {
	return []model.Transaction{
		{
			ID:          "TXN-78898",
			VendorName:  "Northwind Logistics",
			VendorEmail: "ap@northwindlogistics.example",
			InvoiceID:   "INV-2024-047",
			Amount:      4890.00,
			Currency:    "USD",
			Date:        time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC),
			Status:      model.StatusCleared,
		},
		{
			ID:          "TXN-78899",
			VendorName:  "Helios Energy Co",
			VendorEmail: "billing@heliosenergy.example",
			InvoiceID:   "INV-2024-048",
			Amount:      12740.50,
			Currency:    "USD",
			Date:        time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC),
			Status:      model.StatusCleared,
		},
		{
			ID:          "TXN-78900",
			VendorName:  "Brightline Office Supply",
			VendorEmail: "accounts@brightline.example",
			InvoiceID:   "INV-2024-050",
			Amount:      312.75,
			Currency:    "USD",
			Date:        time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC),
			Status:      model.StatusCleared,
		},
		{
			ID:            "TXN-78901",
			VendorName:    "Apex Materials",
			VendorEmail:   "billing@apexmaterials.example",
			InvoiceID:     "INV-2024-051",
			Amount:        1250.00,
			Currency:      "USD",
			Date:          time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC),
			Status:        model.StatusFailed,
			FailureReason: "FATAL: Routing Number Mismatch",
		},
		{
			ID:            "TXN-78902",
			VendorName:    "Cobalt Freight",
			VendorEmail:   "finance@cobaltfreight.example",
			InvoiceID:     "INV-2024-052",
			Amount:        7624.10,
			Currency:      "EUR",
			Date:          time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC),
			Status:        model.StatusFailed,
			FailureReason: "Invoice reference not recognized by receiving bank",
		},
	}
}

// SeedDemoData inserts the demo dataset. Existing records with the
// same hash are left untouched, so seeding is idempotent.
func (s *SQLiteStorage) SeedDemoData(ctx context.Context) error {
	return s.SaveTransactions(ctx, DemoTransactions())
}
