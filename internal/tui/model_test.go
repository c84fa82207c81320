package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mosaicfin/reconpilot/internal/autopilot"
	"github.com/mosaicfin/reconpilot/internal/model"
	"github.com/mosaicfin/reconpilot/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAgent struct{}

func (stubAgent) AnalyzeFailure(context.Context, model.Transaction) string { return "analysis" }
func (stubAgent) DraftVendorEmail(context.Context, model.Transaction) model.EmailDraft {
	return model.EmailDraft{Subject: "s", Body: "b"}
}
func (stubAgent) ValidateRectification(context.Context, model.Transaction, string) string {
	return "APPROVED: fine"
}
func (stubAgent) PredictResolution(context.Context, model.Transaction) model.PredictionResult {
	return model.PredictionResult{Score: 88, Label: model.LabelHigh, Rationale: "r"}
}
func (stubAgent) Simulated() bool      { return true }
func (stubAgent) ProviderName() string { return "simulated" }

func testTransactions() []model.Transaction {
	return []model.Transaction{
		{
			ID:         "TXN-1",
			VendorName: "Northwind Logistics",
			InvoiceID:  "INV-1",
			Amount:     890.25,
			Currency:   "USD",
			Date:       time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
			Status:     model.StatusCleared,
		},
		{
			ID:            "TXN-2",
			VendorName:    "Apex Materials",
			InvoiceID:     "INV-2",
			Amount:        1250.00,
			Currency:      "USD",
			Date:          time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC),
			Status:        model.StatusFailed,
			FailureReason: "FATAL: Routing Number Mismatch",
		},
	}
}

func loadedModel(t *testing.T) Model {
	t.Helper()

	m := newModel(Config{Agent: stubAgent{}})
	updated, _ := m.Update(transactionsLoadedMsg{transactions: testTransactions()})

	loaded, ok := updated.(Model)
	require.True(t, ok)
	require.True(t, loaded.ready)
	return loaded
}

func TestViewRendersTransactionList(t *testing.T) {
	m := loadedModel(t)

	view := m.View()
	assert.Contains(t, view, "reconpilot")
	assert.Contains(t, view, "Northwind Logistics")
	assert.Contains(t, view, "Apex Materials")
	assert.Contains(t, view, "simulated")
}

func TestViewShowsLoadingBeforeData(t *testing.T) {
	m := newModel(Config{Agent: stubAgent{}})
	assert.Contains(t, m.View(), "Loading")
}

func TestNavigationMovesCursor(t *testing.T) {
	m := loadedModel(t)
	require.Equal(t, 0, m.cursor)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	moved := updated.(Model)
	assert.Equal(t, 1, moved.cursor)

	// Detail pane follows the cursor.
	assert.Contains(t, moved.View(), "FATAL: Routing Number Mismatch")

	// Cursor clamps at the end of the list.
	updated, _ = moved.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, updated.(Model).cursor)
}

func TestPredictionFillsAgentPanel(t *testing.T) {
	m := loadedModel(t)

	updated, _ := m.Update(predictionMsg{
		transactionID: "TXN-2",
		prediction:    model.PredictionResult{Score: 88, Label: model.LabelHigh, Rationale: "vendor responsive"},
	})

	view := updated.(Model).View()
	assert.Contains(t, view, "Resolution Outlook")
	assert.Contains(t, view, "88%")
	assert.Contains(t, view, "vendor responsive")
}

func TestVerdictUpdatesStatusLine(t *testing.T) {
	m := loadedModel(t)

	updated, _ := m.Update(verdictMsg{
		transactionID: "TXN-2",
		verdict:       "APPROVED: looks correct",
		approved:      true,
	})

	next := updated.(Model)
	assert.Contains(t, next.statusLine, "RECTIFIED")
	assert.Contains(t, next.View(), "APPROVED: looks correct")
}

func TestAuditTimelineRenders(t *testing.T) {
	m := loadedModel(t)

	updated, _ := m.Update(auditLoadedMsg{
		transactionID: "TXN-1",
		entries: []model.AuditLogEntry{
			{
				ID:            "e1",
				TransactionID: "TXN-1",
				Timestamp:     time.Date(2024, 5, 12, 9, 30, 0, 0, time.UTC),
				Role:          model.RoleAuditor,
				Action:        "FAILURE ANALYZED",
			},
		},
	})

	view := updated.(Model).View()
	assert.Contains(t, view, "FAILURE ANALYZED")
	assert.Contains(t, view, "AUDITOR")
}

type rejectingAgent struct{ stubAgent }

func (rejectingAgent) ValidateRectification(context.Context, model.Transaction, string) string {
	return "REJECTED: amount does not match the invoice"
}

func newTestStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "tui.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestValidateCmdMarksTransactionRectified(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	txn := testTransactions()[1]
	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{txn}))

	m := newModel(Config{Storage: store, Agent: stubAgent{}})

	msg := m.validateCmd(txn)()
	verdict, ok := msg.(verdictMsg)
	require.True(t, ok, "unexpected message %T", msg)
	assert.True(t, verdict.approved)

	got, err := store.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRectified, got.Status)

	entries, err := store.GetAuditEntries(ctx, txn.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.RoleController, entries[0].Role)
	assert.Equal(t, "RECTIFICATION VALIDATED", entries[0].Action)
}

func TestValidateCmdRejectionLeavesStatusAlone(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	txn := testTransactions()[1]
	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{txn}))

	m := newModel(Config{Storage: store, Agent: rejectingAgent{}})

	msg := m.validateCmd(txn)()
	verdict, ok := msg.(verdictMsg)
	require.True(t, ok, "unexpected message %T", msg)
	assert.False(t, verdict.approved)

	got, err := store.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, got.Status)
}

func TestQuitKey(t *testing.T) {
	m := loadedModel(t)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, updated.(Model).quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

// floodRunner emits far more events than the model's channel buffers
// and signals when Run has returned.
type floodRunner struct {
	returned chan struct{}
}

func (f *floodRunner) Run(_ context.Context, _ model.Transaction, sinks autopilot.Sinks) (*autopilot.Result, error) {
	defer close(f.returned)
	step := model.PlanStep{Action: model.ActionAnalyze, Description: "analyze"}
	for i := 0; i < 100; i++ {
		sinks.StepStarted(i, step)
	}
	return &autopilot.Result{}, nil
}

func TestQuitMidRunReleasesRunner(t *testing.T) {
	runner := &floodRunner{returned: make(chan struct{})}
	m := newModel(Config{Agent: stubAgent{}, Runner: runner})

	updated, _ := m.Update(transactionsLoadedMsg{transactions: testTransactions()})
	loaded := updated.(Model)
	loaded.cursor = 1 // the FAILED transaction

	started, _ := loaded.startAutopilot()
	engaged := started.(Model)
	require.True(t, engaged.pilotActive)

	// Quit without draining any events. The runner goroutine must be
	// released by the run context, not by the update loop.
	quit, _ := engaged.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.True(t, quit.(Model).quitting)

	select {
	case <-runner.returned:
	case <-time.After(2 * time.Second):
		t.Fatal("runner still blocked on an event send after quit")
	}
}
