// Package tui renders the reconciliation dashboard: a transaction list,
// a detail pane with the audit timeline, and an agent panel driven by
// single-key actions.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/mosaicfin/reconpilot/internal/agent"
	"github.com/mosaicfin/reconpilot/internal/autopilot"
	"github.com/mosaicfin/reconpilot/internal/model"
	"github.com/mosaicfin/reconpilot/internal/service"
)

// AgentClient is the subset of agent operations the dashboard invokes.
type AgentClient interface {
	AnalyzeFailure(ctx context.Context, txn model.Transaction) string
	DraftVendorEmail(ctx context.Context, txn model.Transaction) model.EmailDraft
	ValidateRectification(ctx context.Context, txn model.Transaction, adjustment string) string
	PredictResolution(ctx context.Context, txn model.Transaction) model.PredictionResult
	Simulated() bool
	ProviderName() string
}

// PlanRunner executes auto-pilot plans.
type PlanRunner interface {
	Run(ctx context.Context, txn model.Transaction, sinks autopilot.Sinks) (*autopilot.Result, error)
}

// Config holds the dashboard's dependencies.
type Config struct {
	Storage service.Storage
	Agent   AgentClient
	Runner  PlanRunner
}

// Model holds the dashboard state.
type Model struct {
	storage      service.Storage
	agent        AgentClient
	runner       PlanRunner
	events       chan tea.Msg
	pilotCancel  context.CancelFunc
	lastError    error
	panelTitle   string
	panelBody    string
	statusLine   string
	styles       Styles
	spinner      spinner.Model
	transactions []model.Transaction
	audit        []model.AuditLogEntry
	cursor       int
	width        int
	height       int
	busy         bool
	pilotActive  bool
	ready        bool
	quitting     bool
}

func newModel(cfg Config) Model {
	styles := DefaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.PanelTitle

	return Model{
		storage:    cfg.Storage,
		agent:      cfg.Agent,
		runner:     cfg.Runner,
		styles:     styles,
		spinner:    sp,
		panelTitle: "Agent",
		panelBody:  "Select a transaction and press a key to engage the agent.",
		width:      100,
		height:     30,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, m.loadTransactions())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		if m.busy || m.pilotActive {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case transactionsLoadedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.transactions = msg.transactions
		m.ready = true
		if m.cursor >= len(m.transactions) {
			m.cursor = max(0, len(m.transactions)-1)
		}
		return m, m.loadAudit()

	case auditLoadedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		if txn, ok := m.selected(); ok && txn.ID == msg.transactionID {
			m.audit = msg.entries
		}

	case analysisMsg:
		m.busy = false
		m.panelTitle = "Failure Analysis"
		m.panelBody = msg.text
		return m, m.loadAudit()

	case draftMsg:
		m.busy = false
		m.panelTitle = "Vendor Email Draft"
		m.panelBody = fmt.Sprintf("Subject: %s\n\n%s", msg.draft.Subject, msg.draft.Body)
		return m, m.loadAudit()

	case verdictMsg:
		m.busy = false
		m.panelTitle = "Rectification Verdict"
		m.panelBody = msg.verdict
		if msg.approved {
			m.statusLine = "Adjustment approved, transaction marked RECTIFIED"
			return m, tea.Batch(m.loadTransactions(), m.loadAudit())
		}
		return m, m.loadAudit()

	case predictionMsg:
		m.busy = false
		m.panelTitle = "Resolution Outlook"
		p := msg.prediction
		m.panelBody = fmt.Sprintf("Likelihood: %d%% (%s)\n\n%s", p.Score, p.Label, p.Rationale)
		return m, m.loadAudit()

	case pilotPhaseMsg:
		m.statusLine = "Auto-pilot: " + msg.phase.String()
		return m, m.listenPilot()

	case pilotStepMsg:
		m.statusLine = fmt.Sprintf("Auto-pilot step %d: %s", msg.index+1, msg.step.Action)
		return m, m.listenPilot()

	case pilotLogMsg:
		switch {
		case msg.entry.Metadata["analysis"] != "":
			m.panelTitle = "Failure Analysis"
			m.panelBody = msg.entry.Metadata["analysis"]
		case msg.entry.Metadata["subject"] != "":
			m.panelTitle = "Vendor Email Draft"
			m.panelBody = fmt.Sprintf("Subject: %s\n\n%s", msg.entry.Metadata["subject"], msg.entry.Metadata["body"])
		}
		return m, tea.Batch(m.loadAudit(), m.listenPilot())

	case statusUpdatedMsg:
		return m, tea.Batch(m.loadTransactions(), m.listenPilot())

	case autopilotDoneMsg:
		m.pilotActive = false
		m.events = nil
		if m.pilotCancel != nil {
			m.pilotCancel()
			m.pilotCancel = nil
		}
		if msg.err != nil {
			m.lastError = msg.err
			m.statusLine = "Auto-pilot aborted"
		} else {
			m.statusLine = "Auto-pilot complete"
		}
		return m, tea.Batch(m.loadTransactions(), m.loadAudit())

	case errorMsg:
		m.busy = false
		m.lastError = msg.err
		if m.pilotActive {
			return m, m.listenPilot()
		}
	}

	return m, nil
}

// proposedAdjustment is the standing one-click rectification proposal
// the dashboard submits for validation.
func proposedAdjustment(txn model.Transaction) string {
	return fmt.Sprintf("Reissue payment of %.2f %s to %s for invoice %s with corrected payment details.",
		txn.Amount, txn.Currency, txn.VendorName, txn.InvoiceID)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		if m.pilotCancel != nil {
			m.pilotCancel()
		}
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.transactions)-1 {
			m.cursor++
			m.audit = nil
			return m, m.loadAudit()
		}

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
			m.audit = nil
			return m, m.loadAudit()
		}

	case "R":
		return m, m.loadTransactions()

	case "a":
		return m.startAgentOp(m.analyzeCmd)

	case "e":
		return m.startAgentOp(m.draftCmd)

	case "v":
		return m.startAgentOp(m.validateCmd)

	case "p":
		return m.startAgentOp(m.predictCmd)

	case "r":
		return m.startAutopilot()
	}

	return m, nil
}

// startAgentOp runs one agent operation asynchronously, guarded so only
// one is in flight at a time.
func (m Model) startAgentOp(build func(model.Transaction) tea.Cmd) (tea.Model, tea.Cmd) {
	if m.busy || m.pilotActive {
		return m, nil
	}
	txn, ok := m.selected()
	if !ok {
		return m, nil
	}
	m.busy = true
	m.statusLine = "Agent working..."
	return m, tea.Batch(build(txn), m.spinner.Tick)
}

func (m Model) selected() (model.Transaction, bool) {
	if m.cursor < 0 || m.cursor >= len(m.transactions) {
		return model.Transaction{}, false
	}
	return m.transactions[m.cursor], true
}

// Commands

func (m Model) loadTransactions() tea.Cmd {
	storage := m.storage
	return func() tea.Msg {
		txns, err := storage.GetTransactions(context.Background(), service.TransactionFilter{})
		return transactionsLoadedMsg{transactions: txns, err: err}
	}
}

func (m Model) loadAudit() tea.Cmd {
	txn, ok := m.selected()
	if !ok {
		return nil
	}
	storage := m.storage
	return func() tea.Msg {
		entries, err := storage.GetAuditEntries(context.Background(), txn.ID)
		return auditLoadedMsg{transactionID: txn.ID, entries: entries, err: err}
	}
}

func (m Model) analyzeCmd(txn model.Transaction) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		text := m.agent.AnalyzeFailure(ctx, txn)
		if err := m.appendEntry(ctx, txn, model.RoleAuditor, "FAILURE ANALYZED", text, map[string]string{"analysis": text}); err != nil {
			return errorMsg{err}
		}
		return analysisMsg{transactionID: txn.ID, text: text}
	}
}

func (m Model) draftCmd(txn model.Transaction) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		draft := m.agent.DraftVendorEmail(ctx, txn)
		meta := map[string]string{"subject": draft.Subject, "body": draft.Body}
		if err := m.appendEntry(ctx, txn, model.RoleLiaison, "VENDOR EMAIL DRAFTED", draft.Subject, meta); err != nil {
			return errorMsg{err}
		}
		return draftMsg{transactionID: txn.ID, draft: draft}
	}
}

func (m Model) validateCmd(txn model.Transaction) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		adjustment := proposedAdjustment(txn)
		verdict := m.agent.ValidateRectification(ctx, txn, adjustment)
		approved := agent.IsApproved(verdict)

		meta := map[string]string{"adjustment": adjustment, "verdict": verdict}
		if err := m.appendEntry(ctx, txn, model.RoleController, "RECTIFICATION VALIDATED", verdict, meta); err != nil {
			return errorMsg{err}
		}
		if approved {
			if err := m.storage.UpdateTransactionStatus(ctx, txn.ID, model.StatusRectified); err != nil {
				return errorMsg{err}
			}
		}
		return verdictMsg{transactionID: txn.ID, verdict: verdict, approved: approved}
	}
}

func (m Model) predictCmd(txn model.Transaction) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		prediction := m.agent.PredictResolution(ctx, txn)
		details := fmt.Sprintf("%d%% (%s)", prediction.Score, prediction.Label)
		meta := map[string]string{"rationale": prediction.Rationale}
		if err := m.appendEntry(ctx, txn, model.RoleController, "RESOLUTION PREDICTED", details, meta); err != nil {
			return errorMsg{err}
		}
		return predictionMsg{transactionID: txn.ID, prediction: prediction}
	}
}

func (m Model) appendEntry(ctx context.Context, txn model.Transaction, role model.Role, action, details string, meta map[string]string) error {
	return m.storage.AppendAuditEntry(ctx, &model.AuditLogEntry{
		ID:            uuid.NewString(),
		TransactionID: txn.ID,
		Timestamp:     time.Now().UTC(),
		Role:          role,
		Action:        action,
		Details:       details,
		Metadata:      meta,
	})
}

// startAutopilot launches the runner on its own goroutine, with sinks
// that persist and stream progress back into the update loop.
func (m Model) startAutopilot() (tea.Model, tea.Cmd) {
	if m.busy || m.pilotActive {
		return m, nil
	}
	txn, ok := m.selected()
	if !ok {
		return m, nil
	}
	if txn.Status != model.StatusFailed {
		m.statusLine = "Auto-pilot requires a FAILED transaction"
		return m, nil
	}

	events := make(chan tea.Msg, 32)
	ctx, cancel := context.WithCancel(context.Background())
	m.events = events
	m.pilotCancel = cancel
	m.pilotActive = true
	m.statusLine = "Auto-pilot engaged"

	storage := m.storage
	runner := m.runner

	go func() {
		// Quitting mid-run stops the update loop from draining events,
		// so every send bails out once the run context is canceled.
		send := func(msg tea.Msg) {
			select {
			case events <- msg:
			case <-ctx.Done():
			}
		}

		sinks := autopilot.Sinks{
			AppendLog: func(entry model.AuditLogEntry) {
				if err := storage.AppendAuditEntry(ctx, &entry); err != nil {
					send(errorMsg{err})
				}
				send(pilotLogMsg{entry: entry})
			},
			SetStatus: func(status model.Status) {
				if err := storage.UpdateTransactionStatus(ctx, txn.ID, status); err != nil {
					send(errorMsg{err})
					return
				}
				send(statusUpdatedMsg{transactionID: txn.ID, status: status})
			},
			PhaseChanged: func(phase autopilot.Phase) {
				send(pilotPhaseMsg{phase: phase})
			},
			StepStarted: func(index int, step model.PlanStep) {
				send(pilotStepMsg{index: index, step: step})
			},
		}

		_, err := runner.Run(ctx, txn, sinks)
		send(autopilotDoneMsg{err: err})
		close(events)
	}()

	return m, tea.Batch(m.listenPilot(), m.spinner.Tick)
}

// listenPilot waits for the next auto-pilot event.
func (m Model) listenPilot() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}
