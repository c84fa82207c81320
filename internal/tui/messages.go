package tui

import (
	"github.com/mosaicfin/reconpilot/internal/autopilot"
	"github.com/mosaicfin/reconpilot/internal/model"
)

// Data loading messages.
type transactionsLoadedMsg struct {
	err          error
	transactions []model.Transaction
}

type auditLoadedMsg struct {
	err           error
	transactionID string
	entries       []model.AuditLogEntry
}

// Agent operation results. Operations never fail, so these carry only
// their value plus the transaction they concern.
type analysisMsg struct {
	transactionID string
	text          string
}

type draftMsg struct {
	transactionID string
	draft         model.EmailDraft
}

type verdictMsg struct {
	transactionID string
	verdict       string
	approved      bool
}

type predictionMsg struct {
	transactionID string
	prediction    model.PredictionResult
}

// Auto-pilot progress. The runner executes on its own goroutine and its
// sinks push these over a channel; the model re-arms a listen command
// after each one until autopilotDoneMsg arrives.
type pilotPhaseMsg struct {
	phase autopilot.Phase
}

type pilotStepMsg struct {
	step  model.PlanStep
	index int
}

type pilotLogMsg struct {
	entry model.AuditLogEntry
}

type autopilotDoneMsg struct {
	err error
}

type statusUpdatedMsg struct {
	transactionID string
	status        model.Status
}

type errorMsg struct {
	err error
}
