// Package autopilot drives a failed transaction toward resolution by
// executing a generated plan step by step without further user input.
package autopilot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mosaicfin/reconpilot/internal/common"
	"github.com/mosaicfin/reconpilot/internal/model"
	"github.com/mosaicfin/reconpilot/internal/service"
)

// ErrNotFailed is returned when auto-pilot is invoked on a transaction
// that is not in the FAILED state.
var ErrNotFailed = errors.New("auto-pilot requires a FAILED transaction")

// Phase is the runner's position in its lifecycle.
type Phase int

// Runner phases. A run moves strictly forward: Idle, PlanRequested,
// Executing, Done. Done is terminal for that invocation.
const (
	PhaseIdle Phase = iota
	PhasePlanRequested
	PhaseExecuting
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePlanRequested:
		return "plan_requested"
	case PhaseExecuting:
		return "executing"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Agent is the subset of agent operations the runner dispatches to.
// Every operation resolves to a value; none returns an error.
type Agent interface {
	AnalyzeFailure(ctx context.Context, txn model.Transaction) string
	DraftVendorEmail(ctx context.Context, txn model.Transaction) model.EmailDraft
	GenerateAutoPilotPlan(ctx context.Context, txn model.Transaction) model.Plan
}

// Sinks carries the caller-supplied callbacks the runner reports
// through. Any nil callback is skipped; none may fail observably.
type Sinks struct {
	AppendLog      func(model.AuditLogEntry)
	SetStatus      func(model.Status)
	ShowAnalysis   func(string)
	ShowEmailDraft func(model.EmailDraft)
	PlanGenerated  func(model.Plan)
	PhaseChanged   func(Phase)
	StepStarted    func(index int, step model.PlanStep)
}

func (s Sinks) appendLog(entry model.AuditLogEntry) {
	if s.AppendLog != nil {
		s.AppendLog(entry)
	}
}

func (s Sinks) setStatus(status model.Status) {
	if s.SetStatus != nil {
		s.SetStatus(status)
	}
}

func (s Sinks) showAnalysis(text string) {
	if s.ShowAnalysis != nil {
		s.ShowAnalysis(text)
	}
}

func (s Sinks) showEmailDraft(draft model.EmailDraft) {
	if s.ShowEmailDraft != nil {
		s.ShowEmailDraft(draft)
	}
}

func (s Sinks) planGenerated(plan model.Plan) {
	if s.PlanGenerated != nil {
		s.PlanGenerated(plan)
	}
}

func (s Sinks) phaseChanged(phase Phase) {
	if s.PhaseChanged != nil {
		s.PhaseChanged(phase)
	}
}

func (s Sinks) stepStarted(index int, step model.PlanStep) {
	if s.StepStarted != nil {
		s.StepStarted(index, step)
	}
}

// Config holds configuration options for the runner.
type Config struct {
	// StepDelay is the pause between consecutive steps.
	StepDelay time.Duration
}

// DefaultConfig returns the default runner configuration.
func DefaultConfig() Config {
	return Config{StepDelay: 2 * time.Second}
}

// Result summarizes a completed run.
type Result struct {
	Plan     model.Plan
	StepsRun int
}

// Runner executes auto-pilot plans sequentially. A single Runner may
// serve many transactions, but at most one run per transaction is
// allowed at a time.
type Runner struct {
	agent     Agent
	scheduler service.Scheduler
	logger    *slog.Logger
	active    map[string]struct{}
	stepDelay time.Duration
	mu        sync.Mutex
}

// New creates a runner with the given dependencies.
func New(agent Agent, scheduler service.Scheduler, cfg Config, logger *slog.Logger) *Runner {
	if scheduler == nil {
		scheduler = common.NewScheduler()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.StepDelay == 0 {
		cfg.StepDelay = DefaultConfig().StepDelay
	}

	return &Runner{
		agent:     agent,
		scheduler: scheduler,
		logger:    logger,
		stepDelay: cfg.StepDelay,
		active:    make(map[string]struct{}),
	}
}

// Run obtains a plan for the transaction and executes it step by step,
// appending exactly one SYSTEM audit entry per step in step order. The
// plan is requested once per run and reported through the PlanGenerated
// sink before execution starts. An empty plan completes immediately
// with no entries. A second run for the same transaction while one is
// in flight is rejected with common.ErrRunInProgress.
func (r *Runner) Run(ctx context.Context, txn model.Transaction, sinks Sinks) (*Result, error) {
	if txn.Status != model.StatusFailed {
		return nil, fmt.Errorf("%w: transaction %s is %s", ErrNotFailed, txn.ID, txn.Status)
	}

	if !r.acquire(txn.ID) {
		return nil, fmt.Errorf("%w: transaction %s", common.ErrRunInProgress, txn.ID)
	}
	defer r.release(txn.ID)

	r.logger.Info("auto-pilot engaged", "transaction_id", txn.ID, "vendor", txn.VendorName)
	sinks.phaseChanged(PhasePlanRequested)

	plan := r.agent.GenerateAutoPilotPlan(ctx, txn)
	sinks.planGenerated(plan)

	if len(plan.Steps) == 0 {
		// The fallback for a failed plan request is an empty plan, so
		// this branch also absorbs plan-generation failure.
		r.logger.Info("auto-pilot plan is empty, nothing to do", "transaction_id", txn.ID)
		sinks.phaseChanged(PhaseDone)
		return &Result{Plan: plan}, nil
	}

	sinks.phaseChanged(PhaseExecuting)

	for i, step := range plan.Steps {
		sinks.stepStarted(i, step)

		entry := r.dispatch(ctx, txn, step, sinks)
		sinks.appendLog(entry)

		r.logger.Info("auto-pilot step completed",
			"transaction_id", txn.ID,
			"step", i+1,
			"total_steps", len(plan.Steps),
			"action", step.Action)

		if i < len(plan.Steps)-1 {
			if err := r.scheduler.Sleep(ctx, r.stepDelay); err != nil {
				return nil, fmt.Errorf("auto-pilot interrupted after step %d: %w", i+1, err)
			}
		}
	}

	sinks.phaseChanged(PhaseDone)
	r.logger.Info("auto-pilot complete", "transaction_id", txn.ID, "steps", len(plan.Steps))

	return &Result{Plan: plan, StepsRun: len(plan.Steps)}, nil
}

// dispatch executes one step and builds its audit entry. Agent calls
// cannot fail, so neither can a dispatch.
func (r *Runner) dispatch(ctx context.Context, txn model.Transaction, step model.PlanStep, sinks Sinks) model.AuditLogEntry {
	entry := model.AuditLogEntry{
		ID:            uuid.NewString(),
		TransactionID: txn.ID,
		Timestamp:     time.Now().UTC(),
		Role:          model.RoleSystem,
		Details:       step.Description,
	}

	switch step.Action {
	case model.ActionAnalyze:
		analysis := r.agent.AnalyzeFailure(ctx, txn)
		sinks.showAnalysis(analysis)
		entry.Action = "AUTO-PILOT: FAILURE ANALYZED"
		entry.Metadata = map[string]string{"analysis": analysis}

	case model.ActionEmailVendor:
		draft := r.agent.DraftVendorEmail(ctx, txn)
		sinks.showEmailDraft(draft)
		entry.Action = "AUTO-PILOT: VENDOR EMAIL DRAFTED"
		entry.Metadata = map[string]string{"subject": draft.Subject, "body": draft.Body}

	case model.ActionRectify:
		sinks.setStatus(model.StatusRectifying)
		entry.Action = "AUTO-PILOT: RECTIFICATION STARTED"

	default:
		// parsePlan validates actions, so this only fires for a
		// hand-built plan. Still log exactly one entry for the step.
		r.logger.Warn("unknown plan action", "action", step.Action, "transaction_id", txn.ID)
		entry.Action = "AUTO-PILOT: STEP SKIPPED"
	}

	return entry
}

func (r *Runner) acquire(transactionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.active[transactionID]; busy {
		return false
	}
	r.active[transactionID] = struct{}{}
	return true
}

func (r *Runner) release(transactionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, transactionID)
}
