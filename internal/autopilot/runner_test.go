package autopilot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mosaicfin/reconpilot/internal/common"
	"github.com/mosaicfin/reconpilot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// zeroScheduler completes every sleep immediately, recording the count.
type zeroScheduler struct {
	sleeps int
	mu     sync.Mutex
}

func (z *zeroScheduler) Sleep(ctx context.Context, _ time.Duration) error {
	z.mu.Lock()
	z.sleeps++
	z.mu.Unlock()
	return ctx.Err()
}

// stubAgent returns fixed values and can block plan generation to
// simulate an in-flight run.
type stubAgent struct {
	planGate  chan struct{}
	started   chan struct{}
	plan      model.Plan
	analysis  string
	draft     model.EmailDraft
	planCalls int
	mu        sync.Mutex
}

func (s *stubAgent) AnalyzeFailure(_ context.Context, _ model.Transaction) string {
	return s.analysis
}

func (s *stubAgent) DraftVendorEmail(_ context.Context, _ model.Transaction) model.EmailDraft {
	return s.draft
}

func (s *stubAgent) GenerateAutoPilotPlan(_ context.Context, _ model.Transaction) model.Plan {
	s.mu.Lock()
	s.planCalls++
	s.mu.Unlock()
	if s.started != nil {
		close(s.started)
		s.started = nil
	}
	if s.planGate != nil {
		<-s.planGate
	}
	return s.plan
}

func (s *stubAgent) planCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.planCalls
}

// recordingSinks captures everything the runner reports.
type recordingSinks struct {
	entries   []model.AuditLogEntry
	statuses  []model.Status
	analyses  []string
	drafts    []model.EmailDraft
	plans     []model.Plan
	phases    []Phase
	stepOrder []int
	mu        sync.Mutex
}

func (r *recordingSinks) sinks() Sinks {
	return Sinks{
		AppendLog: func(entry model.AuditLogEntry) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.entries = append(r.entries, entry)
		},
		SetStatus: func(status model.Status) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.statuses = append(r.statuses, status)
		},
		ShowAnalysis: func(text string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.analyses = append(r.analyses, text)
		},
		ShowEmailDraft: func(draft model.EmailDraft) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.drafts = append(r.drafts, draft)
		},
		PlanGenerated: func(plan model.Plan) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.plans = append(r.plans, plan)
		},
		PhaseChanged: func(phase Phase) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.phases = append(r.phases, phase)
		},
		StepStarted: func(index int, _ model.PlanStep) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.stepOrder = append(r.stepOrder, index)
		},
	}
}

func failedTxn() model.Transaction {
	return model.Transaction{
		ID:            "TXN-78901",
		VendorName:    "Apex Materials",
		InvoiceID:     "INV-2024-051",
		Amount:        1250.00,
		Currency:      "USD",
		Status:        model.StatusFailed,
		FailureReason: "FATAL: Routing Number Mismatch",
	}
}

func threeStepPlan() model.Plan {
	return model.Plan{
		Reasoning: "Standard remediation sequence.",
		Steps: []model.PlanStep{
			{Action: model.ActionAnalyze, Description: "Analyze the failure"},
			{Action: model.ActionEmailVendor, Description: "Contact the vendor"},
			{Action: model.ActionRectify, Description: "Begin rectification"},
		},
	}
}

func TestRunExecutesAllStepsInOrder(t *testing.T) {
	agent := &stubAgent{
		plan:     threeStepPlan(),
		analysis: "the routing number is stale",
		draft:    model.EmailDraft{Subject: "s", Body: "b"},
	}
	scheduler := &zeroScheduler{}
	runner := New(agent, scheduler, Config{StepDelay: time.Second}, nil)
	rec := &recordingSinks{}

	result, err := runner.Run(context.Background(), failedTxn(), rec.sinks())
	require.NoError(t, err)
	assert.Equal(t, 3, result.StepsRun)
	assert.Equal(t, threeStepPlan(), result.Plan)

	// Exactly one SYSTEM entry per step, in step order.
	require.Len(t, rec.entries, 3)
	for _, entry := range rec.entries {
		assert.Equal(t, model.RoleSystem, entry.Role)
		assert.Equal(t, "TXN-78901", entry.TransactionID)
		assert.NotEmpty(t, entry.ID)
	}
	assert.Contains(t, rec.entries[0].Action, "ANALYZ")
	assert.Contains(t, rec.entries[1].Action, "EMAIL")
	assert.Contains(t, rec.entries[2].Action, "RECTIFICATION")

	// Step output is surfaced as view state.
	assert.Equal(t, []string{"the routing number is stale"}, rec.analyses)
	assert.Equal(t, []model.EmailDraft{{Subject: "s", Body: "b"}}, rec.drafts)
	assert.Equal(t, "the routing number is stale", rec.entries[0].Metadata["analysis"])
	assert.Equal(t, "s", rec.entries[1].Metadata["subject"])

	// RECTIFY transitions status.
	assert.Equal(t, []model.Status{model.StatusRectifying}, rec.statuses)

	assert.Equal(t, []int{0, 1, 2}, rec.stepOrder)
	assert.Equal(t, []Phase{PhasePlanRequested, PhaseExecuting, PhaseDone}, rec.phases)

	// N steps pause N-1 times.
	assert.Equal(t, 2, scheduler.sleeps)
}

func TestRunRequestsPlanOnceAndReportsIt(t *testing.T) {
	agent := &stubAgent{
		plan:     threeStepPlan(),
		analysis: "a",
		draft:    model.EmailDraft{Subject: "s", Body: "b"},
	}
	runner := New(agent, &zeroScheduler{}, Config{}, nil)
	rec := &recordingSinks{}

	result, err := runner.Run(context.Background(), failedTxn(), rec.sinks())
	require.NoError(t, err)

	// One plan request per run; the sink sees the exact plan that
	// executes, so callers can size progress displays from it.
	assert.Equal(t, 1, agent.planCallCount())
	require.Len(t, rec.plans, 1)
	assert.Equal(t, result.Plan, rec.plans[0])
	assert.Len(t, rec.stepOrder, len(rec.plans[0].Steps))
}

func TestRunEmptyPlanCompletesImmediately(t *testing.T) {
	agent := &stubAgent{plan: model.Plan{Reasoning: "Failed to generate plan"}}
	scheduler := &zeroScheduler{}
	runner := New(agent, scheduler, Config{}, nil)
	rec := &recordingSinks{}

	result, err := runner.Run(context.Background(), failedTxn(), rec.sinks())
	require.NoError(t, err)
	assert.Zero(t, result.StepsRun)
	assert.Empty(t, rec.entries)
	assert.Empty(t, rec.statuses)
	assert.Equal(t, []Phase{PhasePlanRequested, PhaseDone}, rec.phases)
	assert.Zero(t, scheduler.sleeps)

	// Even an empty plan is reported, so callers see why nothing ran.
	require.Len(t, rec.plans, 1)
	assert.Empty(t, rec.plans[0].Steps)
}

func TestRunRejectsNonFailedTransaction(t *testing.T) {
	runner := New(&stubAgent{plan: threeStepPlan()}, &zeroScheduler{}, Config{}, nil)

	txn := failedTxn()
	txn.Status = model.StatusCleared

	_, err := runner.Run(context.Background(), txn, Sinks{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFailed)
}

func TestRunRejectsConcurrentRunForSameTransaction(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan struct{})
	agent := &stubAgent{plan: threeStepPlan(), planGate: gate, started: started}
	runner := New(agent, &zeroScheduler{}, Config{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := runner.Run(context.Background(), failedTxn(), Sinks{})
		done <- err
	}()

	<-started

	// Second run on the same transaction is rejected while the first
	// is still in flight.
	_, err := runner.Run(context.Background(), failedTxn(), Sinks{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRunInProgress)

	close(gate)
	require.NoError(t, <-done)

	// After completion the transaction can be run again.
	_, err = runner.Run(context.Background(), failedTxn(), Sinks{})
	require.NoError(t, err)
}

func TestRunStopsWhenContextCanceledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	agent := &stubAgent{plan: threeStepPlan(), analysis: "a", draft: model.EmailDraft{Subject: "s", Body: "b"}}

	// Cancel before the run so the first inter-step sleep observes it.
	cancel()

	runner := New(agent, &zeroScheduler{}, Config{}, nil)
	rec := &recordingSinks{}

	_, err := runner.Run(ctx, failedTxn(), rec.sinks())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// The first step completed and was logged before the interruption.
	assert.Len(t, rec.entries, 1)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "plan_requested", PhasePlanRequested.String())
	assert.Equal(t, "executing", PhaseExecuting.String())
	assert.Equal(t, "done", PhaseDone.String())
}
