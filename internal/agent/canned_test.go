package agent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mosaicfin/reconpilot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScheduler records requested delays without sleeping.
type fakeScheduler struct {
	slept []time.Duration
	mu    sync.Mutex
}

func (f *fakeScheduler) Sleep(_ context.Context, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slept = append(f.slept, d)
	return nil
}

func newSimulatedClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(Config{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.True(t, client.Simulated())
	return client
}

func TestCannedAnalysisContainsFailureReason(t *testing.T) {
	client := newSimulatedClient(t)

	got := client.AnalyzeFailure(context.Background(), failedTxn())
	require.NotEmpty(t, got)
	assert.Contains(t, got, "FATAL: Routing Number Mismatch")
	assert.Contains(t, got, "TXN-78901")
}

func TestCannedPlanHasExactlyThreeSteps(t *testing.T) {
	client := newSimulatedClient(t)

	plan := client.GenerateAutoPilotPlan(context.Background(), failedTxn())
	require.Len(t, plan.Steps, 3)
	assert.Equal(t, model.ActionAnalyze, plan.Steps[0].Action)
	assert.Equal(t, model.ActionEmailVendor, plan.Steps[1].Action)
	assert.Equal(t, model.ActionRectify, plan.Steps[2].Action)
	assert.NotEmpty(t, plan.Reasoning)
	for _, step := range plan.Steps {
		assert.NotEmpty(t, step.Description)
	}
}

func TestCannedValidationStartsWithApproved(t *testing.T) {
	client := newSimulatedClient(t)

	verdict := client.ValidateRectification(context.Background(), failedTxn(), "Corrected routing number to 021000021")
	assert.True(t, IsApproved(verdict))
	assert.Regexp(t, "^APPROVED", verdict)
}

func TestCannedDraftIsWellFormed(t *testing.T) {
	client := newSimulatedClient(t)

	draft := client.DraftVendorEmail(context.Background(), failedTxn())
	assert.NotEmpty(t, draft.Subject)
	assert.NotEmpty(t, draft.Body)
	assert.NotEqual(t, "Error", draft.Subject)
	assert.Contains(t, draft.Subject, "INV-2024-051")
	assert.Contains(t, draft.Body, "Apex Materials")
}

func TestCannedPredictionIsOptimisticAndConsistent(t *testing.T) {
	client := newSimulatedClient(t)

	result := client.PredictResolution(context.Background(), failedTxn())
	assert.GreaterOrEqual(t, result.Score, 0)
	assert.LessOrEqual(t, result.Score, 100)
	assert.Equal(t, model.LabelForScore(result.Score), result.Label)
	assert.Equal(t, model.LabelHigh, result.Label)
	assert.NotEmpty(t, result.Rationale)
}

func TestCannedAskQuestionMentionsTransaction(t *testing.T) {
	client := newSimulatedClient(t)

	answer := client.AskQuestion(context.Background(), failedTxn(), "What is the current status?")
	assert.Contains(t, answer, "TXN-78901")
	assert.Contains(t, answer, "FAILED")
}

func TestCannedProviderDelayGoesThroughScheduler(t *testing.T) {
	scheduler := &fakeScheduler{}
	client, err := NewClient(Config{
		Scheduler:      scheduler,
		SimulatedDelay: 1500 * time.Millisecond,
	}, nil)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	start := time.Now()
	_ = client.AnalyzeFailure(context.Background(), failedTxn())
	elapsed := time.Since(start)

	// The fake scheduler means no real waiting happened.
	assert.Less(t, elapsed, 500*time.Millisecond)
	require.Len(t, scheduler.slept, 1)
	assert.Equal(t, 1500*time.Millisecond, scheduler.slept[0])
}

func TestCannedOperationsAreIndependentlyRepeatable(t *testing.T) {
	client := newSimulatedClient(t)
	txn := failedTxn()
	ctx := context.Background()

	// Order between operations carries no state: each produces the same
	// result whenever it is called.
	plan1 := client.GenerateAutoPilotPlan(ctx, txn)
	draft1 := client.DraftVendorEmail(ctx, txn)
	plan2 := client.GenerateAutoPilotPlan(ctx, txn)
	draft2 := client.DraftVendorEmail(ctx, txn)

	assert.Equal(t, plan1, plan2)
	assert.Equal(t, draft1, draft2)
}
