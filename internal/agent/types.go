// Package agent implements the model-backed reconciliation agent.
//
// Each operation translates an intent plus a transaction into a prompt,
// invokes a text-generation provider, and normalizes the response into a
// typed result. Both call failures and shape failures are recovered
// locally: every operation returns its documented fallback value instead
// of an error, so a workflow that is mid-sequence never sees a fault.
package agent

import (
	"context"

	"github.com/mosaicfin/reconpilot/internal/model"
)

// Intent identifies which agent capability a request serves.
type Intent string

// Agent intents.
const (
	IntentAnalyze  Intent = "analyze_failure"
	IntentDraft    Intent = "draft_vendor_email"
	IntentValidate Intent = "validate_rectification"
	IntentQuestion Intent = "ask_question"
	IntentPredict  Intent = "predict_resolution"
	IntentPlan     Intent = "generate_plan"
)

// Request is a single generation request handed to a Provider.
type Request struct {
	Txn      model.Transaction
	Intent   Intent
	System   string
	Prompt   string
	Aux      string // Adjustment text or question, depending on intent
	WantJSON bool
}

// Provider turns a request into raw model output text. Remote providers
// call a hosted API; the canned provider produces deterministic output
// so the tool is fully usable without network access.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}
