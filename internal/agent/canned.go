package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mosaicfin/reconpilot/internal/common"
	"github.com/mosaicfin/reconpilot/internal/model"
	"github.com/mosaicfin/reconpilot/internal/service"
)

// Fallbacks for free-text operations. The first three substitute for an
// empty response; the verdict substitutes for a validation call failure
// and deliberately contains no APPROVED marker.
const (
	analysisFallback       = "Unable to generate analysis."
	validationFallback     = "Validation failed."
	questionFallback       = "I couldn't process that question."
	validationErrorVerdict = "REJECTED: Unable to validate the proposed adjustment."
)

// cannedProvider produces deterministic responses without any network
// access. Structured intents return JSON so the client's parsing path
// is exercised identically in both modes. A configurable delay
// preserves the perceived latency of a real model call.
type cannedProvider struct {
	scheduler service.Scheduler
	delay     time.Duration
}

func newCannedProvider(delay time.Duration, scheduler service.Scheduler) *cannedProvider {
	if scheduler == nil {
		scheduler = common.NewScheduler()
	}
	return &cannedProvider{delay: delay, scheduler: scheduler}
}

func (p *cannedProvider) Name() string {
	return "canned"
}

// Generate dispatches on the request intent. It only fails when the
// context is canceled during the simulated delay.
func (p *cannedProvider) Generate(ctx context.Context, req Request) (string, error) {
	if p.delay > 0 {
		if err := p.scheduler.Sleep(ctx, p.delay); err != nil {
			return "", err
		}
	}

	switch req.Intent {
	case IntentAnalyze:
		return cannedAnalysis(req.Txn), nil
	case IntentDraft:
		return cannedDraftJSON(req.Txn), nil
	case IntentValidate:
		return cannedValidation, nil
	case IntentQuestion:
		return cannedAnswer(req.Txn, req.Aux), nil
	case IntentPredict:
		return cannedPredictionJSON, nil
	case IntentPlan:
		return cannedPlanJSON(req.Txn), nil
	default:
		return "", fmt.Errorf("unknown intent: %s", req.Intent)
	}
}

// cannedValidation always approves: simulated mode exists to let users
// walk the full workflow, including the RECTIFIED transition.
const cannedValidation = "APPROVED: The proposed adjustment is consistent with the vendor's remittance records and resolves the recorded failure."

const cannedPredictionJSON = `{"score": 88, "label": "High", "rationale": "Remittance-data mismatches of this kind are routinely resolved once the vendor confirms updated details."}`

func cannedAnalysis(txn model.Transaction) string {
	reason := txn.FailureReason
	if reason == "" {
		reason = "No failure reason recorded"
	}

	return fmt.Sprintf(`### Failure Analysis

**Transaction %s** (%s, invoice %s) could not be settled.

**Recorded failure:** %s

**Probable cause:** The remittance details on file for %s no longer
match the receiving bank's records. Mismatches of this kind are most
often caused by a stale routing or account number.

**Recommended steps:**
1. Confirm current remittance details with the vendor.
2. Correct the payment instruction and re-submit.
3. Monitor the next settlement cycle for confirmation.`,
		txn.ID, txn.VendorName, txn.InvoiceID, reason, txn.VendorName)
}

func cannedDraftJSON(txn model.Transaction) string {
	subject := fmt.Sprintf("Action required: failed payment for invoice %s", txn.InvoiceID)
	body := fmt.Sprintf(`Dear %s team,

Our records show that our payment of %.2f %s against invoice %s did not
settle. The recorded failure was: %s.

Could you confirm your current remittance details so we can correct the
payment instruction and re-submit? We apologize for the inconvenience
and expect to resolve this within one settlement cycle.

Kind regards,
Accounts Payable`,
		txn.VendorName, txn.Amount, txn.Currency, txn.InvoiceID, txn.FailureReason)

	data, err := json.Marshal(map[string]string{"subject": subject, "body": body})
	if err != nil {
		// Marshaling a map of strings cannot fail; keep the compiler honest.
		return `{"subject": "Error", "body": "Could not draft email."}`
	}
	return string(data)
}

func cannedAnswer(txn model.Transaction, question string) string {
	answer := fmt.Sprintf("Transaction %s is a payment of %.2f %s to %s against invoice %s, currently %s.",
		txn.ID, txn.Amount, txn.Currency, txn.VendorName, txn.InvoiceID, txn.Status)

	if txn.FailureReason != "" {
		answer += fmt.Sprintf(" The recorded failure reason is: %s.", txn.FailureReason)
	}

	if question != "" {
		answer += " For anything beyond these recorded details, connect a model credential."
	}

	return answer
}

func cannedPlanJSON(txn model.Transaction) string {
	plan := map[string]any{
		"steps": []map[string]string{
			{
				"action":      string(model.ActionAnalyze),
				"description": fmt.Sprintf("Analyze the failure recorded for transaction %s", txn.ID),
			},
			{
				"action":      string(model.ActionEmailVendor),
				"description": fmt.Sprintf("Draft a remittance-details inquiry to %s", txn.VendorName),
			},
			{
				"action":      string(model.ActionRectify),
				"description": "Mark the transaction as under rectification pending vendor confirmation",
			},
		},
		"reasoning": "The failure points at stale vendor remittance data, so analysis, vendor outreach, and rectification in that order give the fastest resolution.",
	}

	data, err := json.Marshal(plan)
	if err != nil {
		return `{"steps": [], "reasoning": "Failed to generate plan"}`
	}
	return string(data)
}
