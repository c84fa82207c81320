package agent

import (
	"fmt"

	"github.com/mosaicfin/reconpilot/internal/model"
)

// System prompts pin each operation to its output contract.
const (
	analyzeSystemPrompt = "You are a senior payments auditor. Produce a concise markdown analysis. Do not invent transaction details."

	draftSystemPrompt = "You are an accounts-payable liaison drafting vendor correspondence. You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, markdown formatting, or commentary before or after the JSON. Start your response directly with { and end with }."

	validateSystemPrompt = "You are a payments controller reviewing proposed corrections. Respond with a single line starting with APPROVED or REJECTED, followed by a one-sentence rationale."

	questionSystemPrompt = "You are a payments auditor answering questions about a single transaction. Answer only from the details provided."

	predictSystemPrompt = "You are a payments controller estimating resolution likelihood. You MUST respond with ONLY a valid JSON object. Start your response directly with { and end with }."

	planSystemPrompt = "You are an automated reconciliation controller. You MUST respond with ONLY a valid JSON object. Start your response directly with { and end with }."
)

// transactionDetails renders the fields shared by every prompt.
func transactionDetails(txn model.Transaction) string {
	details := fmt.Sprintf("Transaction ID: %s\nVendor: %s\nInvoice: %s\nAmount: %.2f %s\nDate: %s\nStatus: %s",
		txn.ID,
		txn.VendorName,
		txn.InvoiceID,
		txn.Amount,
		txn.Currency,
		txn.Date.Format("2006-01-02"),
		txn.Status)

	if txn.VendorEmail != "" {
		details += fmt.Sprintf("\nVendor Email: %s", txn.VendorEmail)
	}

	if txn.FailureReason != "" {
		details += fmt.Sprintf("\nFailure Reason: %s", txn.FailureReason)
	}

	return details
}

func buildAnalyzePrompt(txn model.Transaction) string {
	return fmt.Sprintf(`Analyze why this payment failed and how to resolve it.

Transaction Details:
%s

Instructions:
1. Explain the most probable root cause of the recorded failure.
2. List 2-3 concrete remediation steps in priority order.
3. Keep the analysis under 200 words and format it as markdown with
   a short heading, a root-cause paragraph, and a numbered step list.

Base the analysis strictly on the details above.`,
		transactionDetails(txn))
}

func buildDraftPrompt(txn model.Transaction) string {
	return fmt.Sprintf(`Draft a professional email to the vendor about this failed payment.

Transaction Details:
%s

The email should:
- Reference the invoice number and amount
- Explain that the payment failed and why, without assigning blame
- Ask the vendor to confirm their current remittance details
- Close politely on behalf of the accounts payable team

Respond with JSON in exactly this shape:
{"subject": "<subject line>", "body": "<full email body>"}`,
		transactionDetails(txn))
}

func buildValidatePrompt(txn model.Transaction, adjustment string) string {
	return fmt.Sprintf(`Review this proposed correction for a failed payment.

Transaction Details:
%s

Proposed Adjustment:
%s

Decide whether the adjustment plausibly resolves the recorded failure.
Respond with a single line in exactly this format:
APPROVED: <one-sentence rationale>
or
REJECTED: <one-sentence rationale>`,
		transactionDetails(txn),
		adjustment)
}

func buildQuestionPrompt(txn model.Transaction, question string) string {
	return fmt.Sprintf(`Answer a question about this transaction.

Transaction Details:
%s

Question: %s

Answer in 1-3 sentences using only the details above. If the details do
not contain the answer, say so instead of guessing.`,
		transactionDetails(txn),
		question)
}

func buildPredictPrompt(txn model.Transaction) string {
	return fmt.Sprintf(`Estimate how likely this failed payment is to be resolved without escalation.

Transaction Details:
%s

Consider the failure type: data mismatches (routing numbers, invoice
references) usually resolve quickly, while disputes or missing funds
do not.

Respond with JSON in exactly this shape:
{"score": <integer 0-100>, "label": "<High|Medium|Low>", "rationale": "<one sentence>"}`,
		transactionDetails(txn))
}

func buildPlanPrompt(txn model.Transaction) string {
	return fmt.Sprintf(`Create a resolution plan for this failed payment.

Transaction Details:
%s

Available actions:
- ANALYZE: analyze the failure and record the findings
- EMAIL_VENDOR: draft an inquiry email to the vendor
- RECTIFY: mark the transaction as under rectification

Compose an ordered plan from these actions only. Each step needs a short
human-readable description. Typical plans analyze first, contact the
vendor if their data is implicated, and rectify last.

Respond with JSON in exactly this shape:
{"steps": [{"action": "<ANALYZE|EMAIL_VENDOR|RECTIFY>", "description": "<text>"}], "reasoning": "<one sentence>"}`,
		transactionDetails(txn))
}
