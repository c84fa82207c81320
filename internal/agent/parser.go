package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mosaicfin/reconpilot/internal/common"
	"github.com/mosaicfin/reconpilot/internal/model"
)

// cleanMarkdownWrapper strips a surrounding markdown code fence from
// model output. Models frequently wrap JSON in ```json blocks even when
// told not to.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	// Drop an optional language tag on the opening fence.
	if idx := strings.Index(content, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(content[:idx])
		if firstLine == "json" || firstLine == "" {
			content = content[idx+1:]
		}
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")

	return strings.TrimSpace(content)
}

// parseEmailDraft extracts a subject/body pair from a JSON response.
func parseEmailDraft(content string) (model.EmailDraft, error) {
	var payload struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}

	content = cleanMarkdownWrapper(content)

	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return model.EmailDraft{}, fmt.Errorf("%w: email draft: %v", common.ErrShapeMismatch, err)
	}

	if payload.Subject == "" && payload.Body == "" {
		return model.EmailDraft{}, fmt.Errorf("%w: email draft has neither subject nor body", common.ErrShapeMismatch)
	}

	return model.EmailDraft{Subject: payload.Subject, Body: payload.Body}, nil
}

// parsePrediction extracts a prediction from a JSON response. The score
// is clamped to [0, 100] and the label is recomputed from the score.
func parsePrediction(content string) (model.PredictionResult, error) {
	var payload struct {
		Label     string  `json:"label"`
		Rationale string  `json:"rationale"`
		Score     float64 `json:"score"`
	}

	content = cleanMarkdownWrapper(content)

	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return model.PredictionResult{}, fmt.Errorf("%w: prediction: %v", common.ErrShapeMismatch, err)
	}

	score := int(payload.Score)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return model.PredictionResult{
		Score:     score,
		Label:     model.LabelForScore(score),
		Rationale: payload.Rationale,
	}, nil
}

// parsePlan extracts an auto-pilot plan from a JSON response. Any step
// with an unrecognized action makes the whole plan invalid: a bad
// action is a contract violation, not something to skip over silently.
func parsePlan(content string) (model.Plan, error) {
	var payload struct {
		Reasoning string `json:"reasoning"`
		Steps     []struct {
			Action      string `json:"action"`
			Description string `json:"description"`
		} `json:"steps"`
	}

	content = cleanMarkdownWrapper(content)

	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return model.Plan{}, fmt.Errorf("%w: plan: %v", common.ErrShapeMismatch, err)
	}

	plan := model.Plan{
		Reasoning: payload.Reasoning,
		Steps:     make([]model.PlanStep, 0, len(payload.Steps)),
	}

	for i, step := range payload.Steps {
		action, err := model.ParsePlanAction(step.Action)
		if err != nil {
			return model.Plan{}, fmt.Errorf("%w: plan step %d: %v", common.ErrShapeMismatch, i, err)
		}
		plan.Steps = append(plan.Steps, model.PlanStep{
			Action:      action,
			Description: step.Description,
		})
	}

	return plan, nil
}
