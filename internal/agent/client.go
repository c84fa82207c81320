package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mosaicfin/reconpilot/internal/common"
	"github.com/mosaicfin/reconpilot/internal/model"
	"github.com/mosaicfin/reconpilot/internal/service"
)

// Config holds configuration for the agent client.
type Config struct {
	Scheduler      service.Scheduler
	Provider       string
	APIKey         string
	Model          string
	MaxRetries     int
	RetryDelay     time.Duration
	CacheTTL       time.Duration
	RateLimit      int
	Temperature    float64
	MaxTokens      int
	SimulatedDelay time.Duration
}

// Client issues agent operations against a single provider chosen at
// construction. An empty APIKey selects the canned provider; this is a
// first-class simulated mode, not an error path.
type Client struct {
	provider  Provider
	cache     *responseCache
	logger    *slog.Logger
	cfg       Config
	retryOpts service.RetryOptions
	simulated bool
}

// NewClient creates an agent client for the given configuration.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var provider Provider
	var simulated bool
	var err error

	if cfg.APIKey == "" {
		provider = newCannedProvider(cfg.SimulatedDelay, cfg.Scheduler)
		simulated = true
	} else {
		switch strings.ToLower(cfg.Provider) {
		case "", "anthropic":
			provider, err = newAnthropicProvider(cfg)
		case "openai":
			provider, err = newOpenAIProvider(cfg)
		default:
			return nil, fmt.Errorf("%w: unsupported agent provider %q", common.ErrInvalidConfig, cfg.Provider)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create agent provider: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Client{
		provider:  provider,
		cache:     newResponseCache(cfg.CacheTTL),
		logger:    logger,
		cfg:       cfg,
		retryOpts: retryOpts,
		simulated: simulated,
	}, nil
}

// NewClientWithProvider creates a client around an explicit provider.
// Used by tests to inject scripted providers.
func NewClientWithProvider(provider Provider, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		provider:  provider,
		cache:     newResponseCache(time.Minute),
		logger:    logger,
		retryOpts: service.RetryOptions{MaxAttempts: 1, InitialDelay: time.Millisecond},
	}
}

// WithCredential returns a new client using the given API key, leaving
// the receiver untouched. An empty key switches to simulated mode. The
// caller is responsible for closing the previous client.
func (c *Client) WithCredential(apiKey string) (*Client, error) {
	cfg := c.cfg
	cfg.APIKey = apiKey
	return NewClient(cfg, c.logger)
}

// Simulated reports whether the client runs without a credential.
func (c *Client) Simulated() bool {
	return c.simulated
}

// ProviderName returns the name of the active provider.
func (c *Client) ProviderName() string {
	return c.provider.Name()
}

// Close stops background goroutines and releases provider resources.
func (c *Client) Close() error {
	if c.cache != nil {
		c.cache.Close()
	}
	if closer, ok := c.provider.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// generate runs one provider call with retry. The caller maps any
// residual error to the operation's sentinel value.
func (c *Client) generate(ctx context.Context, req Request) (string, error) {
	var out string

	err := common.WithRetry(ctx, func() error {
		text, err := c.provider.Generate(ctx, req)
		if err != nil {
			c.logger.Warn("agent call attempt failed",
				"intent", req.Intent,
				"transaction_id", req.Txn.ID,
				"error", err)
			return &common.RetryableError{Err: err, Retryable: true}
		}
		out = text
		return nil
	}, c.retryOpts)

	return out, err
}

// AnalyzeFailure produces a markdown analysis of why the transaction
// failed. Call failures degrade to the deterministic analysis used in
// simulated mode; the operation never raises.
func (c *Client) AnalyzeFailure(ctx context.Context, txn model.Transaction) string {
	key := cacheKey(IntentAnalyze, txn.ID)
	if cached, found := c.cache.get(key); found {
		c.logger.Debug("analysis cache hit", "transaction_id", txn.ID)
		return cached
	}

	text, err := c.generate(ctx, Request{
		Intent: IntentAnalyze,
		Txn:    txn,
		System: analyzeSystemPrompt,
		Prompt: buildAnalyzePrompt(txn),
	})
	if err != nil {
		c.logger.Warn("analysis unavailable, substituting canned analysis",
			"transaction_id", txn.ID,
			"error", err)
		return cannedAnalysis(txn)
	}

	if strings.TrimSpace(text) == "" {
		return analysisFallback
	}

	c.cache.set(key, text)

	c.logger.Info("failure analysis generated",
		"transaction_id", txn.ID,
		"vendor", txn.VendorName,
		"provider", c.provider.Name())

	return text
}

// DraftVendorEmail drafts an inquiry email to the vendor about the
// failed payment. A call or parse failure yields the documented error
// draft rather than a fault.
func (c *Client) DraftVendorEmail(ctx context.Context, txn model.Transaction) model.EmailDraft {
	errorDraft := model.EmailDraft{Subject: "Error", Body: "Could not draft email."}

	text, err := c.generate(ctx, Request{
		Intent:   IntentDraft,
		Txn:      txn,
		System:   draftSystemPrompt,
		Prompt:   buildDraftPrompt(txn),
		WantJSON: true,
	})
	if err != nil {
		return errorDraft
	}

	draft, err := parseEmailDraft(text)
	if err != nil {
		c.logger.Warn("email draft did not parse",
			"transaction_id", txn.ID,
			"error", err)
		return errorDraft
	}

	c.logger.Info("vendor email drafted",
		"transaction_id", txn.ID,
		"vendor", txn.VendorName,
		"subject", draft.Subject)

	return draft
}

// ValidateRectification asks the agent to approve or reject a proposed
// adjustment. The verdict starts with APPROVED or REJECTED; callers
// should use IsApproved rather than inspect the text themselves.
func (c *Client) ValidateRectification(ctx context.Context, txn model.Transaction, adjustment string) string {
	text, err := c.generate(ctx, Request{
		Intent: IntentValidate,
		Txn:    txn,
		System: validateSystemPrompt,
		Prompt: buildValidatePrompt(txn, adjustment),
		Aux:    adjustment,
	})
	if err != nil {
		return validationErrorVerdict
	}

	if strings.TrimSpace(text) == "" {
		return validationFallback
	}

	return text
}

// AskQuestion answers a free-form question about the transaction.
func (c *Client) AskQuestion(ctx context.Context, txn model.Transaction, question string) string {
	text, err := c.generate(ctx, Request{
		Intent: IntentQuestion,
		Txn:    txn,
		System: questionSystemPrompt,
		Prompt: buildQuestionPrompt(txn, question),
		Aux:    question,
	})
	if err != nil || strings.TrimSpace(text) == "" {
		return questionFallback
	}

	return text
}

// PredictResolution estimates how likely the failed transaction is to
// be resolved. The label is always derived from the score, never taken
// from the model, so the two cannot contradict each other.
func (c *Client) PredictResolution(ctx context.Context, txn model.Transaction) model.PredictionResult {
	fallback := model.PredictionResult{
		Score:     50,
		Label:     model.LabelMedium,
		Rationale: "Estimation unavailable",
	}

	text, err := c.generate(ctx, Request{
		Intent:   IntentPredict,
		Txn:      txn,
		System:   predictSystemPrompt,
		Prompt:   buildPredictPrompt(txn),
		WantJSON: true,
	})
	if err != nil {
		return fallback
	}

	result, err := parsePrediction(text)
	if err != nil {
		c.logger.Warn("prediction did not parse",
			"transaction_id", txn.ID,
			"error", err)
		return fallback
	}

	c.logger.Info("resolution likelihood predicted",
		"transaction_id", txn.ID,
		"score", result.Score,
		"label", result.Label)

	return result
}

// GenerateAutoPilotPlan requests a multi-step resolution plan. Failures
// yield an empty plan, which the runner treats as immediate completion.
func (c *Client) GenerateAutoPilotPlan(ctx context.Context, txn model.Transaction) model.Plan {
	fallback := model.Plan{Reasoning: "Failed to generate plan"}

	text, err := c.generate(ctx, Request{
		Intent:   IntentPlan,
		Txn:      txn,
		System:   planSystemPrompt,
		Prompt:   buildPlanPrompt(txn),
		WantJSON: true,
	})
	if err != nil {
		return fallback
	}

	plan, err := parsePlan(text)
	if err != nil {
		c.logger.Warn("auto-pilot plan did not parse",
			"transaction_id", txn.ID,
			"error", err)
		return fallback
	}

	c.logger.Info("auto-pilot plan generated",
		"transaction_id", txn.ID,
		"steps", len(plan.Steps))

	return plan
}

// IsApproved reports whether a validation verdict counts as approval.
// Anything that does not contain the APPROVED marker, including the
// call-failure verdict, is non-approval.
func IsApproved(verdict string) bool {
	return strings.Contains(verdict, "APPROVED")
}

func cacheKey(intent Intent, transactionID string) string {
	return string(intent) + ":" + transactionID
}
