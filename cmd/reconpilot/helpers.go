package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mosaicfin/reconpilot/internal/agent"
	"github.com/mosaicfin/reconpilot/internal/common"
	"github.com/mosaicfin/reconpilot/internal/config"
	"github.com/mosaicfin/reconpilot/internal/model"
	"github.com/mosaicfin/reconpilot/internal/service"
	"github.com/mosaicfin/reconpilot/internal/storage"
	"github.com/spf13/viper"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/reconpilot/reconpilot.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// credentialStore returns the store for the user-set API key override.
func credentialStore() *config.CredentialStore {
	path := viper.GetString("agent.credential_path")
	if path == "" {
		path = config.DefaultCredentialPath()
	}
	return config.NewCredentialStore(path)
}

// createAgentClient builds the agent client from configuration. With no
// resolvable credential it comes up in simulated mode, which is a fully
// supported way to run.
func createAgentClient() (*agent.Client, error) {
	provider := viper.GetString("agent.provider")
	if provider == "" {
		provider = "anthropic"
	}

	var envVars []string
	switch provider {
	case "anthropic":
		envVars = []string{"ANTHROPIC_API_KEY"}
	case "openai":
		envVars = []string{"OPENAI_API_KEY"}
	default:
		envVars = []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY"}
	}

	apiKey, err := credentialStore().Resolve(viper.GetString("agent.api_key"), envVars...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve agent credential: %w", err)
	}

	cfg := agent.Config{
		Provider:       provider,
		APIKey:         apiKey,
		Model:          viper.GetString("agent.model"),
		Temperature:    viper.GetFloat64("agent.temperature"),
		MaxTokens:      viper.GetInt("agent.max_tokens"),
		MaxRetries:     viper.GetInt("agent.max_retries"),
		RetryDelay:     viper.GetDuration("agent.retry_delay"),
		CacheTTL:       viper.GetDuration("agent.cache_ttl"),
		RateLimit:      viper.GetInt("agent.rate_limit"),
		SimulatedDelay: viper.GetDuration("agent.simulated_delay"),
	}

	return agent.NewClient(cfg, nil)
}

// loadTransaction fetches a single transaction by ID.
func loadTransaction(ctx context.Context, store service.Storage, id string) (*model.Transaction, error) {
	txn, err := store.GetTransactionByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewUserError(
			fmt.Sprintf("transaction %s not found; run 'reconpilot transactions list' to see known IDs", id), err)
	}
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", id, err)
	}
	return txn, nil
}

// recordAgentAction appends an audit entry for a CLI-invoked agent
// operation.
func recordAgentAction(ctx context.Context, store service.Storage, txnID string, role model.Role, action, details string, meta map[string]string) error {
	return store.AppendAuditEntry(ctx, &model.AuditLogEntry{
		ID:            uuid.NewString(),
		TransactionID: txnID,
		Timestamp:     time.Now().UTC(),
		Role:          role,
		Action:        action,
		Details:       details,
		Metadata:      meta,
	})
}
