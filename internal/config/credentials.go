package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// CredentialStore persists a user-set API key override on disk and
// resolves the effective credential for the agent client.
//
// Resolution order: stored override, then the configured default, then
// environment variables. An empty result means no credential is
// available and the agent runs in simulated mode.
type CredentialStore struct {
	path string
}

// storedCredential is the on-disk format of the override file.
type storedCredential struct {
	APIKey string `json:"api_key"`
}

// NewCredentialStore creates a store backed by the given file path.
func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: ExpandPath(path)}
}

// DefaultCredentialPath returns the standard location of the override file.
func DefaultCredentialPath() string {
	return "~/.config/reconpilot/credentials.json"
}

// Set writes the API key override, replacing any previous value.
func (s *CredentialStore) Set(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("api key must not be empty")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	data, err := json.MarshalIndent(storedCredential{APIKey: apiKey}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}

	return nil
}

// Clear removes the stored override. Clearing an absent override is not
// an error.
func (s *CredentialStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credential file: %w", err)
	}
	return nil
}

// Stored returns the persisted override, or empty if none exists.
func (s *CredentialStore) Stored() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read credential file: %w", err)
	}

	var cred storedCredential
	if err := json.Unmarshal(data, &cred); err != nil {
		return "", fmt.Errorf("failed to parse credential file: %w", err)
	}

	return cred.APIKey, nil
}

// Resolve returns the effective credential: the stored override if
// present, otherwise the configured default, otherwise the first
// non-empty environment variable from envVars.
func (s *CredentialStore) Resolve(configured string, envVars ...string) (string, error) {
	stored, err := s.Stored()
	if err != nil {
		return "", err
	}
	if stored != "" {
		return stored, nil
	}

	if configured != "" {
		return configured, nil
	}

	for _, name := range envVars {
		if value := os.Getenv(name); value != "" {
			return value, nil
		}
	}

	return "", nil
}
