// Package secrets mirrors the GitLab token into Bitwarden Secrets through
// the bws CLI. The store is strictly optional: every failure here downgrades
// to "store unavailable" and the token remains valid locally.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/hashicorp/go-hclog"
)

// BwsExecer runs the bws CLI.
type BwsExecer interface {
	ExecBws(ctx context.Context, args ...string) ([]byte, error)
}

// SystemBws implements BwsExecer using the local bws binary. The binary
// reads BWS_ACCESS_TOKEN from the ambient environment.
type SystemBws struct{}

// NewSystemBws creates a new SystemBws.
func NewSystemBws() *SystemBws {
	return &SystemBws{}
}

// ExecBws runs a bws command with the given arguments.
// Uses CombinedOutput to capture stderr where bws writes errors.
func (b *SystemBws) ExecBws(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "bws", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("bws %v: %w (output: %s)", args, err, string(output))
	}
	return output, nil
}

// secret is the subset of a bws secret record the gateway reads.
type secret struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ValidateFunc checks a candidate token against the target API.
// A non-nil error means the stored secret is stale.
type ValidateFunc func(ctx context.Context, token string) error

// Store is the Bitwarden Secrets gateway.
type Store struct {
	execer      BwsExecer
	accessToken string
	projectID   string
	logger      hclog.Logger

	// lookPath is swappable for tests.
	lookPath func(file string) (string, error)
}

// NewStore creates a Store. accessToken and projectID may be empty; the
// store then reports unavailable and never invokes bws.
func NewStore(execer BwsExecer, accessToken, projectID string, logger hclog.Logger) *Store {
	return &Store{
		execer:      execer,
		accessToken: accessToken,
		projectID:   projectID,
		logger:      logger.Named("secrets"),
		lookPath:    exec.LookPath,
	}
}

// Available reports whether the store can be used: both credentials set and
// the bws binary on PATH. When false, no bws invocation ever happens.
func (s *Store) Available() bool {
	if s.accessToken == "" || s.projectID == "" {
		return false
	}
	if _, err := s.lookPath("bws"); err != nil {
		return false
	}
	return true
}

// Lookup finds the named secret and validates its value with validate.
// Any store failure or validation failure is a miss, never an error.
func (s *Store) Lookup(ctx context.Context, name string, validate ValidateFunc) (string, bool) {
	if !s.Available() {
		return "", false
	}

	existing, err := s.find(ctx, name)
	if err != nil {
		s.logger.Warn("secret store unavailable", "error", err)
		return "", false
	}
	if existing == nil || existing.Value == "" {
		s.logger.Info("no stored secret", "name", name)
		return "", false
	}

	if err := validate(ctx, existing.Value); err != nil {
		s.logger.Warn("stored secret failed validation, treating as not found",
			"name", name, "error", err)
		return "", false
	}

	s.logger.Info("reusing stored secret", "name", name)
	return existing.Value, true
}

// Save writes the secret, read-before-write: edit when the key exists,
// create otherwise. Callers treat the returned error as best-effort.
func (s *Store) Save(ctx context.Context, name, value string) error {
	if !s.Available() {
		return fmt.Errorf("secret store not configured")
	}

	existing, err := s.find(ctx, name)
	if err != nil {
		return fmt.Errorf("check existing secret: %w", err)
	}

	if existing != nil {
		if _, err := s.execer.ExecBws(ctx, "secret", "edit", existing.ID, "--key", name, "--value", value); err != nil {
			return fmt.Errorf("edit secret: %w", err)
		}
		return nil
	}

	if _, err := s.execer.ExecBws(ctx, "secret", "create", name, value, s.projectID); err != nil {
		return fmt.Errorf("create secret: %w", err)
	}
	return nil
}

// find lists the project's secrets and returns the one matching name, or nil.
func (s *Store) find(ctx context.Context, name string) (*secret, error) {
	output, err := s.execer.ExecBws(ctx, "secret", "list", s.projectID, "--output", "json")
	if err != nil {
		return nil, err
	}

	var list []secret
	if err := json.Unmarshal(output, &list); err != nil {
		return nil, fmt.Errorf("decode bws secret list: %w", err)
	}

	for i := range list {
		if list[i].Key == name {
			return &list[i], nil
		}
	}
	return nil, nil
}
