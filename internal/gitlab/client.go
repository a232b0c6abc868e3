// Package gitlab talks to a GitLab instance two ways: its REST API v4 for the
// smoke-test probes, and its web UI session flow for minting a personal
// access token. Neither path uses a GitLab client library — both are thin,
// explicit HTTP sequences.
package gitlab

import (
	"context"
	"time"
)

// DefaultTimeout bounds every HTTP request made by this package.
const DefaultTimeout = 30 * time.Second

// Client is the REST surface the smoke tests exercise.
type Client interface {
	// Version probes GET /version with the token as bearer credential.
	Version(ctx context.Context, token string) (*VersionInfo, error)

	// CreateProject creates a private project and returns its id.
	CreateProject(ctx context.Context, token, name string) (*Project, error)

	// DeleteProject deletes a project by id. Callers may treat failure as
	// best-effort cleanup.
	DeleteProject(ctx context.Context, token string, id int) error
}

// VersionInfo is the response of GET /api/v4/version.
type VersionInfo struct {
	Version  string `json:"version"`
	Revision string `json:"revision"`
}

// Project is the subset of a GitLab project the smoke tests care about.
type Project struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Visibility string `json:"visibility"`
}
