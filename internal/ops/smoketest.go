package ops

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/opsglue/glpat/internal/gitlab"
)

// SmokeTestDeps are the collaborators of the smoke-test flow.
type SmokeTestDeps struct {
	Client    gitlab.Client
	Logger    hclog.Logger
	TokenFile string

	// now is swappable for deterministic project names in tests.
	now func() time.Time
}

// SmokeTest exercises the GitLab REST API with the locally stored token:
// version probe, private project creation, then best-effort deletion of the
// created project. The delete is always attempted but its failure never
// fails the run — it is cleanup, not a test stage.
func SmokeTest(ctx context.Context, deps SmokeTestDeps) error {
	log := deps.Logger.Named("smoke-test")
	now := deps.now
	if now == nil {
		now = time.Now
	}

	// Token file check comes first; no network I/O without a token.
	token, err := ReadTokenFile(deps.TokenFile)
	if err != nil {
		return err
	}

	info, err := deps.Client.Version(ctx, token)
	if err != nil {
		return fmt.Errorf("version probe: %w", err)
	}
	log.Info("version probe passed", "version", info.Version)

	name := fmt.Sprintf("test-project-%d", now().Unix())
	proj, err := deps.Client.CreateProject(ctx, token, name)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	log.Info("project created", "name", name, "id", proj.ID)

	if err := deps.Client.DeleteProject(ctx, token, proj.ID); err != nil {
		log.Warn("best-effort project cleanup failed", "id", proj.ID, "error", err)
	} else {
		log.Info("project deleted", "id", proj.ID)
	}

	log.Info("all smoke tests passed")
	return nil
}
