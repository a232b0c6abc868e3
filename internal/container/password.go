// Package container reads the initial root password out of a running GitLab
// container. Omnibus GitLab writes it to /etc/gitlab/initial_root_password on
// first boot and deletes the file after 24 hours.
package container

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/opsglue/glpat/internal/gitlab"
)

const passwordFile = "/etc/gitlab/initial_root_password"

// Execer runs the docker CLI.
type Execer interface {
	ExecDocker(ctx context.Context, args ...string) ([]byte, error)
}

// SystemDocker implements Execer using the local docker binary.
type SystemDocker struct{}

// NewSystemDocker creates a new SystemDocker.
func NewSystemDocker() *SystemDocker {
	return &SystemDocker{}
}

// ExecDocker runs a docker command with the given arguments.
// Uses CombinedOutput to capture stderr where docker writes errors.
// No docker presence check at startup — error surfaces at call time.
func (d *SystemDocker) ExecDocker(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "docker", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("docker %v: %w (output: %s)", args, err, string(output))
	}
	return output, nil
}

// InitialRootPassword extracts the initial root password from the named
// container. Any exec failure or empty result is fatal to the calling flow.
func InitialRootPassword(ctx context.Context, execer Execer, containerName string) (string, error) {
	output, err := execer.ExecDocker(ctx, "exec", containerName, "grep", "Password:", passwordFile)
	if err != nil {
		return "", gitlab.NewError(
			gitlab.ErrPasswordMissing,
			fmt.Sprintf("Could not read %s from container '%s': %v", passwordFile, containerName, err),
			"Is the GitLab container running? The password file is deleted 24h after first boot",
		)
	}

	password := parsePasswordLine(string(output))
	if password == "" {
		return "", gitlab.NewError(
			gitlab.ErrPasswordMissing,
			fmt.Sprintf("No password found in %s", passwordFile),
			"Reset the root password or recreate the container",
		)
	}
	return password, nil
}

// parsePasswordLine extracts the value from a "Password: <value>" line.
func parsePasswordLine(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "Password:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
