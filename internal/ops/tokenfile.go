package ops

import (
	"fmt"
	"os"
	"strings"

	"github.com/opsglue/glpat/internal/gitlab"
)

const tokenFileKey = "GITLAB_TOKEN"

// WriteTokenFile persists the token as a single GITLAB_TOKEN=<value> line.
// Mode 0600: the file is a credential.
func WriteTokenFile(path, token string) error {
	line := fmt.Sprintf("%s=%s\n", tokenFileKey, token)
	if err := os.WriteFile(path, []byte(line), 0o600); err != nil {
		return fmt.Errorf("write token file %s: %w", path, err)
	}
	return nil
}

// ReadTokenFile reads the token back. A missing file, missing key, or empty
// value is a coded error — callers check this before any network call.
func ReadTokenFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", gitlab.NewError(
			gitlab.ErrTokenFileEmpty,
			fmt.Sprintf("Token file %s not found", path),
			"Run: glpat create-token",
		)
	}
	if err != nil {
		return "", fmt.Errorf("read token file %s: %w", path, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		value, ok := strings.CutPrefix(strings.TrimSpace(line), tokenFileKey+"=")
		if !ok {
			continue
		}
		if value == "" {
			break
		}
		return value, nil
	}

	return "", gitlab.NewError(
		gitlab.ErrTokenFileEmpty,
		fmt.Sprintf("Token file %s contains no %s value", path, tokenFileKey),
		"Run: glpat create-token",
	)
}
