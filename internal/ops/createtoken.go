// Package ops holds the glpat flows. Each flow is a plain function taking
// its collaborators as interfaces; all of them run strictly sequentially and
// fail closed on the first hard error.
package ops

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/opsglue/glpat/internal/container"
	"github.com/opsglue/glpat/internal/gitlab"
	"github.com/opsglue/glpat/internal/secrets"
)

// TokenMinter mints a personal access token via the web UI
// (satisfied by *gitlab.WebClient).
type TokenMinter interface {
	MintToken(ctx context.Context, password string) (string, error)
}

// SecretStore is the optional persistence layer
// (satisfied by *secrets.Store).
type SecretStore interface {
	Available() bool
	Lookup(ctx context.Context, name string, validate secrets.ValidateFunc) (string, bool)
	Save(ctx context.Context, name, value string) error
}

// CreateTokenDeps are the collaborators of the token-creation flow.
type CreateTokenDeps struct {
	Client gitlab.Client
	Minter TokenMinter
	Docker container.Execer
	Store  SecretStore
	Logger hclog.Logger

	ContainerName string
	SecretName    string
	TokenFile     string
}

// CreateToken obtains a GitLab personal access token and persists it to the
// token file. A valid stored secret short-circuits the web-scraping path;
// otherwise the flow reads the initial root password from the container,
// drives the web UI, writes the token file, and best-effort mirrors the
// token to the secret store.
func CreateToken(ctx context.Context, deps CreateTokenDeps) error {
	log := deps.Logger.Named("create-token")

	validate := func(ctx context.Context, token string) error {
		_, err := deps.Client.Version(ctx, token)
		return err
	}

	if deps.Store.Available() {
		if token, ok := deps.Store.Lookup(ctx, deps.SecretName, validate); ok {
			log.Info("valid token found in secret store, skipping creation")
			return WriteTokenFile(deps.TokenFile, token)
		}
		log.Info("no valid stored token, creating a new one")
	} else {
		log.Info("secret store not configured, local-only mode")
	}

	log.Info("reading initial root password", "container", deps.ContainerName)
	password, err := container.InitialRootPassword(ctx, deps.Docker, deps.ContainerName)
	if err != nil {
		return err
	}

	log.Info("minting token via web UI")
	token, err := deps.Minter.MintToken(ctx, password)
	if err != nil {
		return err
	}

	if err := WriteTokenFile(deps.TokenFile, token); err != nil {
		return err
	}
	log.Info("token written", "file", deps.TokenFile)

	// Mirroring is best-effort: the token is already valid locally.
	if deps.Store.Available() {
		if err := deps.Store.Save(ctx, deps.SecretName, token); err != nil {
			log.Warn("could not mirror token to secret store", "error", err)
		} else {
			log.Info("token mirrored to secret store", "name", deps.SecretName)
		}
	}

	return nil
}
