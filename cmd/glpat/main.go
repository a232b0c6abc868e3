// Command glpat bootstraps a GitLab personal access token and smoke-tests
// the instance with it.
//
// glpat create-token   mint a PAT via the web UI and persist it
// glpat test           run API smoke tests with the persisted token (default)
// glpat full           create-token, then test
// glpat version        print the tool version
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"

	"github.com/opsglue/glpat/internal/config"
	"github.com/opsglue/glpat/internal/container"
	"github.com/opsglue/glpat/internal/gitlab"
	"github.com/opsglue/glpat/internal/ops"
	"github.com/opsglue/glpat/internal/secrets"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches the single positional argument. No argument means "test".
func run(args []string) int {
	command := "test"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "version":
		fmt.Fprintf(os.Stdout, "glpat %s\n", Version)
		return 0
	case "create-token", "test", "full":
		// handled below
	default:
		usage()
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, command); err != nil {
		reportError(err)
		return 1
	}
	return 0
}

// execute wires the components and runs the selected flow(s).
func execute(ctx context.Context, command string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "glpat",
		Level:  hclog.Info,
		Output: os.Stderr,
	})

	client := gitlab.NewAPIClient(cfg.APIURL())
	store := secrets.NewStore(secrets.NewSystemBws(), cfg.BwsAccessToken, cfg.BwsProjectID, logger)

	if command == "create-token" || command == "full" {
		deps := ops.CreateTokenDeps{
			Client:        client,
			Minter:        gitlab.NewWebClient(cfg.BaseURL, cfg.RootUser),
			Docker:        container.NewSystemDocker(),
			Store:         store,
			Logger:        logger,
			ContainerName: cfg.ContainerName,
			SecretName:    cfg.SecretName(),
			TokenFile:     cfg.TokenFile,
		}
		if err := ops.CreateToken(ctx, deps); err != nil {
			return fmt.Errorf("create-token: %w", err)
		}
	}

	if command == "test" || command == "full" {
		deps := ops.SmokeTestDeps{
			Client:    client,
			Logger:    logger,
			TokenFile: cfg.TokenFile,
		}
		if err := ops.SmokeTest(ctx, deps); err != nil {
			return fmt.Errorf("test: %w", err)
		}
	}

	return nil
}

// reportError prints a coded error with its suggestion, or the plain error.
func reportError(err error) {
	var glErr *gitlab.Error
	if errors.As(err, &glErr) {
		fmt.Fprintf(os.Stderr, "Error [%s]: %s\n", glErr.Code, glErr.Message)
		if glErr.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "  %s\n", glErr.Suggestion)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: glpat [create-token|test|full|version]

  create-token   obtain a GitLab personal access token and persist it
  test           run API smoke tests with the persisted token (default)
  full           create-token, then test
  version        print the tool version
`)
}
