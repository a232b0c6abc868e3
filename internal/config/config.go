// Package config resolves glpat configuration from built-in defaults, an
// optional glpat.yml in the working directory, and environment variables —
// in that order, later sources winning. The resulting Config is passed
// explicitly into every component; nothing reads the environment ad hoc.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	defaultNetwork     = "local"
	defaultEnvironment = "dev"
	defaultService     = "gitlab"
	defaultBaseURL     = "http://localhost:8080"
	defaultTokenFile   = ".gitlab_token"
	defaultContainer   = "gitlab"
	defaultRootUser    = "root"

	// ConfigFile is looked up in the working directory; absence is fine.
	ConfigFile = "glpat.yml"

	secretNameSuffix = "gitlab_api_key"
)

// Config holds everything the flows need. Values are not validated —
// malformed inputs propagate into the derived names and URLs unchanged.
type Config struct {
	Network     string
	Environment string
	Service     string

	BaseURL       string
	TokenFile     string
	ContainerName string
	RootUser      string

	BwsAccessToken string
	BwsProjectID   string
}

// fileConfig is the yaml schema of glpat.yml. All fields are optional.
type fileConfig struct {
	BaseURL   string `yaml:"base_url"`
	TokenFile string `yaml:"token_file"`
	Container string `yaml:"container"`
	RootUser  string `yaml:"root_user"`
}

// Load resolves the full configuration. A missing glpat.yml is not an error;
// a present but unparsable one is — an operator wrote it deliberately.
func Load() (*Config, error) {
	cfg := &Config{
		Network:       defaultNetwork,
		Environment:   defaultEnvironment,
		Service:       defaultService,
		BaseURL:       defaultBaseURL,
		TokenFile:     defaultTokenFile,
		ContainerName: defaultContainer,
		RootUser:      defaultRootUser,
	}

	if err := cfg.applyFile(ConfigFile); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyFile overlays glpat.yml values when the file exists.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if fc.BaseURL != "" {
		c.BaseURL = fc.BaseURL
	}
	if fc.TokenFile != "" {
		c.TokenFile = fc.TokenFile
	}
	if fc.Container != "" {
		c.ContainerName = fc.Container
	}
	if fc.RootUser != "" {
		c.RootUser = fc.RootUser
	}
	return nil
}

// applyEnv overlays environment variables. Env always wins over the file.
func (c *Config) applyEnv() {
	c.Network = envOrDefault("NETWORK", c.Network)
	c.Environment = envOrDefault("ENVIRONMENT", c.Environment)
	c.Service = envOrDefault("SERVICE", c.Service)
	c.BaseURL = envOrDefault("GITLAB_URL", c.BaseURL)
	c.ContainerName = envOrDefault("GITLAB_CONTAINER", c.ContainerName)
	c.BwsAccessToken = os.Getenv("BWS_ACCESS_TOKEN")
	c.BwsProjectID = os.Getenv("BWS_PROJECT_ID")
}

// SecretName derives the secret-store key for this deployment.
func (c *Config) SecretName() string {
	return fmt.Sprintf("%s_%s_%s_%s", c.Network, c.Environment, c.Service, secretNameSuffix)
}

// APIURL is the REST API v4 root under the web base URL.
func (c *Config) APIURL() string {
	return c.BaseURL + "/api/v4"
}

// envOrDefault returns the env var value or a default if unset or empty.
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
