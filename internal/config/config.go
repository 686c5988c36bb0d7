package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Repository Repository    `yaml:"repository"`
	Docs       DocsConfig    `yaml:"docs"`
	Build      BuildConfig   `yaml:"build"`
	Serve      ServeConfig   `yaml:"serve"`
	History    HistoryConfig `yaml:"history"`
}

// Repository represents the API-definition Git repository to process
type Repository struct {
	URL        string      `yaml:"url"`
	Name       string      `yaml:"name,omitempty"`
	Branch     string      `yaml:"branch,omitempty"`
	Auth       *AuthConfig `yaml:"auth,omitempty"`
	ProtoPaths []string    `yaml:"proto_paths,omitempty"` // Paths to proto definitions, defaults to repository root
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Type     string `yaml:"type"` // "ssh", "token", "basic"
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Token    string `yaml:"token,omitempty"`
	KeyPath  string `yaml:"key_path,omitempty"`
}

// DocsConfig controls the generated reference page.
type DocsConfig struct {
	Title        string   `yaml:"title"`
	Description  string   `yaml:"description,omitempty"`
	APIBaseURL   string   `yaml:"api_base_url,omitempty"` // Base URL used in curl/HTTP examples
	Output       string   `yaml:"output,omitempty"`
	ExcludeTypes []string `yaml:"exclude_types,omitempty"` // Qualified type names or prefixes hidden from the Types section
}

// BuildConfig carries clone/update strategy flags.
type BuildConfig struct {
	ShallowDepth      int              `yaml:"shallow_depth,omitempty"`
	MaxRetries        int              `yaml:"max_retries,omitempty"`
	RetryBackoff      RetryBackoffMode `yaml:"retry_backoff,omitempty"`
	RetryInitialDelay string           `yaml:"retry_initial_delay,omitempty"`
	RetryMaxDelay     string           `yaml:"retry_max_delay,omitempty"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr            string `yaml:"addr,omitempty"`
	Metrics         bool   `yaml:"metrics,omitempty"`
	Watch           bool   `yaml:"watch,omitempty"`
	RefreshInterval string `yaml:"refresh_interval,omitempty"` // e.g. "30m"; empty disables scheduled repo refresh
}

// HistoryConfig configures the build history store.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// RetryBackoffMode enumerates backoff growth strategies for transient git failures.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		// Don't fail if .env doesn't exist, just log it
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Docs.Title == "" {
		c.Docs.Title = "API Reference"
	}
	if c.Docs.APIBaseURL == "" {
		c.Docs.APIBaseURL = "https://api.example.com"
	}
	if c.Docs.Output == "" {
		c.Docs.Output = "./api_reference.html"
	}
	if c.Repository.Branch == "" {
		c.Repository.Branch = "main"
	}
	if c.Repository.Name == "" && c.Repository.URL != "" {
		c.Repository.Name = repoNameFromURL(c.Repository.URL)
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = ":8080"
	}
	if c.History.Path == "" {
		c.History.Path = "./protodoc-history.db"
	}
}

// repoNameFromURL derives a directory-safe name from the last URL path segment.
func repoNameFromURL(url string) string {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(url, "/"), ".git")
	if idx := strings.LastIndexAny(trimmed, "/:"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	if trimmed == "" {
		return "api-definitions"
	}
	return trimmed
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Repository: Repository{
			URL:        "https://github.com/example/api-definitions.git",
			Name:       "api-definitions",
			Branch:     "main",
			ProtoPaths: []string{"proto"},
			Auth: &AuthConfig{
				Type:  "token",
				Token: "${GIT_TOKEN}",
			},
		},
		Docs: DocsConfig{
			Title:       "Cloud Ops API Reference",
			Description: "Generated API reference for the cloud operations services",
			APIBaseURL:  "https://api.example.com",
			Output:      "./api_reference.html",
		},
		Build: BuildConfig{
			ShallowDepth:      1,
			MaxRetries:        2,
			RetryBackoff:      RetryBackoffLinear,
			RetryInitialDelay: "500ms",
			RetryMaxDelay:     "10s",
		},
		Serve: ServeConfig{
			Addr:            ":8080",
			Metrics:         true,
			Watch:           true,
			RefreshInterval: "30m",
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
