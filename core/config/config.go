package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	ActiveProvider string                    `yaml:"active_provider"`
	Providers      map[string]ProviderConfig `yaml:"providers"`
	Dataset        DatasetConfig             `yaml:"dataset,omitempty"`
	Cache          CacheConfig               `yaml:"cache,omitempty"`
	Launcher       LauncherConfig            `yaml:"launcher,omitempty"`
	configPath     string                    // Path to config file
}

// ProviderConfig represents a provider configuration
type ProviderConfig struct {
	Type   string                 `yaml:"type"`   // anthropic, openai
	Config map[string]interface{} `yaml:"config"` // Provider-specific config
}

// DatasetConfig holds the Hugging Face endpoint configuration
type DatasetConfig struct {
	HubURL     string `yaml:"hub_url,omitempty"`     // Hub API base URL
	ServerURL  string `yaml:"server_url,omitempty"`  // datasets-server base URL
	SampleSize int    `yaml:"sample_size,omitempty"` // Rows sampled for the schema summary
}

// CacheConfig holds the viewer cache configuration
type CacheConfig struct {
	Dir string `yaml:"dir,omitempty"` // Directory for cached viewer scripts
}

// LauncherConfig holds the viewer launcher configuration
type LauncherConfig struct {
	Command string `yaml:"command,omitempty"` // Web-app runner binary (default: streamlit)
}

// Defaults for zero-valued settings.
const (
	DefaultHubURL          = "https://huggingface.co"
	DefaultServerURL       = "https://datasets-server.huggingface.co"
	DefaultSampleSize      = 5
	DefaultLauncherCommand = "streamlit"
)

// DefaultConfigDir returns the configuration directory, honoring
// DATAVIEWER_CONFIG_DIR for tests and non-standard setups.
func DefaultConfigDir() string {
	if dir := os.Getenv("DATAVIEWER_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dataviewer"
	}
	return filepath.Join(home, ".dataviewer")
}

// DefaultConfigPath returns the default config file path
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	// Create config directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if config file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Create default config
		cfg := DefaultConfig()
		cfg.configPath = path
		// Try to save the default config
		if saveErr := cfg.Save(); saveErr != nil {
			// If save fails, just return the default config
			return cfg, nil
		}
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.configPath = path

	// Expand environment variables in config values
	cfg.expandEnvVars()
	cfg.applyDefaults()

	return &cfg, nil
}

// Save saves configuration to file
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = DefaultConfigPath()
	}

	// Ensure directory exists
	dir := filepath.Dir(c.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to YAML
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file with secure permissions (API keys may be inlined)
	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveToFile saves the configuration to a specific file
func SaveToFile(c *Config, filename string) error {
	// Ensure directory exists
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetProvider returns the configuration for a specific provider
func (c *Config) GetProvider(name string) (*ProviderConfig, error) {
	if name == "" {
		name = c.ActiveProvider
	}

	provider, ok := c.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider '%s' not found", name)
	}

	return &provider, nil
}

// SetActiveProvider sets the active provider
func (c *Config) SetActiveProvider(name string) error {
	if _, ok := c.Providers[name]; !ok {
		return fmt.Errorf("provider '%s' not found", name)
	}
	c.ActiveProvider = name
	return nil
}

// AddProvider adds or updates a provider configuration
func (c *Config) AddProvider(name string, config ProviderConfig) {
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	c.Providers[name] = config
}

// ListProviders returns a list of configured provider names
func (c *Config) ListProviders() []string {
	providers := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		providers = append(providers, name)
	}
	return providers
}

// CacheDir returns the directory for cached viewer scripts
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return os.ExpandEnv(c.Cache.Dir)
	}
	return filepath.Join(DefaultConfigDir(), "viewers")
}

// expandEnvVars expands environment variables in config values
func (c *Config) expandEnvVars() {
	for _, provider := range c.Providers {
		for key, value := range provider.Config {
			if strValue, ok := value.(string); ok {
				// Expand environment variables like ${VAR} or $VAR
				expanded := os.ExpandEnv(strValue)
				provider.Config[key] = expanded
			}
		}
	}
}

// applyDefaults fills zero-valued settings with their defaults
func (c *Config) applyDefaults() {
	if c.Dataset.HubURL == "" {
		c.Dataset.HubURL = DefaultHubURL
	}
	if c.Dataset.ServerURL == "" {
		c.Dataset.ServerURL = DefaultServerURL
	}
	if c.Dataset.SampleSize <= 0 {
		c.Dataset.SampleSize = DefaultSampleSize
	}
	if c.Launcher.Command == "" {
		c.Launcher.Command = DefaultLauncherCommand
	}
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	cfg := &Config{
		ActiveProvider: "anthropic",
		Providers: map[string]ProviderConfig{
			"anthropic": {
				Type: "anthropic",
				Config: map[string]interface{}{
					"api_key": "${ANTHROPIC_API_KEY}",
					"model":   "claude-3-7-sonnet-20250219",
				},
			},
			"openai": {
				Type: "openai",
				Config: map[string]interface{}{
					"api_key": "${OPENAI_API_KEY}",
					"model":   "gpt-4o",
				},
			},
		},
	}
	cfg.expandEnvVars()
	cfg.applyDefaults()
	return cfg
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.ActiveProvider == "" {
		return fmt.Errorf("no active provider configured")
	}
	provider, ok := c.Providers[c.ActiveProvider]
	if !ok {
		return fmt.Errorf("active provider '%s' not found in providers", c.ActiveProvider)
	}
	if provider.Type == "" {
		return fmt.Errorf("provider '%s' has no type", c.ActiveProvider)
	}
	return nil
}

// GetStringValue safely gets a string value from provider config with a default
func GetStringValue(config map[string]interface{}, key string, defaultValue string) string {
	if value, ok := config[key]; ok {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

// GetIntValue safely gets an int value from provider config with a default
func GetIntValue(config map[string]interface{}, key string, defaultValue int) int {
	if value, ok := config[key]; ok {
		switch v := value.(type) {
		case int:
			return v
		case float64:
			return int(v)
		}
	}
	return defaultValue
}
