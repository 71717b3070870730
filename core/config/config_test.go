package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Load(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T) string // Returns config path
		validate    func(t *testing.T, cfg *Config)
		expectError bool
	}{
		{
			name: "load default config when file doesn't exist",
			setup: func(t *testing.T) string {
				tmpDir := t.TempDir()
				return filepath.Join(tmpDir, "config.yaml")
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.NotNil(t, cfg)
				assert.NotEmpty(t, cfg.Providers)
				assert.Equal(t, "anthropic", cfg.ActiveProvider)
				// Should have default providers
				assert.Contains(t, cfg.Providers, "anthropic")
				assert.Contains(t, cfg.Providers, "openai")
			},
		},
		{
			name: "load existing config file",
			setup: func(t *testing.T) string {
				tmpDir := t.TempDir()
				configPath := filepath.Join(tmpDir, "config.yaml")

				testConfig := `active_provider: custom
providers:
  custom:
    type: openai
    config:
      api_key: test-key
      model: gpt-4o
dataset:
  sample_size: 3
launcher:
  command: /usr/local/bin/streamlit`

				err := os.WriteFile(configPath, []byte(testConfig), 0600)
				require.NoError(t, err)

				return configPath
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.NotNil(t, cfg)
				assert.Equal(t, "custom", cfg.ActiveProvider)
				assert.Contains(t, cfg.Providers, "custom")

				provider := cfg.Providers["custom"]
				assert.Equal(t, "openai", provider.Type)
				assert.Equal(t, "test-key", provider.Config["api_key"])
				assert.Equal(t, "gpt-4o", provider.Config["model"])

				assert.Equal(t, 3, cfg.Dataset.SampleSize)
				assert.Equal(t, "/usr/local/bin/streamlit", cfg.Launcher.Command)
				// Unset endpoints fall back to defaults
				assert.Equal(t, DefaultHubURL, cfg.Dataset.HubURL)
				assert.Equal(t, DefaultServerURL, cfg.Dataset.ServerURL)
			},
		},
		{
			name: "expand environment variables",
			setup: func(t *testing.T) string {
				t.Setenv("TEST_API_KEY", "secret-key-123")

				tmpDir := t.TempDir()
				configPath := filepath.Join(tmpDir, "config.yaml")

				testConfig := `active_provider: anthropic
providers:
  anthropic:
    type: anthropic
    config:
      api_key: ${TEST_API_KEY}
      model: claude-3-7-sonnet-20250219`

				err := os.WriteFile(configPath, []byte(testConfig), 0600)
				require.NoError(t, err)

				return configPath
			},
			validate: func(t *testing.T, cfg *Config) {
				provider := cfg.Providers["anthropic"]
				assert.Equal(t, "secret-key-123", provider.Config["api_key"])
			},
		},
		{
			name: "invalid yaml",
			setup: func(t *testing.T) string {
				tmpDir := t.TempDir()
				configPath := filepath.Join(tmpDir, "config.yaml")

				err := os.WriteFile(configPath, []byte("active_provider: [unclosed"), 0600)
				require.NoError(t, err)

				return configPath
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)

			cfg, err := Load(path)
			if tt.expectError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestConfig_ProviderManagement(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("get existing provider", func(t *testing.T) {
		provider, err := cfg.GetProvider("openai")
		require.NoError(t, err)
		assert.Equal(t, "openai", provider.Type)
	})

	t.Run("get active provider when name empty", func(t *testing.T) {
		provider, err := cfg.GetProvider("")
		require.NoError(t, err)
		assert.Equal(t, "anthropic", provider.Type)
	})

	t.Run("get unknown provider", func(t *testing.T) {
		_, err := cfg.GetProvider("doesnotexist")
		assert.Error(t, err)
	})

	t.Run("set active provider", func(t *testing.T) {
		err := cfg.SetActiveProvider("openai")
		require.NoError(t, err)
		assert.Equal(t, "openai", cfg.ActiveProvider)

		err = cfg.SetActiveProvider("doesnotexist")
		assert.Error(t, err)
	})

	t.Run("add provider", func(t *testing.T) {
		cfg.AddProvider("local", ProviderConfig{
			Type:   "openai",
			Config: map[string]interface{}{"base_url": "http://localhost:8080/v1"},
		})
		assert.Contains(t, cfg.ListProviders(), "local")
	})
}

func TestConfig_CacheDir(t *testing.T) {
	t.Run("explicit dir wins", func(t *testing.T) {
		cfg := &Config{Cache: CacheConfig{Dir: "/tmp/viewers"}}
		assert.Equal(t, "/tmp/viewers", cfg.CacheDir())
	})

	t.Run("defaults under config dir", func(t *testing.T) {
		tmpDir := t.TempDir()
		t.Setenv("DATAVIEWER_CONFIG_DIR", tmpDir)

		cfg := &Config{}
		assert.Equal(t, filepath.Join(tmpDir, "viewers"), cfg.CacheDir())
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := DefaultConfig()
	assert.NoError(t, valid.Validate())

	noActive := &Config{}
	assert.Error(t, noActive.Validate())

	missing := &Config{ActiveProvider: "gone", Providers: map[string]ProviderConfig{}}
	assert.Error(t, missing.Validate())
}

func TestGetConfigValues(t *testing.T) {
	cfg := map[string]interface{}{
		"api_key":     "key",
		"max_tokens":  1500,
		"temperature": 0.0,
	}

	assert.Equal(t, "key", GetStringValue(cfg, "api_key", "fallback"))
	assert.Equal(t, "fallback", GetStringValue(cfg, "missing", "fallback"))
	assert.Equal(t, 1500, GetIntValue(cfg, "max_tokens", 10))
	assert.Equal(t, 10, GetIntValue(cfg, "missing", 10))
}
