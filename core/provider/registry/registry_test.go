package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedricrupb/dataviewer/core/config"
	"github.com/cedricrupb/dataviewer/core/provider"
)

func TestFactory_CreateProvider(t *testing.T) {
	factory := NewFactory()

	tests := []struct {
		name        string
		provider    string
		cfg         *config.ProviderConfig
		expectError bool
		errorIs     error
	}{
		{
			name:     "anthropic provider",
			provider: "anthropic",
			cfg: &config.ProviderConfig{
				Type:   "anthropic",
				Config: map[string]interface{}{"api_key": "sk-ant-test"},
			},
		},
		{
			name:     "openai provider",
			provider: "openai",
			cfg: &config.ProviderConfig{
				Type:   "openai",
				Config: map[string]interface{}{"api_key": "sk-test", "model": "gpt-4o"},
			},
		},
		{
			name:     "missing api key",
			provider: "anthropic",
			cfg: &config.ProviderConfig{
				Type:   "anthropic",
				Config: map[string]interface{}{},
			},
			expectError: true,
			errorIs:     provider.ErrAPIKeyMissing,
		},
		{
			name:        "unsupported type",
			provider:    "ollama",
			cfg:         &config.ProviderConfig{Type: "ollama"},
			expectError: true,
		},
		{
			name:        "nil config",
			provider:    "anthropic",
			cfg:         nil,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := factory.CreateProvider(tt.provider, tt.cfg)
			if tt.expectError {
				assert.Error(t, err)
				if tt.errorIs != nil {
					assert.ErrorIs(t, err, tt.errorIs)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.provider, p.Name())
			assert.True(t, p.Available())
		})
	}
}

func TestManager_GetProvider(t *testing.T) {
	cfg := &config.Config{
		ActiveProvider: "anthropic",
		Providers: map[string]config.ProviderConfig{
			"anthropic": {
				Type:   "anthropic",
				Config: map[string]interface{}{"api_key": "sk-ant-test"},
			},
			"openai": {
				Type:   "openai",
				Config: map[string]interface{}{"api_key": "sk-test"},
			},
		},
	}

	manager := NewManager(cfg)

	t.Run("active provider", func(t *testing.T) {
		p, err := manager.GetActiveProvider()
		require.NoError(t, err)
		assert.Equal(t, "anthropic", p.Name())
	})

	t.Run("instances are cached", func(t *testing.T) {
		first, err := manager.GetProvider("openai")
		require.NoError(t, err)
		second, err := manager.GetProvider("openai")
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := manager.GetProvider("doesnotexist")
		assert.Error(t, err)
	})
}

func TestFromEnvironment(t *testing.T) {
	t.Run("no keys set", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		t.Setenv("OPENAI_API_KEY", "")

		_, err := FromEnvironment()
		assert.ErrorIs(t, err, provider.ErrNoProviderConfigured)
	})

	t.Run("openai key only", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		t.Setenv("OPENAI_API_KEY", "sk-test")

		p, err := FromEnvironment()
		require.NoError(t, err)
		assert.Equal(t, "openai", p.Name())
	})

	t.Run("anthropic takes priority", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
		t.Setenv("OPENAI_API_KEY", "sk-test")

		p, err := FromEnvironment()
		require.NoError(t, err)
		assert.Equal(t, "anthropic", p.Name())
	})
}
