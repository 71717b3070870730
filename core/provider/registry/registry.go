// Package registry constructs provider instances from configuration or the
// environment. It lives below the provider package so that the shared
// provider types stay import-free of the concrete implementations.
package registry

import (
	"fmt"
	"os"

	"github.com/cedricrupb/dataviewer/core/config"
	"github.com/cedricrupb/dataviewer/core/provider"
	"github.com/cedricrupb/dataviewer/core/provider/anthropic"
	"github.com/cedricrupb/dataviewer/core/provider/openai"
)

// Factory is responsible for creating provider instances
type Factory struct{}

// NewFactory creates a new provider factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateProvider creates a provider instance based on configuration
func (f *Factory) CreateProvider(name string, cfg *config.ProviderConfig) (provider.Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("provider config is nil")
	}

	switch cfg.Type {
	case string(provider.ProviderTypeAnthropic):
		return anthropic.NewProvider(name, cfg.Config)
	case string(provider.ProviderTypeOpenAI):
		return openai.NewProvider(name, cfg.Config)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Type)
	}
}

// Manager manages provider instances and configuration
type Manager struct {
	config    *config.Config
	factory   *Factory
	providers map[string]provider.Provider
}

// NewManager creates a new provider manager
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		config:    cfg,
		factory:   NewFactory(),
		providers: make(map[string]provider.Provider),
	}
}

// GetProvider returns a provider instance, creating it if necessary
func (m *Manager) GetProvider(name string) (provider.Provider, error) {
	if name == "" {
		name = m.config.ActiveProvider
	}

	// Check if provider is already created
	if p, exists := m.providers[name]; exists {
		return p, nil
	}

	providerConfig, err := m.config.GetProvider(name)
	if err != nil {
		return nil, err
	}

	p, err := m.factory.CreateProvider(name, providerConfig)
	if err != nil {
		return nil, err
	}

	m.providers[name] = p
	return p, nil
}

// GetActiveProvider returns the active provider
func (m *Manager) GetActiveProvider() (provider.Provider, error) {
	return m.GetProvider(m.config.ActiveProvider)
}

// ListProviders returns the names of all configured providers
func (m *Manager) ListProviders() []string {
	return m.config.ListProviders()
}

// FromEnvironment resolves a provider from the execution environment,
// decided once at startup: ANTHROPIC_API_KEY wins over OPENAI_API_KEY.
// The returned value is threaded explicitly through the pipeline; nothing
// downstream reads the environment again.
func FromEnvironment() (provider.Provider, error) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return anthropic.NewProvider("anthropic", map[string]interface{}{
			"api_key": key,
		})
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return openai.NewProvider("openai", map[string]interface{}{
			"api_key": key,
		})
	}
	return nil, provider.ErrNoProviderConfigured
}
