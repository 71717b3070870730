package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider defines the interface for code-generating LLM providers
type Provider interface {
	// GenerateCode sends a single completion request and returns the raw
	// response text. Exactly one network call per invocation; retries are
	// left to the caller.
	GenerateCode(ctx context.Context, req *CodeRequest) (*CodeResponse, error)

	// Name returns the provider name
	Name() string

	// Available checks if the provider is configured and usable
	Available() bool
}

// CodeRequest represents a single code-generation request
type CodeRequest struct {
	System      string  `json:"system"`      // System instruction
	Prompt      string  `json:"prompt"`      // User prompt
	Model       string  `json:"model"`       // Overrides the configured model if set
	Temperature float64 `json:"temperature"` // 0 for deterministic output
	MaxTokens   int     `json:"max_tokens"`
}

// CodeResponse represents a provider response
type CodeResponse struct {
	ID      string    `json:"id"`
	Model   string    `json:"model"`
	Content string    `json:"content"`
	Usage   *Usage    `json:"usage,omitempty"`
	Created time.Time `json:"created"`
}

// Usage represents token usage statistics
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Common errors
var (
	ErrNoProviderConfigured = errors.New("no provider configured: set ANTHROPIC_API_KEY or OPENAI_API_KEY")
	ErrProviderNotAvailable = errors.New("provider not available")
	ErrAPIKeyMissing        = errors.New("API key missing")
	ErrEmptyResponse        = errors.New("provider returned an empty response")
	ErrTimeout              = errors.New("request timeout")
)

// APIError carries the underlying status and message of a failed provider call
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}

// ProviderType represents the type of provider
type ProviderType string

const (
	ProviderTypeAnthropic ProviderType = "anthropic"
	ProviderTypeOpenAI    ProviderType = "openai"
)
