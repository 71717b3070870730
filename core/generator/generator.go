// Package generator turns a dataset schema summary into a runnable
// Streamlit display function by prompting an LLM provider.
package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cedricrupb/dataviewer/core/provider"
)

// DefaultTimeout bounds a single generation call. The provider call is the
// only long-blocking operation in the pipeline, so it never runs unbounded.
const DefaultTimeout = 120 * time.Second

// defaultMaxTokens bounds the generated script length
const defaultMaxTokens = 1500

// Request describes one viewer generation
type Request struct {
	Summary string // Schema summary (required)
	Card    string // Dataset card text, may be empty
	Extra   string // User-supplied extra requirements
	Model   string // Overrides the provider's configured model
}

// Result carries the extracted script and call metadata
type Result struct {
	RequestID string
	Script    string
	Provider  string
	Model     string
	Usage     *provider.Usage
}

// Service drives single-shot code generation against a provider
type Service struct {
	provider provider.Provider
	prompt   *PromptBuilder
	timeout  time.Duration
}

// NewService creates a generation service for the given provider
func NewService(p provider.Provider) *Service {
	return &Service{
		provider: p,
		prompt:   NewPromptBuilder(),
		timeout:  DefaultTimeout,
	}
}

// SetTimeout sets the per-call timeout
func (s *Service) SetTimeout(timeout time.Duration) *Service {
	if timeout > 0 {
		s.timeout = timeout
	}
	return s
}

// Provider returns the underlying provider
func (s *Service) Provider() provider.Provider {
	return s.provider
}

// Generate builds the prompt, makes exactly one provider call under a
// bounded timeout, and extracts the script from the response. Failures are
// surfaced to the caller; there is no retry.
func (s *Service) Generate(ctx context.Context, req *Request) (*Result, error) {
	if s.provider == nil {
		return nil, provider.ErrNoProviderConfigured
	}

	promptText, err := s.prompt.Build(req.Summary, req.Card, req.Extra)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.provider.GenerateCode(ctx, &provider.CodeRequest{
		System:      SystemPrompt,
		Prompt:      promptText,
		Model:       req.Model,
		Temperature: 0,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	script, err := ExtractCode(resp.Content)
	if err != nil {
		return nil, err
	}

	return &Result{
		RequestID: uuid.NewString(),
		Script:    script,
		Provider:  s.provider.Name(),
		Model:     resp.Model,
		Usage:     resp.Usage,
	}, nil
}
