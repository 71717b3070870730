package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/cedricrupb/dataviewer/core/config"
	"github.com/cedricrupb/dataviewer/core/provider"
)

// DefaultModel is used when the config does not name one
const DefaultModel = "gpt-4o"

// Provider implements the OpenAI chat-completions provider
type Provider struct {
	client  *openai.Client
	model   string
	name    string
	baseURL string
	apiKey  string
	config  map[string]interface{}
}

// NewProvider creates a new OpenAI provider
func NewProvider(name string, cfg map[string]interface{}) (*Provider, error) {
	apiKey := config.GetStringValue(cfg, "api_key", "")
	if apiKey == "" {
		return nil, provider.ErrAPIKeyMissing
	}

	baseURL := config.GetStringValue(cfg, "base_url", "")
	model := config.GetStringValue(cfg, "model", DefaultModel)

	// Create OpenAI client configuration
	clientConfig := openai.DefaultConfig(apiKey)

	// Set custom base URL if provided
	if baseURL != "" && baseURL != "https://api.openai.com/v1" {
		clientConfig.BaseURL = baseURL
	}

	client := openai.NewClientWithConfig(clientConfig)

	return &Provider{
		client:  client,
		model:   model,
		name:    name,
		baseURL: clientConfig.BaseURL,
		apiKey:  apiKey,
		config:  cfg,
	}, nil
}

// GenerateCode implements the Provider interface
func (p *Provider) GenerateCode(ctx context.Context, req *provider.CodeRequest) (*provider.CodeResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	// go-openai marshals Temperature with omitempty, so an intended 0 must
	// be sent as the smallest non-zero float to reach the API at all.
	temperature := float32(req.Temperature)
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	openaiReq := openai.ChatCompletionRequest{
		Model:       p.getModel(req.Model),
		Messages:    messages,
		Temperature: temperature,
	}
	if req.MaxTokens > 0 {
		openaiReq.MaxTokens = req.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, openaiReq)
	if err != nil {
		return nil, p.handleError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, provider.ErrEmptyResponse
	}

	return &provider.CodeResponse{
		ID:      resp.ID,
		Model:   resp.Model,
		Content: resp.Choices[0].Message.Content,
		Created: time.Unix(resp.Created, 0),
		Usage: &provider.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return p.name
}

// Available checks if the provider is configured
func (p *Provider) Available() bool {
	return p.client != nil && p.apiKey != ""
}

// GetModel returns the configured model
func (p *Provider) GetModel() string {
	return p.model
}

// GetBaseURL returns the base URL
func (p *Provider) GetBaseURL() string {
	return p.baseURL
}

// getModel returns the model to use for the request
func (p *Provider) getModel(requestModel string) string {
	if requestModel != "" {
		return requestModel
	}
	return p.model
}

// handleError converts OpenAI errors to our error types
func (p *Provider) handleError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 401 {
			return provider.ErrAPIKeyMissing
		}
		return &provider.APIError{
			Provider:   p.name,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return provider.ErrTimeout
	}

	return &provider.APIError{
		Provider: p.name,
		Message:  fmt.Sprintf("%v", err),
	}
}
