package anthropic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/cedricrupb/dataviewer/core/config"
	"github.com/cedricrupb/dataviewer/core/provider"
)

// DefaultModel is used when the config does not name one
const DefaultModel = "claude-3-7-sonnet-20250219"

// defaultMaxTokens bounds the generated script length
const defaultMaxTokens = 1500

// Provider implements the Anthropic Messages provider
type Provider struct {
	client    anthropic.Client
	model     string
	name      string
	maxTokens int
	apiKey    string
	config    map[string]interface{}
}

// NewProvider creates a new Anthropic provider
func NewProvider(name string, cfg map[string]interface{}) (*Provider, error) {
	apiKey := config.GetStringValue(cfg, "api_key", "")
	if apiKey == "" {
		return nil, provider.ErrAPIKeyMissing
	}

	model := config.GetStringValue(cfg, "model", DefaultModel)
	maxTokens := config.GetIntValue(cfg, "max_tokens", defaultMaxTokens)

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL := config.GetStringValue(cfg, "base_url", ""); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Provider{
		client:    anthropic.NewClient(opts...),
		model:     model,
		name:      name,
		maxTokens: maxTokens,
		apiKey:    apiKey,
		config:    cfg,
	}, nil
}

// GenerateCode implements the Provider interface
func (p *Provider) GenerateCode(ctx context.Context, req *provider.CodeRequest) (*provider.CodeResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.getModel(req.Model)),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, p.handleError(err)
	}

	if len(msg.Content) == 0 {
		return nil, provider.ErrEmptyResponse
	}

	var content string
	for _, block := range msg.Content {
		content += block.Text
	}

	return &provider.CodeResponse{
		ID:      msg.ID,
		Model:   string(msg.Model),
		Content: content,
		Created: time.Now(),
		Usage: &provider.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return p.name
}

// Available checks if the provider is configured
func (p *Provider) Available() bool {
	return p.apiKey != ""
}

// GetModel returns the configured model
func (p *Provider) GetModel() string {
	return p.model
}

// getModel returns the model to use for the request
func (p *Provider) getModel(requestModel string) string {
	if requestModel != "" {
		return requestModel
	}
	return p.model
}

// handleError converts Anthropic SDK errors to our error types
func (p *Provider) handleError(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		if apierr.StatusCode == 401 {
			return provider.ErrAPIKeyMissing
		}
		return &provider.APIError{
			Provider:   p.name,
			StatusCode: apierr.StatusCode,
			Message:    apierr.Error(),
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
