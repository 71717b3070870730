package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	withStatus := &APIError{Provider: "openai", StatusCode: 429, Message: "rate limited"}
	assert.Contains(t, withStatus.Error(), "429")
	assert.Contains(t, withStatus.Error(), "openai")

	withoutStatus := &APIError{Provider: "anthropic", Message: "connection refused"}
	assert.Contains(t, withoutStatus.Error(), "anthropic")
	assert.NotContains(t, withoutStatus.Error(), "status")
}
