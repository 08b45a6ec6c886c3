package providers

import (
	"context"
	"time"

	"github.com/prdhub/agentadmin/models"
)

// Request is the capability-level payload handed to a provider endpoint.
// Provider-specific body mapping, auth scheme and response unwrapping are the
// sender's concern; callers only see this shape.
type Request struct {
	// Messages in the conversation
	Messages []Message `json:"messages"`

	// MaxTokens limits the response length
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness
	Temperature float64 `json:"temperature,omitempty"`

	// Metadata for tracking and logging
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Message represents a single message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is the unwrapped provider response
type Response struct {
	// Content is the completion text
	Content string `json:"content"`

	// Model reported by the provider
	Model string `json:"model"`

	// HTTPStatus of the upstream call
	HTTPStatus int `json:"http_status"`

	// Usage statistics, if the provider reported them
	Usage *models.TokenUsage `json:"usage,omitempty"`

	// Latency of the request
	Latency time.Duration `json:"latency"`
}

// Sender performs one network call against a concrete endpoint. This is the
// boundary to the provider transformer pipeline: the dispatch engine treats
// it as an opaque send function.
type Sender interface {
	Send(ctx context.Context, endpoint *models.Endpoint, req *Request) (*Response, error)
}

// SendError represents a failed attempt against one endpoint
type SendError struct {
	// EndpointID that was attempted
	EndpointID string

	// StatusCode is the HTTP status code (0 for transport errors)
	StatusCode int

	// Message is the error message
	Message string

	// Retryable indicates if another endpoint may succeed
	Retryable bool

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *SendError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap implements error unwrapping
func (e *SendError) Unwrap() error {
	return e.Cause
}

// NewSendError creates a new send error
func NewSendError(endpointID, message string, statusCode int, retryable bool, cause error) *SendError {
	return &SendError{
		EndpointID: endpointID,
		StatusCode: statusCode,
		Message:    message,
		Retryable:  retryable,
		Cause:      cause,
	}
}
