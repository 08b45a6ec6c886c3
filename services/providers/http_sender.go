package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/models"
)

const defaultBaseURL = "https://api.openai.com/v1"

// HTTPSender implements Sender over OpenAI-compatible chat completion APIs.
// The endpoint record carries the base URL and API key; platforms that speak
// a different wire format get their own Sender implementation.
type HTTPSender struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPSender creates a sender with a shared HTTP client. Per-attempt
// timeouts come from the request context, not the client.
func NewHTTPSender(logger *zap.Logger) *HTTPSender {
	return &HTTPSender{
		httpClient: &http.Client{},
		logger:     logger,
	}
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Send performs one chat completion call against the endpoint
func (s *HTTPSender) Send(ctx context.Context, endpoint *models.Endpoint, req *Request) (*Response, error) {
	startTime := time.Now()
	endpointID := endpoint.EndpointID()

	baseURL := endpoint.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	body := chatCompletionRequest{
		Model:       endpoint.ModelID,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if body.MaxTokens == 0 && endpoint.MaxTokens > 0 {
		body.MaxTokens = endpoint.MaxTokens
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, NewSendError(endpointID, "failed to marshal request", 0, false, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat/completions", strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, NewSendError(endpointID, "failed to create request", 0, false, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if endpoint.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+endpoint.APIKey)
	}

	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, NewSendError(endpointID, "request cancelled or timed out", 0, true, err)
		}
		return nil, NewSendError(endpointID, "http request failed", 0, true, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewSendError(endpointID, "failed to read response", httpResp.StatusCode, true, err)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		if httpResp.StatusCode != http.StatusOK {
			return nil, NewSendError(endpointID,
				fmt.Sprintf("provider returned status %d", httpResp.StatusCode),
				httpResp.StatusCode, httpResp.StatusCode >= 500 || httpResp.StatusCode == 429, nil)
		}
		return nil, NewSendError(endpointID, "failed to unmarshal response", httpResp.StatusCode, false, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		message := fmt.Sprintf("provider returned status %d", httpResp.StatusCode)
		if parsed.Error != nil {
			message = parsed.Error.Message
		}
		retryable := httpResp.StatusCode >= 500 || httpResp.StatusCode == 429
		return nil, NewSendError(endpointID, message, httpResp.StatusCode, retryable, nil)
	}

	if len(parsed.Choices) == 0 {
		return nil, NewSendError(endpointID, "provider returned no choices", httpResp.StatusCode, false, nil)
	}

	resp := &Response{
		Content:    parsed.Choices[0].Message.Content,
		Model:      parsed.Model,
		HTTPStatus: httpResp.StatusCode,
		Latency:    time.Since(startTime),
	}
	if parsed.Usage != nil {
		resp.Usage = &models.TokenUsage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		}
	}

	s.logger.Debug("provider call completed",
		zap.String("endpoint_id", endpointID),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("latency", resp.Latency))

	return resp, nil
}
