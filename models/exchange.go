package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// TokenUsage records token counts reported by a provider
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens" bson:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens" bson:"completion_tokens"`
	TotalTokens      int `json:"total_tokens" bson:"total_tokens"`
}

// Exchange is one dispatched model call, written by the dispatch path and
// listed for operators. IDs are ULIDs so records sort by creation time.
type Exchange struct {
	ID             string         `json:"id" bson:"_id"`
	AppCallerCode  string         `json:"app_caller_code" bson:"app_caller_code"`
	CapabilityType CapabilityType `json:"capability_type" bson:"capability_type"`
	ResolutionType string         `json:"resolution_type" bson:"resolution_type"`
	PoolID         *uuid.UUID     `json:"pool_id,omitempty" bson:"pool_id,omitempty"`
	EndpointID     string         `json:"endpoint_id,omitempty" bson:"endpoint_id,omitempty"`
	Strategy       string         `json:"strategy,omitempty" bson:"strategy,omitempty"`
	Success        bool           `json:"success" bson:"success"`
	Attempts       int            `json:"attempts" bson:"attempts"`
	LatencyMs      int64          `json:"latency_ms" bson:"latency_ms"`
	TokenUsage     *TokenUsage    `json:"token_usage,omitempty" bson:"token_usage,omitempty"`
	ErrorText      string         `json:"error_text,omitempty" bson:"error_text,omitempty"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
}

// CollectionName returns the MongoDB collection for the Exchange model
func (Exchange) CollectionName() string {
	return "exchanges"
}

// NewExchangeID generates a time-ordered exchange identifier
func NewExchangeID() string {
	return ulid.Make().String()
}
