package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorIs(t *testing.T) {
	err := ErrPoolNotFound.WithDetail("pool_id", "abc")
	assert.ErrorIs(t, err, ErrPoolNotFound)
	assert.NotErrorIs(t, err, ErrEndpointNotFound)

	wrapped := fmt.Errorf("looking up pool: %w", err)
	assert.ErrorIs(t, wrapped, ErrPoolNotFound)
}

func TestWithDetailDoesNotMutateSentinel(t *testing.T) {
	detailed := ErrPoolNotFound.WithDetail("pool_id", "abc")

	assert.Empty(t, ErrPoolNotFound.Details)
	assert.Equal(t, "abc", detailed.Details["pool_id"])

	second := detailed.WithDetail("caller", "chat_assist")
	assert.NotContains(t, detailed.Details, "caller")
	assert.Len(t, second.Details, 2)
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDomainError(ErrorTypeInternal, "database error", cause)

	assert.Contains(t, err.Error(), "database error")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestTypeCheckHelpers(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrTeamNotFound))
	assert.True(t, IsValidationError(ErrInvalidInput))
	assert.True(t, IsConflictError(ErrDuplicateEndpoint))
	assert.True(t, IsRoutingError(ErrNoModelAvailable))
	assert.True(t, IsUnauthorizedError(ErrInvalidToken))
	assert.True(t, IsForbiddenError(ErrForbidden))

	assert.False(t, IsNotFoundError(ErrInvalidInput))
	assert.False(t, IsRoutingError(errors.New("plain error")))
	assert.False(t, IsValidationError(nil))
}

func TestTypeCheckHelpersUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("resolving: %w", ErrAppCodeNotRegistered)
	assert.True(t, IsRoutingError(wrapped))
}

func TestGetErrorDetails(t *testing.T) {
	err := ErrInvalidStrategy.WithDetail("strategy", "best_effort")

	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "best_effort", details["strategy"])

	assert.Nil(t, GetErrorDetails(errors.New("plain error")))
}
