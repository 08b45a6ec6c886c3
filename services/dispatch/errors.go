package dispatch

import (
	"fmt"
	"strings"

	"github.com/prdhub/agentadmin/models"
)

// AttemptError records one failed attempt inside a dispatch
type AttemptError struct {
	EndpointID string `json:"endpoint_id"`
	Err        error  `json:"-"`
	Message    string `json:"error"`
}

// AggregateError is returned when every attempted endpoint failed within the
// strategy's fallback envelope
type AggregateError struct {
	Strategy models.DispatchStrategy
	Attempts []AttemptError
}

// Error implements the error interface
func (e *AggregateError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.EndpointID, a.Err))
	}
	return fmt.Sprintf("dispatch failed on all %d attempted endpoints (%s): %s",
		len(e.Attempts), e.Strategy, strings.Join(parts, "; "))
}

// Unwrap returns the last attempt's error
func (e *AggregateError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}

func newAttemptError(endpointID string, err error) AttemptError {
	return AttemptError{EndpointID: endpointID, Err: err, Message: err.Error()}
}
