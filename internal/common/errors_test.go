package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserError(t *testing.T) {
	err := NewUserError("no API key found", ErrMissingConfig)

	assert.Equal(t, "no API key found: missing configuration", err.Error())
	assert.ErrorIs(t, err, ErrMissingConfig)

	var userErr *UserError
	assert.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &userErr)
	assert.Equal(t, "no API key found", userErr.UserMessage)

	assert.Equal(t, "bare", NewUserError("bare", nil).Error())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "rate limit", err: ErrRateLimit, want: true},
		{name: "plaid rate limit", err: fmt.Errorf("fetch: %w", ErrPlaidRateLimit), want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "retryable wrapper", err: &RetryableError{Err: errors.New("503"), Retryable: true}, want: true},
		{name: "connection", err: ErrPlaidConnection, want: false},
		{name: "nil", err: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
