package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zhuiying-client/internal/types"
)

type fakeNetError struct{ timeout bool }

func (e fakeNetError) Error() string   { return "dial tcp: connection refused" }
func (e fakeNetError) Timeout() bool   { return e.timeout }
func (e fakeNetError) Temporary() bool { return false }

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{name: "deadline exceeded", err: fmt.Errorf("do: %w", context.DeadlineExceeded), want: CategoryTimeout},
		{name: "net timeout", err: fakeNetError{timeout: true}, want: CategoryTimeout},
		{name: "net refused", err: fakeNetError{}, want: CategoryTransport},
		{name: "service error", err: &types.ServiceError{Code: 4001, Message: "bad"}, want: CategoryAPI},
		{name: "service 401", err: &types.ServiceError{Code: 401, Message: "login"}, want: CategoryUnauthorized},
		{name: "http 401", err: NewHTTPStatusError(http.StatusUnauthorized), want: CategoryUnauthorized},
		{name: "wrapped categorized", err: fmt.Errorf("ctx: %w", NewHTTPStatusError(500)), want: CategoryHTTPStatus},
		{name: "unknown", err: stderrors.New("boom"), want: CategoryTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.err).Category)
		})
	}

	assert.Nil(t, Categorize(nil))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, MessageTimeout, UserMessage(NewTimeoutError("get", context.DeadlineExceeded)))
	assert.Equal(t, MessageConnection, UserMessage(NewTransportError("get", stderrors.New("refused"))))
	assert.Equal(t, "HTTP Error: 502", UserMessage(NewHTTPStatusError(502)))
	assert.Equal(t, "链接无效", UserMessage(NewAPIError(4001, "链接无效")))
	assert.Equal(t, MessageRequestFailed, UserMessage(NewAPIError(4001, "")))
	assert.Equal(t, MessageTimeout, UserMessage(fmt.Errorf("get: %w", context.DeadlineExceeded)))
	assert.Equal(t, MessageTimeout, UserMessage(fakeNetError{timeout: true}))
	assert.Equal(t, MessageConnection, UserMessage(fmt.Errorf("get: %w", fakeNetError{})))
	assert.Equal(t, "plain", UserMessage(stderrors.New("plain")))
	// only network errors get the connection message
	assert.Equal(t, "redis: write failed", UserMessage(stderrors.New("redis: write failed")))
	assert.Equal(t, MessageStorage, UserMessage(NewStorageError("set_token", stderrors.New("write failed"))))
}

func TestNewStorageError(t *testing.T) {
	cause := stderrors.New("disk full")
	err := fmt.Errorf("login: %w", NewStorageError("set_token", cause))

	assert.True(t, IsCategory(err, CategoryStorage))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsRetryable(err))
	assert.False(t, IsUnauthorized(err))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewTransportError("get", nil)))
	assert.True(t, IsRetryable(NewTimeoutError("get", nil)))
	assert.True(t, IsRetryable(NewHTTPStatusError(503)))
	assert.True(t, IsRetryable(NewHTTPStatusError(429)))
	assert.False(t, IsRetryable(NewHTTPStatusError(404)))
	assert.False(t, IsRetryable(NewAPIError(4001, "bad")))
	assert.False(t, IsRetryable(NewValidationError("bad")))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(nil))
}

func TestIsUnauthorizedAndCategory(t *testing.T) {
	assert.True(t, IsUnauthorized(NewHTTPStatusError(401)))
	assert.True(t, IsUnauthorized(NewAPIError(401, "请先登录")))
	assert.False(t, IsUnauthorized(NewHTTPStatusError(403)))
	assert.False(t, IsUnauthorized(nil))

	err := fmt.Errorf("add tracker: %w", NewInsufficientCoinsError("金币余额不足", 10, 5))
	assert.True(t, IsCategory(err, CategoryInsufficientCoins))
	assert.Equal(t, "金币余额不足", UserMessage(err))
}
