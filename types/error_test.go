package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrStorage, "redis unavailable").
		WithCause(root).
		WithRetryable(true)

	if GetErrorCode(err) != ErrStorage {
		t.Fatalf("expected code %s, got %s", ErrStorage, GetErrorCode(err))
	}
	if !IsRetryable(err) {
		t.Fatalf("expected retryable")
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is unwrap to root")
	}
	if got := err.Error(); got == "" {
		t.Fatalf("expected non-empty error string")
	}
}

func TestIsErrorCode_WrappedChain(t *testing.T) {
	t.Parallel()

	inner := Errorf(ErrInvalidHandoffTarget, "target %q is not one of %v", "Carol", []string{"Alice", "Bob"})
	wrapped := fmt.Errorf("run start: %w", inner)

	assert.True(t, IsErrorCode(wrapped, ErrInvalidHandoffTarget))
	assert.False(t, IsErrorCode(wrapped, ErrDeserialization))
	assert.False(t, IsRetryable(wrapped))
	assert.Contains(t, wrapped.Error(), "Carol")

	e, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrInvalidHandoffTarget, e.Code)
}

func TestIsErrorCode_InnerCodeBehindOuterError(t *testing.T) {
	t.Parallel()

	inner := Errorf(ErrUnknownMessageKind, "unknown message kind %q", "MysteryMessage")
	outer := WrapError(fmt.Errorf("message 2: %w", inner), ErrDeserialization, "load state")

	assert.True(t, IsErrorCode(outer, ErrDeserialization))
	assert.True(t, IsErrorCode(outer, ErrUnknownMessageKind))
	assert.False(t, IsErrorCode(outer, ErrStorage))
	assert.Equal(t, ErrDeserialization, GetErrorCode(outer))

	joined := errors.Join(errors.New("plain"), NewError(ErrStorage, "closed"))
	assert.True(t, IsErrorCode(joined, ErrStorage))
	assert.False(t, IsErrorCode(nil, ErrStorage))
}

func TestWrapError_Nil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, WrapError(nil, ErrStorage, "noop"))
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
}
