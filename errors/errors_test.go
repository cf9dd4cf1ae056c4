package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassString(t *testing.T) {
	assert.Equal(t, "transient", ErrorTransient.String())
	assert.Equal(t, "invalid", ErrorInvalid.String())
	assert.Equal(t, "fatal", ErrorFatal.String())
	assert.Equal(t, "unknown", ErrorClass(42).String())
}

func TestWrap(t *testing.T) {
	base := stderrors.New("boom")
	wrapped := Wrap(base, "Bounded", "PushBack", "capacity check")
	require.Error(t, wrapped)
	assert.Contains(t, wrapped.Error(), "Bounded.PushBack")
	assert.True(t, stderrors.Is(wrapped, base))

	assert.NoError(t, Wrap(nil, "Bounded", "PushBack", "noop"))
}

func TestWrapInvalidClassification(t *testing.T) {
	err := WrapInvalid(ErrInvalidCapacity, "Bounded", "New", "validate capacity")
	require.Error(t, err)

	var ce *ClassifiedError
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, ErrorInvalid, ce.Class)
	assert.Equal(t, "Bounded", ce.Component)
	assert.True(t, IsInvalid(err))
	assert.False(t, IsTransient(err))
	assert.True(t, stderrors.Is(err, ErrInvalidCapacity))
}

func TestWrapTransientClassification(t *testing.T) {
	err := WrapTransient(ErrTimeout, "Map", "AtTimeout", "wait for key")
	assert.True(t, IsTransient(err))
	assert.False(t, IsFatal(err))
	assert.Equal(t, ErrorTransient, Classify(err))
}

func TestWrapFatalClassification(t *testing.T) {
	err := WrapFatal(ErrResourceExhausted, "Pool", "Start", "allocate workers")
	assert.True(t, IsFatal(err))
	assert.Equal(t, ErrorFatal, Classify(err))
}

func TestSentinelClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"timeout", ErrTimeout, ErrorTransient},
		{"lock unavailable", ErrLockUnavailable, ErrorTransient},
		{"context deadline", context.DeadlineExceeded, ErrorTransient},
		{"invalid capacity", ErrInvalidCapacity, ErrorInvalid},
		{"capacity exceeded", ErrCapacityExceeded, ErrorInvalid},
		{"out of range", ErrOutOfRange, ErrorInvalid},
		{"invalid config", ErrInvalidConfig, ErrorFatal},
		{"resource exhausted", ErrResourceExhausted, ErrorFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestTransientMessagePatterns(t *testing.T) {
	assert.True(t, IsTransient(fmt.Errorf("backend temporarily unavailable")))
	assert.True(t, IsTransient(fmt.Errorf("registry busy, retry later")))
	assert.False(t, IsTransient(nil))
}

func TestClassifiedErrorMessage(t *testing.T) {
	base := stderrors.New("underlying")
	ce := &ClassifiedError{Class: ErrorInvalid, Err: base}
	assert.Equal(t, "underlying", ce.Error())
	assert.Equal(t, base, ce.Unwrap())

	ce.Message = "custom"
	assert.Equal(t, "custom", ce.Error())
}
