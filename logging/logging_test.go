package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWithCorrelationID_RoundTrips(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", CorrelationID(ctx))
}

func TestCorrelationID_EmptyWhenUnset(t *testing.T) {
	assert.Equal(t, "", CorrelationID(context.Background()))
}

func TestNew_UnrecognizedLevelFallsBackToInfo(t *testing.T) {
	logger, _, err := New("not-a-level")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestSetLevel_UpdatesAtomicLevel(t *testing.T) {
	_, atomic, err := New("info")
	require.NoError(t, err)
	require.False(t, atomic.Enabled(zap.DebugLevel))

	SetLevel(atomic, "debug")
	assert.True(t, atomic.Enabled(zap.DebugLevel))
}

func TestSetLevel_IgnoresUnrecognizedLevel(t *testing.T) {
	_, atomic, err := New("warn")
	require.NoError(t, err)

	SetLevel(atomic, "not-a-level")
	assert.Equal(t, zap.WarnLevel, atomic.Level())
}

func TestFromContext_AttachesCorrelationID(t *testing.T) {
	base := zap.NewNop()
	ctx := WithCorrelationID(context.Background(), "req-1")
	annotated := FromContext(ctx, base)
	assert.NotNil(t, annotated)
}
