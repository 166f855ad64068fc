package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	l := zap.NewExample()
	assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
}

func TestRequestIDAndActor(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetActor(ctx))

	ctx = WithActor(WithRequestID(ctx, "req-1"), "tech-9")
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "tech-9", GetActor(ctx))
}

func TestL(t *testing.T) {
	t.Run("plain context returns base unchanged", func(t *testing.T) {
		base := zap.NewNop()
		assert.Same(t, base, L(context.Background(), base))
	})

	t.Run("adds request fields and span ids", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)

		traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
		spanID, _ := trace.SpanIDFromHex("0102030405060708")
		spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)
		ctx = WithActor(WithRequestID(ctx, "req-2"), "clerk")

		L(ctx, zap.New(core)).Info("stock adjusted")

		logs := recorded.All()
		require.Len(t, logs, 1)
		fields := logs[0].ContextMap()
		assert.Equal(t, traceID.String(), fields["trace_id"])
		assert.Equal(t, spanID.String(), fields["span_id"])
		assert.Equal(t, "req-2", fields["request_id"])
		assert.Equal(t, "clerk", fields["actor"])
	})

	t.Run("nil base uses context logger", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		ctx := WithContext(context.Background(), zap.New(core))

		L(ctx, nil).Info("from context")
		assert.Equal(t, 1, recorded.Len())
	})
}
