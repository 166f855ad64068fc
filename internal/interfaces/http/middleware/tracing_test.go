package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer returns a provider whose finished spans land in the recorder.
func setupTestTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})
	return tp, sr
}

func tracedRouter(tp *sdktrace.TracerProvider, status int) *gin.Engine {
	router := gin.New()
	router.Use(
		Tracing(TracingConfig{ServiceName: "fixdesk-test", Enabled: true, TracerProvider: tp}),
		RequestID(),
		Actor(),
		SpanAttributes(),
	)
	router.GET("/api/v1/parts/:id", func(c *gin.Context) {
		c.Status(status)
	})
	return router
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_Disabled(t *testing.T) {
	tp, sr := setupTestTracer(t)

	router := gin.New()
	router.Use(Tracing(TracingConfig{Enabled: false, TracerProvider: tp}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_SpanCarriesRouteRequestIDAndActor(t *testing.T) {
	tp, sr := setupTestTracer(t)
	router := tracedRouter(tp, http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/parts/42", nil)
	req.Header.Set(HeaderRequestID, "req-trace-1")
	req.Header.Set(HeaderActor, "tech-7")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Contains(t, span.Name(), "/api/v1/parts/:id")

	requestID, ok := attrValue(span.Attributes(), "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-trace-1", requestID.AsString())

	actor, ok := attrValue(span.Attributes(), "actor")
	require.True(t, ok)
	assert.Equal(t, "tech-7", actor.AsString())
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestSpanAttributes_MarksErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"client error", http.StatusUnprocessableEntity},
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, sr := setupTestTracer(t)
			router := tracedRouter(tp, tt.status)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/parts/1", nil))

			spans := sr.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, codes.Error, spans[0].Status().Code)

			var event *sdktrace.Event
			for i, e := range spans[0].Events() {
				if e.Name == "http.error" {
					event = &spans[0].Events()[i]
				}
			}
			require.NotNil(t, event)
			message, ok := attrValue(event.Attributes, "error.message")
			require.True(t, ok)
			assert.Equal(t, http.StatusText(tt.status), message.AsString())

			// otelgin owns the description of 5xx spans
			if tt.status < http.StatusInternalServerError {
				assert.Equal(t, http.StatusText(tt.status), spans[0].Status().Description)
			}
		})
	}
}

func TestSpanAttributes_WithoutSpan(t *testing.T) {
	router := gin.New()
	router.Use(SpanAttributes())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
}
