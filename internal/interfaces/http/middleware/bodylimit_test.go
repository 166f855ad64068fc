package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func bodyLimitRouter(limit int64) *gin.Engine {
	router := gin.New()
	router.Use(BodyLimit(limit))
	router.POST("/parts", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusBadRequest, "read past %d", tooLarge.Limit)
			return
		}
		c.String(http.StatusCreated, "ok")
	})
	router.GET("/parts", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return router
}

func TestBodyLimit(t *testing.T) {
	tests := []struct {
		name          string
		limit         int64
		method        string
		body          string
		contentLength int64
		wantStatus    int
	}{
		{"within limit", 1024, http.MethodPost, `{"name":"Pixel 7 Battery"}`, 26, http.StatusCreated},
		{"declared length over limit", 100, http.MethodPost, strings.Repeat("x", 200), 200, http.StatusRequestEntityTooLarge},
		{"zero limit disables the check", 0, http.MethodPost, strings.Repeat("x", 4096), 4096, http.StatusCreated},
		{"bodyless GET", 10, http.MethodGet, "", 0, http.StatusOK},
		{"chunked body cut off while reading", 50, http.MethodPost, strings.Repeat("x", 100), -1, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/parts", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()
			bodyLimitRouter(tt.limit).ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestBodyLimit_ErrorEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/parts", strings.NewReader(strings.Repeat("x", 200)))
	req.Header.Set(HeaderRequestID, "limit-req")
	w := httptest.NewRecorder()
	bodyLimitRouter(100).ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"ERR_REQUEST_TOO_LARGE"`)
	assert.Contains(t, w.Body.String(), `"request_id":"limit-req"`)
}
