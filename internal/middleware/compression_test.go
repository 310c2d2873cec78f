package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCompression(t *testing.T) {
	tests := []struct {
		name             string
		path             string
		acceptEncoding   string
		expectCompressed bool
	}{
		{
			name:             "compresses when client accepts gzip",
			path:             "/api/pricing-config",
			acceptEncoding:   "gzip",
			expectCompressed: true,
		},
		{
			name:             "compresses with several encodings offered",
			path:             "/api/pricing-config",
			acceptEncoding:   "gzip, deflate",
			expectCompressed: true,
		},
		{
			name:             "plain response without Accept-Encoding",
			path:             "/api/pricing-config",
			expectCompressed: false,
		},
		{
			name:             "metrics endpoint is never compressed",
			path:             "/metrics",
			acceptEncoding:   "gzip",
			expectCompressed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Compression())
			router.GET(tt.path, func(c *gin.Context) {
				c.String(http.StatusOK, `{"vat_rate":0.2}`)
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			if tt.expectCompressed {
				assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
			} else {
				assert.Empty(t, w.Header().Get("Content-Encoding"))
			}
		})
	}
}
