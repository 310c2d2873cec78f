package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		origins        []string
		method         string
		origin         string
		expectedStatus int
		expectAllowed  bool
	}{
		{
			name:           "default origin allowed",
			method:         http.MethodGet,
			origin:         "http://localhost:3000",
			expectedStatus: http.StatusOK,
			expectAllowed:  true,
		},
		{
			name:           "preflight answered without reaching the handler",
			method:         http.MethodOptions,
			origin:         "http://localhost:3000",
			expectedStatus: http.StatusNoContent,
			expectAllowed:  true,
		},
		{
			name:           "configured origin allowed",
			origins:        []string{"https://atelier.example"},
			method:         http.MethodGet,
			origin:         "https://atelier.example",
			expectedStatus: http.StatusOK,
			expectAllowed:  true,
		},
		{
			name:           "unknown origin rejected",
			origins:        []string{"https://atelier.example"},
			method:         http.MethodGet,
			origin:         "https://evil.example",
			expectedStatus: http.StatusForbidden,
			expectAllowed:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CORS(tt.origins))
			router.GET("/api/pricing-config", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(tt.method, "/api/pricing-config", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectAllowed {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}
