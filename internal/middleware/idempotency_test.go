package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idempotentRouter(cfg IdempotencyConfig, calls *int32, status int) *gin.Engine {
	router := gin.New()
	router.Use(Idempotency(cfg))
	handler := func(c *gin.Context) {
		n := atomic.AddInt32(calls, 1)
		c.JSON(status, gin.H{"call": n})
	}
	router.POST("/api/admin/pricing-config/services", handler)
	router.GET("/api/pricing-config", handler)
	return router
}

func send(router *gin.Engine, method, key, body string) *httptest.ResponseRecorder {
	path := "/api/admin/pricing-config/services"
	if method == http.MethodGet {
		path = "/api/pricing-config"
	}
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		firstKey   string
		secondKey  string
		firstBody  string
		secondBody string
		status     int
		wantCalls  int32
		wantReplay bool
	}{
		{
			name:       "same key and body is replayed",
			method:     http.MethodPost,
			firstKey:   "k-1",
			secondKey:  "k-1",
			firstBody:  `{"label":"Cirage"}`,
			secondBody: `{"label":"Cirage"}`,
			status:     http.StatusCreated,
			wantCalls:  1,
			wantReplay: true,
		},
		{
			name:       "different body is not replayed",
			method:     http.MethodPost,
			firstKey:   "k-2",
			secondKey:  "k-2",
			firstBody:  `{"label":"Cirage"}`,
			secondBody: `{"label":"Dorure"}`,
			status:     http.StatusCreated,
			wantCalls:  2,
		},
		{
			name:       "different key is not replayed",
			method:     http.MethodPost,
			firstKey:   "k-3",
			secondKey:  "k-4",
			firstBody:  `{}`,
			secondBody: `{}`,
			status:     http.StatusOK,
			wantCalls:  2,
		},
		{
			name:       "no key means no replay",
			method:     http.MethodPost,
			firstBody:  `{}`,
			secondBody: `{}`,
			status:     http.StatusOK,
			wantCalls:  2,
		},
		{
			name:      "GET is never replayed",
			method:    http.MethodGet,
			firstKey:  "k-5",
			secondKey: "k-5",
			status:    http.StatusOK,
			wantCalls: 2,
		},
		{
			name:       "errors are not stored",
			method:     http.MethodPost,
			firstKey:   "k-6",
			secondKey:  "k-6",
			firstBody:  `{}`,
			secondBody: `{}`,
			status:     http.StatusConflict,
			wantCalls:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			router := idempotentRouter(DefaultIdempotencyConfig(), &calls, tt.status)

			first := send(router, tt.method, tt.firstKey, tt.firstBody)
			second := send(router, tt.method, tt.secondKey, tt.secondBody)

			assert.Equal(t, tt.status, first.Code)
			assert.Equal(t, tt.status, second.Code)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
			if tt.wantReplay {
				assert.Equal(t, "true", second.Header().Get(IdempotencyReplayedHeader))
				assert.Equal(t, first.Body.String(), second.Body.String())
				assert.Contains(t, second.Header().Get("Content-Type"), "application/json")
			} else {
				assert.Empty(t, second.Header().Get(IdempotencyReplayedHeader))
			}
		})
	}
}

func TestIdempotency_Disabled(t *testing.T) {
	cfg := DefaultIdempotencyConfig()
	cfg.Enabled = false

	var calls int32
	router := idempotentRouter(cfg, &calls, http.StatusOK)

	send(router, http.MethodPost, "same", `{}`)
	send(router, http.MethodPost, "same", `{}`)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIdempotency_CorruptEntryIsDropped(t *testing.T) {
	cfg := DefaultIdempotencyConfig()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/pricing-config/services", bytes.NewReader([]byte(`{}`)))
	cfg.Store.Set(idempotencyStoreKey("bad", req), []byte("not json"))

	var calls int32
	router := idempotentRouter(cfg, &calls, http.StatusOK)
	w := send(router, http.MethodPost, "bad", `{}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Empty(t, w.Header().Get(IdempotencyReplayedHeader))
}

func TestIdempotencyStoreKey(t *testing.T) {
	newReq := func(apiKey, body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/quote", bytes.NewReader([]byte(body)))
		if apiKey != "" {
			req.Header.Set(APIKeyHeader, apiKey)
		}
		return req
	}

	base := idempotencyStoreKey("k", newReq("atelier-secret", `{"a":1}`))
	assert.True(t, strings.HasPrefix(base, "idem:"))
	assert.Equal(t, base, idempotencyStoreKey("k", newReq("atelier-secret", `{"a":1}`)))
	assert.NotEqual(t, base, idempotencyStoreKey("k", newReq("partner-secret", `{"a":1}`)), "scoped by credentials")
	assert.NotEqual(t, base, idempotencyStoreKey("k", newReq("atelier-secret", `{"a":2}`)), "scoped by body")

	req := newReq("", `{"a":1}`)
	_ = idempotencyStoreKey("k", req)
	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(body), "body is restored for the handler")
}

func TestIdempotency_ReplaysPricingVersion(t *testing.T) {
	var calls int32
	router := gin.New()
	router.Use(RequestID(), Idempotency(DefaultIdempotencyConfig()))
	router.POST("/api/quote", func(c *gin.Context) {
		atomic.AddInt32(&calls, 1)
		c.Header(PricingVersionHeader, "4")
		c.JSON(http.StatusOK, gin.H{"total_surface_m2": 2.9})
	})

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/quote", bytes.NewReader([]byte(`{}`)))
		req.Header.Set(IdempotencyKeyHeader, "quote-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := post()
	second := post()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "4", second.Header().Get(PricingVersionHeader))
	assert.Equal(t, first.Header().Get(RequestIDHeader), second.Header().Get(originalRequestIDHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}
