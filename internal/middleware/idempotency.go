package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/baryc/quote-service/internal/service"
	"github.com/baryc/quote-service/internal/service/cache"
)

const (
	// IdempotencyKeyHeader names the client-chosen key of a retried write.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long a response can be replayed.
	IdempotencyKeyTTL = 5 * time.Minute
	// IdempotencyReplayedHeader is set on replayed responses.
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"

	originalRequestIDHeader = "X-Original-Request-ID"
)

// replayedHeaders are copied from the first response into replays.
var replayedHeaders = []string{"Content-Type", PricingVersionHeader}

// storedResponse is what the store keeps per key.
type storedResponse struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    []byte            `json:"body"`
}

// IdempotencyConfig selects the response store.
type IdempotencyConfig struct {
	// Store keeps responses; a RedisCache shares them between instances.
	Store   cache.Cache
	Enabled bool
}

// DefaultIdempotencyConfig keeps responses in process memory.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		Store:   service.NewShardedCache(10000, IdempotencyKeyTTL, 8),
		Enabled: true,
	}
}

// Idempotency replays the stored 2xx response of a POST, PUT or PATCH that
// repeats an Idempotency-Key with the same credentials, method, path and
// body.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.Store == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || !isWrite(c.Request.Method) {
			c.Next()
			return
		}

		storeKey := idempotencyStoreKey(key, c.Request)
		if replay(c, cfg.Store, storeKey) {
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		if status := rec.Status(); status >= 200 && status < 300 {
			cfg.Store.Set(storeKey, rec.stored())
		}
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// replay writes the response stored under storeKey. An entry that cannot be
// decoded is dropped and the request proceeds.
func replay(c *gin.Context, store cache.Cache, storeKey string) bool {
	data, ok := store.Get(storeKey)
	if !ok {
		return false
	}
	var stored storedResponse
	if err := json.Unmarshal(data, &stored); err != nil {
		store.Invalidate(storeKey)
		return false
	}

	for name, value := range stored.Headers {
		c.Header(name, value)
	}
	c.Header(IdempotencyReplayedHeader, "true")
	c.Data(stored.Status, stored.Headers["Content-Type"], stored.Body)
	c.Abort()
	return true
}

// idempotencyStoreKey hashes the key together with the caller's credentials
// and the request, so two clients picking the same key never share a
// response. The body is restored for the handler.
func idempotencyStoreKey(key string, req *http.Request) string {
	h := sha256.New()
	for _, part := range []string{key, req.Header.Get(APIKeyHeader), req.Header.Get("Authorization"), req.Method, req.URL.Path} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	if req.Body != nil {
		body, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(body))
		h.Write(body)
	}
	return "idem:" + hex.EncodeToString(h.Sum(nil))
}

// bodyRecorder keeps a copy of what the handler writes.
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func (w *bodyRecorder) stored() []byte {
	headers := make(map[string]string, len(replayedHeaders)+1)
	for _, name := range replayedHeaders {
		if v := w.Header().Get(name); v != "" {
			headers[name] = v
		}
	}
	if id := w.Header().Get(RequestIDHeader); id != "" {
		headers[originalRequestIDHeader] = id
	}
	data, _ := json.Marshal(storedResponse{Status: w.Status(), Headers: headers, Body: w.body.Bytes()})
	return data
}
