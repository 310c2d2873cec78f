package middleware

import (
	"hash/fnv"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/baryc/quote-service/internal/domain/dto"
	"github.com/baryc/quote-service/internal/i18n"
)

const defaultNumShards = 16

// KeyFunc picks the identity a request is counted against.
type KeyFunc func(c *gin.Context) string

// ByClientIP counts requests per client IP.
func ByClientIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// ByActor counts requests per authenticated admin, falling back to the
// client IP for anonymous requests.
func ByActor(c *gin.Context) string {
	if actor := GetActor(c); actor != "" {
		return "actor:" + actor
	}
	return ByClientIP(c)
}

type counter struct {
	hits  int
	start time.Time
}

type limiterShard struct {
	mu       sync.Mutex
	counters map[string]*counter
}

// RateLimiter is a fixed-window request limiter. Keys are spread over
// shards by FNV hash so that concurrent clients rarely share a lock.
type RateLimiter struct {
	shards []*limiterShard
	limit  int
	window time.Duration
	now    func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRateLimiter allows limit requests per key and window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return NewShardedRateLimiter(limit, window, defaultNumShards)
}

// NewShardedRateLimiter is NewRateLimiter with an explicit shard count.
func NewShardedRateLimiter(limit int, window time.Duration, numShards int) *RateLimiter {
	if numShards <= 0 {
		numShards = defaultNumShards
	}

	rl := &RateLimiter{
		shards: make([]*limiterShard, numShards),
		limit:  limit,
		window: window,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	for i := range rl.shards {
		rl.shards[i] = &limiterShard{counters: make(map[string]*counter)}
	}

	go rl.sweepLoop()
	return rl
}

func (rl *RateLimiter) shardFor(key string) *limiterShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return rl.shards[h.Sum32()%uint32(len(rl.shards))]
}

// take counts one request for key. It returns whether the request is
// allowed, how many remain in the window and when the window resets.
func (rl *RateLimiter) take(key string) (allowed bool, remaining int, reset time.Duration) {
	shard := rl.shardFor(key)
	now := rl.now()

	shard.mu.Lock()
	defer shard.mu.Unlock()

	c, ok := shard.counters[key]
	if !ok || now.Sub(c.start) >= rl.window {
		c = &counter{start: now}
		shard.counters[key] = c
	}
	reset = rl.window - now.Sub(c.start)

	if c.hits >= rl.limit {
		return false, 0, reset
	}
	c.hits++
	return true, rl.limit - c.hits, reset
}

// RateLimit limits requests per client IP.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return rl.LimitBy(ByClientIP)
}

// UserRateLimit limits requests per authenticated admin. It must run after
// JWTAuth.
func (rl *RateLimiter) UserRateLimit() gin.HandlerFunc {
	return rl.LimitBy(ByActor)
}

// LimitBy limits requests per key(c).
func (rl *RateLimiter) LimitBy(key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, reset := rl.take(key(c))

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(ceilSeconds(reset)))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(ceilSeconds(reset)))
			locale := i18n.GetLocale(c)
			resp := dto.NewError(dto.ErrCodeRateLimit, i18n.GetTranslator().Translate(i18n.ErrKeyRateLimitExceeded, locale)).
				WithRequestID(GetRequestID(c))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, resp)
			return
		}

		c.Next()
	}
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stopCh:
			return
		}
	}
}

// sweep drops counters whose window ended.
func (rl *RateLimiter) sweep() {
	now := rl.now()
	for _, shard := range rl.shards {
		shard.mu.Lock()
		for key, c := range shard.counters {
			if now.Sub(c.start) >= rl.window {
				delete(shard.counters, key)
			}
		}
		shard.mu.Unlock()
	}
}

// Len returns the number of keys currently tracked.
func (rl *RateLimiter) Len() int {
	n := 0
	for _, shard := range rl.shards {
		shard.mu.Lock()
		n += len(shard.counters)
		shard.mu.Unlock()
	}
	return n
}

// Stop ends the background sweep. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}
