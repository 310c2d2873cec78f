package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/baryc/quote-service/internal/domain/model"
	"github.com/baryc/quote-service/internal/metrics"
	"github.com/baryc/quote-service/internal/service/cache"
)

// Computation kinds, used as cache key prefixes and metric labels.
const (
	KindQuote      = "quote"
	KindCostBasis  = "cost_basis"
	KindOrder      = "order"
	KindHourlyCost = "hourly_cost"
)

// SnapshotSource provides the pricing snapshot to compute against.
type SnapshotSource interface {
	Current() *model.PricingSnapshot
}

// QuoteCalculator defines the quoting operations exposed to the HTTP layer.
type QuoteCalculator interface {
	Quote(in model.QuoteInput) model.PricingResult
	CostBasis(in model.CostBasisInput) model.CostBasisResult
	OrderTotals(in model.OrderInput) model.OrderTotals
	HourlyCost(in model.HourlyCostInput) model.HourlyCostResult
	// Snapshot returns the pricing snapshot the next computation will use
	Snapshot() *model.PricingSnapshot
	// InvalidateCache clears cached results (used when the snapshot changes)
	InvalidateCache()
}

// Option configures a QuoteCalculatorService.
type Option func(*QuoteCalculatorService)

// QuoteCalculatorService implements QuoteCalculator on top of the pure
// pricing functions, reading the active snapshot once per call.
type QuoteCalculatorService struct {
	snapshots SnapshotSource
	cache     cache.Cache
}

// NewQuoteCalculatorService creates a calculator. Without WithSnapshotSource
// it computes against the default pricing snapshot.
func NewQuoteCalculatorService(opts ...Option) *QuoteCalculatorService {
	s := &QuoteCalculatorService{}
	for _, opt := range opts {
		opt(s)
	}
	if s.snapshots == nil {
		s.snapshots = NewSnapshotStore(nil)
	}
	return s
}

// WithSnapshotSource sets where the active snapshot is read from.
func WithSnapshotSource(src SnapshotSource) Option {
	return func(s *QuoteCalculatorService) {
		s.snapshots = src
	}
}

// WithCache enables an in-memory sharded cache with the given capacity and TTL.
func WithCache(capacity int, ttl time.Duration) Option {
	return func(s *QuoteCalculatorService) {
		if capacity > 0 {
			s.cache = NewShardedCache(capacity, ttl, 16)
		}
	}
}

// WithCacheInterface injects a cache implementation, e.g. RedisCache.
func WithCacheInterface(c cache.Cache) Option {
	return func(s *QuoteCalculatorService) {
		s.cache = c
	}
}

// Snapshot returns the active pricing snapshot.
func (s *QuoteCalculatorService) Snapshot() *model.PricingSnapshot {
	return s.snapshots.Current()
}

// Quote prices one piece.
func (s *QuoteCalculatorService) Quote(in model.QuoteInput) model.PricingResult {
	start := time.Now()
	snap := s.snapshots.Current()
	key := cacheKey(KindQuote, snap.Version, in)

	var result model.PricingResult
	if s.lookup(key, &result) {
		metrics.RecordQuoteCalculation(KindQuote, "cache", time.Since(start))
		return result
	}

	result = ComputeQuote(in, snap)
	s.store(key, result)
	metrics.RecordQuoteCalculation(KindQuote, "computed", time.Since(start))
	return result
}

// CostBasis prices one piece and estimates its internal cost.
func (s *QuoteCalculatorService) CostBasis(in model.CostBasisInput) model.CostBasisResult {
	start := time.Now()
	snap := s.snapshots.Current()
	key := cacheKey(KindCostBasis, snap.Version, in)

	var result model.CostBasisResult
	source := "cache"
	if !s.lookup(key, &result) {
		source = "computed"
		result = EstimateCostBasis(in, snap)
		s.store(key, result)
	}
	if result.Incomplete {
		metrics.RecordCostBasisIncomplete()
	}
	metrics.RecordQuoteCalculation(KindCostBasis, source, time.Since(start))
	return result
}

// OrderTotals totals an order against the active snapshot.
func (s *QuoteCalculatorService) OrderTotals(in model.OrderInput) model.OrderTotals {
	start := time.Now()
	result := OrderTotals(in, s.snapshots.Current())
	metrics.RecordQuoteCalculation(KindOrder, "computed", time.Since(start))
	return result
}

// HourlyCost computes the workshop hourly cost.
func (s *QuoteCalculatorService) HourlyCost(in model.HourlyCostInput) model.HourlyCostResult {
	start := time.Now()
	result := HourlyCost(in)
	metrics.RecordQuoteCalculation(KindHourlyCost, "computed", time.Since(start))
	return result
}

// InvalidateCache clears the result cache.
func (s *QuoteCalculatorService) InvalidateCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// Stop releases cache resources.
func (s *QuoteCalculatorService) Stop() {
	if s.cache != nil {
		s.cache.Stop()
	}
}

func (s *QuoteCalculatorService) lookup(key string, dst any) bool {
	if s.cache == nil || key == "" {
		return false
	}
	data, ok := s.cache.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Discarding unreadable cache entry")
		s.cache.Invalidate(key)
		return false
	}
	return true
}

func (s *QuoteCalculatorService) store(key string, value any) {
	if s.cache == nil || key == "" {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	s.cache.Set(key, data)
}

// cacheKey derives a key from the computation kind, the snapshot version and
// the canonical JSON of the input. It returns "" for inputs that cannot be
// encoded (NaN or infinite numbers); those are computed without caching.
func cacheKey(kind string, version int, in any) string {
	data, err := json.Marshal(in)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:v%d:%s", kind, version, hex.EncodeToString(sum[:]))
}
