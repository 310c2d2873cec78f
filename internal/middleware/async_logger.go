package middleware

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/baryc/quote-service/internal/domain/model"
	"github.com/baryc/quote-service/internal/logger"
	"github.com/baryc/quote-service/internal/metrics"
	"github.com/baryc/quote-service/internal/service"
)

// AsyncLoggerConfig sizes the log sink.
type AsyncLoggerConfig struct {
	BufferSize    int           // queued entries before Log starts dropping
	NumWorkers    int           // goroutines writing batches
	BatchSize     int           // entries per CreateLogs call
	FlushInterval time.Duration // longest wait for an incomplete batch
	WriteTimeout  time.Duration // deadline of one CreateLogs call
}

// DefaultAsyncLoggerConfig returns the sizing used by the server.
func DefaultAsyncLoggerConfig() AsyncLoggerConfig {
	return AsyncLoggerConfig{
		BufferSize:    1000,
		NumWorkers:    2,
		BatchSize:     50,
		FlushInterval: time.Second,
		WriteTimeout:  5 * time.Second,
	}
}

func (c AsyncLoggerConfig) withDefaults() AsyncLoggerConfig {
	d := DefaultAsyncLoggerConfig()
	if c.BufferSize <= 0 {
		c.BufferSize = d.BufferSize
	}
	if c.NumWorkers <= 0 {
		c.NumWorkers = d.NumWorkers
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = d.FlushInterval
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	return c
}

// AsyncLoggerStats counts entries since the sink started.
type AsyncLoggerStats struct {
	Enqueued int64
	Dropped  int64
	Written  int64
	Failed   int64
}

// AsyncLogger persists request and audit entries off the request path. A
// fixed pool of workers drains a bounded queue in batches; when the queue is
// full the entry is dropped and counted.
type AsyncLogger struct {
	sink  service.LoggingService
	cfg   AsyncLoggerConfig
	queue chan *model.LogEntry

	done     chan struct{}
	stopOnce sync.Once
	workers  sync.WaitGroup

	enqueued, dropped, written, failed atomic.Int64
}

// NewAsyncLogger starts the workers. A nil sink yields a nil logger, on
// which Log and Stop are no-ops.
func NewAsyncLogger(sink service.LoggingService, cfg AsyncLoggerConfig) *AsyncLogger {
	if sink == nil {
		return nil
	}
	cfg = cfg.withDefaults()

	al := &AsyncLogger{
		sink:  sink,
		cfg:   cfg,
		queue: make(chan *model.LogEntry, cfg.BufferSize),
		done:  make(chan struct{}),
	}
	al.workers.Add(cfg.NumWorkers)
	for range cfg.NumWorkers {
		go al.run()
	}
	return al
}

func (al *AsyncLogger) run() {
	defer al.workers.Done()

	ticker := time.NewTicker(al.cfg.FlushInterval)
	defer ticker.Stop()

	pending := make([]*model.LogEntry, 0, al.cfg.BatchSize)
	add := func(entry *model.LogEntry) {
		pending = append(pending, entry)
		if len(pending) == al.cfg.BatchSize {
			al.write(pending)
			pending = make([]*model.LogEntry, 0, al.cfg.BatchSize)
		}
	}

	for {
		select {
		case entry := <-al.queue:
			add(entry)
		case <-ticker.C:
			if len(pending) > 0 {
				al.write(pending)
				pending = make([]*model.LogEntry, 0, al.cfg.BatchSize)
			}
		case <-al.done:
		drain:
			for {
				select {
				case entry := <-al.queue:
					add(entry)
				default:
					break drain
				}
			}
			if len(pending) > 0 {
				al.write(pending)
			}
			return
		}
	}
}

func (al *AsyncLogger) write(batch []*model.LogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), al.cfg.WriteTimeout)
	defer cancel()

	n := len(batch)
	if err := al.sink.CreateLogs(ctx, batch); err != nil {
		al.failed.Add(int64(n))
		metrics.RecordLogEntries("failed", n)
		log := logger.Logger()
		log.Warn().Err(err).Int("entries", n).Msg("Dropping log batch after write failure")
		return
	}
	al.written.Add(int64(n))
	metrics.RecordLogEntries("written", n)
}

// Log queues entry and reports whether it was accepted.
func (al *AsyncLogger) Log(entry *model.LogEntry) bool {
	if al == nil || entry == nil {
		return false
	}
	select {
	case <-al.done:
		return false
	default:
	}

	select {
	case al.queue <- entry:
		al.enqueued.Add(1)
		return true
	default:
		al.dropped.Add(1)
		metrics.RecordLogEntries("dropped", 1)
		return false
	}
}

// Stop writes what is still queued and waits for the workers. Calling it
// again is a no-op.
func (al *AsyncLogger) Stop() {
	if al == nil {
		return
	}
	al.stopOnce.Do(func() {
		close(al.done)
		al.workers.Wait()
	})
}

// Stats returns the counters.
func (al *AsyncLogger) Stats() AsyncLoggerStats {
	return AsyncLoggerStats{
		Enqueued: al.enqueued.Load(),
		Dropped:  al.dropped.Load(),
		Written:  al.written.Load(),
		Failed:   al.failed.Load(),
	}
}

var processLogger atomic.Pointer[AsyncLogger]

// InitAsyncLogger installs the process-wide sink used by RequestLogger and
// AuditLog. A previously installed sink is stopped.
func InitAsyncLogger(sink service.LoggingService, cfg AsyncLoggerConfig) {
	previous := processLogger.Swap(NewAsyncLogger(sink, cfg))
	previous.Stop()
}

// GetAsyncLogger returns the process-wide sink, nil when none is installed.
func GetAsyncLogger() *AsyncLogger {
	return processLogger.Load()
}

// StopAsyncLogger uninstalls the process-wide sink after flushing it.
func StopAsyncLogger() {
	processLogger.Swap(nil).Stop()
}
