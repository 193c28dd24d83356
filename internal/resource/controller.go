package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

	// ErrSearchLimitExceeded is returned when a search cannot start without waiting.
	ErrSearchLimitExceeded = errors.New("search limit exceeded")
)

// Config holds resource limits. Zero values mean unlimited.
type Config struct {
	// MemoryLimitBytes is the hard limit for tracked memory.
	MemoryLimitBytes int64

	// MaxConcurrentSearches caps searches running at the same time.
	MaxConcurrentSearches int64

	// SearchesPerSecond is the sustained rate at which searches may start.
	SearchesPerSecond float64

	// SearchBurst is the token bucket size. If 0, defaults to
	// max(1, SearchesPerSecond).
	SearchBurst int
}

// Controller manages shared limits.
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Concurrency
	searchSem *semaphore.Weighted // nil if unlimited
	inFlight  atomic.Int64

	// Rate
	limiter *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.MaxConcurrentSearches > 0 {
		c.searchSem = semaphore.NewWeighted(cfg.MaxConcurrentSearches)
	}
	if cfg.SearchesPerSecond > 0 {
		burst := cfg.SearchBurst
		if burst <= 0 {
			burst = max(1, int(cfg.SearchesPerSecond))
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.SearchesPerSecond), burst)
	}

	return c
}

// Config returns the limits the controller was built with.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireSearch waits for a rate token and a concurrency slot.
func (c *Controller) AcquireSearch(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if c.searchSem != nil {
		if err := c.searchSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	c.inFlight.Add(1)
	return nil
}

// TryAcquireSearch reserves a search slot without blocking.
func (c *Controller) TryAcquireSearch() bool {
	if c == nil {
		return true
	}
	if c.searchSem != nil && !c.searchSem.TryAcquire(1) {
		return false
	}
	if c.limiter != nil && !c.limiter.AllowN(time.Now(), 1) {
		if c.searchSem != nil {
			c.searchSem.Release(1)
		}
		return false
	}
	c.inFlight.Add(1)
	return true
}

// ReleaseSearch releases a slot taken by AcquireSearch or TryAcquireSearch.
func (c *Controller) ReleaseSearch() {
	if c == nil {
		return
	}
	c.inFlight.Add(-1)
	if c.searchSem != nil {
		c.searchSem.Release(1)
	}
}

// InFlight returns the number of searches currently admitted.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if !c.TryAcquireMemory(bytes) {
		return ErrMemoryLimitExceeded
	}
	return nil
}

// TryAcquireMemory reports whether bytes could be reserved.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}
	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return false
	}
	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}
