// Package resource implements the Controller for search admission and memory accounting.
//
// The Controller manages three resources:
//
//   - Concurrency: limit the number of searches running at once (semaphore)
//   - Rate: throttle how often searches may start (token bucket)
//   - Memory: track and cap memory held by the result cache (fail-fast)
//
// # Search Admission
//
//	rc := resource.NewController(resource.Config{
//	    MaxConcurrentSearches: 8,
//	    SearchesPerSecond:     200,
//	})
//
//	if err := rc.AcquireSearch(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseSearch()
//
// TryAcquireSearch is the non-blocking variant; it returns false when either
// the concurrency or the rate limit would make the caller wait.
//
// # Memory Management
//
// TryAcquireMemory never blocks: callers such as the result cache decide for
// themselves whether to evict or skip when the limit is reached.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
// This allows optional limiting without nil checks everywhere.
package resource
