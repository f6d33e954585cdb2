// Package manager is the per-process instance cache. It maps
// (category, model id) to a constructed runtime instance, acquiring the
// model's artifacts on first use and building the instance exactly once.
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: Resolver, Factory and the cache entry.
//   - cache.go: GetOrCreate, Acquire and Close.
//   - errors.go: error types and helpers (IsTooBusy, IsConstructionFailure).
//   - admission.go: per-instance queueing; Exclusive serializes inference.
//   - status_report.go, sanity.go: reporting for /status and /readyz.
//
// Entries are never evicted. Construction failures are not cached, so a later
// call retries acquisition and construction.
package manager
