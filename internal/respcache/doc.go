// Package respcache memoizes generated shell commands keyed by a hash of the
// request and its execution context, with TTL expiry, size-bounded eviction,
// and a per-user JSON snapshot on disk.
package respcache
