// Package cache provides an LRU cache for search results.
//
// Results depend only on the query symbols and the clamped k (sequential and
// parallel searches return identical lists), so the key holds just those
// two. Entries are accounted in bytes and, when a resource controller is
// supplied, charged against its memory limit.
package cache
