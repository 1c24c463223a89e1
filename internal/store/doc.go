// Package store provides the local key-value stores that back the feed cache.
//
// A Store holds opaque byte values under string keys. Three backends exist:
//   - FileStore: one file per key under a directory (default, ~/.tremstore/cache)
//   - SQLiteStore: a single sqlite database table, handy when many processes share a cache
//   - MemoryStore: process-local map, used by tests and --no-cache runs
//
// Stores know nothing about freshness. TTL decisions belong to the fetcher,
// which keeps a payload key and a timestamp key per feed.
package store
