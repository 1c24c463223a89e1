// Package fetcher implements the cached remote list fetcher.
//
// A Loader reads a JSON feed through a local store with a TTL:
//   - a fresh cache entry is returned without touching the network
//   - otherwise the feed is fetched, retried with linear backoff on failure
//     (BackoffBase * 1, * 2, * 3 ...) up to MaxRetries times
//   - after the last retry any cached entry, however old, is returned as stale
//   - with nothing cached the load ends unavailable with an error
//
// Each feed occupies two store keys: the serialized payload and the fetch
// time in epoch milliseconds. An entry exists only when both keys are present.
//
// Concurrent loads of the same URL share one fetch chain. The chain follows
// the context of the load that started it; once that context is cancelled no
// further retries run and nothing is written to the store.
package fetcher
