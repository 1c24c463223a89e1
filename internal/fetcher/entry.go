package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/exptechtw/tremstore/internal/store"
)

// CacheEntry is one stored feed: its payload and when it was fetched.
//
//nolint:revive // CacheEntry is the canonical name for this exported type.
type CacheEntry struct {
	Payload   []byte
	FetchedAt time.Time
}

// Age returns how long ago the entry was fetched.
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// IsFresh reports whether the entry is younger than ttl.
func (e *CacheEntry) IsFresh(now time.Time, ttl time.Duration) bool {
	return e.Age(now) < ttl
}

// TimeUntilExpiration returns the remaining freshness, or 0 once expired.
func (e *CacheEntry) TimeUntilExpiration(now time.Time, ttl time.Duration) time.Duration {
	remaining := ttl - e.Age(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Keys names the two store keys of one feed.
type Keys struct {
	Data      string
	Timestamp string
}

// ReadEntry loads the entry stored under keys. A missing key, or a timestamp
// that is not a decimal epoch in milliseconds, reads as no entry.
func ReadEntry(ctx context.Context, st store.Store, keys Keys) (*CacheEntry, bool, error) {
	payload, ok, err := st.Get(ctx, keys.Data)
	if err != nil || !ok {
		return nil, false, err
	}
	raw, ok, err := st.Get(ctx, keys.Timestamp)
	if err != nil || !ok {
		return nil, false, err
	}
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return nil, false, nil
	}
	return &CacheEntry{Payload: payload, FetchedAt: time.UnixMilli(ms)}, true, nil
}

// WriteEntry overwrites both keys. If the timestamp cannot be written the
// payload is removed again so a half-written pair never survives.
func WriteEntry(ctx context.Context, st store.Store, keys Keys, entry CacheEntry) error {
	if err := st.Set(ctx, keys.Data, entry.Payload); err != nil {
		return fmt.Errorf("writing %s: %w", keys.Data, err)
	}
	ts := strconv.FormatInt(entry.FetchedAt.UnixMilli(), 10)
	if err := st.Set(ctx, keys.Timestamp, []byte(ts)); err != nil {
		clearErr := st.Clear(context.WithoutCancel(ctx), keys.Data, keys.Timestamp)
		return errors.Join(fmt.Errorf("writing %s: %w", keys.Timestamp, err), clearErr)
	}
	return nil
}
