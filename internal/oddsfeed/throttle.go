package oddsfeed

import (
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// Throttle remembers when each sport key was last fetched so the metered
// API is called at most once per interval.
type Throttle struct {
	cache    *cache.Cache
	interval time.Duration
	skipped  atomic.Uint64
}

// NewThrottle creates a throttle; a non-positive interval selects 12 hours
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		interval = 12 * time.Hour
	}
	return &Throttle{
		cache:    cache.New(interval, interval*2),
		interval: interval,
	}
}

// Stale reports whether sportKey may be fetched again
func (t *Throttle) Stale(sportKey string) bool {
	if _, found := t.cache.Get(sportKey); found {
		t.skipped.Add(1)
		return false
	}
	return true
}

// MarkFetched records a successful fetch of sportKey
func (t *Throttle) MarkFetched(sportKey string, at time.Time) {
	t.cache.Set(sportKey, at, t.interval)
}

// LastFetched returns when sportKey was last fetched within the interval
func (t *Throttle) LastFetched(sportKey string) (time.Time, bool) {
	v, found := t.cache.Get(sportKey)
	if !found {
		return time.Time{}, false
	}
	return v.(time.Time), true
}

// Reset forgets every fetch, forcing the next refresh through
func (t *Throttle) Reset() {
	t.cache.Flush()
}

// Skipped returns how many refreshes the throttle has suppressed
func (t *Throttle) Skipped() uint64 {
	return t.skipped.Load()
}
