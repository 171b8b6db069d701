// Package ratelimit holds per-key token buckets in a bounded LRU.
package ratelimit

import (
	"sync"
	"time"

	"github.com/coder/quartz"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const DefaultCacheSize = 1024

// Limiter allows perMinute events per key with a burst of the same size. Keys that
// fall out of the LRU start over with a full bucket.
type Limiter struct {
	mu        sync.Mutex
	perMinute int
	clock     quartz.Clock
	buckets   *lru.Cache[string, *rate.Limiter]
}

func New(perMinute, cacheSize int, clock quartz.Clock) (*Limiter, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	buckets, err := lru.New[string, *rate.Limiter](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Limiter{perMinute: perMinute, clock: clock, buckets: buckets}, nil
}

// Allow consumes one token for key. A non-positive rate disables limiting.
func (l *Limiter) Allow(key string) bool {
	if l == nil || l.perMinute <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets.Get(key)
	if !ok {
		b = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute)
		l.buckets.Add(key, b)
	}
	return b.AllowN(l.clock.Now(), 1)
}

func (l *Limiter) Len() int {
	return l.buckets.Len()
}
