package ingest

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// FeederLimiter rate limits uploads per feeder. Every message counts as one event.
type FeederLimiter struct {
	perSecond float64
	burst     int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewFeederLimiter(perSecond float64, burst int) *FeederLimiter {
	return &FeederLimiter{
		perSecond: perSecond,
		burst:     burst,
		limiters:  make(map[string]*rate.Limiter),
	}
}

// AllowN reports whether feederID may upload n messages now.
func (l *FeederLimiter) AllowN(feederID string, n int) bool {
	l.mu.Lock()
	lim, ok := l.limiters[feederID]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.perSecond), l.burst)
		l.limiters[feederID] = lim
	}
	l.mu.Unlock()

	return lim.AllowN(time.Now(), n)
}
