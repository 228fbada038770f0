package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionSendMessage = "send_message"
	ActionCreateChat  = "create_chat"
	ActionTyping      = "typing"
	ActionLocalAPI    = "local_api"
)

// Limits maps an action to the number of events allowed per minute. The
// bucket starts full, so a whole minute's worth may be spent in a burst.
type Limits map[string]int

func DefaultLimits() Limits {
	return Limits{
		ActionSendMessage: 10,
		ActionCreateChat:  5,
		ActionTyping:      30,
		ActionLocalAPI:    300,
	}
}

const defaultPerMinute = 20

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one limiter per user and action.
type RateLimiter struct {
	limits  Limits
	entries map[string]*entry
	mutex   sync.Mutex
	now     func() time.Time
}

func NewRateLimiter(limits Limits) *RateLimiter {
	if limits == nil {
		limits = DefaultLimits()
	}
	return &RateLimiter{
		limits:  limits,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow consumes one event for userID:action. When the bucket is empty it
// reports how long until the next event would be allowed.
func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	now := rl.now()
	lim := rl.limiterFor(userID+":"+action, action, now)

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Tokens returns the events currently available for userID:action and the
// bucket size.
func (rl *RateLimiter) Tokens(userID, action string) (tokens int, maxTokens int) {
	rl.mutex.Lock()
	e, exists := rl.entries[userID+":"+action]
	rl.mutex.Unlock()

	if !exists {
		perMinute := rl.perMinute(action)
		return perMinute, perMinute
	}
	return int(e.limiter.TokensAt(rl.now())), e.limiter.Burst()
}

func (rl *RateLimiter) limiterFor(key, action string, now time.Time) *rate.Limiter {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	e, exists := rl.entries[key]
	if !exists {
		perMinute := rl.perMinute(action)
		e = &entry{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		}
		rl.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

func (rl *RateLimiter) perMinute(action string) int {
	if n, ok := rl.limits[action]; ok && n > 0 {
		return n
	}
	return defaultPerMinute
}

// Cleanup removes limiters idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key, e := range rl.entries {
		if now.Sub(e.lastSeen) > maxIdle {
			delete(rl.entries, key)
		}
	}
}
