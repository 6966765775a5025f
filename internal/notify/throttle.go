package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/loadlane/loadlane/internal/cache"
	"github.com/loadlane/loadlane/pkg/logger"
)

// ThrottleWindow is the minimum time between two successful deliveries of
// the same (user, channel, type) triple.
const ThrottleWindow = 60 * time.Second

// Gate suppresses repeat deliveries. It is advisory only: a gate failure
// must never abort a dispatch, only let the attempt through.
type Gate interface {
	Throttled(ctx context.Context, userID string, channel Channel, t Type) bool
	RecordSuccess(ctx context.Context, userID string, channel Channel, t Type)
}

func throttleKey(userID string, channel Channel, t Type) string {
	return fmt.Sprintf("throttle:%s|%s|%s", userID, channel, t)
}

// MemoryGate keeps throttle state in a process-local map. Suitable for a
// single instance; use CacheGate when running more than one.
type MemoryGate struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	last   map[string]time.Time
}

// MemoryGateOption customises a MemoryGate.
type MemoryGateOption func(*MemoryGate)

// WithMemoryGateNow overrides the clock, for tests.
func WithMemoryGateNow(now func() time.Time) MemoryGateOption {
	return func(g *MemoryGate) {
		if now != nil {
			g.now = now
		}
	}
}

// NewMemoryGate constructs an in-process throttle gate.
func NewMemoryGate(window time.Duration, opts ...MemoryGateOption) *MemoryGate {
	if window <= 0 {
		window = ThrottleWindow
	}
	gate := &MemoryGate{
		window: window,
		now:    time.Now,
		last:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(gate)
	}
	return gate
}

// Throttled reports whether a success for the triple happened inside the window.
func (g *MemoryGate) Throttled(_ context.Context, userID string, channel Channel, t Type) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.last[throttleKey(userID, channel, t)]
	if !ok {
		return false
	}
	return g.now().Sub(last) < g.window
}

// RecordSuccess marks the triple as delivered now.
func (g *MemoryGate) RecordSuccess(_ context.Context, userID string, channel Channel, t Type) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.last[throttleKey(userID, channel, t)] = g.now()
}

// CacheGate backs throttle state with a shared TTL store so the window holds
// across service instances. Store errors are logged and treated as "not
// throttled" so the cache can never block deliveries.
type CacheGate struct {
	store  cache.Store
	window time.Duration
	log    *zap.Logger
}

// NewCacheGate constructs a shared throttle gate over a cache store.
func NewCacheGate(store cache.Store, window time.Duration) *CacheGate {
	if window <= 0 {
		window = ThrottleWindow
	}
	return &CacheGate{
		store:  store,
		window: window,
		log:    logger.WithModule("notify.throttle"),
	}
}

// Throttled reports whether the triple's marker is still live in the store.
func (g *CacheGate) Throttled(ctx context.Context, userID string, channel Channel, t Type) bool {
	_, found, err := g.store.Get(ctx, throttleKey(userID, channel, t))
	if err != nil {
		g.log.Warn("throttle lookup failed, allowing attempt",
			zap.String("user_id", userID),
			zap.String("channel", string(channel)),
			zap.Error(err))
		return false
	}
	return found
}

// RecordSuccess writes the triple's marker with the window as TTL.
func (g *CacheGate) RecordSuccess(ctx context.Context, userID string, channel Channel, t Type) {
	if err := g.store.Set(ctx, throttleKey(userID, channel, t), []byte("1"), g.window); err != nil {
		g.log.Warn("failed to record throttle marker",
			zap.String("user_id", userID),
			zap.String("channel", string(channel)),
			zap.Error(err))
	}
}
