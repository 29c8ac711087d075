package memory

import (
	"context"
	"sync"
	"time"

	"github.com/touka-aoi/skirmish/domain"
	"github.com/touka-aoi/skirmish/repository/state"
)

// ConcurrentStore は Store を RWMutex で守る。
// Mover と Resolver の読み取りは並行し、書き込みは排他になる。
type ConcurrentStore struct {
	base    *Store
	clk     func() time.Time
	metrics state.MetricsRecorder
	mu      sync.RWMutex
}

func NewConcurrentStore(base *Store) *ConcurrentStore {
	return &ConcurrentStore{
		base:    base,
		clk:     time.Now,
		metrics: state.NopMetrics,
	}
}

func (c *ConcurrentStore) WithClock(clock func() time.Time) *ConcurrentStore {
	if clock != nil {
		c.clk = clock
	}
	return c
}

// WithMetrics はロック待ち時間の記録先を設定する。
func (c *ConcurrentStore) WithMetrics(m state.MetricsRecorder) *ConcurrentStore {
	if m != nil {
		c.metrics = m
	}
	return c
}

func (c *ConcurrentStore) WithRead(ctx context.Context, fn func(state.Reader)) {
	start := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.metrics.RecordContention(ctx, "world.read", c.now().Sub(start))
	fn(c.base)
}

func (c *ConcurrentStore) WithWrite(ctx context.Context, fn func(state.Writer)) {
	start := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.RecordContention(ctx, "world.write", c.now().Sub(start))
	fn(c.base)
}

func (c *ConcurrentStore) FindRecord(ctx context.Context, id domain.AgentID) (domain.AgentRecord, bool) {
	_ = ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.base.Record(id)
}

func (c *ConcurrentStore) now() time.Time {
	if c.clk == nil {
		return time.Now()
	}
	return c.clk()
}

var _ state.World = (*ConcurrentStore)(nil)
