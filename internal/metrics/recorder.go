// Package metrics は state.MetricsRecorder のインメモリ実装。
package metrics

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/touka-aoi/skirmish/repository/state"
)

type timing struct {
	count int
	total time.Duration
	max   time.Duration
}

func (t *timing) add(d time.Duration) {
	t.count++
	t.total += d
	if d > t.max {
		t.max = d
	}
}

// Recorder はカウンタと所要時間を名前ごとに集計する。
type Recorder struct {
	mu         sync.Mutex
	counters   map[string]int
	latency    map[string]*timing
	contention map[string]*timing
}

func NewRecorder() *Recorder {
	return &Recorder{
		counters:   make(map[string]int),
		latency:    make(map[string]*timing),
		contention: make(map[string]*timing),
	}
}

func (r *Recorder) RecordLatency(ctx context.Context, endpoint string, duration time.Duration) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	timingFor(r.latency, endpoint).add(duration)
}

func (r *Recorder) RecordContention(ctx context.Context, endpoint string, wait time.Duration) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	timingFor(r.contention, endpoint).add(wait)
}

func (r *Recorder) IncrementCounter(ctx context.Context, name string, delta int) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[name] += delta
}

func (r *Recorder) Counter(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[name]
}

// Summary は集計値を名前順の slog 属性に変換する。
func (r *Recorder) Summary() []slog.Attr {
	r.mu.Lock()
	defer r.mu.Unlock()

	var attrs []slog.Attr
	for _, name := range sortedKeys(r.counters) {
		attrs = append(attrs, slog.Int(name, r.counters[name]))
	}
	for _, name := range sortedKeys(r.latency) {
		attrs = append(attrs, timingAttr("latency."+name, r.latency[name]))
	}
	for _, name := range sortedKeys(r.contention) {
		attrs = append(attrs, timingAttr("wait."+name, r.contention[name]))
	}
	return attrs
}

// Log は Summary を1行の Info ログとして出す。
func (r *Recorder) Log(ctx context.Context, logger *slog.Logger) {
	logger.LogAttrs(ctx, slog.LevelInfo, "metrics summary", r.Summary()...)
}

func timingFor(m map[string]*timing, name string) *timing {
	t, ok := m[name]
	if !ok {
		t = &timing{}
		m[name] = t
	}
	return t
}

func timingAttr(name string, t *timing) slog.Attr {
	var avg time.Duration
	if t.count > 0 {
		avg = t.total / time.Duration(t.count)
	}
	return slog.Group(name,
		slog.Int("n", t.count),
		slog.Duration("avg", avg),
		slog.Duration("max", t.max),
	)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

var _ state.MetricsRecorder = (*Recorder)(nil)
