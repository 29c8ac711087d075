// Package stream は決着とスナップショットを WebSocket 視聴者へ配信する。
package stream

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/touka-aoi/skirmish/domain"
	"github.com/touka-aoi/skirmish/report"
)

// Broadcaster は observer.Sink と report.Renderer の両方として登録できる。
// 遅い視聴者のフレームは捨て、シミュレーション側を待たせない。
type Broadcaster struct {
	mu      sync.RWMutex
	viewers map[string]*Viewer
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{viewers: make(map[string]*Viewer)}
}

// Attach は視聴者を登録して Run し、終了時に登録を外す。
func (b *Broadcaster) Attach(ctx context.Context, v *Viewer) error {
	b.mu.Lock()
	b.viewers[v.ID()] = v
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		delete(b.viewers, v.ID())
		b.mu.Unlock()
	}()
	slog.DebugContext(ctx, "stream: viewer attached", "viewer", v.ID())
	return v.Run(ctx)
}

func (b *Broadcaster) Viewers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.viewers)
}

func (b *Broadcaster) OnFight(ctx context.Context, outcome domain.CombatOutcome) error {
	data, err := encodeOutcome(outcome)
	if err != nil {
		return err
	}
	b.broadcast(ctx, data)
	return nil
}

func (b *Broadcaster) Render(ctx context.Context, snap domain.Snapshot) error {
	data, err := encodeSnapshot(snap, report.RenderGrid(snap))
	if err != nil {
		return err
	}
	b.broadcast(ctx, data)
	return nil
}

func (b *Broadcaster) broadcast(ctx context.Context, data []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, v := range b.viewers {
		if err := v.Send(data); err != nil && !errors.Is(err, ErrViewerClosed) {
			slog.DebugContext(ctx, "stream: frame dropped", "viewer", id, "err", err)
		}
	}
}

var _ report.Renderer = (*Broadcaster)(nil)
