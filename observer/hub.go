package observer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/touka-aoi/skirmish/domain"
)

//go:generate go tool mockgen -destination=./mocks/sink_mock.go -package=mocks . Sink

// Sink は決着した戦闘を受け取る出力先です。
type Sink interface {
	// OnFight は Resolver のゴルーチンから同期的に呼ばれます。
	OnFight(ctx context.Context, outcome domain.CombatOutcome) error
}

// SinkFunc は関数を Sink として扱うアダプタ。
type SinkFunc func(ctx context.Context, outcome domain.CombatOutcome) error

func (f SinkFunc) OnFight(ctx context.Context, outcome domain.CombatOutcome) error {
	return f(ctx, outcome)
}

// Hub は登録順に Sink へ結果を配送する。
type Hub struct {
	mu     sync.RWMutex
	sinks  []Sink
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{logger: logger}
}

func (h *Hub) Subscribe(sink Sink) {
	if sink == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks = append(h.sinks, sink)
}

// Publish は勝利した結果だけを配送する。Sink の失敗はログに残して次へ進む。
func (h *Hub) Publish(ctx context.Context, outcome domain.CombatOutcome) {
	if !outcome.Won {
		return
	}
	h.mu.RLock()
	sinks := h.sinks
	h.mu.RUnlock()

	for i, sink := range sinks {
		if err := sink.OnFight(ctx, outcome); err != nil {
			h.logger.WarnContext(ctx, "observer: sink failed",
				"sink", i,
				"attacker", outcome.Attacker.Name,
				"defender", outcome.Defender.Name,
				"err", err,
			)
		}
	}
}

// Close は io.Closer を実装する Sink を登録と逆順に閉じる。
func (h *Hub) Close() error {
	h.mu.Lock()
	sinks := h.sinks
	h.sinks = nil
	h.mu.Unlock()

	var errs []error
	for i := len(sinks) - 1; i >= 0; i-- {
		if c, ok := sinks[i].(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
