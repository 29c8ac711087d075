package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/touka-aoi/skirmish/domain"
	"github.com/touka-aoi/skirmish/internal/handler"
	"github.com/touka-aoi/skirmish/report"
	"github.com/touka-aoi/skirmish/repository/state"
	"github.com/touka-aoi/skirmish/service"
)

// Drainer はキューを待たずに空にするための口。
type Drainer interface {
	TryPop() (domain.FightTask, bool)
	Shutdown()
}

type LockstepConfig struct {
	World         state.World
	Mover         *service.Mover
	Resolver      handler.Handler
	Queue         Drainer
	Renderer      report.Renderer
	TotalTicks    int
	TicksPerPrint int
	Logger        *slog.Logger
	Clock         func() time.Time
}

// Lockstep は1ゴルーチンで tick を進める。各 tick で移動と走査の後に
// キューを空になるまで解決するので、同じ seed なら結果は同じになる。
type Lockstep struct {
	cfg     LockstepConfig
	handled uint64
}

func NewLockstep(cfg LockstepConfig) (*Lockstep, error) {
	if cfg.World == nil || cfg.Mover == nil || cfg.Resolver == nil || cfg.Queue == nil || cfg.Renderer == nil {
		return nil, fmt.Errorf("%w: lockstep needs world, mover, resolver, queue and renderer", ErrMissingDependency)
	}
	if cfg.TicksPerPrint < 1 {
		cfg.TicksPerPrint = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Lockstep{cfg: cfg}, nil
}

func (l *Lockstep) Run(ctx context.Context) (Result, error) {
	c := l.cfg
	for tick := 0; tick < c.TotalTicks; tick++ {
		if ctx.Err() != nil {
			c.Logger.InfoContext(ctx, "simulation: lockstep cancelled", "tick", tick)
			break
		}
		if tick%c.TicksPerPrint == 0 {
			l.render(ctx)
		}
		if _, err := c.Mover.Tick(ctx); err != nil {
			return Result{}, err
		}
		l.drain(ctx)
	}
	c.Queue.Shutdown()
	l.drain(ctx)

	final := state.TakeSnapshot(ctx, c.World, c.Mover.Ticks(), c.Clock())
	return newResult(final, l.handled), nil
}

func (l *Lockstep) drain(ctx context.Context) {
	for {
		task, ok := l.cfg.Queue.TryPop()
		if !ok {
			return
		}
		if err := l.cfg.Resolver.Handle(ctx, task); err != nil {
			l.cfg.Logger.WarnContext(ctx, "simulation: resolve failed", "err", err)
		}
		l.handled++
	}
}

func (l *Lockstep) render(ctx context.Context) {
	snap := state.TakeSnapshot(ctx, l.cfg.World, l.cfg.Mover.Ticks(), l.cfg.Clock())
	if err := l.cfg.Renderer.Render(ctx, snap); err != nil {
		l.cfg.Logger.WarnContext(ctx, "simulation: render failed", "err", err)
	}
}
