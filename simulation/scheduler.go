// Package simulation はシミュレーションの寿命と停止順序を管理する。
package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/touka-aoi/skirmish/domain"
	"github.com/touka-aoi/skirmish/internal/handler"
	"github.com/touka-aoi/skirmish/report"
	"github.com/touka-aoi/skirmish/repository/state"
	"github.com/touka-aoi/skirmish/service"
)

var ErrMissingDependency = errors.New("simulation: missing dependency")

// Result は終了時の最終スナップショット。
type Result struct {
	Final     domain.Snapshot
	Survivors []domain.Agent
	Ticks     uint64
	Handled   uint64
}

func newResult(final domain.Snapshot, handled uint64) Result {
	return Result{Final: final, Survivors: final.Alive(), Ticks: final.Tick, Handled: handled}
}

type SchedulerConfig struct {
	World         state.World
	Mover         *service.Mover
	Loop          *handler.Loop
	Renderer      report.Renderer
	Duration      time.Duration
	PrintInterval time.Duration
	Logger        *slog.Logger
	Clock         func() time.Time
}

// Scheduler はフォアグラウンドで描画を回し、Mover と Resolver ワーカーを背後で動かす。
type Scheduler struct {
	world         state.World
	mover         *service.Mover
	loop          *handler.Loop
	renderer      report.Renderer
	duration      time.Duration
	printInterval time.Duration
	logger        *slog.Logger
	clk           func() time.Time
}

func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.World == nil || cfg.Mover == nil || cfg.Loop == nil || cfg.Renderer == nil {
		return nil, fmt.Errorf("%w: scheduler needs world, mover, loop and renderer", ErrMissingDependency)
	}
	if cfg.Duration <= 0 || cfg.PrintInterval <= 0 {
		return nil, fmt.Errorf("simulation: duration and print interval must be positive")
	}
	s := &Scheduler{
		world:         cfg.World,
		mover:         cfg.Mover,
		loop:          cfg.Loop,
		renderer:      cfg.Renderer,
		duration:      cfg.Duration,
		printInterval: cfg.PrintInterval,
		logger:        cfg.Logger,
		clk:           cfg.Clock,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.clk == nil {
		s.clk = time.Now
	}
	return s, nil
}

// Run は duration が過ぎるか ctx が終わるまで実行する。
// 停止時は Mover を止めて合流し、キューを閉じて Resolver に全件処理させてから
// 最終スナップショットを取る。
func (s *Scheduler) Run(ctx context.Context) (Result, error) {
	moverCtx, cancelMover := context.WithCancel(ctx)
	defer cancelMover()

	if err := s.loop.Start(ctx); err != nil {
		return Result{}, err
	}
	g, gctx := errgroup.WithContext(moverCtx)
	g.Go(func() error {
		return s.mover.Run(gctx)
	})

	deadline := time.NewTimer(s.duration)
	defer deadline.Stop()
	ticker := time.NewTicker(s.printInterval)
	defer ticker.Stop()

	s.render(ctx)
	reason := "expired"
wait:
	for {
		select {
		case <-ctx.Done():
			reason = "cancelled"
			break wait
		case <-gctx.Done():
			reason = "mover stopped"
			if ctx.Err() != nil {
				reason = "cancelled"
			}
			break wait
		case <-deadline.C:
			break wait
		case <-ticker.C:
			s.render(ctx)
		}
	}
	s.logger.InfoContext(ctx, "simulation: shutting down", "reason", reason)

	cancelMover()
	moverErr := g.Wait()
	if err := s.loop.Stop(context.WithoutCancel(ctx)); err != nil {
		return Result{}, fmt.Errorf("simulation: drain resolvers: %w", err)
	}

	final := state.TakeSnapshot(ctx, s.world, s.mover.Ticks(), s.clk())
	return newResult(final, s.loop.Handled()), moverErr
}

func (s *Scheduler) render(ctx context.Context) {
	snap := state.TakeSnapshot(ctx, s.world, s.mover.Ticks(), s.clk())
	if err := s.renderer.Render(ctx, snap); err != nil {
		s.logger.WarnContext(ctx, "simulation: render failed", "err", err)
	}
}
