package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/touka-aoi/skirmish/domain"
	"github.com/touka-aoi/skirmish/internal/handler"
	"github.com/touka-aoi/skirmish/repository/state"
)

// Publisher は勝利した戦闘結果の配送先。
type Publisher interface {
	Publish(ctx context.Context, outcome domain.CombatOutcome)
}

type ResolverConfig struct {
	World     state.World
	Dice      domain.Dice
	Publisher Publisher
	Metrics   state.MetricsRecorder
	Logger    *slog.Logger
	Clock     func() time.Time
}

// Resolver は FightTask を検証し、ダイスで勝敗を決めて防御側を倒す。
// 複数のワーカーから同時に呼んでよい。
type Resolver struct {
	world     state.World
	dice      domain.Dice
	publisher Publisher
	metrics   state.MetricsRecorder
	logger    *slog.Logger
	clk       func() time.Time
}

func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.World == nil || cfg.Dice == nil || cfg.Publisher == nil {
		return nil, fmt.Errorf("%w: resolver needs world, dice and publisher", ErrMissingDependency)
	}
	r := &Resolver{
		world:     cfg.World,
		dice:      cfg.Dice,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		clk:       cfg.Clock,
	}
	if r.metrics == nil {
		r.metrics = state.NopMetrics
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.clk == nil {
		r.clk = time.Now
	}
	return r, nil
}

// Handle は1つのタスクを処理する。破棄は失敗ではないので常に nil を返す。
func (r *Resolver) Handle(ctx context.Context, task domain.FightTask) error {
	start := r.clk()
	defer func() {
		r.metrics.RecordLatency(ctx, "resolver.handle", r.clk().Sub(start))
	}()

	outcome, reason := r.Resolve(ctx, task)
	if reason != domain.DiscardNone {
		r.metrics.IncrementCounter(ctx, "resolver.discarded."+reason.String(), 1)
		r.logger.DebugContext(ctx, "resolver: task discarded",
			"attacker", task.Attacker,
			"defender", task.Defender,
			"reason", reason,
		)
		return nil
	}
	r.metrics.IncrementCounter(ctx, "resolver.kills", 1)
	r.publisher.Publish(ctx, outcome)
	return nil
}

// Resolve は共有ロックでの検証、ダイス、排他ロックでの再確認と撃破を行う。
// 結果の配送は呼び出し側がロックの外で行う。
func (r *Resolver) Resolve(ctx context.Context, task domain.FightTask) (domain.CombatOutcome, domain.DiscardReason) {
	if reason := r.validate(ctx, task); reason != domain.DiscardNone {
		return domain.CombatOutcome{}, reason
	}

	attack, defense := r.dice.Roll(), r.dice.Roll()
	if attack <= defense {
		return domain.CombatOutcome{}, domain.DiscardDiceLost
	}

	var (
		outcome domain.CombatOutcome
		killed  bool
	)
	r.world.WithWrite(ctx, func(w state.Writer) {
		attacker, ok := w.Record(task.Attacker)
		if !ok || !attacker.Alive {
			return
		}
		defender, ok := w.Record(task.Defender)
		if !ok || !defender.Alive {
			return
		}
		killed = w.Kill(task.Defender)
		outcome = domain.CombatOutcome{Attacker: attacker.Agent, Defender: defender.Agent, Won: killed}
	})
	if !killed {
		return domain.CombatOutcome{}, domain.DiscardRaced
	}
	outcome.At = r.clk()
	return outcome, domain.DiscardNone
}

func (r *Resolver) validate(ctx context.Context, task domain.FightTask) domain.DiscardReason {
	reason := domain.DiscardNone
	r.world.WithRead(ctx, func(rd state.Reader) {
		if rec, ok := rd.Record(task.Attacker); !ok || !rec.Alive {
			reason |= domain.DiscardAttackerGone
		}
		if rec, ok := rd.Record(task.Defender); !ok || !rec.Alive {
			reason |= domain.DiscardDefenderGone
		}
	})
	return reason
}

var _ handler.Handler = (*Resolver)(nil)
