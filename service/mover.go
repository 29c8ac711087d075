package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/touka-aoi/skirmish/domain"
	"github.com/touka-aoi/skirmish/repository/state"
)

var ErrMissingDependency = errors.New("service: missing dependency")

// Pusher は戦闘候補の受け取り口。
type Pusher interface {
	Push(batch []domain.FightTask) error
}

type MoverConfig struct {
	World    state.World
	Queue    Pusher
	Rules    domain.Ruleset
	Rand     *rand.Rand
	Metrics  state.MetricsRecorder
	Logger   *slog.Logger
	Interval time.Duration
	Clock    func() time.Time
}

// Mover はエージェントをランダムウォークさせ、射程内の組を FightQueue に積む。
// 単一のゴルーチンから使う。
type Mover struct {
	world    state.World
	queue    Pusher
	rules    domain.Ruleset
	rng      *rand.Rand
	metrics  state.MetricsRecorder
	logger   *slog.Logger
	interval time.Duration
	clk      func() time.Time

	ticks atomic.Uint64
}

func NewMover(cfg MoverConfig) (*Mover, error) {
	if cfg.World == nil || cfg.Queue == nil || cfg.Rand == nil {
		return nil, fmt.Errorf("%w: mover needs world, queue and rand", ErrMissingDependency)
	}
	m := &Mover{
		world:    cfg.World,
		queue:    cfg.Queue,
		rules:    cfg.Rules,
		rng:      cfg.Rand,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		interval: cfg.Interval,
		clk:      cfg.Clock,
	}
	if m.metrics == nil {
		m.metrics = state.NopMetrics
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.interval <= 0 {
		m.interval = 200 * time.Millisecond
	}
	if m.clk == nil {
		m.clk = time.Now
	}
	return m, nil
}

// Tick は移動フェーズと走査フェーズを1回ずつ行い、積んだタスク数を返す。
// Push はワールドのロックを解放してから行う。
func (m *Mover) Tick(ctx context.Context) (int, error) {
	start := m.clk()
	defer func() {
		m.metrics.RecordLatency(ctx, "mover.tick", m.clk().Sub(start))
	}()

	m.world.WithWrite(ctx, func(w state.Writer) {
		for i := range w.Len() {
			rec := w.At(i)
			if !rec.Alive {
				continue
			}
			dx, dy := Displacement(m.rng, m.rules.Attributes(rec.Kind).Step)
			w.SetPosition(rec.ID, domain.Position{X: rec.Position.X + dx, Y: rec.Position.Y + dy})
		}
	})

	var tasks []domain.FightTask
	m.world.WithRead(ctx, func(r state.Reader) {
		tasks = ScanFights(r, m.rules)
	})

	tick := m.ticks.Add(1)
	m.metrics.IncrementCounter(ctx, "mover.ticks", 1)
	if len(tasks) == 0 {
		return 0, nil
	}
	if err := m.queue.Push(tasks); err != nil {
		return 0, fmt.Errorf("service: push tick %d: %w", tick, err)
	}
	m.metrics.IncrementCounter(ctx, "mover.tasks", len(tasks))
	m.logger.DebugContext(ctx, "mover: tasks enqueued", "tick", tick, "tasks", len(tasks))
	return len(tasks), nil
}

// Run は ctx がキャンセルされるまで interval ごとに Tick を繰り返す。
func (m *Mover) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		if _, err := m.Tick(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (m *Mover) Ticks() uint64 {
	return m.ticks.Load()
}

// Displacement は [0,2π) の角度と [0,step) の大きさから整数の移動量を作る。
// 大きさの上端 step そのものは出ない。step が 0 以下なら動かない。
func Displacement(rng *rand.Rand, step float64) (int, int) {
	if step <= 0 {
		return 0, 0
	}
	angle := rng.Float64() * 2 * math.Pi
	length := rng.Float64() * step
	return int(math.Round(math.Cos(angle) * length)), int(math.Round(math.Sin(angle) * length))
}

// ScanFights は全ての順序対を調べて戦闘候補を列挙する。
// 結果は攻撃側、防御側の添字順に並ぶ。
func ScanFights(r state.Reader, rules domain.Ruleset) []domain.FightTask {
	var tasks []domain.FightTask
	n := r.Len()
	for i := range n {
		attacker := r.At(i)
		if !attacker.Alive || rules.Attributes(attacker.Kind).KillRadius <= 0 {
			continue
		}
		for j := range n {
			if i == j {
				continue
			}
			if defender := r.At(j); rules.Eligible(attacker, defender) {
				tasks = append(tasks, domain.FightTask{Attacker: attacker.ID, Defender: defender.ID})
			}
		}
	}
	return tasks
}
