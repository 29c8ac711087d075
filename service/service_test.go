package service

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"

	"pgregory.net/rapid"

	"github.com/touka-aoi/skirmish/domain"
	"github.com/touka-aoi/skirmish/internal/fightqueue"
	"github.com/touka-aoi/skirmish/repository/state"
	"github.com/touka-aoi/skirmish/repository/state/memory"
)

type scriptedDice struct {
	mu    sync.Mutex
	rolls []int
	i     int
}

func (d *scriptedDice) Roll() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := d.rolls[d.i%len(d.rolls)]
	d.i++
	return v
}

type collector struct {
	mu       sync.Mutex
	outcomes []domain.CombatOutcome
}

func (c *collector) Publish(_ context.Context, o domain.CombatOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, o)
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.outcomes)
}

type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

func newWorld(t fataler, agents ...domain.Agent) *memory.ConcurrentStore {
	t.Helper()
	base, err := memory.NewStore(40, 20, agents)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	return memory.NewConcurrentStore(base)
}

func agentAt(kind domain.Kind, name string, x, y int) domain.Agent {
	return domain.Agent{Kind: kind, Name: name, Position: domain.Position{X: x, Y: y}}
}

func newResolver(t *testing.T, world state.World, dice domain.Dice, pub Publisher) *Resolver {
	t.Helper()
	r, err := NewResolver(ResolverConfig{World: world, Dice: dice, Publisher: pub})
	if err != nil {
		t.Fatalf("NewResolver returned error: %v", err)
	}
	return r
}

func TestScanFightsPredatorTargetSameSpot(t *testing.T) {
	world := newWorld(t,
		agentAt(domain.KindPredator, "p", 0, 0),
		agentAt(domain.KindTarget, "t", 0, 0),
	)
	var tasks []domain.FightTask
	world.WithRead(context.Background(), func(r state.Reader) {
		tasks = ScanFights(r, domain.DefaultRuleset())
	})
	if len(tasks) != 1 || tasks[0] != (domain.FightTask{Attacker: 0, Defender: 1}) {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestScanFightsGuardianNeverTargetsTarget(t *testing.T) {
	world := newWorld(t,
		agentAt(domain.KindGuardian, "g", 5, 5),
		agentAt(domain.KindTarget, "t", 5, 5),
		agentAt(domain.KindTarget, "t2", 6, 5),
	)
	var tasks []domain.FightTask
	world.WithRead(context.Background(), func(r state.Reader) {
		tasks = ScanFights(r, domain.DefaultRuleset())
	})
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %+v", tasks)
	}
}

func TestScanFightsOnlyEligiblePairs(t *testing.T) {
	rules := domain.DefaultRuleset().
		WithAttributes(domain.KindPredator, domain.Attributes{Step: 50, KillRadius: 6}).
		WithAttributes(domain.KindGuardian, domain.Attributes{Step: 30, KillRadius: 3})
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(t, "agents")
		agents := make([]domain.Agent, n)
		for i := range agents {
			agents[i] = agentAt(
				rapid.SampledFrom(domain.Kinds[:]).Draw(t, "kind"), "a",
				rapid.IntRange(0, 39).Draw(t, "x"),
				rapid.IntRange(0, 19).Draw(t, "y"),
			)
		}
		world := newWorld(t, agents...)
		world.WithRead(context.Background(), func(r state.Reader) {
			for _, task := range ScanFights(r, rules) {
				a, _ := r.Record(task.Attacker)
				d, _ := r.Record(task.Defender)
				if !rules.Eligible(a, d) {
					t.Fatalf("ineligible task %+v between %+v and %+v", task, a, d)
				}
				if a.Kind == domain.KindGuardian && d.Kind == domain.KindTarget {
					t.Fatalf("guardian tasked against target")
				}
			}
		})
	})
}

func TestMoverTickKeepsBoundsAndLiveness(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		rng := rand.New(rand.NewPCG(seed, 0))
		width := rapid.IntRange(1, 60).Draw(t, "width")
		height := rapid.IntRange(1, 30).Draw(t, "height")
		base, err := memory.NewStore(width, height, RandomRoster(rng, width, height, 20))
		if err != nil {
			t.Fatalf("NewStore returned error: %v", err)
		}
		world := memory.NewSingleThreadStore(base)
		ctx := context.Background()
		world.WithWrite(ctx, func(w state.Writer) { w.Kill(0) })
		before, _ := world.FindRecord(ctx, 0)

		mover, err := NewMover(MoverConfig{World: world, Queue: fightqueue.New(), Rules: domain.DefaultRuleset(), Rand: rng})
		if err != nil {
			t.Fatalf("NewMover returned error: %v", err)
		}
		for range 10 {
			if _, err := mover.Tick(ctx); err != nil {
				t.Fatalf("Tick returned error: %v", err)
			}
			world.WithRead(ctx, func(r state.Reader) {
				for i := range r.Len() {
					if rec := r.At(i); !rec.Position.Within(width, height) {
						t.Fatalf("agent %d escaped bounds: %+v", i, rec.Position)
					}
				}
			})
		}
		after, _ := world.FindRecord(ctx, 0)
		if after.Alive || after.Position != before.Position {
			t.Fatalf("dead agent changed: before %+v after %+v", before, after)
		}
		if mover.Ticks() != 10 {
			t.Fatalf("Ticks = %d, want 10", mover.Ticks())
		}
	})
}

func TestDisplacementStaysWithinStep(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rng := rand.New(rand.NewPCG(rapid.Uint64().Draw(t, "seed"), 1))
		step := float64(rapid.IntRange(0, 60).Draw(t, "step"))
		dx, dy := Displacement(rng, step)
		// 成分ごとの丸めで各軸 0.5 までずれる。
		limit := (step + 1) * (step + 1)
		if d := float64(dx*dx + dy*dy); d > limit {
			t.Fatalf("Displacement(%v) = (%d, %d) is longer than the step", step, dx, dy)
		}
		if step == 0 && (dx != 0 || dy != 0) {
			t.Fatalf("zero step moved (%d, %d)", dx, dy)
		}
	})
}

func TestMoverTickEnqueuesAfterMove(t *testing.T) {
	rules := domain.DefaultRuleset().
		WithAttributes(domain.KindPredator, domain.Attributes{Step: 0, KillRadius: 100}).
		WithAttributes(domain.KindTarget, domain.Attributes{Step: 0, KillRadius: 1})
	world := newWorld(t,
		agentAt(domain.KindPredator, "p", 0, 0),
		agentAt(domain.KindTarget, "t", 39, 19),
	)
	q := fightqueue.New()
	mover, _ := NewMover(MoverConfig{World: world, Queue: q, Rules: rules, Rand: rand.New(rand.NewPCG(1, 2))})

	n, err := mover.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick returned error: %v", err)
	}
	if n != 1 || q.Len() != 1 {
		t.Fatalf("expected one queued task, got n=%d len=%d", n, q.Len())
	}
}

func TestNewMoverRequiresDependencies(t *testing.T) {
	if _, err := NewMover(MoverConfig{}); err == nil {
		t.Fatalf("expected error for empty config")
	}
	if _, err := NewResolver(ResolverConfig{}); err == nil {
		t.Fatalf("expected error for empty config")
	}
}

func TestResolverScenarioSingleKill(t *testing.T) {
	world := newWorld(t,
		agentAt(domain.KindPredator, "p", 0, 0),
		agentAt(domain.KindTarget, "t", 0, 0),
	)
	pub := &collector{}
	r := newResolver(t, world, &scriptedDice{rolls: []int{6, 1}}, pub)

	if err := r.Handle(context.Background(), domain.FightTask{Attacker: 0, Defender: 1}); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if pub.count() != 1 {
		t.Fatalf("expected one outcome, got %d", pub.count())
	}
	got := pub.outcomes[0]
	if !got.Won || got.Attacker.Name != "p" || got.Defender.Name != "t" {
		t.Errorf("unexpected outcome: %+v", got)
	}
	if rec, _ := world.FindRecord(context.Background(), 1); rec.Alive {
		t.Errorf("defender should be dead")
	}
}

func TestResolverDuplicateTasksKillOnce(t *testing.T) {
	world := newWorld(t,
		agentAt(domain.KindPredator, "p", 0, 0),
		agentAt(domain.KindTarget, "t", 0, 0),
	)
	pub := &collector{}
	r := newResolver(t, world, &scriptedDice{rolls: []int{6, 1}}, pub)
	task := domain.FightTask{Attacker: 0, Defender: 1}

	_, first := r.Resolve(context.Background(), task)
	_, second := r.Resolve(context.Background(), task)
	if first != domain.DiscardNone {
		t.Fatalf("first resolve should win, got %s", first)
	}
	if second != domain.DiscardDefenderGone {
		t.Fatalf("second resolve should be stale, got %s", second)
	}
}

func TestResolverDiceLoss(t *testing.T) {
	world := newWorld(t,
		agentAt(domain.KindPredator, "p", 0, 0),
		agentAt(domain.KindTarget, "t", 0, 0),
	)
	pub := &collector{}
	r := newResolver(t, world, &scriptedDice{rolls: []int{3, 3}}, pub)

	_, reason := r.Resolve(context.Background(), domain.FightTask{Attacker: 0, Defender: 1})
	if reason != domain.DiscardDiceLost {
		t.Fatalf("tie should lose, got %s", reason)
	}
	if rec, _ := world.FindRecord(context.Background(), 1); !rec.Alive {
		t.Errorf("defender should survive a tie")
	}
}

func TestResolverUnknownIDs(t *testing.T) {
	world := newWorld(t, agentAt(domain.KindPredator, "p", 0, 0))
	r := newResolver(t, world, &scriptedDice{rolls: []int{6, 1}}, &collector{})

	_, reason := r.Resolve(context.Background(), domain.FightTask{Attacker: 7, Defender: 8})
	if !reason.Has(domain.DiscardAttackerGone) || !reason.Has(domain.DiscardDefenderGone) {
		t.Fatalf("unexpected reason: %s", reason)
	}
}

func TestResolverConcurrentWorkersKillAtMostOnce(t *testing.T) {
	agents := []domain.Agent{agentAt(domain.KindPredator, "p", 0, 0)}
	for i := range 10 {
		agents = append(agents, agentAt(domain.KindTarget, "t", i, 0))
	}
	world := newWorld(t, agents...)
	pub := &collector{}
	r := newResolver(t, world, &scriptedDice{rolls: []int{6, 1}}, pub)

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := 1; d <= 10; d++ {
				_ = r.Handle(context.Background(), domain.FightTask{Attacker: 0, Defender: domain.AgentID((d+w)%10 + 1)})
			}
		}()
	}
	wg.Wait()

	seen := make(map[domain.AgentID]bool)
	for _, o := range pub.outcomes {
		if seen[o.Defender.ID] {
			t.Fatalf("defender %d killed twice", o.Defender.ID)
		}
		seen[o.Defender.ID] = true
	}
	dead := 0
	world.WithRead(context.Background(), func(r state.Reader) {
		for i := 1; i < r.Len(); i++ {
			if !r.At(i).Alive {
				dead++
			}
		}
	})
	if dead != pub.count() {
		t.Fatalf("dead defenders %d do not match outcomes %d", dead, pub.count())
	}
}

func TestRandomRosterNamesAndBounds(t *testing.T) {
	agents := RandomRoster(rand.New(rand.NewPCG(3, 4)), 40, 20, 50)
	if len(agents) != 50 {
		t.Fatalf("expected 50 agents, got %d", len(agents))
	}
	for i, a := range agents {
		if !a.Kind.Valid() || !a.Position.Within(40, 20) {
			t.Errorf("agent %d invalid: %+v", i, a)
		}
		if a.Name == "" {
			t.Errorf("agent %d has no name", i)
		}
	}
}

func TestResolverDeadDefenderNoOutcomes(t *testing.T) {
	world := newWorld(t,
		agentAt(domain.KindPredator, "p", 0, 0),
		agentAt(domain.KindTarget, "t", 0, 0),
	)
	world.WithWrite(context.Background(), func(w state.Writer) { w.Kill(1) })
	pub := &collector{}
	r := newResolver(t, world, &scriptedDice{rolls: []int{6, 1}}, pub)

	for range 2 {
		if err := r.Handle(context.Background(), domain.FightTask{Attacker: 0, Defender: 1}); err != nil {
			t.Fatalf("Handle returned error: %v", err)
		}
	}
	if pub.count() != 0 {
		t.Fatalf("expected no outcomes, got %d", pub.count())
	}
}
