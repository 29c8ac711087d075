package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/touka-aoi/skirmish/domain"
	"github.com/touka-aoi/skirmish/repository/state"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(40, 20, []domain.Agent{
		{ID: 99, Kind: domain.KindPredator, Name: "Predator_0", Position: domain.Position{X: 1, Y: 1}},
		{Kind: domain.KindTarget, Name: "Target_1", Position: domain.Position{X: 100, Y: -5}},
		{Kind: domain.KindGuardian, Name: "Guardian_2", Position: domain.Position{X: 39, Y: 19}},
	})
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	return store
}

func TestNewStoreAssignsSlotIDs(t *testing.T) {
	store := newTestStore(t)

	if store.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", store.Len())
	}
	for i := range store.Len() {
		rec := store.At(i)
		if rec.ID != domain.AgentID(i) {
			t.Errorf("record %d has id %d", i, rec.ID)
		}
		if !rec.Alive {
			t.Errorf("record %d should start alive", i)
		}
	}
	if got := store.At(1).Position; got != (domain.Position{X: 39, Y: 0}) {
		t.Errorf("expected out of range position to be clamped, got %+v", got)
	}
}

func TestNewStoreRejectsBadInput(t *testing.T) {
	if _, err := NewStore(0, 10, nil); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("expected ErrInvalidBounds, got %v", err)
	}
	_, err := NewStore(10, 10, []domain.Agent{{Kind: domain.KindUnknown, Name: "x"}})
	if !errors.Is(err, ErrInvalidKind) {
		t.Errorf("expected ErrInvalidKind, got %v", err)
	}
}

func TestStoreRecordUnknownID(t *testing.T) {
	store := newTestStore(t)
	if _, ok := store.Record(3); ok {
		t.Errorf("unknown id should not resolve")
	}
	if store.Kill(42) {
		t.Errorf("killing an unknown id should fail")
	}
	if store.SetPosition(42, domain.Position{}) {
		t.Errorf("moving an unknown id should fail")
	}
}

func TestStoreKillIsMonotonic(t *testing.T) {
	store := newTestStore(t)

	if !store.Kill(1) {
		t.Fatalf("first kill should succeed")
	}
	if store.Kill(1) {
		t.Fatalf("second kill should fail")
	}
	if store.SetPosition(1, domain.Position{X: 2, Y: 2}) {
		t.Errorf("dead agent should not move")
	}
	rec, ok := store.Record(1)
	if !ok || rec.Alive {
		t.Errorf("expected record to remain dead, got %+v", rec)
	}
}

func TestStoreSetPositionClamps(t *testing.T) {
	store := newTestStore(t)
	store.SetPosition(0, domain.Position{X: -3, Y: 50})
	if got := store.At(0).Position; got != (domain.Position{X: 0, Y: 19}) {
		t.Errorf("unexpected position: %+v", got)
	}
}

func TestConcurrentStoreSingleKillWinner(t *testing.T) {
	store := NewConcurrentStore(newTestStore(t))
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.WithWrite(ctx, func(w state.Writer) {
				if w.Kill(1) {
					wins.Add(1)
				}
			})
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("expected exactly one kill, got %d", wins.Load())
	}
	if rec, _ := store.FindRecord(ctx, 1); rec.Alive {
		t.Errorf("defender should be dead")
	}
}

type contentionRecorder struct {
	mu        sync.Mutex
	endpoints []string
}

func (r *contentionRecorder) RecordLatency(context.Context, string, time.Duration) {}
func (r *contentionRecorder) IncrementCounter(context.Context, string, int)        {}
func (r *contentionRecorder) RecordContention(_ context.Context, endpoint string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints = append(r.endpoints, endpoint)
}

func TestConcurrentStoreRecordsContention(t *testing.T) {
	rec := &contentionRecorder{}
	store := NewConcurrentStore(newTestStore(t)).
		WithMetrics(rec).
		WithClock(func() time.Time { return time.Unix(100, 0) })
	ctx := context.Background()

	store.WithRead(ctx, func(state.Reader) {})
	store.WithWrite(ctx, func(state.Writer) {})

	if len(rec.endpoints) != 2 || rec.endpoints[0] != "world.read" || rec.endpoints[1] != "world.write" {
		t.Fatalf("unexpected contention endpoints: %v", rec.endpoints)
	}
}

func TestTakeSnapshotCopiesRecords(t *testing.T) {
	store := NewSingleThreadStore(newTestStore(t))
	ctx := context.Background()

	snap := state.TakeSnapshot(ctx, store, 7, time.Unix(5, 0))
	store.WithWrite(ctx, func(w state.Writer) { w.Kill(0) })

	if snap.Width != 40 || snap.Height != 20 || snap.Tick != 7 {
		t.Fatalf("unexpected snapshot header: %+v", snap)
	}
	if !snap.Records[0].Alive {
		t.Errorf("snapshot should not observe later writes")
	}
	if len(snap.Alive()) != 3 {
		t.Errorf("expected 3 alive agents, got %d", len(snap.Alive()))
	}
}
