package handler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/touka-aoi/skirmish/domain"
	"github.com/touka-aoi/skirmish/internal/fightqueue"
)

type recordingHandler struct {
	mu    sync.Mutex
	tasks []domain.FightTask
	delay time.Duration
	err   error
}

func (h *recordingHandler) Handle(ctx context.Context, task domain.FightTask) error {
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tasks = append(h.tasks, task)
	return h.err
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.tasks)
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(Config{Source: fightqueue.New()}); err == nil {
		t.Errorf("expected error without handler")
	}
	if _, err := New(Config{Handler: &recordingHandler{}}); err == nil {
		t.Errorf("expected error without source")
	}
}

func TestLoopDrainsQueueOnStop(t *testing.T) {
	q := fightqueue.New()
	h := &recordingHandler{delay: time.Millisecond}
	loop, err := New(Config{Handler: h, Source: q, Workers: 3})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := loop.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	batch := make([]domain.FightTask, 50)
	for i := range batch {
		batch[i] = domain.FightTask{Attacker: 0, Defender: domain.AgentID(i + 1)}
	}
	if err := q.Push(batch); err != nil {
		t.Fatalf("Push returned error: %v", err)
	}
	cancel()

	if err := loop.DrainTimeout(5 * time.Second); err != nil {
		t.Fatalf("DrainTimeout returned error: %v", err)
	}
	if h.count() != 50 {
		t.Fatalf("expected all 50 tasks handled, got %d", h.count())
	}
	if loop.Handled() != 50 {
		t.Errorf("Handled = %d, want 50", loop.Handled())
	}
}

func TestLoopHandlerErrorDoesNotStopWorkers(t *testing.T) {
	q := fightqueue.New()
	h := &recordingHandler{err: errors.New("boom")}
	loop, _ := New(Config{Handler: h, Source: q})
	_ = loop.Start(context.Background())
	_ = q.Push([]domain.FightTask{{Attacker: 0, Defender: 1}, {Attacker: 0, Defender: 2}})

	if err := loop.DrainTimeout(5 * time.Second); err != nil {
		t.Fatalf("DrainTimeout returned error: %v", err)
	}
	if h.count() != 2 {
		t.Fatalf("expected 2 tasks handled, got %d", h.count())
	}
}

func TestLoopStartStopTwice(t *testing.T) {
	loop, _ := New(Config{Handler: &recordingHandler{}, Source: fightqueue.New()})
	if err := loop.Stop(context.Background()); err == nil {
		t.Errorf("Stop before Start should fail")
	}
	if err := loop.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := loop.Start(context.Background()); err == nil {
		t.Errorf("second Start should fail")
	}
	if err := loop.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if err := loop.Stop(context.Background()); err == nil {
		t.Errorf("second Stop should fail")
	}
}
