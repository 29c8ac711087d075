package metrics

import (
	"context"
	"testing"
	"time"
)

func TestRecorderCountsAndSummary(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	r.IncrementCounter(ctx, "resolver.kills", 1)
	r.IncrementCounter(ctx, "resolver.kills", 2)
	r.IncrementCounter(ctx, "mover.ticks", 1)
	r.RecordLatency(ctx, "mover.tick", 2*time.Millisecond)
	r.RecordLatency(ctx, "mover.tick", 4*time.Millisecond)
	r.RecordContention(ctx, "world.write", time.Millisecond)

	if got := r.Counter("resolver.kills"); got != 3 {
		t.Fatalf("Counter = %d, want 3", got)
	}

	attrs := r.Summary()
	if len(attrs) != 4 {
		t.Fatalf("expected 4 summary attrs, got %d", len(attrs))
	}
	if attrs[0].Key != "mover.ticks" || attrs[1].Key != "resolver.kills" {
		t.Errorf("counters are not sorted: %v", attrs[:2])
	}
	if attrs[2].Key != "latency.mover.tick" || attrs[3].Key != "wait.world.write" {
		t.Errorf("unexpected timing keys: %v", attrs[2:])
	}
	group := attrs[2].Value.Group()
	if group[1].Value.Duration() != 3*time.Millisecond {
		t.Errorf("avg = %v, want 3ms", group[1].Value.Duration())
	}
}
