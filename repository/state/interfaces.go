package state

import (
	"context"
	"time"

	"github.com/touka-aoi/skirmish/domain"
)

// Reader は共有ロック下で World を読むためのビュー。
// fn の外に持ち出してはいけない。
type Reader interface {
	Bounds() (width, height int)
	Len() int
	// At は添字 i のレコードのコピーを返す。i は [0, Len()) であること。
	At(i int) domain.AgentRecord
	Record(id domain.AgentID) (domain.AgentRecord, bool)
}

// Writer は排他ロック下でのみ得られる書き込みビュー。
type Writer interface {
	Reader
	// SetPosition は座標をマップ内に丸めて書き込む。生存していなければ false。
	SetPosition(id domain.AgentID, pos domain.Position) bool
	// Kill は生存中のレコードを死亡にする。遷移した場合のみ true を返す。
	Kill(id domain.AgentID) bool
}

// World はエージェントレコードの唯一の所有者。
type World interface {
	WithRead(ctx context.Context, fn func(Reader))
	WithWrite(ctx context.Context, fn func(Writer))
	FindRecord(ctx context.Context, id domain.AgentID) (domain.AgentRecord, bool)
}

type MetricsRecorder interface {
	RecordLatency(ctx context.Context, endpoint string, duration time.Duration)
	RecordContention(ctx context.Context, endpoint string, wait time.Duration)
	IncrementCounter(ctx context.Context, name string, delta int)
}

// TakeSnapshot は共有ロック下で全レコードをコピーする。
func TakeSnapshot(ctx context.Context, w World, tick uint64, now time.Time) domain.Snapshot {
	snap := domain.Snapshot{Tick: tick, TakenAt: now}
	w.WithRead(ctx, func(r Reader) {
		snap.Width, snap.Height = r.Bounds()
		snap.Records = make([]domain.AgentRecord, r.Len())
		for i := range snap.Records {
			snap.Records[i] = r.At(i)
		}
	})
	return snap
}

type nopMetrics struct{}

func (nopMetrics) RecordLatency(context.Context, string, time.Duration)    {}
func (nopMetrics) RecordContention(context.Context, string, time.Duration) {}
func (nopMetrics) IncrementCounter(context.Context, string, int)           {}

// NopMetrics は何も記録しない MetricsRecorder。
var NopMetrics MetricsRecorder = nopMetrics{}
