package memory

import (
	"context"

	"github.com/touka-aoi/skirmish/domain"
	"github.com/touka-aoi/skirmish/repository/state"
)

// SingleThreadStore はロックを取らない World。
// 全ての呼び出しが同じゴルーチンから行われる lockstep モード専用。
type SingleThreadStore struct {
	base *Store
}

func NewSingleThreadStore(base *Store) *SingleThreadStore {
	return &SingleThreadStore{base: base}
}

func (s *SingleThreadStore) WithRead(ctx context.Context, fn func(state.Reader)) {
	_ = ctx
	fn(s.base)
}

func (s *SingleThreadStore) WithWrite(ctx context.Context, fn func(state.Writer)) {
	_ = ctx
	fn(s.base)
}

func (s *SingleThreadStore) FindRecord(ctx context.Context, id domain.AgentID) (domain.AgentRecord, bool) {
	_ = ctx
	return s.base.Record(id)
}

var _ state.World = (*SingleThreadStore)(nil)
