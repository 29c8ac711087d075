package memory

import (
	"errors"
	"fmt"

	"github.com/touka-aoi/skirmish/domain"
	"github.com/touka-aoi/skirmish/repository/state"
)

var (
	ErrInvalidBounds = errors.New("memory: invalid map bounds")
	ErrInvalidKind   = errors.New("memory: invalid agent kind")
)

// Store はエージェントレコードのアリーナ。ロックは持たないので
// ConcurrentStore か SingleThreadStore 越しに使う。
type Store struct {
	width   int
	height  int
	records []domain.AgentRecord
}

// NewStore は agents を生存状態で登録する。ID は並び順の添字で振り直し、
// 座標はマップ内に丸める。
func NewStore(width, height int, agents []domain.Agent) (*Store, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidBounds, width, height)
	}
	records := make([]domain.AgentRecord, len(agents))
	for i, a := range agents {
		if !a.Kind.Valid() {
			return nil, fmt.Errorf("%w: %s at %d", ErrInvalidKind, a.Kind, i)
		}
		a.ID = domain.AgentID(i)
		a.Position = a.Position.Clamp(width, height)
		records[i] = domain.AgentRecord{Agent: a, Alive: true}
	}
	return &Store{width: width, height: height, records: records}, nil
}

func (s *Store) Bounds() (int, int) {
	return s.width, s.height
}

func (s *Store) Len() int {
	return len(s.records)
}

func (s *Store) At(i int) domain.AgentRecord {
	return s.records[i]
}

func (s *Store) Record(id domain.AgentID) (domain.AgentRecord, bool) {
	rec := s.slot(id)
	if rec == nil {
		return domain.AgentRecord{}, false
	}
	return *rec, true
}

func (s *Store) SetPosition(id domain.AgentID, pos domain.Position) bool {
	rec := s.slot(id)
	if rec == nil || !rec.Alive {
		return false
	}
	rec.Position = pos.Clamp(s.width, s.height)
	return true
}

func (s *Store) Kill(id domain.AgentID) bool {
	rec := s.slot(id)
	if rec == nil || !rec.Alive {
		return false
	}
	rec.Alive = false
	return true
}

func (s *Store) slot(id domain.AgentID) *domain.AgentRecord {
	if int(id) >= len(s.records) {
		return nil
	}
	return &s.records[id]
}

var _ state.Writer = (*Store)(nil)
