package domain

import "time"

// Snapshot は共有ロック下で取得した World のコピー。
type Snapshot struct {
	Width   int
	Height  int
	Tick    uint64
	Records []AgentRecord
	TakenAt time.Time
}

// Alive は生存しているエージェントを World の順序のまま返す。
func (s Snapshot) Alive() []Agent {
	out := make([]Agent, 0, len(s.Records))
	for _, rec := range s.Records {
		if rec.Alive {
			out = append(out, rec.Agent)
		}
	}
	return out
}

// Census は種別ごとの生存数。
func (s Snapshot) Census() map[Kind]int {
	counts := make(map[Kind]int, len(Kinds))
	for _, rec := range s.Records {
		if rec.Alive {
			counts[rec.Kind]++
		}
	}
	return counts
}
