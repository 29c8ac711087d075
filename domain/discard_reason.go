package domain

import "fmt"

// DiscardReason は Resolver がタスクを捨てた理由。
type DiscardReason uint8

const (
	DiscardNone         DiscardReason = 0
	DiscardAttackerGone DiscardReason = 1 << 0 // 不明または死亡済み
	DiscardDefenderGone DiscardReason = 1 << 1
	DiscardDiceLost     DiscardReason = 1 << 2
	DiscardRaced        DiscardReason = 1 << 3 // 排他区間での再確認に失敗
)

func (r DiscardReason) Has(x DiscardReason) bool { return r&x != 0 }

// Stale は参照先が無効になったことによる破棄かを返す。
func (r DiscardReason) Stale() bool {
	return r.Has(DiscardAttackerGone | DiscardDefenderGone)
}

func (r DiscardReason) String() string {
	if r == DiscardNone {
		return "none"
	}
	out := ""
	add := func(s string) {
		if out == "" {
			out = s
			return
		}
		out += "|" + s
	}
	if r.Has(DiscardAttackerGone) {
		add("attacker")
	}
	if r.Has(DiscardDefenderGone) {
		add("defender")
	}
	if r.Has(DiscardDiceLost) {
		add("dice")
	}
	if r.Has(DiscardRaced) {
		add("raced")
	}
	if out == "" {
		return fmt.Sprintf("unknown(%d)", r)
	}
	return out
}
