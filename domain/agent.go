package domain

import "fmt"

// Kind はエージェントの役割を表す。
// 値は名簿ファイルの種別タグと一致する。
type Kind uint8

const (
	KindUnknown  Kind = 0
	KindPredator Kind = 1
	KindTarget   Kind = 2
	KindGuardian Kind = 3
)

const kindCount = 4

// Kinds は生成対象となる全種別。
var Kinds = [...]Kind{KindPredator, KindTarget, KindGuardian}

// KindFromTag は名簿の種別タグから Kind を引く。
func KindFromTag(tag int) (Kind, bool) {
	k := Kind(tag)
	if tag < 0 || tag >= kindCount || !k.Valid() {
		return KindUnknown, false
	}
	return k, true
}

func (k Kind) Valid() bool {
	switch k {
	case KindPredator, KindTarget, KindGuardian:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case KindPredator:
		return "Predator"
	case KindTarget:
		return "Target"
	case KindGuardian:
		return "Guardian"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Symbol はグリッド描画に使う1文字。
func (k Kind) Symbol() byte {
	switch k {
	case KindPredator:
		return 'P'
	case KindTarget:
		return 'T'
	case KindGuardian:
		return 'G'
	default:
		return '?'
	}
}

// AgentID は World が持つスロットの添字。所有権は持たない。
type AgentID uint32

// Position はマップ上の整数座標。
type Position struct {
	X, Y int
}

// DistanceSq は2点間のユークリッド距離の二乗。
func (p Position) DistanceSq(o Position) int {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return dx*dx + dy*dy
}

// Clamp は座標を [0,width) x [0,height) に収める。
func (p Position) Clamp(width, height int) Position {
	return Position{X: clampInt(p.X, 0, width-1), Y: clampInt(p.Y, 0, height-1)}
}

// Within は座標がマップ内にあるかを返す。
func (p Position) Within(width, height int) bool {
	return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height
}

// Agent はマップ上を移動するエージェント。
type Agent struct {
	ID       AgentID
	Kind     Kind
	Name     string
	Position Position
}

// String は "Predator: name { x:1, y:2} " 形式で返す。
func (a Agent) String() string {
	return fmt.Sprintf("%s: %s { x:%d, y:%d} ", a.Kind, a.Name, a.Position.X, a.Position.Y)
}

// AgentRecord は World が所有する生存フラグ付きのエージェント。
// Alive は true から false にしか遷移しない。
type AgentRecord struct {
	Agent
	Alive bool
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
