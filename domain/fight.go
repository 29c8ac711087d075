package domain

import "time"

// FightTask は Mover が発行し Resolver が消費する戦闘候補。
// 消費時点では既に古くなっている可能性がある。
type FightTask struct {
	Attacker AgentID
	Defender AgentID
}

// CombatOutcome は決着した戦闘の結果。ObserverHub にのみ渡される。
type CombatOutcome struct {
	Attacker Agent
	Defender Agent
	Won      bool
	At       time.Time
}
