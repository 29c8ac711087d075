package domain

// Attributes は種別ごとの移動量と殺傷半径。
type Attributes struct {
	Step       float64
	KillRadius int
}

// Ruleset は種別ごとの属性表と (攻撃側, 防御側) の殺傷可否表。
// 値型なのでコピーして差し替えられる。
type Ruleset struct {
	attrs [kindCount]Attributes
	kills [kindCount][kindCount]bool
}

// DefaultRuleset は Predator が Target を、Guardian が Predator を倒せる表を返す。
func DefaultRuleset() Ruleset {
	var r Ruleset
	r.attrs[KindPredator] = Attributes{Step: 50, KillRadius: 30}
	r.attrs[KindGuardian] = Attributes{Step: 30, KillRadius: 10}
	r.attrs[KindTarget] = Attributes{Step: 1, KillRadius: 1}
	r.kills[KindPredator][KindTarget] = true
	r.kills[KindGuardian][KindPredator] = true
	return r
}

func (r Ruleset) Attributes(k Kind) Attributes {
	if int(k) >= kindCount {
		return Attributes{}
	}
	return r.attrs[k]
}

// WithAttributes は k の属性だけを差し替えた Ruleset を返す。
func (r Ruleset) WithAttributes(k Kind, a Attributes) Ruleset {
	if int(k) < kindCount {
		r.attrs[k] = a
	}
	return r
}

// CanKill は攻撃側の種別が防御側の種別を倒せるかを返す。
func (r Ruleset) CanKill(attacker, defender Kind) bool {
	if int(attacker) >= kindCount || int(defender) >= kindCount {
		return false
	}
	return r.kills[attacker][defender]
}

// Eligible は2レコードの間で戦闘タスクを発行すべきかを判定する。
func (r Ruleset) Eligible(attacker, defender AgentRecord) bool {
	if attacker.ID == defender.ID || !attacker.Alive || !defender.Alive {
		return false
	}
	if !r.CanKill(attacker.Kind, defender.Kind) {
		return false
	}
	radius := r.Attributes(attacker.Kind).KillRadius
	if radius <= 0 {
		return false
	}
	return attacker.Position.DistanceSq(defender.Position) <= radius*radius
}
