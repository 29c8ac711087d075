package domain

import (
	"testing"

	"pgregory.net/rapid"
)

func TestDefaultRuleset_KillTable(t *testing.T) {
	r := DefaultRuleset()

	tests := []struct {
		attacker Kind
		defender Kind
		want     bool
	}{
		{KindPredator, KindTarget, true},
		{KindGuardian, KindPredator, true},
		{KindTarget, KindPredator, false},
		{KindTarget, KindGuardian, false},
		{KindGuardian, KindTarget, false},
		{KindPredator, KindGuardian, false},
		{KindPredator, KindPredator, false},
		{KindGuardian, KindGuardian, false},
		{KindTarget, KindTarget, false},
		{KindUnknown, KindTarget, false},
	}
	for _, tt := range tests {
		if got := r.CanKill(tt.attacker, tt.defender); got != tt.want {
			t.Errorf("CanKill(%s, %s) = %v, want %v", tt.attacker, tt.defender, got, tt.want)
		}
	}
}

func TestDefaultRuleset_Attributes(t *testing.T) {
	r := DefaultRuleset()

	if a := r.Attributes(KindPredator); a.Step != 50 || a.KillRadius != 30 {
		t.Errorf("Predator attributes = %+v", a)
	}
	if a := r.Attributes(KindGuardian); a.Step != 30 || a.KillRadius != 10 {
		t.Errorf("Guardian attributes = %+v", a)
	}
	if a := r.Attributes(KindTarget); a.Step != 1 || a.KillRadius != 1 {
		t.Errorf("Target attributes = %+v", a)
	}
	if a := r.Attributes(Kind(200)); a != (Attributes{}) {
		t.Errorf("out of range kind attributes = %+v", a)
	}
}

func TestRuleset_EligibleSamePosition(t *testing.T) {
	r := DefaultRuleset()
	predator := AgentRecord{Agent: Agent{ID: 0, Kind: KindPredator}, Alive: true}
	target := AgentRecord{Agent: Agent{ID: 1, Kind: KindTarget}, Alive: true}
	guardian := AgentRecord{Agent: Agent{ID: 2, Kind: KindGuardian}, Alive: true}

	if !r.Eligible(predator, target) {
		t.Errorf("predator and target at the same spot should be eligible")
	}
	if r.Eligible(guardian, target) {
		t.Errorf("guardian never fights target")
	}
	if r.Eligible(predator, predator) {
		t.Errorf("an agent never fights itself")
	}
	target.Alive = false
	if r.Eligible(predator, target) {
		t.Errorf("dead defender should not be eligible")
	}
}

func TestRuleset_EligibleRadiusBoundary(t *testing.T) {
	r := DefaultRuleset().WithAttributes(KindPredator, Attributes{Step: 0, KillRadius: 5})
	predator := AgentRecord{Agent: Agent{ID: 0, Kind: KindPredator}, Alive: true}
	target := AgentRecord{Agent: Agent{ID: 1, Kind: KindTarget, Position: Position{X: 3, Y: 4}}, Alive: true}

	if !r.Eligible(predator, target) {
		t.Errorf("distance exactly equal to radius is inclusive")
	}
	r = r.WithAttributes(KindPredator, Attributes{KillRadius: 4})
	if r.Eligible(predator, target) {
		t.Errorf("distance 5 with radius 4 should not be eligible")
	}
	r = r.WithAttributes(KindPredator, Attributes{KillRadius: 0})
	target.Position = Position{}
	if r.Eligible(predator, target) {
		t.Errorf("zero radius never fights")
	}
}

func TestRuleset_EligibleImpliesRuleAndRange(t *testing.T) {
	r := DefaultRuleset()
	rapid.Check(t, func(t *rapid.T) {
		a := AgentRecord{
			Agent: Agent{
				ID:       0,
				Kind:     rapid.SampledFrom(Kinds[:]).Draw(t, "attackerKind"),
				Position: Position{X: rapid.IntRange(0, 39).Draw(t, "ax"), Y: rapid.IntRange(0, 19).Draw(t, "ay")},
			},
			Alive: rapid.Bool().Draw(t, "attackerAlive"),
		}
		d := AgentRecord{
			Agent: Agent{
				ID:       1,
				Kind:     rapid.SampledFrom(Kinds[:]).Draw(t, "defenderKind"),
				Position: Position{X: rapid.IntRange(0, 39).Draw(t, "dx"), Y: rapid.IntRange(0, 19).Draw(t, "dy")},
			},
			Alive: rapid.Bool().Draw(t, "defenderAlive"),
		}
		if !r.Eligible(a, d) {
			return
		}
		if !r.CanKill(a.Kind, d.Kind) {
			t.Fatalf("eligible pair violates kill rule: %s -> %s", a.Kind, d.Kind)
		}
		radius := r.Attributes(a.Kind).KillRadius
		if a.Position.DistanceSq(d.Position) > radius*radius {
			t.Fatalf("eligible pair out of range: %+v %+v", a.Position, d.Position)
		}
		if !a.Alive || !d.Alive {
			t.Fatalf("eligible pair with dead member")
		}
	})
}
