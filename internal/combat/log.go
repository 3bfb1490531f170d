package combat

import (
	"fmt"
	"time"

	"squadsim/internal/roster"
)

type Phase int

const (
	PhaseSetup Phase = iota
	PhaseInitiative
	PhaseAttack
	PhaseCounter
	PhaseResolution
	PhaseComplete
)

var phaseNames = [...]string{"SETUP", "INITIATIVE", "ATTACK", "COUNTER", "RESOLUTION", "COMPLETE"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	for i, n := range phaseNames {
		if n == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

type LogKind int

const (
	LogAttack LogKind = iota
	LogInfo
	LogStatus
)

var logKindNames = [...]string{"attack", "info", "status"}

func (k LogKind) String() string {
	if k < 0 || int(k) >= len(logKindNames) {
		return fmt.Sprintf("LogKind(%d)", int(k))
	}
	return logKindNames[k]
}

func (k LogKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *LogKind) UnmarshalText(b []byte) error {
	for i, n := range logKindNames {
		if n == string(b) {
			*k = LogKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown log kind %q", b)
}

type VictoryCondition int

const (
	VictoryElimination VictoryCondition = iota
	VictoryTimeout
)

var victoryNames = [...]string{"ELIMINATION", "TIMEOUT"}

func (v VictoryCondition) String() string {
	if v < 0 || int(v) >= len(victoryNames) {
		return fmt.Sprintf("VictoryCondition(%d)", int(v))
	}
	return victoryNames[v]
}

func (v VictoryCondition) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *VictoryCondition) UnmarshalText(b []byte) error {
	for i, n := range victoryNames {
		if n == string(b) {
			*v = VictoryCondition(i)
			return nil
		}
	}
	return fmt.Errorf("unknown victory condition %q", b)
}

// UnitRef is a value snapshot of a unit taken when the entry was written.
type UnitRef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	SquadID string `json:"squad_id"`
	Level   int    `json:"level"`
	HP      int    `json:"hp"`
	MaxHP   int    `json:"max_hp"`
}

func refOf(sq *roster.Squad, u *roster.Unit) UnitRef {
	return UnitRef{ID: u.ID(), Name: u.Name(), SquadID: sq.ID(), Level: u.Level(), HP: u.CurrentHP(), MaxHP: u.MaxHP()}
}

type LogEntry struct {
	Seq        int               `json:"seq"`
	Round      int               `json:"round"`
	Phase      Phase             `json:"phase"`
	Kind       LogKind           `json:"type"`
	Time       time.Time         `json:"time"`
	Message    string            `json:"message"`
	Attacker   *UnitRef          `json:"attacker,omitempty"`
	Target     *UnitRef          `json:"target,omitempty"`
	Weapon     string            `json:"weapon,omitempty"`
	WeaponType roster.WeaponType `json:"weapon_type,omitempty"`
	Damage     int               `json:"damage,omitempty"`
	Healing    int               `json:"healing,omitempty"`
	Critical   bool              `json:"critical,omitempty"`
	Modifiers  []DamageModifier  `json:"modifiers,omitempty"`
	Details    map[string]any    `json:"details,omitempty"`
}

func (le LogEntry) clone() LogEntry {
	if le.Attacker != nil {
		a := *le.Attacker
		le.Attacker = &a
	}
	if le.Target != nil {
		t := *le.Target
		le.Target = &t
	}
	le.Modifiers = append([]DamageModifier(nil), le.Modifiers...)
	if le.Details != nil {
		d := make(map[string]any, len(le.Details))
		for k, v := range le.Details {
			d[k] = v
		}
		le.Details = d
	}
	return le
}
