package roster

import "fmt"

type Position string

const (
	FrontLeft   Position = "front_left"
	FrontCenter Position = "front_center"
	FrontRight  Position = "front_right"
	BackLeft    Position = "back_left"
	BackCenter  Position = "back_center"
	BackRight   Position = "back_right"
)

// FormationOrder is the acting order: front row then back row, left to right.
var FormationOrder = []Position{FrontLeft, FrontCenter, FrontRight, BackLeft, BackCenter, BackRight}

// autoPlacement fills the center of each row first.
var autoPlacement = []Position{FrontCenter, FrontLeft, FrontRight, BackCenter, BackLeft, BackRight}

func (p Position) IsFront() bool { return p == FrontLeft || p == FrontCenter || p == FrontRight }
func (p Position) IsBack() bool  { return p == BackLeft || p == BackCenter || p == BackRight }
func (p Position) Valid() bool   { return p.IsFront() || p.IsBack() }

func ParsePosition(s string) (Position, error) {
	if s == "" {
		return "", nil
	}
	p := Position(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown formation slot %q", s)
	}
	return p, nil
}

// FormationBonus holds percentages granted by a slot.
type FormationBonus struct {
	Front                   bool `json:"front"`
	ArmorBonus              int  `json:"armor_bonus,omitempty"`
	PhysicalDamageBonus     int  `json:"physical_damage_bonus,omitempty"`
	RangedDamageBonus       int  `json:"ranged_damage_bonus,omitempty"`
	PhysicalDamageReduction int  `json:"physical_damage_reduction,omitempty"`
}

var (
	frontRowBonus = FormationBonus{Front: true, ArmorBonus: 10, PhysicalDamageBonus: 5}
	backRowBonus  = FormationBonus{RangedDamageBonus: 15, PhysicalDamageReduction: 10}
)

// FormationBonusFor returns the static bonus for a slot. Unknown slots get nothing.
func FormationBonusFor(p Position) FormationBonus {
	switch {
	case p.IsFront():
		return frontRowBonus
	case p.IsBack():
		return backRowBonus
	}
	return FormationBonus{}
}
