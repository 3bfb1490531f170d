package roster

import (
	"fmt"

	"squadsim/internal/config"
)

type Stats struct {
	HP  int `json:"hp"`
	Str int `json:"str"`
	Mag int `json:"mag"`
	Skl int `json:"skl"`
	Arm int `json:"arm"`
	Ldr int `json:"ldr"`
}

func (s Stats) Add(o Stats) Stats {
	return Stats{
		HP: s.HP + o.HP, Str: s.Str + o.Str, Mag: s.Mag + o.Mag,
		Skl: s.Skl + o.Skl, Arm: s.Arm + o.Arm, Ldr: s.Ldr + o.Ldr,
	}
}

func StatsFromDef(d config.StatsDef) Stats {
	return Stats{HP: d.HP, Str: d.Str, Mag: d.Mag, Skl: d.Skl, Arm: d.Arm, Ldr: d.Ldr}
}

type DamageType string

const (
	Physical  DamageType = "physical"
	Fire      DamageType = "fire"
	Ice       DamageType = "ice"
	Lightning DamageType = "lightning"
	Holy      DamageType = "holy"
	Dark      DamageType = "dark"
)

func (d DamageType) IsPhysical() bool { return d == Physical }

func (d DamageType) IsMagical() bool {
	switch d {
	case Fire, Ice, Lightning, Holy, Dark:
		return true
	}
	return false
}

func (d DamageType) Valid() bool { return d.IsPhysical() || d.IsMagical() }

func ParseDamageType(s string) (DamageType, error) {
	if s == "" {
		return Physical, nil
	}
	d := DamageType(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown damage type %q", s)
	}
	return d, nil
}

type WeaponType string

const (
	Sword    WeaponType = "sword"
	Axe      WeaponType = "axe"
	Spear    WeaponType = "spear"
	Mace     WeaponType = "mace"
	Dagger   WeaponType = "dagger"
	Bow      WeaponType = "bow"
	Crossbow WeaponType = "crossbow"
	Staff    WeaponType = "staff"
	Wand     WeaponType = "wand"
	Hammer   WeaponType = "hammer"
)

// WeaponTypes is the canonical order, used to break proficiency ties.
var WeaponTypes = []WeaponType{Sword, Axe, Spear, Mace, Dagger, Bow, Crossbow, Staff, Wand, Hammer}

func (w WeaponType) Valid() bool {
	for _, t := range WeaponTypes {
		if t == w {
			return true
		}
	}
	return false
}

func ParseWeaponType(s string) (WeaponType, error) {
	w := WeaponType(s)
	if !w.Valid() {
		return "", fmt.Errorf("unknown weapon type %q", s)
	}
	return w, nil
}

// CombatBonuses is what the skill system contributes to a fight, in percent.
type CombatBonuses struct {
	DamageBonus   int `json:"damage_bonus"`
	CriticalBonus int `json:"critical_bonus"`
}

type StatusEffect struct {
	Name          string `json:"name"`
	DamagePerTurn int    `json:"damage_per_turn,omitempty"`
	HealPerTurn   int    `json:"heal_per_turn,omitempty"`
	Duration      int    `json:"duration"`
	Disabling     bool   `json:"disabling,omitempty"`
}
