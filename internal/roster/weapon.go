package roster

import (
	"errors"
	"fmt"
)

var baseDamageByType = map[WeaponType]int{
	Sword: 25, Axe: 30, Spear: 22, Bow: 20, Crossbow: 28,
	Dagger: 15, Mace: 28, Hammer: 35, Staff: 18, Wand: 15,
}

// DefaultBaseDamage is the catalog damage for a weapon type at the given item level.
func DefaultBaseDamage(t WeaponType, level int) int {
	if level < 1 {
		level = 1
	}
	return int(float64(baseDamageByType[t]) * (1 + float64(level-1)*0.1))
}

// DefaultDamageType gives staves fire and wands lightning; everything else is physical.
func DefaultDamageType(t WeaponType) DamageType {
	switch t {
	case Staff:
		return Fire
	case Wand:
		return Lightning
	}
	return Physical
}

type Ember struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	DamageBonus int        `json:"damage_bonus"`
	DamageType  DamageType `json:"damage_type,omitempty"`
}

type Weapon struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        WeaponType `json:"type"`
	BaseDamage  int        `json:"base_damage"`
	DamageType  DamageType `json:"damage_type"`
	HitBonus    int        `json:"hit_bonus,omitempty"`
	CritBonus   int        `json:"crit_bonus,omitempty"`
	StatBonuses Stats      `json:"stat_bonuses"`
	EmberSlots  int        `json:"ember_slots"`
	Embers      []Ember    `json:"embers,omitempty"`
}

var ErrMalformedWeapon = errors.New("malformed weapon")

func (w *Weapon) Validate() error {
	if w == nil {
		return nil
	}
	switch {
	case !w.Type.Valid():
		return fmt.Errorf("%w %s: unknown type %q", ErrMalformedWeapon, w.ID, w.Type)
	case !w.DamageType.Valid():
		return fmt.Errorf("%w %s: unknown damage type %q", ErrMalformedWeapon, w.ID, w.DamageType)
	case w.BaseDamage < 0:
		return fmt.Errorf("%w %s: negative base damage %d", ErrMalformedWeapon, w.ID, w.BaseDamage)
	case len(w.Embers) > w.EmberSlots:
		return fmt.Errorf("%w %s: %d embers in %d slots", ErrMalformedWeapon, w.ID, len(w.Embers), w.EmberSlots)
	}
	for _, e := range w.Embers {
		if e.DamageType != "" && !e.DamageType.Valid() {
			return fmt.Errorf("%w %s: ember %s has unknown damage type %q", ErrMalformedWeapon, w.ID, e.ID, e.DamageType)
		}
	}
	return nil
}

// EffectiveDamageType is the type of the last socketed elemental ember, or the weapon's own.
func (w *Weapon) EffectiveDamageType() DamageType {
	dt := w.DamageType
	for _, e := range w.Embers {
		if e.DamageType != "" {
			dt = e.DamageType
		}
	}
	return dt
}

func (w *Weapon) EmberDamage() int {
	total := 0
	for _, e := range w.Embers {
		total += e.DamageBonus
	}
	return total
}

func (w *Weapon) Clone() *Weapon {
	if w == nil {
		return nil
	}
	c := *w
	c.Embers = append([]Ember(nil), w.Embers...)
	return &c
}
