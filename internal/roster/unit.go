package roster

import (
	"errors"
	"fmt"
)

const (
	MaxLevel               = 99
	MaxProficiency         = 100
	ProficiencyExpPerLevel = 100
)

type UnitSpec struct {
	ID            string
	Name          string
	Race          string
	Archetype     string
	Level         int
	Stats         Stats
	Bonuses       Stats
	Weapon        *Weapon
	Proficiencies map[WeaponType]int
	Combat        CombatBonuses
	Statuses      []StatusEffect
}

type Unit struct {
	id, name        string
	race, archetype string
	level, exp      int
	base            Stats
	bonuses         Stats
	hp              int
	weapon          *Weapon
	profExp         map[WeaponType]int
	position        Position
	combat          CombatBonuses
	effects         []StatusEffect
	slotCost        int
}

// NewUnit builds a unit at full HP. Racial stat modifiers are applied to spec.Stats.
func NewUnit(spec UnitSpec, traits RaceTraits) (*Unit, error) {
	if spec.ID == "" {
		return nil, errors.New("unit: missing id")
	}
	u := &Unit{
		id: spec.ID, name: spec.Name, race: spec.Race, archetype: spec.Archetype,
		level:    spec.Level,
		base:     traits.Apply(spec.Stats),
		bonuses:  spec.Bonuses,
		weapon:   spec.Weapon.Clone(),
		profExp:  map[WeaponType]int{},
		combat:   spec.Combat,
		slotCost: traits.SlotCost,
	}
	if u.name == "" {
		u.name = u.id
	}
	if u.level < 1 {
		u.level = 1
	}
	if u.level > MaxLevel {
		u.level = MaxLevel
	}
	if u.slotCost < 1 {
		u.slotCost = 1
	}
	for t, lvl := range spec.Proficiencies {
		if lvl < 0 || lvl > MaxProficiency {
			return nil, fmt.Errorf("unit %s: proficiency %s out of range: %d", u.id, t, lvl)
		}
		u.profExp[t] = lvl * ProficiencyExpPerLevel
	}
	for _, e := range spec.Statuses {
		u.AddStatusEffect(e)
	}
	if u.MaxHP() <= 0 {
		return nil, fmt.Errorf("unit %s: max hp must be positive", u.id)
	}
	u.hp = u.MaxHP()
	return u, nil
}

func (u *Unit) ID() string                   { return u.id }
func (u *Unit) Name() string                 { return u.name }
func (u *Unit) Race() string                 { return u.race }
func (u *Unit) Archetype() string            { return u.archetype }
func (u *Unit) Level() int                   { return u.level }
func (u *Unit) Experience() int              { return u.exp }
func (u *Unit) ExpToNext() int               { return u.level * u.level * 100 }
func (u *Unit) CurrentHP() int               { return u.hp }
func (u *Unit) MaxHP() int                   { return u.Stats().HP }
func (u *Unit) IsAlive() bool                { return u.hp > 0 }
func (u *Unit) Position() Position           { return u.position }
func (u *Unit) SlotCost() int                { return u.slotCost }
func (u *Unit) CombatBonuses() CombatBonuses { return u.combat }
func (u *Unit) EquippedWeapon() *Weapon      { return u.weapon }

// Stats are the derived combat stats: race-adjusted base, flat bonuses, weapon bonuses.
func (u *Unit) Stats() Stats {
	s := u.base.Add(u.bonuses)
	if u.weapon != nil {
		s = s.Add(u.weapon.StatBonuses)
	}
	return s
}

// Equip swaps the weapon. It does not validate; a bad weapon surfaces when used.
func (u *Unit) Equip(w *Weapon) { u.weapon = w.Clone() }

// WeaponDamage is base damage scaled by proficiency plus ember damage.
func (u *Unit) WeaponDamage() (int, error) {
	w := u.weapon
	if w == nil {
		return 0, fmt.Errorf("unit %s: no weapon equipped", u.id)
	}
	if err := w.Validate(); err != nil {
		return 0, err
	}
	prof := u.Proficiency(w.Type)
	return w.BaseDamage + w.BaseDamage*prof/100 + w.EmberDamage(), nil
}

func (u *Unit) Proficiency(t WeaponType) int {
	lvl := u.profExp[t] / ProficiencyExpPerLevel
	if lvl > MaxProficiency {
		lvl = MaxProficiency
	}
	return lvl
}

// Proficiencies returns levels for every tracked weapon type.
func (u *Unit) Proficiencies() map[WeaponType]int {
	out := make(map[WeaponType]int, len(u.profExp))
	for t := range u.profExp {
		out[t] = u.Proficiency(t)
	}
	return out
}

// IncreaseProficiency adds experience to a weapon track and reports a level gain.
func (u *Unit) IncreaseProficiency(t WeaponType, exp int) bool {
	if exp <= 0 {
		return false
	}
	before := u.Proficiency(t)
	u.profExp[t] += exp
	return u.Proficiency(t) > before
}

// TakeDamage clamps HP at zero and returns the damage actually applied.
func (u *Unit) TakeDamage(n int) int {
	if n <= 0 || u.hp <= 0 {
		return 0
	}
	if n > u.hp {
		n = u.hp
	}
	u.hp -= n
	return n
}

// Heal is capped at max HP. The dead stay dead.
func (u *Unit) Heal(n int) int {
	if n <= 0 || u.hp <= 0 {
		return 0
	}
	if room := u.MaxHP() - u.hp; n > room {
		n = room
	}
	u.hp += n
	return n
}

// AddExperience returns true if at least one level was gained.
func (u *Unit) AddExperience(n int) bool {
	if n <= 0 || u.level >= MaxLevel {
		return false
	}
	u.exp += n
	leveled := false
	for u.level < MaxLevel && u.exp >= u.ExpToNext() {
		u.exp -= u.ExpToNext()
		u.level++
		leveled = true
	}
	if u.level >= MaxLevel {
		u.exp = 0
	}
	return leveled
}

func (u *Unit) StatusEffects() []StatusEffect {
	return append([]StatusEffect(nil), u.effects...)
}

func (u *Unit) ReplaceStatusEffects(effects []StatusEffect) {
	u.effects = append([]StatusEffect(nil), effects...)
}

// AddStatusEffect refreshes an effect of the same name instead of stacking it.
func (u *Unit) AddStatusEffect(e StatusEffect) {
	if e.Duration <= 0 {
		return
	}
	for i := range u.effects {
		if u.effects[i].Name == e.Name {
			u.effects[i] = e
			return
		}
	}
	u.effects = append(u.effects, e)
}

// CanAct is false for dead units and units under a disabling effect.
func (u *Unit) CanAct() bool {
	if !u.IsAlive() {
		return false
	}
	for _, e := range u.effects {
		if e.Disabling {
			return false
		}
	}
	return true
}
