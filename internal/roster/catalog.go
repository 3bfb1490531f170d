package roster

import (
	"errors"
	"fmt"

	"squadsim/internal/config"
)

var ErrUnknownSquad = errors.New("unknown squad")

// Catalog indexes the configured tables so fresh squads can be built per battle.
type Catalog struct {
	Races    RaceBook
	weapons  map[string]config.WeaponDef
	embers   map[string]Ember
	skills   map[string]config.Skill
	statuses map[string]StatusEffect
	squads   []config.SquadDef
}

func NewCatalog(b *config.Bundle) (*Catalog, error) {
	races, err := RaceBookFromConfig(b.Races)
	if err != nil {
		return nil, err
	}
	c := &Catalog{
		Races:    races,
		weapons:  map[string]config.WeaponDef{},
		embers:   map[string]Ember{},
		skills:   map[string]config.Skill{},
		statuses: map[string]StatusEffect{},
		squads:   b.Squads.Squads,
	}
	for _, ed := range b.Weapons.Embers {
		dt := DamageType(ed.DamageType)
		if dt != "" && !dt.Valid() {
			return nil, fmt.Errorf("ember %s: unknown damage type %q", ed.ID, ed.DamageType)
		}
		c.embers[ed.ID] = Ember{ID: ed.ID, Name: nameOr(ed.Name, ed.ID), DamageBonus: ed.DamageBonus, DamageType: dt}
	}
	for _, wd := range b.Weapons.Weapons {
		c.weapons[wd.ID] = wd
	}
	for _, sk := range b.Skills.Skills {
		c.skills[sk.ID] = sk
	}
	for _, sd := range b.Statuses.Statuses {
		c.statuses[sd.ID] = StatusEffect{
			Name: nameOr(sd.Name, sd.ID), DamagePerTurn: sd.DamagePerTurn, HealPerTurn: sd.HealPerTurn,
			Duration: sd.Duration, Disabling: sd.Disabling,
		}
	}
	seen := map[string]bool{}
	for _, sd := range c.squads {
		if sd.ID == "" || seen[sd.ID] {
			return nil, fmt.Errorf("squad id %q is empty or duplicated", sd.ID)
		}
		seen[sd.ID] = true
	}
	return c, nil
}

func (c *Catalog) SquadDefs() []config.SquadDef {
	return append([]config.SquadDef(nil), c.squads...)
}

// BuildSquad returns a fresh, full-HP instance of a configured squad.
func (c *Catalog) BuildSquad(id string) (*Squad, error) {
	for _, sd := range c.squads {
		if sd.ID == id {
			return c.Build(sd)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSquad, id)
}

func (c *Catalog) Build(sd config.SquadDef) (*Squad, error) {
	sq := NewSquad(sd.ID, sd.Name)
	if sd.Cohesion > 0 {
		sq.Experience.Cohesion = 0
		sq.AdjustCohesion(sd.Cohesion)
	}
	for _, ud := range sd.Units {
		u, pos, err := c.buildUnit(ud)
		if err != nil {
			return nil, fmt.Errorf("squad %s: %w", sd.ID, err)
		}
		if err := sq.AddUnit(u, pos); err != nil {
			return nil, err
		}
	}
	return sq, nil
}

func (c *Catalog) buildUnit(ud config.UnitDef) (*Unit, Position, error) {
	pos, err := ParsePosition(ud.Slot)
	if err != nil {
		return nil, "", fmt.Errorf("unit %s: %w", ud.ID, err)
	}
	spec := UnitSpec{
		ID: ud.ID, Name: ud.Name, Race: ud.Race, Archetype: ud.Archetype, Level: ud.Level,
		Stats:         StatsFromDef(ud.Stats),
		Bonuses:       StatsFromDef(ud.Bonuses),
		Proficiencies: map[WeaponType]int{},
	}
	if spec.Race == "" {
		spec.Race = "human"
	}
	if ud.Weapon != "" {
		if spec.Weapon, err = c.Weapon(ud.Weapon, ud.Embers); err != nil {
			return nil, "", fmt.Errorf("unit %s: %w", ud.ID, err)
		}
	} else if len(ud.Embers) > 0 {
		return nil, "", fmt.Errorf("unit %s: embers without a weapon", ud.ID)
	}
	for name, lvl := range ud.Proficiencies {
		wt, err := ParseWeaponType(name)
		if err != nil {
			return nil, "", fmt.Errorf("unit %s: %w", ud.ID, err)
		}
		spec.Proficiencies[wt] = lvl
	}
	for _, id := range ud.Skills {
		sk, ok := c.skills[id]
		if !ok {
			return nil, "", fmt.Errorf("unit %s: unknown skill %s", ud.ID, id)
		}
		spec.Combat.DamageBonus += sk.DamageBonus
		spec.Combat.CriticalBonus += sk.CriticalBonus
	}
	for _, id := range ud.Statuses {
		st, ok := c.statuses[id]
		if !ok {
			return nil, "", fmt.Errorf("unit %s: unknown status %s", ud.ID, id)
		}
		spec.Statuses = append(spec.Statuses, st)
	}
	u, err := NewUnit(spec, c.Races.Traits(spec.Race))
	if err != nil {
		return nil, "", err
	}
	return u, pos, nil
}

// Weapon resolves a catalog weapon with embers socketed. The result is validated.
func (c *Catalog) Weapon(id string, emberIDs []string) (*Weapon, error) {
	wd, ok := c.weapons[id]
	if !ok {
		return nil, fmt.Errorf("unknown weapon %s", id)
	}
	wt, err := ParseWeaponType(wd.Type)
	if err != nil {
		return nil, fmt.Errorf("weapon %s: %w", id, err)
	}
	w := &Weapon{
		ID: wd.ID, Name: nameOr(wd.Name, wd.ID), Type: wt,
		BaseDamage:  wd.BaseDamage,
		DamageType:  DefaultDamageType(wt),
		HitBonus:    wd.HitBonus,
		CritBonus:   wd.CritBonus,
		StatBonuses: StatsFromDef(wd.StatBonuses),
		EmberSlots:  wd.EmberSlots,
	}
	if w.BaseDamage == 0 {
		w.BaseDamage = DefaultBaseDamage(wt, 1)
	}
	if wd.DamageType != "" {
		w.DamageType = DamageType(wd.DamageType)
	}
	for _, eid := range emberIDs {
		e, ok := c.embers[eid]
		if !ok {
			return nil, fmt.Errorf("weapon %s: unknown ember %s", id, eid)
		}
		w.Embers = append(w.Embers, e)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func nameOr(name, id string) string {
	if name == "" {
		return id
	}
	return name
}
