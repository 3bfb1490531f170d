package roster

import (
	"fmt"

	"squadsim/internal/config"
)

const PrimalFury = "Primal Fury"

type RaceTraits struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	StatModifiers    Stats        `json:"stat_modifiers"`
	SpecialAbilities []string     `json:"special_abilities,omitempty"`
	Resistances      []DamageType `json:"resistances,omitempty"`
	Immunities       []DamageType `json:"immunities,omitempty"`
	SlotCost         int          `json:"slot_cost"`
}

func (r RaceTraits) Immune(d DamageType) bool  { return hasType(r.Immunities, d) }
func (r RaceTraits) Resists(d DamageType) bool { return hasType(r.Resistances, d) }

func (r RaceTraits) HasAbility(name string) bool {
	for _, a := range r.SpecialAbilities {
		if a == name {
			return true
		}
	}
	return false
}

// DamageBonus is the racial percentage bonus for dealing damage of type d.
func (r RaceTraits) DamageBonus(d DamageType) int {
	if d.IsPhysical() {
		return r.StatModifiers.Str
	}
	return r.StatModifiers.Mag
}

// Apply folds the percentage stat modifiers into base stats.
func (r RaceTraits) Apply(base Stats) Stats {
	pct := func(v, m int) int { return v + v*m/100 }
	m := r.StatModifiers
	return Stats{
		HP: pct(base.HP, m.HP), Str: pct(base.Str, m.Str), Mag: pct(base.Mag, m.Mag),
		Skl: pct(base.Skl, m.Skl), Arm: pct(base.Arm, m.Arm), Ldr: pct(base.Ldr, m.Ldr),
	}
}

func hasType(list []DamageType, d DamageType) bool {
	for _, x := range list {
		if x == d {
			return true
		}
	}
	return false
}

type RaceBook map[string]RaceTraits

// Traits never fails: an unknown race fights as a plain one-slot unit.
func (b RaceBook) Traits(race string) RaceTraits {
	if t, ok := b[race]; ok {
		return t
	}
	return RaceTraits{ID: race, Name: race, SlotCost: 1}
}

func DefaultRaces() RaceBook {
	races := []RaceTraits{
		{ID: "human", Name: "Human", SlotCost: 1},
		{ID: "elf", Name: "Elf", StatModifiers: Stats{Mag: 15, Skl: 10}, SpecialAbilities: []string{"Forest Stride"}, SlotCost: 1},
		{ID: "dwarf", Name: "Dwarf", StatModifiers: Stats{Arm: 20}, SpecialAbilities: []string{"Stonecunning"}, SlotCost: 1},
		{ID: "orc", Name: "Orc", StatModifiers: Stats{Str: 10, Arm: -10}, SlotCost: 1},
		{ID: "goblin", Name: "Goblin", StatModifiers: Stats{Str: 10, Arm: -10}, SlotCost: 1},
		{ID: "angel", Name: "Angel", StatModifiers: Stats{Mag: 15}, SpecialAbilities: []string{"Aura of Light"}, Resistances: []DamageType{Holy}, SlotCost: 1},
		{ID: "demon", Name: "Demon", SpecialAbilities: []string{"Infernal Aura"}, Immunities: []DamageType{Fire}, SlotCost: 1},
		{ID: "beast", Name: "Beast", StatModifiers: Stats{HP: 25, Str: 20}, SpecialAbilities: []string{PrimalFury}, SlotCost: 2},
		{ID: "dragon", Name: "Dragon", StatModifiers: Stats{HP: 40, Str: 30, Mag: 25}, SpecialAbilities: []string{"Flight", "Dragonfire"}, Resistances: []DamageType{Fire}, SlotCost: 2},
		{ID: "griffon", Name: "Griffon", StatModifiers: Stats{Skl: 20}, SpecialAbilities: []string{"Flight"}, SlotCost: 2},
	}
	book := make(RaceBook, len(races))
	for _, r := range races {
		book[r.ID] = r
	}
	return book
}

// RaceBookFromConfig overlays configured races on the defaults.
func RaceBookFromConfig(cfg config.RacesConfig) (RaceBook, error) {
	book := DefaultRaces()
	for _, rd := range cfg.Races {
		if rd.ID == "" {
			return nil, fmt.Errorf("race: missing id")
		}
		t := RaceTraits{
			ID: rd.ID, Name: rd.Name,
			StatModifiers:    StatsFromDef(rd.StatModifiers),
			SpecialAbilities: rd.SpecialAbilities,
			SlotCost:         rd.SlotCost,
		}
		if t.Name == "" {
			t.Name = rd.ID
		}
		if t.SlotCost <= 0 {
			t.SlotCost = 1
		}
		var err error
		if t.Resistances, err = parseTypes(rd.Resistances); err != nil {
			return nil, fmt.Errorf("race %s: %w", rd.ID, err)
		}
		if t.Immunities, err = parseTypes(rd.Immunities); err != nil {
			return nil, fmt.Errorf("race %s: %w", rd.ID, err)
		}
		book[rd.ID] = t
	}
	return book, nil
}

func parseTypes(in []string) ([]DamageType, error) {
	var out []DamageType
	for _, s := range in {
		d, err := ParseDamageType(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
