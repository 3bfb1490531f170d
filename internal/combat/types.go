package combat

import (
	"encoding/json"

	"squadsim/internal/roster"
)

// Combatant is the read-only view the damage calculator needs of a unit.
type Combatant interface {
	ID() string
	Name() string
	Race() string
	Level() int
	CurrentHP() int
	MaxHP() int
	Stats() roster.Stats
	EquippedWeapon() *roster.Weapon
	WeaponDamage() (int, error)
	Proficiency(roster.WeaponType) int
	CombatBonuses() roster.CombatBonuses
}

type RaceLookup interface {
	Traits(race string) roster.RaceTraits
}

func MarshalPretty(v any) []byte {
	b, _ := json.MarshalIndent(v, "", "  ")
	return b
}
