package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"squadsim/internal/config"
)

func testBundle() *config.Bundle {
	return &config.Bundle{
		Weapons: config.WeaponsConfig{
			Weapons: []config.WeaponDef{
				{ID: "iron_sword", Type: "sword", BaseDamage: 12, EmberSlots: 1},
				{ID: "oak_staff", Type: "staff"},
			},
			Embers: []config.EmberDef{{ID: "fire_ember", DamageBonus: 3, DamageType: "fire"}},
		},
		Skills:   config.SkillsConfig{Skills: []config.Skill{{ID: "focus", DamageBonus: 10, CriticalBonus: 5}}},
		Statuses: config.StatusesConfig{Statuses: []config.StatusDef{{ID: "regenerating", HealPerTurn: 4, Duration: 3}}},
		Squads: config.SquadsConfig{Squads: []config.SquadDef{{
			ID: "red", Name: "Red",
			Units: []config.UnitDef{
				{ID: "k", Race: "human", Stats: config.StatsDef{HP: 90, Str: 15}, Weapon: "iron_sword",
					Embers: []string{"fire_ember"}, Proficiencies: map[string]int{"sword": 10}, Skills: []string{"focus"}, Slot: "front_left"},
				{ID: "m", Race: "elf", Stats: config.StatsDef{HP: 60, Mag: 20}, Weapon: "oak_staff", Statuses: []string{"regenerating"}},
			},
		}}},
	}
}

func TestCatalogBuildSquad(t *testing.T) {
	cat, err := NewCatalog(testBundle())
	require.NoError(t, err)

	sq, err := cat.BuildSquad("red")
	require.NoError(t, err)
	k := mustUnit(t, sq, "k")
	assert.Equal(t, FrontLeft, k.Position())
	assert.Equal(t, Fire, k.EquippedWeapon().EffectiveDamageType())
	assert.Equal(t, CombatBonuses{DamageBonus: 10, CriticalBonus: 5}, k.CombatBonuses())
	dmg, err := k.WeaponDamage()
	require.NoError(t, err)
	assert.Equal(t, 12+1+3, dmg)

	m := mustUnit(t, sq, "m")
	assert.Equal(t, FrontCenter, m.Position())
	assert.Equal(t, DefaultBaseDamage(Staff, 1), m.EquippedWeapon().BaseDamage)
	assert.Equal(t, Fire, m.EquippedWeapon().DamageType)
	assert.Equal(t, 23, m.Stats().Mag)
	require.Len(t, m.StatusEffects(), 1)

	again, err := cat.BuildSquad("red")
	require.NoError(t, err)
	k.TakeDamage(50)
	assert.Equal(t, 90, mustUnit(t, again, "k").CurrentHP())
}

func TestCatalogErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *config.Bundle)
	}{
		{name: "unknown weapon", mutate: func(b *config.Bundle) { b.Squads.Squads[0].Units[0].Weapon = "nope" }},
		{name: "unknown ember", mutate: func(b *config.Bundle) { b.Squads.Squads[0].Units[0].Embers = []string{"nope"} }},
		{name: "too many embers", mutate: func(b *config.Bundle) {
			b.Squads.Squads[0].Units[0].Embers = []string{"fire_ember", "fire_ember"}
		}},
		{name: "unknown skill", mutate: func(b *config.Bundle) { b.Squads.Squads[0].Units[0].Skills = []string{"nope"} }},
		{name: "bad slot", mutate: func(b *config.Bundle) { b.Squads.Squads[0].Units[0].Slot = "middle" }},
		{name: "bad proficiency", mutate: func(b *config.Bundle) { b.Squads.Squads[0].Units[0].Proficiencies = map[string]int{"lute": 3} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testBundle()
			tt.mutate(b)
			cat, err := NewCatalog(b)
			require.NoError(t, err)
			_, err = cat.BuildSquad("red")
			assert.Error(t, err)
		})
	}

	cat, err := NewCatalog(testBundle())
	require.NoError(t, err)
	_, err = cat.BuildSquad("blue")
	assert.ErrorIs(t, err, ErrUnknownSquad)
}

func TestShippedAssetsBuild(t *testing.T) {
	b, err := config.LoadAll("../../assets")
	require.NoError(t, err)
	c, err := NewCatalog(b)
	require.NoError(t, err)
	require.NotEmpty(t, c.SquadDefs())
	for _, sd := range c.SquadDefs() {
		sq, err := c.BuildSquad(sd.ID)
		require.NoError(t, err, sd.ID)
		assert.True(t, sq.IsValidForCombat(), sd.ID)
	}
	assert.True(t, c.Races.Traits("undead").Immune(Ice))
}
