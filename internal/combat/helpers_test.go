package combat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"squadsim/internal/roster"
	"squadsim/internal/util"
)

var races = roster.DefaultRaces()

func unit(t *testing.T, spec roster.UnitSpec) *roster.Unit {
	t.Helper()
	if spec.Race == "" {
		spec.Race = "human"
	}
	if spec.Stats.HP == 0 {
		spec.Stats.HP = 100
	}
	u, err := roster.NewUnit(spec, races.Traits(spec.Race))
	require.NoError(t, err)
	return u
}

func squad(t *testing.T, id string, units ...*roster.Unit) *roster.Squad {
	t.Helper()
	sq := roster.NewSquad(id, id)
	for _, u := range units {
		require.NoError(t, sq.AddUnit(u, ""))
	}
	return sq
}

func squadAt(t *testing.T, id string, placed map[roster.Position]*roster.Unit) *roster.Squad {
	t.Helper()
	sq := roster.NewSquad(id, id)
	for _, p := range roster.FormationOrder {
		if u, ok := placed[p]; ok {
			require.NoError(t, sq.AddUnit(u, p))
		}
	}
	return sq
}

func sword(base int, embers ...roster.Ember) *roster.Weapon {
	return &roster.Weapon{ID: "sword", Name: "Sword", Type: roster.Sword, BaseDamage: base,
		DamageType: roster.Physical, EmberSlots: len(embers), Embers: embers}
}

var fireEmber = roster.Ember{ID: "fire_ember", Name: "Fire Ember", DamageBonus: 3, DamageType: roster.Fire}

func util7() util.Source { return util.NewSource(7) }
