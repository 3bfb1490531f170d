package combat

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"squadsim/internal/roster"
	"squadsim/internal/util"
)

func newEngine(t *testing.T, a, d *roster.Squad, cfg Config, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(a, d, races, neverCrit(), cfg, opts...)
	require.NoError(t, err)
	return e
}

func attacksBy(entries []LogEntry, id string) []LogEntry {
	var out []LogEntry
	for _, le := range entries {
		if le.Kind == LogAttack && le.Attacker.ID == id {
			out = append(out, le)
		}
	}
	return out
}

func TestStrongUnarmedUnitWinsOnTimeout(t *testing.T) {
	a := unit(t, roster.UnitSpec{ID: "a", Stats: roster.Stats{HP: 100, Str: 20}})
	b := unit(t, roster.UnitSpec{ID: "b", Stats: roster.Stats{HP: 100}})
	sqA, sqB := squad(t, "A", a), squad(t, "B", b)
	e := newEngine(t, sqA, sqB, Config{MaxRounds: 10, AllowRetreat: true})

	res, err := e.ExecuteBattle()
	require.NoError(t, err)
	assert.Equal(t, VictoryTimeout, res.VictoryCondition)
	assert.Equal(t, "A", res.Winner.ID)
	assert.Equal(t, "B", res.Loser.ID)
	assert.Equal(t, 10, res.Rounds)
	assert.Equal(t, 10, e.State().CurrentRound)
	assert.True(t, e.State().IsComplete)
	assert.Equal(t, PhaseComplete, e.State().Phase)

	// front row bonuses: 20 str unarmed lands 5 through the defender's slot armor; chip damage lands 1
	assert.Equal(t, 50, b.CurrentHP())
	assert.Equal(t, 90, a.CurrentHP())
	assert.Equal(t, 50, res.Statistics.DamageDealt["a"])
	assert.Equal(t, 50, res.Statistics.DamageTaken["b"])
	assert.Equal(t, 10, res.Statistics.DamageDealt["b"])
	assert.Equal(t, 10, res.Statistics.Attacks["a"])
	assert.Empty(t, res.Statistics.CriticalHits)
	assert.Empty(t, res.Casualties.Winner)
	assert.Empty(t, res.Casualties.Loser)

	assert.Equal(t, ExperienceAwarded{Base: 20, Winner: 20, Loser: 6}, res.Experience)
	assert.Equal(t, 20, a.Experience())
	assert.Equal(t, 6, b.Experience())
	assert.Equal(t, roster.SquadExperience{BattlesWon: 1, TotalBattles: 1, Cohesion: 60}, sqA.Experience)
	assert.Equal(t, roster.SquadExperience{BattlesLost: 1, TotalBattles: 1, Cohesion: 50}, sqB.Experience)

	for _, le := range attacksBy(e.Log(), "a") {
		assert.Equal(t, roster.Sword, le.WeaponType)
		assert.Equal(t, "unarmed", le.Weapon)
	}
}

func TestEliminationEndsBattle(t *testing.T) {
	a := unit(t, roster.UnitSpec{ID: "a", Stats: roster.Stats{HP: 100, Str: 400}})
	b1 := unit(t, roster.UnitSpec{ID: "b1", Level: 3})
	b2 := unit(t, roster.UnitSpec{ID: "b2", Level: 3})
	e := newEngine(t, squad(t, "A", a), squad(t, "B", b1, b2), DefaultConfig())

	res, err := e.ExecuteBattle()
	require.NoError(t, err)
	assert.Equal(t, VictoryElimination, res.VictoryCondition)
	assert.Equal(t, "A", res.Winner.ID)
	assert.Equal(t, 2, res.Rounds)
	assert.Len(t, res.Casualties.Loser, 2)
	assert.Equal(t, 2, res.Statistics.Kills["a"])
	assert.Equal(t, 200, res.Statistics.DamageDealt["a"])

	deaths := 0
	for _, le := range e.Log() {
		if le.Kind == LogInfo && le.Details["death"] == true {
			deaths++
			assert.Equal(t, 30, le.Details["experience"])
			assert.Equal(t, "a", le.Attacker.ID)
		}
	}
	assert.Equal(t, 2, deaths)

	// 60 from kills, then 60 base * 1.2 for two loser casualties
	assert.Equal(t, 72, res.Experience.Winner)
	assert.Equal(t, 2, a.Level())
	assert.Equal(t, 32, a.Experience())

	last := e.Log()[len(e.Log())-1]
	assert.Equal(t, PhaseAttack, last.Phase)
	assert.Equal(t, 2, last.Round)
}

func TestMaxRoundsIsNeverExceeded(t *testing.T) {
	for _, n := range []int{1, 3, 7} {
		a := unit(t, roster.UnitSpec{ID: "a", Stats: roster.Stats{HP: 1000, Str: 20}})
		b := unit(t, roster.UnitSpec{ID: "b", Stats: roster.Stats{HP: 1000, Str: 20}})
		e := newEngine(t, squad(t, "A", a), squad(t, "B", b), Config{MaxRounds: n})

		res, err := e.ExecuteBattle()
		require.NoError(t, err)
		assert.Equal(t, n, res.Rounds)
		assert.LessOrEqual(t, e.State().CurrentRound, n)
		assert.Equal(t, VictoryTimeout, res.VictoryCondition)
	}
}

func TestTimeoutTieBreak(t *testing.T) {
	tests := []struct {
		name   string
		hpA    int
		hpB    int
		winner string
	}{
		{name: "equal hp favours attacking squad", hpA: 100, hpB: 100, winner: "A"},
		{name: "defender with more hp wins", hpA: 100, hpB: 200, winner: "B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := unit(t, roster.UnitSpec{ID: "a", Stats: roster.Stats{HP: tt.hpA, Str: 20}})
			b := unit(t, roster.UnitSpec{ID: "b", Stats: roster.Stats{HP: tt.hpB, Str: 20}})
			e := newEngine(t, squad(t, "A", a), squad(t, "B", b), DefaultConfig())

			res, err := e.ExecuteBattle()
			require.NoError(t, err)
			assert.Equal(t, VictoryTimeout, res.VictoryCondition)
			assert.Equal(t, tt.winner, res.Winner.ID)
		})
	}
}

func TestHigherInitiativeStrikesFirst(t *testing.T) {
	a := unit(t, roster.UnitSpec{ID: "a", Stats: roster.Stats{HP: 500, Str: 5}})
	b := unit(t, roster.UnitSpec{ID: "b", Stats: roster.Stats{HP: 500, Str: 5, Skl: 10}})
	e := newEngine(t, squad(t, "A", a), squad(t, "B", b), Config{MaxRounds: 1})

	_, err := e.ExecuteBattle()
	require.NoError(t, err)
	var order []string
	var phases []Phase
	for _, le := range e.Log() {
		if le.Kind == LogAttack {
			order = append(order, le.Attacker.ID)
			phases = append(phases, le.Phase)
		}
	}
	assert.Equal(t, []string{"b", "a"}, order)
	assert.Equal(t, []Phase{PhaseAttack, PhaseCounter}, phases)
}

func TestTargetingAndActingOrder(t *testing.T) {
	front := unit(t, roster.UnitSpec{ID: "front", Stats: roster.Stats{HP: 100, Str: 8}})
	back := unit(t, roster.UnitSpec{ID: "back", Stats: roster.Stats{HP: 100, Str: 8}})
	sqA := squadAt(t, "A", map[roster.Position]*roster.Unit{roster.BackLeft: back, roster.FrontRight: front})

	tank := unit(t, roster.UnitSpec{ID: "tank", Stats: roster.Stats{HP: 300}})
	hurt := unit(t, roster.UnitSpec{ID: "hurt", Stats: roster.Stats{HP: 300}})
	rear := unit(t, roster.UnitSpec{ID: "rear", Stats: roster.Stats{HP: 10}})
	hurt.TakeDamage(100)
	sqB := squadAt(t, "B", map[roster.Position]*roster.Unit{roster.FrontLeft: tank, roster.FrontCenter: hurt, roster.BackCenter: rear})

	assert.Equal(t, "hurt", SelectTarget(sqB).ID())

	e := newEngine(t, sqA, sqB, Config{MaxRounds: 1})
	_, err := e.ExecuteBattle()
	require.NoError(t, err)
	attacks := attacksBy(e.Log(), "front")
	require.Len(t, attacks, 1)
	assert.Equal(t, "hurt", attacks[0].Target.ID)
	assert.Less(t, attacks[0].Seq, attacksBy(e.Log(), "back")[0].Seq)

	tank.TakeDamage(300)
	hurt.TakeDamage(300)
	assert.Equal(t, "rear", SelectTarget(sqB).ID())
	rear.TakeDamage(10)
	assert.Nil(t, SelectTarget(sqB))
}

func TestSelectWeaponType(t *testing.T) {
	tests := []struct {
		name string
		spec roster.UnitSpec
		want roster.WeaponType
	}{
		{name: "highest proficiency", spec: roster.UnitSpec{ID: "u", Proficiencies: map[roster.WeaponType]int{roster.Axe: 4, roster.Bow: 9}}, want: roster.Bow},
		{name: "ties use weapon order", spec: roster.UnitSpec{ID: "u", Proficiencies: map[roster.WeaponType]int{roster.Wand: 5, roster.Spear: 5}}, want: roster.Spear},
		{name: "caster default", spec: roster.UnitSpec{ID: "u", Stats: roster.Stats{HP: 10, Mag: 12, Str: 3}}, want: roster.Staff},
		{name: "fighter default", spec: roster.UnitSpec{ID: "u", Stats: roster.Stats{HP: 10, Mag: 3, Str: 3}}, want: roster.Sword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectWeaponType(unit(t, tt.spec)))
		})
	}
}

func TestProficiencyGrowsEveryAttack(t *testing.T) {
	a := unit(t, roster.UnitSpec{ID: "a", Stats: roster.Stats{HP: 1000, Str: 10},
		Proficiencies: map[roster.WeaponType]int{roster.Axe: 0, roster.Bow: 2}})
	b := unit(t, roster.UnitSpec{ID: "b", Stats: roster.Stats{HP: 1000}})
	e := newEngine(t, squad(t, "A", a), squad(t, "B", b), Config{MaxRounds: 20})

	_, err := e.ExecuteBattle()
	require.NoError(t, err)
	assert.Len(t, attacksBy(e.Log(), "a"), 20)
	assert.Equal(t, 3, a.Proficiency(roster.Bow))
	assert.Equal(t, 0, a.Proficiency(roster.Axe))
}

func TestNewEngineRejectsInvalidSetups(t *testing.T) {
	dead := unit(t, roster.UnitSpec{ID: "dead"})
	dead.TakeDamage(100)
	ok := func() *roster.Squad { return squad(t, "ok", unit(t, roster.UnitSpec{ID: "x"})) }
	same := ok()

	tests := []struct {
		name string
		a, d *roster.Squad
		cfg  Config
		rng  util.Source
	}{
		{name: "empty squad", a: roster.NewSquad("empty", ""), d: ok(), rng: neverCrit()},
		{name: "dead squad", a: squad(t, "A", unit(t, roster.UnitSpec{ID: "y"})), d: squad(t, "D", dead), rng: neverCrit()},
		{name: "squad against itself", a: same, d: same, rng: neverCrit()},
		{name: "shared unit ids", a: squad(t, "A", unit(t, roster.UnitSpec{ID: "x"})), d: ok(), rng: neverCrit()},
		{name: "negative rounds", a: squad(t, "A", unit(t, roster.UnitSpec{ID: "y"})), d: ok(), cfg: Config{MaxRounds: -1}, rng: neverCrit()},
		{name: "no rng", a: squad(t, "A", unit(t, roster.UnitSpec{ID: "y"})), d: ok()},
		{name: "nil squad", a: nil, d: ok(), rng: neverCrit()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.a, tt.d, races, tt.rng, tt.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCombatState)
			var ice *InvalidCombatStateError
			require.True(t, errors.As(err, &ice))
			assert.Equal(t, PhaseSetup, ice.Phase)
		})
	}
}

func TestDamageFailureAbortsBattle(t *testing.T) {
	a := unit(t, roster.UnitSpec{ID: "a", Stats: roster.Stats{HP: 100, Skl: 50}})
	a.Equip(&roster.Weapon{ID: "void", Type: roster.Sword, BaseDamage: 10, DamageType: "void"})
	b := unit(t, roster.UnitSpec{ID: "b"})
	e := newEngine(t, squad(t, "A", a), squad(t, "B", b), DefaultConfig())

	res, err := e.ExecuteBattle()
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrDamageCalculationFailed)
	assert.Nil(t, e.Result())

	_, again := e.Step()
	assert.Equal(t, err, again)
	assert.False(t, e.State().IsComplete)
	assert.Equal(t, 100, b.CurrentHP())
}

func TestResolutionWithoutWinnerIsInvalid(t *testing.T) {
	e := newEngine(t, squad(t, "A", unit(t, roster.UnitSpec{ID: "a"})), squad(t, "B", unit(t, roster.UnitSpec{ID: "b"})), DefaultConfig())
	e.phase = PhaseResolution

	_, err := e.Step()
	var ice *InvalidCombatStateError
	require.True(t, errors.As(err, &ice))
	assert.Equal(t, PhaseResolution, ice.Phase)
}

func TestStatusEffectsTickDuringBattle(t *testing.T) {
	poisoned := unit(t, roster.UnitSpec{ID: "p", Stats: roster.Stats{HP: 100, Str: 4},
		Statuses: []roster.StatusEffect{{Name: "poisoned", DamagePerTurn: 7, Duration: 2}}})
	stunned := unit(t, roster.UnitSpec{ID: "s", Stats: roster.Stats{HP: 100, Str: 4},
		Statuses: []roster.StatusEffect{{Name: "stunned", Duration: 1, Disabling: true}}})
	regen := unit(t, roster.UnitSpec{ID: "r", Stats: roster.Stats{HP: 400},
		Statuses: []roster.StatusEffect{{Name: "regenerating", HealPerTurn: 6, Duration: 3}}})
	regen.TakeDamage(50)

	e := newEngine(t, squad(t, "A", poisoned, stunned), squad(t, "B", regen), Config{MaxRounds: 3})
	res, err := e.ExecuteBattle()
	require.NoError(t, err)

	// two poison ticks of 7 plus three chip hits from the regenerating defender
	assert.Equal(t, 83, poisoned.CurrentHP())
	assert.Equal(t, 3, countHits(e.Log(), "p"))
	assert.Len(t, attacksBy(e.Log(), "p"), 3)
	assert.Len(t, attacksBy(e.Log(), "s"), 2)
	assert.Equal(t, 18, res.Statistics.Healing["r"])
	assert.Empty(t, poisoned.StatusEffects())
	assert.Empty(t, regen.StatusEffects())

	statusEntries := 0
	for _, le := range e.Log() {
		if le.Kind == LogStatus {
			statusEntries++
		}
	}
	assert.Equal(t, 6, statusEntries)
}

func countHits(entries []LogEntry, targetID string) int {
	n := 0
	for _, le := range entries {
		if le.Kind == LogAttack && le.Target.ID == targetID {
			n += le.Damage
		}
	}
	return n
}

func TestDamageOverTimeCanEliminateActingSquad(t *testing.T) {
	doomed := unit(t, roster.UnitSpec{ID: "d", Stats: roster.Stats{HP: 5, Str: 50},
		Statuses: []roster.StatusEffect{{Name: "poisoned", DamagePerTurn: 10, Duration: 3}}})
	b := unit(t, roster.UnitSpec{ID: "b", Stats: roster.Stats{HP: 500}})
	e := newEngine(t, squad(t, "A", doomed), squad(t, "B", b), DefaultConfig())

	res, err := e.ExecuteBattle()
	require.NoError(t, err)
	assert.Equal(t, "B", res.Winner.ID)
	assert.Equal(t, VictoryElimination, res.VictoryCondition)
	assert.Equal(t, 1, res.Rounds)
	assert.Empty(t, attacksBy(e.Log(), "d"))
	assert.Equal(t, 500, b.CurrentHP())
}

func TestLogHoldsSnapshots(t *testing.T) {
	a := unit(t, roster.UnitSpec{ID: "a", Stats: roster.Stats{HP: 100, Str: 20}})
	b := unit(t, roster.UnitSpec{ID: "b", Stats: roster.Stats{HP: 100}})
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e := newEngine(t, squad(t, "A", a), squad(t, "B", b), Config{MaxRounds: 2},
		WithClock(func() time.Time { return fixed }), WithID("battle-1"))
	_, err := e.ExecuteBattle()
	require.NoError(t, err)

	first := attacksBy(e.Log(), "a")[0]
	assert.Equal(t, 95, first.Target.HP)
	assert.Equal(t, 90, b.CurrentHP())
	assert.Equal(t, fixed, first.Time)

	mutated := e.Log()
	mutated[first.Seq].Target.HP = -1
	mutated[first.Seq].Details["final_damage"] = 999
	again := e.Log()[first.Seq]
	assert.Equal(t, 95, again.Target.HP)
	assert.Equal(t, 5, again.Details["final_damage"])

	for i, le := range e.Log() {
		assert.Equal(t, i, le.Seq)
	}
	assert.Equal(t, "battle-1", e.ID())
}

func TestPreBattleHookRunsOnce(t *testing.T) {
	calls := 0
	hook := func(a, d *roster.Squad) error {
		calls++
		assert.Equal(t, "A", a.ID())
		return nil
	}
	e := newEngine(t, squad(t, "A", unit(t, roster.UnitSpec{ID: "a"})), squad(t, "B", unit(t, roster.UnitSpec{ID: "b"})),
		Config{MaxRounds: 2}, WithPreBattleHook(hook))
	_, err := e.ExecuteBattle()
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	failing := newEngine(t, squad(t, "A", unit(t, roster.UnitSpec{ID: "a"})), squad(t, "B", unit(t, roster.UnitSpec{ID: "b"})),
		DefaultConfig(), WithPreBattleHook(func(a, d *roster.Squad) error { return errors.New("flooded") }))
	_, err = failing.ExecuteBattle()
	assert.ErrorContains(t, err, "flooded")
}

func TestStepAdvancesOnePhase(t *testing.T) {
	e := newEngine(t, squad(t, "A", unit(t, roster.UnitSpec{ID: "a"})), squad(t, "B", unit(t, roster.UnitSpec{ID: "b"})), Config{MaxRounds: 1})
	want := []Phase{PhaseInitiative, PhaseAttack, PhaseCounter, PhaseResolution, PhaseComplete}
	for i, p := range want {
		done, err := e.Step()
		require.NoError(t, err)
		assert.Equal(t, p, e.State().Phase)
		assert.Equal(t, i == len(want)-1, done)
	}
	done, err := e.Step()
	require.NoError(t, err)
	assert.True(t, done)
}
