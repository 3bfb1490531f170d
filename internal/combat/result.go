package combat

import (
	"go.uber.org/zap"

	"squadsim/internal/roster"
)

const (
	expPerLoserLevel  = 20
	flawlessCohesion  = 10
	pyrrhicCohesion   = -5
	loserExpPercent   = 30
	casualtyExpTenths = 1
)

type SquadRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	RemainingHP int    `json:"remaining_hp"`
	Survivors   int    `json:"survivors"`
}

type Casualties struct {
	Winner []UnitRef `json:"winner"`
	Loser  []UnitRef `json:"loser"`
}

// ExperienceAwarded is the per-survivor amount for each side.
type ExperienceAwarded struct {
	Base   int `json:"base"`
	Winner int `json:"winner"`
	Loser  int `json:"loser"`
}

// BattleStatistics is keyed by unit id. Every value is an integer.
type BattleStatistics struct {
	DamageDealt  map[string]int `json:"damage_dealt"`
	DamageTaken  map[string]int `json:"damage_taken"`
	CriticalHits map[string]int `json:"critical_hits"`
	Attacks      map[string]int `json:"attacks"`
	Kills        map[string]int `json:"kills"`
	Healing      map[string]int `json:"healing"`
}

type BattleResult struct {
	BattleID         string            `json:"battle_id"`
	Winner           SquadRef          `json:"winner"`
	Loser            SquadRef          `json:"loser"`
	VictoryCondition VictoryCondition  `json:"victory_condition"`
	Rounds           int               `json:"rounds"`
	Casualties       Casualties        `json:"casualties"`
	Experience       ExperienceAwarded `json:"experience"`
	Statistics       BattleStatistics  `json:"statistics"`
}

func (e *Engine) resolve() error {
	if e.winner == nil || e.loser == nil {
		return &InvalidCombatStateError{Phase: PhaseResolution, Action: "resolve battle", Reason: "no winner determined"}
	}
	res := &BattleResult{
		BattleID:         e.id,
		VictoryCondition: e.condition,
		Rounds:           e.round,
		Casualties:       Casualties{Winner: CasualtiesOf(e.winner), Loser: CasualtiesOf(e.loser)},
		Experience:       ExperienceFor(e.winner, e.loser),
	}
	AwardExperience(e.winner, e.loser, res.Experience)
	UpdateSquadRecords(e.winner, e.loser, len(res.Casualties.Winner))
	res.Winner, res.Loser = squadRef(e.winner), squadRef(e.loser)
	res.Statistics = BuildStatistics(e.entries)
	e.result = res

	e.log.Info("battle resolved",
		zap.String("winner", e.winner.ID()), zap.Stringer("condition", e.condition), zap.Int("rounds", e.round),
		zap.Int("winner_casualties", len(res.Casualties.Winner)), zap.Int("loser_casualties", len(res.Casualties.Loser)))
	e.phase = PhaseComplete
	return nil
}

func squadRef(sq *roster.Squad) SquadRef {
	return SquadRef{ID: sq.ID(), Name: sq.Name(), RemainingHP: sq.TotalHP(), Survivors: len(sq.Living())}
}

func CasualtiesOf(sq *roster.Squad) []UnitRef {
	out := []UnitRef{}
	for _, u := range sq.InFormationOrder() {
		if !u.IsAlive() {
			out = append(out, refOf(sq, u))
		}
	}
	return out
}

// ExperienceFor computes per-survivor experience from the loser's average
// level and casualty count. Integer arithmetic keeps the floors exact.
func ExperienceFor(winner, loser *roster.Squad) ExperienceAwarded {
	units := loser.Units()
	if len(units) == 0 {
		return ExperienceAwarded{}
	}
	levels := 0
	dead := 0
	for _, u := range units {
		levels += u.Level()
		if !u.IsAlive() {
			dead++
		}
	}
	base := levels * expPerLoserLevel / len(units)
	return ExperienceAwarded{
		Base:   base,
		Winner: base * (10 + dead*casualtyExpTenths) / 10,
		Loser:  base * loserExpPercent / 100,
	}
}

func AwardExperience(winner, loser *roster.Squad, exp ExperienceAwarded) {
	for _, u := range winner.Living() {
		u.AddExperience(exp.Winner)
	}
	for _, u := range loser.Living() {
		u.AddExperience(exp.Loser)
	}
}

// UpdateSquadRecords bumps battle counters. A flawless win raises cohesion,
// losing more than half the squad lowers it.
func UpdateSquadRecords(winner, loser *roster.Squad, winnerCasualties int) {
	winner.RecordBattle(true)
	loser.RecordBattle(false)
	switch {
	case winnerCasualties == 0:
		winner.AdjustCohesion(flawlessCohesion)
	case winnerCasualties*2 > winner.Len():
		winner.AdjustCohesion(pyrrhicCohesion)
	}
}

// BuildStatistics aggregates the log: attack entries give damage, crits and
// attack counts; death entries give kills; status entries give healing.
func BuildStatistics(entries []LogEntry) BattleStatistics {
	st := BattleStatistics{
		DamageDealt: map[string]int{}, DamageTaken: map[string]int{}, CriticalHits: map[string]int{},
		Attacks: map[string]int{}, Kills: map[string]int{}, Healing: map[string]int{},
	}
	for _, le := range entries {
		switch le.Kind {
		case LogAttack:
			if le.Attacker == nil || le.Target == nil {
				continue
			}
			st.Attacks[le.Attacker.ID]++
			st.DamageDealt[le.Attacker.ID] += le.Damage
			st.DamageTaken[le.Target.ID] += le.Damage
			if le.Critical {
				st.CriticalHits[le.Attacker.ID]++
			}
		case LogInfo:
			if le.Attacker != nil && le.Target != nil && le.Details["death"] == true {
				st.Kills[le.Attacker.ID]++
			}
		case LogStatus:
			if le.Target != nil && le.Healing > 0 {
				st.Healing[le.Target.ID] += le.Healing
			}
		}
	}
	return st
}
