package combat

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"squadsim/internal/roster"
	"squadsim/internal/util"
)

const (
	DefaultMaxRounds  = 10
	KillExpPerLevel   = 10
	ProficiencyPerHit = 5
)

type Config struct {
	MaxRounds    int  `json:"max_rounds"`
	AllowRetreat bool `json:"allow_retreat"`
}

func DefaultConfig() Config { return Config{MaxRounds: DefaultMaxRounds, AllowRetreat: true} }

// BattleState is a snapshot of where the engine is.
type BattleState struct {
	ID           string `json:"id"`
	AttackingID  string `json:"attacking_id"`
	DefendingID  string `json:"defending_id"`
	CurrentRound int    `json:"current_round"`
	MaxRounds    int    `json:"max_rounds"`
	Phase        Phase  `json:"phase"`
	IsComplete   bool   `json:"is_complete"`
	WinnerID     string `json:"winner_id,omitempty"`
}

// PreBattleHook runs once during setup, before the first round.
type PreBattleHook func(attacking, defending *roster.Squad) error

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.log = l } }
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}
func WithID(id string) Option                  { return func(e *Engine) { e.id = id } }
func WithPreBattleHook(h PreBattleHook) Option { return func(e *Engine) { e.hook = h } }

// Engine runs one battle between two squads. It is not safe for concurrent use.
type Engine struct {
	id        string
	cfg       Config
	attacking *roster.Squad
	defending *roster.Squad
	calc      *DamageCalculator
	log       *zap.Logger
	now       func() time.Time
	hook      PreBattleHook

	round     int
	phase     Phase
	complete  bool
	winner    *roster.Squad
	loser     *roster.Squad
	condition VictoryCondition
	order     [2]*roster.Squad
	entries   []LogEntry
	result    *BattleResult
	err       error
}

func NewEngine(attacking, defending *roster.Squad, races RaceLookup, rng util.Source, cfg Config, opts ...Option) (*Engine, error) {
	invalid := func(format string, args ...any) error {
		return &InvalidCombatStateError{Phase: PhaseSetup, Action: "start battle", Reason: fmt.Sprintf(format, args...)}
	}
	switch {
	case attacking == nil || defending == nil:
		return nil, invalid("both squads are required")
	case attacking == defending || attacking.ID() == defending.ID():
		return nil, invalid("squad %s cannot fight itself", attacking.ID())
	case !attacking.IsValidForCombat():
		return nil, invalid("squad %s has no living units", attacking.ID())
	case !defending.IsValidForCombat():
		return nil, invalid("squad %s has no living units", defending.ID())
	case rng == nil:
		return nil, invalid("no random source")
	}
	for _, u := range attacking.Units() {
		if _, clash := defending.Unit(u.ID()); clash {
			return nil, invalid("unit id %s appears in both squads", u.ID())
		}
	}
	if cfg.MaxRounds == 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	if cfg.MaxRounds < 1 {
		return nil, invalid("max rounds must be >= 1, got %d", cfg.MaxRounds)
	}

	e := &Engine{
		cfg:       cfg,
		attacking: attacking,
		defending: defending,
		calc:      NewDamageCalculator(races, rng),
		now:       time.Now,
		phase:     PhaseSetup,
	}
	for _, o := range opts {
		o(e)
	}
	if e.id == "" {
		e.id = uuid.NewString()
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	e.log = e.log.With(zap.String("battle", e.id))
	return e, nil
}

func (e *Engine) ID() string { return e.id }

func (e *Engine) State() BattleState {
	st := BattleState{
		ID: e.id, AttackingID: e.attacking.ID(), DefendingID: e.defending.ID(),
		CurrentRound: e.round, MaxRounds: e.cfg.MaxRounds, Phase: e.phase, IsComplete: e.complete,
	}
	if e.winner != nil {
		st.WinnerID = e.winner.ID()
	}
	return st
}

// Log returns a copy of every entry written so far.
func (e *Engine) Log() []LogEntry { return e.LogSince(0) }

// LogSince returns a copy of the entries from index n on.
func (e *Engine) LogSince(n int) []LogEntry {
	if n < 0 {
		n = 0
	}
	if n >= len(e.entries) {
		return nil
	}
	out := make([]LogEntry, 0, len(e.entries)-n)
	for _, le := range e.entries[n:] {
		out = append(out, le.clone())
	}
	return out
}

// Result is nil until the battle is complete.
func (e *Engine) Result() *BattleResult { return e.result }

// ExecuteBattle runs the remaining phases to completion.
func (e *Engine) ExecuteBattle() (*BattleResult, error) {
	for {
		done, err := e.Step()
		if err != nil {
			return nil, err
		}
		if done {
			return e.result, nil
		}
	}
}

// Step advances exactly one phase and reports whether the battle is complete.
// After a failure every call returns the same error.
func (e *Engine) Step() (bool, error) {
	if e.err != nil {
		return false, e.err
	}
	var err error
	switch e.phase {
	case PhaseSetup:
		err = e.setup()
	case PhaseInitiative:
		e.initiative()
	case PhaseAttack:
		if err = e.attackPhase(e.order[0], e.order[1]); err == nil {
			e.afterPhase(false)
		}
	case PhaseCounter:
		if err = e.attackPhase(e.order[1], e.order[0]); err == nil {
			e.afterPhase(true)
		}
	case PhaseResolution:
		err = e.resolve()
	case PhaseComplete:
		return true, nil
	}
	if err != nil {
		e.err = err
		e.log.Error("battle aborted", zap.Stringer("phase", e.phase), zap.Int("round", e.round), zap.Error(err))
		return false, err
	}
	return e.phase == PhaseComplete, nil
}

func (e *Engine) setup() error {
	e.log.Info("battle started",
		zap.String("attacking", e.attacking.ID()), zap.String("defending", e.defending.ID()),
		zap.Int("max_rounds", e.cfg.MaxRounds))
	for _, sq := range []*roster.Squad{e.attacking, e.defending} {
		var parts []string
		for _, u := range sq.InFormationOrder() {
			parts = append(parts, fmt.Sprintf("%s (%s, lv %d) @%s", u.Name(), u.Race(), u.Level(), u.Position()))
		}
		e.info(fmt.Sprintf("%s deploys %d units: %s", sq.Name(), sq.Len(), strings.Join(parts, ", ")),
			map[string]any{"squad_id": sq.ID(), "units": sq.Len()})
	}
	if e.hook != nil {
		if err := e.hook(e.attacking, e.defending); err != nil {
			return fmt.Errorf("pre-battle hook: %w", err)
		}
	}
	e.phase = PhaseInitiative
	return nil
}

func (e *Engine) initiative() {
	if e.round >= e.cfg.MaxRounds {
		e.timeout()
		e.phase = PhaseResolution
		return
	}
	e.round++
	ia, id := Initiative(e.attacking), Initiative(e.defending)
	e.order = [2]*roster.Squad{e.attacking, e.defending}
	if id > ia {
		e.order = [2]*roster.Squad{e.defending, e.attacking}
	}
	e.info(fmt.Sprintf("Round %d: %s (%d) strikes before %s (%d)", e.round, e.order[0].Name(), max(ia, id), e.order[1].Name(), min(ia, id)),
		map[string]any{"initiative": map[string]int{e.attacking.ID(): ia, e.defending.ID(): id}})
	e.phase = PhaseAttack
}

// Initiative is floor(avg(skl+str)) over living units.
func Initiative(sq *roster.Squad) int {
	living := sq.Living()
	if len(living) == 0 {
		return 0
	}
	sum := 0
	for _, u := range living {
		s := u.Stats()
		sum += s.Skl + s.Str
	}
	return sum / len(living)
}

func (e *Engine) afterPhase(counter bool) {
	switch {
	case e.checkVictory():
		e.phase = PhaseResolution
	case !counter:
		e.phase = PhaseCounter
	case e.round >= e.cfg.MaxRounds:
		e.timeout()
		e.phase = PhaseResolution
	default:
		e.phase = PhaseInitiative
	}
}

func (e *Engine) attackPhase(acting, opposing *roster.Squad) error {
	for _, u := range acting.InFormationOrder() {
		if opposing.IsEliminated() {
			break
		}
		if !u.IsAlive() || !e.startTurn(acting, u) {
			continue
		}
		target := SelectTarget(opposing)
		if target == nil {
			break
		}
		if err := e.attack(acting, opposing, u, target); err != nil {
			return err
		}
	}
	return nil
}

// startTurn ticks the unit's status effects and reports whether it may still attack.
func (e *Engine) startTurn(sq *roster.Squad, u *roster.Unit) bool {
	if len(u.StatusEffects()) == 0 {
		return true
	}
	tick := ProcessStatusEffects(u)
	dealt := u.TakeDamage(tick.Damage)
	healed := u.Heal(tick.Healing)
	if dealt > 0 || healed > 0 || len(tick.Expired) > 0 {
		ref := refOf(sq, u)
		msg := fmt.Sprintf("%s suffers %d and recovers %d from status effects", u.Name(), dealt, healed)
		e.append(LogEntry{Kind: LogStatus, Message: msg, Target: &ref, Damage: dealt, Healing: healed,
			Details: map[string]any{"expired": tick.Expired}})
	}
	if !u.IsAlive() {
		ref := refOf(sq, u)
		e.append(LogEntry{Kind: LogInfo, Message: fmt.Sprintf("%s succumbs to their afflictions", u.Name()), Target: &ref,
			Details: map[string]any{"death": true}})
		return false
	}
	return !tick.Disabled
}

// SelectTarget picks the weakest living front-row unit, falling back to the back row.
func SelectTarget(sq *roster.Squad) *roster.Unit {
	if t := weakest(sq.FrontRow()); t != nil {
		return t
	}
	return weakest(sq.BackRow())
}

func weakest(units []*roster.Unit) *roster.Unit {
	var best *roster.Unit
	for _, u := range units {
		if u.IsAlive() && (best == nil || u.CurrentHP() < best.CurrentHP()) {
			best = u
		}
	}
	return best
}

// SelectWeaponType picks the unit's best tracked proficiency.
func SelectWeaponType(u *roster.Unit) roster.WeaponType {
	profs := u.Proficiencies()
	var best roster.WeaponType
	bestLvl := -1
	for _, wt := range roster.WeaponTypes {
		if lvl, ok := profs[wt]; ok && lvl > bestLvl {
			best, bestLvl = wt, lvl
		}
	}
	if best != "" {
		return best
	}
	if s := u.Stats(); s.Mag > s.Str {
		return roster.Staff
	}
	return roster.Sword
}

func (e *Engine) attack(acting, opposing *roster.Squad, a, t *roster.Unit) error {
	wt := SelectWeaponType(a)
	res, err := e.calc.Calculate(a, t, FormationBonusesFor(a.Position(), t.Position()))
	if err != nil {
		return err
	}
	applied := t.TakeDamage(res.FinalDamage)

	weapon := "unarmed"
	if w := a.EquippedWeapon(); w != nil {
		weapon = w.Name
	}
	msg := fmt.Sprintf("%s attacks %s with %s for %d damage", a.Name(), t.Name(), weapon, applied)
	if res.IsCritical {
		msg += " (critical)"
	}
	ar, tr := refOf(acting, a), refOf(opposing, t)
	e.append(LogEntry{
		Kind: LogAttack, Message: msg, Attacker: &ar, Target: &tr,
		Weapon: weapon, WeaponType: wt, Damage: applied, Critical: res.IsCritical,
		Modifiers: append([]DamageModifier(nil), res.Modifiers...),
		Details: map[string]any{
			"base_damage": res.BaseDamage, "final_damage": res.FinalDamage,
			"damage_type": string(res.DamageType), "resistance": res.ResistanceApplied,
		},
	})
	e.log.Debug("attack",
		zap.Int("round", e.round), zap.String("attacker", a.ID()), zap.String("target", t.ID()),
		zap.Int("damage", applied), zap.Bool("crit", res.IsCritical), zap.String("damage_type", string(res.DamageType)))

	if !t.IsAlive() {
		exp := t.Level() * KillExpPerLevel
		a.AddExperience(exp)
		ar, tr := refOf(acting, a), refOf(opposing, t)
		e.append(LogEntry{Kind: LogInfo, Message: fmt.Sprintf("%s has been defeated by %s", t.Name(), a.Name()),
			Attacker: &ar, Target: &tr, Details: map[string]any{"death": true, "experience": exp}})
	}
	a.IncreaseProficiency(wt, ProficiencyPerHit)
	return nil
}

func (e *Engine) checkVictory() bool {
	aOut, dOut := e.attacking.IsEliminated(), e.defending.IsEliminated()
	switch {
	case dOut:
		e.declare(e.attacking, e.defending, VictoryElimination)
	case aOut:
		e.declare(e.defending, e.attacking, VictoryElimination)
	}
	return e.complete
}

// timeout awards the battle on remaining HP. Equal HP goes to the attacking squad.
func (e *Engine) timeout() {
	if e.defending.TotalHP() > e.attacking.TotalHP() {
		e.declare(e.defending, e.attacking, VictoryTimeout)
		return
	}
	e.declare(e.attacking, e.defending, VictoryTimeout)
}

func (e *Engine) declare(winner, loser *roster.Squad, cond VictoryCondition) {
	if e.winner != nil {
		return
	}
	e.winner, e.loser, e.condition, e.complete = winner, loser, cond, true
	e.info(fmt.Sprintf("%s wins by %s after %d rounds", winner.Name(), strings.ToLower(cond.String()), e.round),
		map[string]any{"winner": winner.ID(), "condition": cond.String()})
}

func (e *Engine) info(msg string, details map[string]any) {
	e.append(LogEntry{Kind: LogInfo, Message: msg, Details: details})
}

func (e *Engine) append(le LogEntry) {
	le.Seq = len(e.entries)
	le.Round = e.round
	le.Phase = e.phase
	le.Time = e.now()
	e.entries = append(e.entries, le)
}
