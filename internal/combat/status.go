package combat

import "squadsim/internal/roster"

type StatusHolder interface {
	StatusEffects() []roster.StatusEffect
	ReplaceStatusEffects([]roster.StatusEffect)
}

// StatusTick is what a unit's effects amount to this turn. Applying it is the caller's job.
type StatusTick struct {
	Damage   int      `json:"damage"`
	Healing  int      `json:"healing"`
	Expired  []string `json:"expired,omitempty"`
	Disabled bool     `json:"disabled,omitempty"`
}

// ProcessStatusEffects sums per-turn damage and healing, then ages every
// effect by one turn and drops the expired ones. HP is left alone.
func ProcessStatusEffects(h StatusHolder) StatusTick {
	var tick StatusTick
	effects := h.StatusEffects()
	if len(effects) == 0 {
		return tick
	}
	kept := effects[:0]
	for _, e := range effects {
		tick.Damage += e.DamagePerTurn
		tick.Healing += e.HealPerTurn
		if e.Disabling {
			tick.Disabled = true
		}
		e.Duration--
		if e.Duration <= 0 {
			tick.Expired = append(tick.Expired, e.Name)
			continue
		}
		kept = append(kept, e)
	}
	h.ReplaceStatusEffects(kept)
	return tick
}
