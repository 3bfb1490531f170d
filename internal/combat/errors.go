package combat

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCombatState      = errors.New("invalid combat state")
	ErrDamageCalculationFailed = errors.New("damage calculation failed")
)

// InvalidCombatStateError is returned when an action does not fit the battle's state:
// invalid squads at construction, or resolution without a winner.
type InvalidCombatStateError struct {
	Phase  Phase
	Action string
	Reason string
}

func (e *InvalidCombatStateError) Error() string {
	return fmt.Sprintf("combat: cannot %s during %s: %s", e.Action, e.Phase, e.Reason)
}

func (e *InvalidCombatStateError) Unwrap() error { return ErrInvalidCombatState }

// DamageCalculationError aborts the battle it happens in.
type DamageCalculationError struct {
	AttackerID string
	DefenderID string
	Err        error
}

func (e *DamageCalculationError) Error() string {
	return fmt.Sprintf("combat: damage calculation failed (%s -> %s): %v", e.AttackerID, e.DefenderID, e.Err)
}

func (e *DamageCalculationError) Unwrap() []error {
	return []error{ErrDamageCalculationFailed, e.Err}
}
