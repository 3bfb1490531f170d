package roster

import (
	"errors"
	"fmt"
)

const (
	MaxSlotCost     = 12
	DefaultCohesion = 50
)

type SquadExperience struct {
	BattlesWon   int `json:"battles_won"`
	BattlesLost  int `json:"battles_lost"`
	TotalBattles int `json:"total_battles"`
	Cohesion     int `json:"cohesion"`
}

type Squad struct {
	id, name   string
	units      []*Unit
	formation  map[Position]string
	Experience SquadExperience
}

func NewSquad(id, name string) *Squad {
	if name == "" {
		name = id
	}
	return &Squad{
		id: id, name: name,
		formation:  map[Position]string{},
		Experience: SquadExperience{Cohesion: DefaultCohesion},
	}
}

func (s *Squad) ID() string   { return s.id }
func (s *Squad) Name() string { return s.name }
func (s *Squad) Len() int     { return len(s.units) }

// AddUnit places u at pos, or in the first free slot when pos is empty.
func (s *Squad) AddUnit(u *Unit, pos Position) error {
	if u == nil {
		return errors.New("squad: nil unit")
	}
	if _, dup := s.Unit(u.ID()); dup {
		return fmt.Errorf("squad %s: duplicate unit %s", s.id, u.ID())
	}
	if s.SlotsUsed()+u.SlotCost() > MaxSlotCost {
		return fmt.Errorf("squad %s: unit %s exceeds slot capacity %d", s.id, u.ID(), MaxSlotCost)
	}
	if pos == "" {
		for _, p := range autoPlacement {
			if _, taken := s.formation[p]; !taken {
				pos = p
				break
			}
		}
		if pos == "" {
			return fmt.Errorf("squad %s: formation is full", s.id)
		}
	}
	if !pos.Valid() {
		return fmt.Errorf("squad %s: unknown formation slot %q", s.id, pos)
	}
	if other, taken := s.formation[pos]; taken {
		return fmt.Errorf("squad %s: slot %s already held by %s", s.id, pos, other)
	}
	u.position = pos
	s.formation[pos] = u.ID()
	s.units = append(s.units, u)
	return nil
}

func (s *Squad) Unit(id string) (*Unit, bool) {
	for _, u := range s.units {
		if u.ID() == id {
			return u, true
		}
	}
	return nil, false
}

// Units returns units in insertion order.
func (s *Squad) Units() []*Unit { return append([]*Unit(nil), s.units...) }

func (s *Squad) At(p Position) (*Unit, bool) {
	id, ok := s.formation[p]
	if !ok {
		return nil, false
	}
	return s.Unit(id)
}

func (s *Squad) InFormationOrder() []*Unit {
	out := make([]*Unit, 0, len(s.units))
	for _, p := range FormationOrder {
		if u, ok := s.At(p); ok {
			out = append(out, u)
		}
	}
	return out
}

func (s *Squad) FrontRow() []*Unit { return s.row(true) }
func (s *Squad) BackRow() []*Unit  { return s.row(false) }

func (s *Squad) row(front bool) []*Unit {
	var out []*Unit
	for _, u := range s.InFormationOrder() {
		if u.Position().IsFront() == front {
			out = append(out, u)
		}
	}
	return out
}

func (s *Squad) Living() []*Unit {
	var out []*Unit
	for _, u := range s.InFormationOrder() {
		if u.IsAlive() {
			out = append(out, u)
		}
	}
	return out
}

// Leader is the highest-leadership unit; the earlier one wins ties.
func (s *Squad) Leader() *Unit {
	var best *Unit
	for _, u := range s.units {
		if best == nil || u.Stats().Ldr > best.Stats().Ldr {
			best = u
		}
	}
	return best
}

func (s *Squad) IsValidForCombat() bool { return len(s.units) > 0 && len(s.Living()) > 0 }

// IsEliminated is true only when every unit is dead.
func (s *Squad) IsEliminated() bool {
	for _, u := range s.units {
		if u.IsAlive() {
			return false
		}
	}
	return true
}

func (s *Squad) TotalHP() int {
	total := 0
	for _, u := range s.units {
		if u.IsAlive() {
			total += u.CurrentHP()
		}
	}
	return total
}

func (s *Squad) AverageLevel() float64 {
	if len(s.units) == 0 {
		return 0
	}
	sum := 0
	for _, u := range s.units {
		sum += u.Level()
	}
	return float64(sum) / float64(len(s.units))
}

func (s *Squad) SlotsUsed() int {
	n := 0
	for _, u := range s.units {
		n += u.SlotCost()
	}
	return n
}

func (s *Squad) RecordBattle(won bool) {
	s.Experience.TotalBattles++
	if won {
		s.Experience.BattlesWon++
	} else {
		s.Experience.BattlesLost++
	}
}

// AdjustCohesion keeps cohesion within 0..100.
func (s *Squad) AdjustCohesion(delta int) {
	c := s.Experience.Cohesion + delta
	if c < 0 {
		c = 0
	}
	if c > 100 {
		c = 100
	}
	s.Experience.Cohesion = c
}
