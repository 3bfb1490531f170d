package util

import "math/rand"

// Source yields uniform values in [0,1). Every roll in a battle goes through one.
type Source interface {
	NextFloat() float64
}

func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	src := rand.NewSource(seed)
	return rand.New(src)
}

type randSource struct{ r *rand.Rand }

func (s randSource) NextFloat() float64 { return s.r.Float64() }

// NewSource returns a seeded Source. Not safe for concurrent use; give each battle its own.
func NewSource(seed int64) Source { return randSource{r: New(seed)} }

// Sequence replays a fixed list of values, wrapping around at the end.
type Sequence struct {
	vals []float64
	i    int
}

func NewSequence(vals ...float64) *Sequence {
	if len(vals) == 0 {
		vals = []float64{0.5}
	}
	return &Sequence{vals: vals}
}

func (s *Sequence) NextFloat() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

// Calls reports how many values have been drawn.
func (s *Sequence) Calls() int { return s.i }
