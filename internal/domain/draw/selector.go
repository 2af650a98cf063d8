package draw

import (
	"fmt"
	"math/rand/v2"

	"github.com/questx-lab/luckydraw/pkg/crypto"
)

// RandomSource returns uniform values in [0, 1).
type RandomSource interface {
	Float64() float64
}

// DefaultSource is backed by crypto/rand.
func DefaultSource() RandomSource {
	return crypto.Source{}
}

type seededSource struct {
	r *rand.Rand
}

// NewSeededSource returns a reproducible source, used by simulations and
// tests.
func NewSeededSource(seed uint64) RandomSource {
	return &seededSource{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededSource) Float64() float64 {
	return s.r.Float64()
}

// FixedSource replays the given values in a loop.
type FixedSource struct {
	Values []float64
	next   int
}

func NewFixedSource(values ...float64) *FixedSource {
	return &FixedSource{Values: values}
}

func (s *FixedSource) Float64() float64 {
	if len(s.Values) == 0 {
		return 0
	}

	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}

type Selector struct {
	source RandomSource
}

func NewSelector(source RandomSource) *Selector {
	if source == nil {
		source = DefaultSource()
	}

	return &Selector{source: source}
}

// Draw picks one prize of the table with probability weight / total weight.
func (s *Selector) Draw(table *PrizeTable) (Prize, error) {
	u := s.source.Float64()
	if !(u >= 0 && u < 1) {
		return Prize{}, fmt.Errorf("%w: random value %v out of [0, 1)", ErrExhaustedTable, u)
	}

	return pick(table, u*table.TotalWeight())
}

// pick walks the table accumulating weights and returns the first prize whose
// cumulative weight passes r. Zero weight prizes are never returned. When
// rounding leaves r at or above the final sum, the last positive prize wins.
func pick(table *PrizeTable, r float64) (Prize, error) {
	last := -1
	cumulative := 0.0
	for i, p := range table.prizes {
		if p.Weight <= 0 {
			continue
		}

		last = i
		cumulative += p.Weight
		if r < cumulative {
			return p, nil
		}
	}

	if last < 0 {
		return Prize{}, ErrExhaustedTable
	}

	return table.prizes[last], nil
}
