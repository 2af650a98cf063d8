package draw

import (
	"errors"
	"fmt"
	"math"

	"github.com/questx-lab/luckydraw/pkg/enum"
)

type PrizeKind string

var (
	PrizeKindPoints         = enum.New(PrizeKind("points"))
	PrizeKindVIPTrial       = enum.New(PrizeKind("vip_trial"))
	PrizeKindLotteryTickets = enum.New(PrizeKind("lottery_tickets"))
	PrizeKindEmpty          = enum.New(PrizeKind("empty"))
)

// Consumable reports whether prizes of this kind are stored in the inventory
// instead of being applied on the spot.
func (k PrizeKind) Consumable() bool {
	e, ok := effects[k]
	return ok && e.consumable()
}

var ErrInvalidPrizeTable = errors.New("invalid prize table")

// Prize is an immutable catalog entry. The meaning of Value depends on Kind:
// points credited, days of VIP, or free spins given back.
type Prize struct {
	ID     string    `yaml:"id" json:"id"`
	Name   string    `yaml:"name" json:"name"`
	Kind   PrizeKind `yaml:"kind" json:"kind"`
	Value  int64     `yaml:"value" json:"value"`
	Weight float64   `yaml:"weight" json:"weight"`
}

// PrizeTable is the ordered catalog a draw picks from. It is validated once on
// construction and never changes afterwards.
type PrizeTable struct {
	prizes []Prize
	index  map[string]int
	total  float64
}

func NewPrizeTable(prizes []Prize) (*PrizeTable, error) {
	if len(prizes) == 0 {
		return nil, fmt.Errorf("%w: no prize", ErrInvalidPrizeTable)
	}

	table := &PrizeTable{
		prizes: make([]Prize, len(prizes)),
		index:  make(map[string]int, len(prizes)),
	}
	copy(table.prizes, prizes)

	for i, p := range table.prizes {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: prize at %d has no id", ErrInvalidPrizeTable, i)
		}

		if _, ok := table.index[p.ID]; ok {
			return nil, fmt.Errorf("%w: duplicated prize id %s", ErrInvalidPrizeTable, p.ID)
		}

		if _, ok := effects[p.Kind]; !ok {
			return nil, fmt.Errorf("%w: prize %s has unknown kind %q", ErrInvalidPrizeTable, p.ID, p.Kind)
		}

		if p.Value < 0 {
			return nil, fmt.Errorf("%w: prize %s has negative value", ErrInvalidPrizeTable, p.ID)
		}

		if math.IsNaN(p.Weight) || math.IsInf(p.Weight, 0) || p.Weight < 0 {
			return nil, fmt.Errorf("%w: prize %s has invalid weight %v", ErrInvalidPrizeTable, p.ID, p.Weight)
		}

		table.index[p.ID] = i
		table.total += p.Weight
	}

	if !(table.total > 0) || math.IsInf(table.total, 0) {
		return nil, fmt.Errorf("%w: total weight must be positive", ErrExhaustedTable)
	}

	return table, nil
}

// Prizes returns the catalog in its configured order.
func (t *PrizeTable) Prizes() []Prize {
	result := make([]Prize, len(t.prizes))
	copy(result, t.prizes)
	return result
}

func (t *PrizeTable) Get(id string) (Prize, bool) {
	i, ok := t.index[id]
	if !ok {
		return Prize{}, false
	}

	return t.prizes[i], true
}

func (t *PrizeTable) TotalWeight() float64 {
	return t.total
}

// Probability returns weight / total weight of the prize, or 0 if the id is
// unknown.
func (t *PrizeTable) Probability(id string) float64 {
	p, ok := t.Get(id)
	if !ok {
		return 0
	}

	return p.Weight / t.total
}
