package draw

import (
	"fmt"

	"github.com/questx-lab/luckydraw/pkg/enum"
	"github.com/shopspring/decimal"
)

type MembershipLevel int

var (
	MembershipGuest    = enum.New(MembershipLevel(0), "guest", "free")
	MembershipBronze   = enum.New(MembershipLevel(1), "bronze", "basic")
	MembershipSilver   = enum.New(MembershipLevel(2), "silver", "vip")
	MembershipGold     = enum.New(MembershipLevel(3), "gold", "premium")
	MembershipPlatinum = enum.New(MembershipLevel(4), "platinum")
)

// MembershipLevels lists every level from the lowest to the highest.
var MembershipLevels = []MembershipLevel{
	MembershipGuest,
	MembershipBronze,
	MembershipSilver,
	MembershipGold,
	MembershipPlatinum,
}

func ParseMembershipLevel(s string) (MembershipLevel, error) {
	return enum.ToEnum[MembershipLevel](s)
}

func (l MembershipLevel) String() string {
	return enum.ToString(l)
}

// MembershipTable maps each level to its points multiplier and its daily bonus
// spins. Levels missing from the input inherit the values of the level below.
type MembershipTable struct {
	multipliers map[MembershipLevel]decimal.Decimal
	bonusSpins  map[MembershipLevel]int
}

func NewMembershipTable(
	multipliers map[MembershipLevel]decimal.Decimal,
	bonusSpins map[MembershipLevel]int,
) (*MembershipTable, error) {
	table := &MembershipTable{
		multipliers: make(map[MembershipLevel]decimal.Decimal, len(MembershipLevels)),
		bonusSpins:  make(map[MembershipLevel]int, len(MembershipLevels)),
	}

	prevMultiplier := decimal.NewFromInt(1)
	prevBonus := 0
	for i, level := range MembershipLevels {
		m, ok := multipliers[level]
		if !ok {
			m = prevMultiplier
		}

		if i == 0 && !m.Equal(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("multiplier of %s must be 1.0, got %s", level, m)
		}

		if m.LessThan(prevMultiplier) {
			return nil, fmt.Errorf("multiplier of %s (%s) is lower than the previous level (%s)",
				level, m, prevMultiplier)
		}

		b, ok := bonusSpins[level]
		if !ok {
			b = prevBonus
		}

		if b < 0 {
			return nil, fmt.Errorf("bonus spins of %s must not be negative", level)
		}

		table.multipliers[level] = m
		table.bonusSpins[level] = b
		prevMultiplier, prevBonus = m, b
	}

	return table, nil
}

func DefaultMembershipTable() *MembershipTable {
	table, err := NewMembershipTable(
		map[MembershipLevel]decimal.Decimal{
			MembershipGuest:    decimal.NewFromInt(1),
			MembershipBronze:   decimal.RequireFromString("1.2"),
			MembershipSilver:   decimal.RequireFromString("1.5"),
			MembershipGold:     decimal.NewFromInt(2),
			MembershipPlatinum: decimal.NewFromInt(3),
		},
		map[MembershipLevel]int{
			MembershipGuest:    0,
			MembershipBronze:   1,
			MembershipSilver:   2,
			MembershipGold:     3,
			MembershipPlatinum: 5,
		},
	)
	if err != nil {
		panic(err)
	}

	return table
}

func (t *MembershipTable) Multiplier(level MembershipLevel) decimal.Decimal {
	if m, ok := t.multipliers[level]; ok {
		return m
	}

	return decimal.NewFromInt(1)
}

func (t *MembershipTable) BonusSpins(level MembershipLevel) int {
	return t.bonusSpins[level]
}

// Points returns floor(value * multiplier(level)).
func (t *MembershipTable) Points(value int64, level MembershipLevel) int64 {
	return decimal.NewFromInt(value).Mul(t.Multiplier(level)).Floor().IntPart()
}
