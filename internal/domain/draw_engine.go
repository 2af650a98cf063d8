package domain

import (
	"fmt"
	"time"

	"github.com/questx-lab/luckydraw/config"
	"github.com/questx-lab/luckydraw/internal/domain/draw"
	"github.com/questx-lab/luckydraw/pkg/enum"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// NewDrawEngine loads the prize catalog file and builds the engine from the
// draw configs.
func NewDrawEngine(cfg config.DrawConfigs, source draw.RandomSource) (*draw.Engine, error) {
	table, err := draw.LoadPrizeTable(cfg.PrizeFile)
	if err != nil {
		return nil, err
	}

	return NewDrawEngineWithTable(cfg, table, source)
}

func NewDrawEngineWithTable(
	cfg config.DrawConfigs,
	table *draw.PrizeTable,
	source draw.RandomSource,
) (*draw.Engine, error) {
	multipliers := map[draw.MembershipLevel]decimal.Decimal{}
	names := maps.Keys(cfg.Multipliers)
	slices.Sort(names)
	for _, name := range names {
		level, err := draw.ParseMembershipLevel(name)
		if err != nil {
			return nil, fmt.Errorf("invalid multiplier level %q: %w", name, err)
		}

		m, err := decimal.NewFromString(cfg.Multipliers[name])
		if err != nil {
			return nil, fmt.Errorf("invalid multiplier of %s: %w", name, err)
		}

		multipliers[level] = m
	}

	bonusSpins := map[draw.MembershipLevel]int{}
	names = maps.Keys(cfg.BonusSpins)
	slices.Sort(names)
	for _, name := range names {
		level, err := draw.ParseMembershipLevel(name)
		if err != nil {
			return nil, fmt.Errorf("invalid bonus spins level %q: %w", name, err)
		}

		bonusSpins[level] = cfg.BonusSpins[name]
	}

	membership, err := draw.NewMembershipTable(multipliers, bonusSpins)
	if err != nil {
		return nil, err
	}

	location := time.UTC
	if cfg.ResetTimezone != "" {
		if location, err = time.LoadLocation(cfg.ResetTimezone); err != nil {
			return nil, fmt.Errorf("invalid reset timezone: %w", err)
		}
	}

	stacking := draw.VIPStackingExtend
	if cfg.VIPStacking != "" {
		if stacking, err = enum.ToEnum[draw.VIPStacking](cfg.VIPStacking); err != nil {
			return nil, fmt.Errorf("invalid vip stacking: %w", err)
		}
	}

	vipLevel := draw.MembershipSilver
	if cfg.VIPLevel != "" {
		if vipLevel, err = draw.ParseMembershipLevel(cfg.VIPLevel); err != nil {
			return nil, fmt.Errorf("invalid vip level: %w", err)
		}
	}

	return draw.NewEngine(draw.Config{
		Prizes:        table,
		Source:        source,
		Membership:    membership,
		BaseFreeSpins: cfg.BaseFreeSpins,
		PointsCost:    cfg.PointsCost,
		HistoryLimit:  cfg.HistoryLimit,
		ResetLocation: location,
		VIPStacking:   stacking,
		VIPLevel:      vipLevel,
		NodeID:        cfg.NodeID,
	})
}
