package draw

import (
	"fmt"
	"time"

	"github.com/questx-lab/luckydraw/pkg/enum"
	"github.com/shopspring/decimal"
)

// VIPStacking decides the new expiry when a VIP trial is consumed by a user
// who is already VIP.
type VIPStacking string

var (
	// VIPStackingExtend adds the trial days to the later of now and the
	// current expiry.
	VIPStackingExtend = enum.New(VIPStacking("extend"))

	// VIPStackingReset restarts the trial from now, but never shortens a
	// longer running one.
	VIPStackingReset = enum.New(VIPStacking("reset"))
)

// AppliedEffect describes what a prize changed.
type AppliedEffect struct {
	Prize             Prize
	Level             MembershipLevel
	Multiplier        decimal.Decimal
	PointsCredited    int64
	StoredInInventory bool
	VIPExpiresAt      *time.Time
	FreeSpinsRestored int
}

// effect is implemented once per prize kind. A kind without an effect is
// rejected by NewPrizeTable, so Apply and Consume never meet an unknown kind
// for prizes coming from a table.
type effect interface {
	consumable() bool
	win(a *Applier, p Prize, s *Session, now time.Time) AppliedEffect
	consume(a *Applier, p Prize, s *Session, now time.Time) AppliedEffect
}

var effects = map[PrizeKind]effect{
	PrizeKindPoints:         pointsEffect{},
	PrizeKindVIPTrial:       vipTrialEffect{},
	PrizeKindLotteryTickets: lotteryTicketsEffect{},
	PrizeKindEmpty:          emptyEffect{},
}

type Applier struct {
	membership  *MembershipTable
	quota       QuotaPolicy
	vipStacking VIPStacking
	vipLevel    MembershipLevel
}

func NewApplier(
	membership *MembershipTable,
	quota QuotaPolicy,
	vipStacking VIPStacking,
	vipLevel MembershipLevel,
) *Applier {
	if membership == nil {
		membership = DefaultMembershipTable()
	}

	return &Applier{
		membership:  membership,
		quota:       quota,
		vipStacking: vipStacking,
		vipLevel:    vipLevel,
	}
}

// EffectiveLevel is the stored level, raised to the VIP level while a VIP
// trial is running.
func (a *Applier) EffectiveLevel(u *UserRewardState, now time.Time) MembershipLevel {
	if u.VIPActiveAt(now) && a.vipLevel > u.MembershipLevel {
		return a.vipLevel
	}

	return u.MembershipLevel
}

// Apply gives a won prize to the session.
func (a *Applier) Apply(prize Prize, s *Session, now time.Time) (AppliedEffect, error) {
	e, ok := effects[prize.Kind]
	if !ok {
		return AppliedEffect{}, fmt.Errorf("unknown prize kind %q", prize.Kind)
	}

	return e.win(a, prize, s, now), nil
}

// Consume uses one unit of an inventory entry: the effect of its kind is
// applied, then the count is decremented.
func (a *Applier) Consume(s *Session, key InventoryKey, now time.Time) (AppliedEffect, error) {
	entry, ok := s.Inventory.Get(key)
	if !ok {
		return AppliedEffect{}, ErrItemNotFound
	}

	e, ok := effects[entry.Prize.Kind]
	if !ok || !e.consumable() {
		return AppliedEffect{}, ErrItemNotFound
	}

	result := e.consume(a, entry.Prize, s, now)
	if _, err := s.Inventory.Take(key); err != nil {
		return AppliedEffect{}, err
	}

	return result, nil
}

type pointsEffect struct{}

func (pointsEffect) consumable() bool { return false }

func (pointsEffect) win(a *Applier, p Prize, s *Session, now time.Time) AppliedEffect {
	level := a.EffectiveLevel(s.User, now)
	credited := a.membership.Points(p.Value, level)
	s.User.credit(credited)

	return AppliedEffect{
		Prize:          p,
		Level:          level,
		Multiplier:     a.membership.Multiplier(level),
		PointsCredited: credited,
	}
}

func (pointsEffect) consume(*Applier, Prize, *Session, time.Time) AppliedEffect {
	return AppliedEffect{}
}

type vipTrialEffect struct{}

func (vipTrialEffect) consumable() bool { return true }

func (vipTrialEffect) win(a *Applier, p Prize, s *Session, now time.Time) AppliedEffect {
	return storeEffect(p, s, now)
}

func (vipTrialEffect) consume(a *Applier, p Prize, s *Session, now time.Time) AppliedEffect {
	var current time.Time
	if s.User.VIPExpiresAt != nil {
		current = *s.User.VIPExpiresAt
	}

	var expiry time.Time
	switch a.vipStacking {
	case VIPStackingReset:
		expiry = now.AddDate(0, 0, int(p.Value))
		if current.After(expiry) {
			expiry = current
		}
	default:
		base := now
		if current.After(now) {
			base = current
		}
		expiry = base.AddDate(0, 0, int(p.Value))
	}

	s.User.IsVIPActive = true
	s.User.VIPExpiresAt = &expiry

	return AppliedEffect{Prize: p, Level: a.EffectiveLevel(s.User, now), VIPExpiresAt: &expiry}
}

type lotteryTicketsEffect struct{}

func (lotteryTicketsEffect) consumable() bool { return true }

func (lotteryTicketsEffect) win(a *Applier, p Prize, s *Session, now time.Time) AppliedEffect {
	return storeEffect(p, s, now)
}

func (lotteryTicketsEffect) consume(a *Applier, p Prize, s *Session, now time.Time) AppliedEffect {
	a.quota.Refresh(s.Quota, now)
	return AppliedEffect{Prize: p, FreeSpinsRestored: s.Quota.restore(p.Value)}
}

type emptyEffect struct{}

func (emptyEffect) consumable() bool { return false }

func (emptyEffect) win(_ *Applier, p Prize, _ *Session, _ time.Time) AppliedEffect {
	return AppliedEffect{Prize: p}
}

func (emptyEffect) consume(*Applier, Prize, *Session, time.Time) AppliedEffect {
	return AppliedEffect{}
}

func storeEffect(p Prize, s *Session, now time.Time) AppliedEffect {
	return AppliedEffect{Prize: p, StoredInInventory: s.Inventory.Add(p, now)}
}
