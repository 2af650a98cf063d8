package draw

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/puzpuzpuz/xsync"
)

// DrawState is the step of the draw in flight for a user. A rejected draw
// never leaves its state behind, the rejection is the returned error.
type DrawState int32

const (
	StateIdle DrawState = iota
	StateDrawing
	StateSettling
)

func (s DrawState) String() string {
	switch s {
	case StateDrawing:
		return "drawing"
	case StateSettling:
		return "settling"
	default:
		return "idle"
	}
}

type Config struct {
	Prizes     *PrizeTable
	Source     RandomSource
	Membership *MembershipTable

	BaseFreeSpins int
	PointsCost    int64
	HistoryLimit  int

	// ResetLocation is where the daily quota boundary is computed.
	ResetLocation *time.Location
	VIPStacking   VIPStacking

	// VIPLevel is the level granted while a VIP trial runs. Guest disables the
	// boost.
	VIPLevel MembershipLevel

	// NodeID is the snowflake node used for record ids when NewID is nil.
	NodeID int64
	NewID  func() string
	Now    func() time.Time
}

type DrawResult struct {
	Prize              Prize
	Effect             AppliedEffect
	Record             DrawRecord
	Source             DrawSource
	RemainingFreeSpins int
	PointsBalance      int64
}

// Engine runs draws over explicit sessions. It holds no user state besides
// the set of users having an operation in flight.
type Engine struct {
	table        *PrizeTable
	selector     *Selector
	quota        QuotaPolicy
	applier      *Applier
	pointsCost   int64
	historyLimit int
	newID        func() string
	now          func() time.Time

	inflight *xsync.MapOf[string, *flight]
}

type flight struct {
	state atomic.Int32
}

func (f *flight) set(s DrawState) {
	f.state.Store(int32(s))
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Prizes == nil {
		return nil, errors.New("prize table is required")
	}

	if cfg.PointsCost < 0 {
		return nil, errors.New("points cost must not be negative")
	}

	if cfg.BaseFreeSpins < 0 {
		return nil, errors.New("base free spins must not be negative")
	}

	if cfg.Membership == nil {
		cfg.Membership = DefaultMembershipTable()
	}

	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}

	if cfg.ResetLocation == nil {
		cfg.ResetLocation = time.UTC
	}

	if cfg.VIPStacking == "" {
		cfg.VIPStacking = VIPStackingExtend
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if cfg.NewID == nil {
		node, err := snowflake.NewNode(cfg.NodeID)
		if err != nil {
			return nil, fmt.Errorf("cannot create snowflake node: %w", err)
		}
		cfg.NewID = func() string { return node.Generate().String() }
	}

	quota := QuotaPolicy{
		BaseFreeSpins: cfg.BaseFreeSpins,
		Membership:    cfg.Membership,
		Location:      cfg.ResetLocation,
	}

	return &Engine{
		table:        cfg.Prizes,
		selector:     NewSelector(cfg.Source),
		quota:        quota,
		applier:      NewApplier(cfg.Membership, quota, cfg.VIPStacking, cfg.VIPLevel),
		pointsCost:   cfg.PointsCost,
		historyLimit: cfg.HistoryLimit,
		newID:        cfg.NewID,
		now:          cfg.Now,
		inflight:     xsync.NewMapOf[*flight](),
	}, nil
}

func (e *Engine) Prizes() []Prize {
	return e.table.Prizes()
}

func (e *Engine) Table() *PrizeTable {
	return e.table
}

func (e *Engine) PointsCost() int64 {
	return e.pointsCost
}

func (e *Engine) HistoryLimit() int {
	return e.historyLimit
}

func (e *Engine) Quota() QuotaPolicy {
	return e.quota
}

// State returns the state of the operation in flight for the user, or
// StateIdle when there is none. Only in-flight states are observable.
func (e *Engine) State(userID string) DrawState {
	f, ok := e.inflight.Load(userID)
	if !ok {
		return StateIdle
	}

	return DrawState(f.state.Load())
}

// EffectiveLevel returns the level used for multipliers and bonus spins of
// the user right now.
func (e *Engine) EffectiveLevel(u *UserRewardState) MembershipLevel {
	return e.applier.EffectiveLevel(u, e.now())
}

// RemainingFreeSpins returns today's free spins of the session, resetting the
// quota on a new day.
func (e *Engine) RemainingFreeSpins(s *Session) int {
	now := e.now()
	return e.quota.Remaining(s.Quota, now, e.applier.EffectiveLevel(s.User, now))
}

func (e *Engine) begin(userID string) (*flight, error) {
	f := &flight{}
	if _, loaded := e.inflight.LoadOrStore(userID, f); loaded {
		return nil, ErrDrawInProgress
	}

	return f, nil
}

func (e *Engine) end(userID string) {
	e.inflight.Delete(userID)
}

// Draw performs one draw for the session. A free spin is used when one is
// left, otherwise the points cost is debited. Rejections leave the session
// untouched apart from a daily quota reset.
func (e *Engine) Draw(ctx context.Context, s *Session) (*DrawResult, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := e.begin(s.User.UserID)
	if err != nil {
		return nil, err
	}
	defer e.end(s.User.UserID)

	now := e.now()
	level := e.applier.EffectiveLevel(s.User, now)

	source := DrawSourceFree
	if e.quota.Remaining(s.Quota, now, level) == 0 {
		if s.User.PointsBalance < e.pointsCost {
			return nil, ErrInsufficientPoints
		}
		source = DrawSourcePoints
	}

	f.set(StateDrawing)

	// Selecting first keeps a broken table from costing anything.
	prize, err := e.selector.Draw(e.table)
	if err != nil {
		return nil, err
	}

	var cost int64
	if source == DrawSourceFree {
		if _, err := e.quota.ConsumeFreeSpin(s.Quota, now, level); err != nil {
			return nil, err
		}
	} else {
		s.User.PointsBalance -= e.pointsCost
		cost = e.pointsCost
	}

	f.set(StateSettling)

	effect, err := e.applier.Apply(prize, s, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlement, err)
	}

	value := prize.Value
	if prize.Kind == PrizeKindPoints {
		value = effect.PointsCredited
	}

	record := DrawRecord{
		ID:        e.newID(),
		UserID:    s.User.UserID,
		PrizeID:   prize.ID,
		PrizeName: prize.Name,
		Value:     value,
		Kind:      prize.Kind,
		Source:    source,
		Cost:      cost,
		CreatedAt: now,
	}
	s.History.Append(record)

	f.set(StateIdle)

	return &DrawResult{
		Prize:              prize,
		Effect:             effect,
		Record:             record,
		Source:             source,
		RemainingFreeSpins: e.quota.Remaining(s.Quota, now, e.applier.EffectiveLevel(s.User, now)),
		PointsBalance:      s.User.PointsBalance,
	}, nil
}

// Consume uses one unit of an inventory entry of the session. It shares the
// in-flight guard with Draw.
func (e *Engine) Consume(ctx context.Context, s *Session, key InventoryKey) (AppliedEffect, error) {
	if err := s.validate(); err != nil {
		return AppliedEffect{}, err
	}

	if err := ctx.Err(); err != nil {
		return AppliedEffect{}, err
	}

	if _, err := e.begin(s.User.UserID); err != nil {
		return AppliedEffect{}, err
	}
	defer e.end(s.User.UserID)

	return e.applier.Consume(s, key, e.now())
}
