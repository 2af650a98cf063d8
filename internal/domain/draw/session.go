package draw

import (
	"errors"
	"time"
)

// UserRewardState is the part of a user touched by draws.
type UserRewardState struct {
	UserID          string
	PointsBalance   int64
	MembershipLevel MembershipLevel
	IsVIPActive     bool
	VIPExpiresAt    *time.Time
}

// VIPActiveAt reports whether a VIP trial is running at now. A trial whose
// expiry has passed counts as inactive even if the flag is still set.
func (u *UserRewardState) VIPActiveAt(now time.Time) bool {
	return u.IsVIPActive && u.VIPExpiresAt != nil && now.Before(*u.VIPExpiresAt)
}

func (u *UserRewardState) credit(points int64) {
	const maxInt64 = 1<<63 - 1
	if points > maxInt64-u.PointsBalance {
		u.PointsBalance = maxInt64
		return
	}

	u.PointsBalance += points
}

// Session bundles the state of one user that a draw reads and writes. The
// caller loads it, runs engine operations on it and saves it back.
type Session struct {
	User      *UserRewardState
	Quota     *DrawQuota
	Inventory *Inventory
	History   *History
}

// NewSession returns a session with empty quota, inventory and history, which
// is the state of a user who never played.
func NewSession(user *UserRewardState) *Session {
	return &Session{
		User:      user,
		Quota:     &DrawQuota{},
		Inventory: NewInventory(),
		History:   NewHistory(DefaultHistoryLimit),
	}
}

func (s *Session) validate() error {
	if s == nil || s.User == nil || s.Quota == nil || s.Inventory == nil || s.History == nil {
		return errors.New("incomplete draw session")
	}

	if s.User.UserID == "" {
		return errors.New("draw session without user id")
	}

	return nil
}
