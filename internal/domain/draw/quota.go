package draw

import "time"

const dateLayout = "2006-01-02"

// DrawQuota is the free spin usage of one user. LastResetDate is a calendar
// date in the location of the QuotaPolicy.
type DrawQuota struct {
	FreeSpinsUsedToday int
	LastResetDate      string
}

type QuotaPolicy struct {
	BaseFreeSpins int
	Membership    *MembershipTable

	// Location is where the day boundary is computed. Nil means UTC.
	Location *time.Location
}

func (p QuotaPolicy) today(now time.Time) string {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}

	return now.In(loc).Format(dateLayout)
}

// DailySpins is the total number of free spins of a level for one day. The
// bonus is looked up every time, never stored.
func (p QuotaPolicy) DailySpins(level MembershipLevel) int {
	bonus := 0
	if p.Membership != nil {
		bonus = p.Membership.BonusSpins(level)
	}

	return p.BaseFreeSpins + bonus
}

// Refresh resets the usage when now falls on another day than the last reset.
// It reports whether q has been modified.
func (p QuotaPolicy) Refresh(q *DrawQuota, now time.Time) bool {
	today := p.today(now)
	if q.LastResetDate == today {
		return false
	}

	q.FreeSpinsUsedToday = 0
	q.LastResetDate = today
	return true
}

// Remaining returns the number of free spins left today. It may reset q, the
// caller must persist q before relying on the result.
func (p QuotaPolicy) Remaining(q *DrawQuota, now time.Time, level MembershipLevel) int {
	p.Refresh(q, now)

	remaining := p.DailySpins(level) - q.FreeSpinsUsedToday
	if remaining < 0 {
		return 0
	}

	return remaining
}

// ConsumeFreeSpin uses one free spin and returns how many are left.
func (p QuotaPolicy) ConsumeFreeSpin(q *DrawQuota, now time.Time, level MembershipLevel) (int, error) {
	if p.Remaining(q, now, level) == 0 {
		return 0, ErrQuotaExhausted
	}

	q.FreeSpinsUsedToday++
	return p.Remaining(q, now, level), nil
}

// restore gives back n spins of today, never going below zero usage.
func (q *DrawQuota) restore(n int64) int {
	before := q.FreeSpinsUsedToday
	if int64(q.FreeSpinsUsedToday) <= n {
		q.FreeSpinsUsedToday = 0
	} else {
		q.FreeSpinsUsedToday -= int(n)
	}

	return before - q.FreeSpinsUsedToday
}
