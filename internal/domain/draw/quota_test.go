package draw

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQuotaPolicy_Remaining(t *testing.T) {
	policy := QuotaPolicy{BaseFreeSpins: 3, Membership: DefaultMembershipTable()}
	today := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

	t.Run("reset on a new day", func(t *testing.T) {
		q := &DrawQuota{FreeSpinsUsedToday: 3, LastResetDate: "2024-05-09"}

		require.Equal(t, 5, policy.Remaining(q, today, MembershipSilver))
		require.Equal(t, 0, q.FreeSpinsUsedToday)
		require.Equal(t, "2024-05-10", q.LastResetDate)

		// Idempotent on the same day.
		require.Equal(t, 5, policy.Remaining(q, today.Add(time.Hour), MembershipSilver))
		require.Equal(t, "2024-05-10", q.LastResetDate)
	})

	t.Run("fresh quota", func(t *testing.T) {
		q := &DrawQuota{}
		require.Equal(t, 3, policy.Remaining(q, today, MembershipGuest))
		require.Equal(t, "2024-05-10", q.LastResetDate)
	})

	t.Run("bonus follows the live level", func(t *testing.T) {
		q := &DrawQuota{FreeSpinsUsedToday: 4, LastResetDate: "2024-05-10"}
		require.Equal(t, 1, policy.Remaining(q, today, MembershipSilver))
		require.Equal(t, 0, policy.Remaining(q, today, MembershipGuest))
		require.Equal(t, 4, q.FreeSpinsUsedToday)
	})

	t.Run("reset boundary uses the configured location", func(t *testing.T) {
		loc := time.FixedZone("UTC+7", 7*60*60)
		local := QuotaPolicy{BaseFreeSpins: 3, Location: loc}

		// 20:00 UTC on the 9th is already the 10th at UTC+7.
		now := time.Date(2024, 5, 9, 20, 0, 0, 0, time.UTC)
		q := &DrawQuota{FreeSpinsUsedToday: 3, LastResetDate: "2024-05-09"}
		require.Equal(t, 3, local.Remaining(q, now, MembershipGuest))
		require.Equal(t, "2024-05-10", q.LastResetDate)

		q = &DrawQuota{FreeSpinsUsedToday: 3, LastResetDate: "2024-05-09"}
		require.Equal(t, 0, policy.Remaining(q, now, MembershipGuest))
	})
}

func TestQuotaPolicy_ConsumeFreeSpin(t *testing.T) {
	policy := QuotaPolicy{BaseFreeSpins: 2}
	now := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	q := &DrawQuota{LastResetDate: "2024-05-10"}

	remaining, err := policy.ConsumeFreeSpin(q, now, MembershipGuest)
	require.NoError(t, err)
	require.Equal(t, 1, remaining)

	remaining, err = policy.ConsumeFreeSpin(q, now, MembershipGuest)
	require.NoError(t, err)
	require.Equal(t, 0, remaining)

	_, err = policy.ConsumeFreeSpin(q, now, MembershipGuest)
	require.ErrorIs(t, err, ErrQuotaExhausted)
	require.Equal(t, 2, q.FreeSpinsUsedToday)

	// A downgrade can leave usage above the daily spins, the count stays at 0.
	q.FreeSpinsUsedToday = 5
	require.Equal(t, 0, policy.Remaining(q, now, MembershipGuest))
	_, err = policy.ConsumeFreeSpin(q, now, MembershipGuest)
	require.ErrorIs(t, err, ErrQuotaExhausted)
	require.Equal(t, 5, q.FreeSpinsUsedToday)
}
