package repository_test

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/questx-lab/luckydraw/internal/entity"
	"github.com/questx-lab/luckydraw/internal/repository"
	"github.com/questx-lab/luckydraw/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_Points(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	userRepo := repository.NewUserRepository()

	require.NoError(t, userRepo.IncreasePoints(ctx, testutil.User1.ID, 30))
	require.NoError(t, userRepo.DecreasePoints(ctx, testutil.User1.ID, 20))

	err := userRepo.DecreasePoints(ctx, testutil.User1.ID, 11)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	user, err := userRepo.GetByID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(10), user.Points)

	err = userRepo.IncreasePoints(ctx, "unknown", 1)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_UpdateVIPState(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	userRepo := repository.NewUserRepository()

	expiry := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	err := userRepo.UpdateVIPState(ctx, &entity.User{
		Base:            entity.Base{ID: testutil.User2.ID},
		Points:          70,
		MembershipLevel: "gold",
		IsVIPActive:     true,
		VIPExpiresAt:    sql.NullTime{Valid: true, Time: expiry},
	})
	require.NoError(t, err)

	user, err := userRepo.GetByIDForUpdate(ctx, testutil.User2.ID)
	require.NoError(t, err)
	require.True(t, user.IsVIPActive)
	require.True(t, user.VIPExpiresAt.Valid)
	require.True(t, expiry.Equal(user.VIPExpiresAt.Time))

	// Points and level are left to their own updates.
	require.Equal(t, int64(200), user.Points)
	require.Equal(t, "silver", user.MembershipLevel)
}

func TestUserRepository_ExpireVIP(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	userRepo := repository.NewUserRepository()

	active := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, userRepo.UpdateVIPState(ctx, &entity.User{
		Base:         entity.Base{ID: testutil.User2.ID},
		IsVIPActive:  true,
		VIPExpiresAt: sql.NullTime{Valid: true, Time: active},
	}))

	n, err := userRepo.ExpireVIP(ctx, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	user3, err := userRepo.GetByID(ctx, testutil.User3.ID)
	require.NoError(t, err)
	require.False(t, user3.IsVIPActive)

	user2, err := userRepo.GetByID(ctx, testutil.User2.ID)
	require.NoError(t, err)
	require.True(t, user2.IsVIPActive)
}
