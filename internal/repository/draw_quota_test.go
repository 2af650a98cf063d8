package repository_test

import (
	"testing"

	"github.com/questx-lab/luckydraw/internal/entity"
	"github.com/questx-lab/luckydraw/internal/repository"
	"github.com/questx-lab/luckydraw/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDrawQuotaRepository(t *testing.T) {
	ctx := testutil.MockContext()
	quotaRepo := repository.NewDrawQuotaRepository()

	_, err := quotaRepo.Get(ctx, "user1")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, quotaRepo.Upsert(ctx, &entity.DrawQuota{
		UserID: "user1", FreeSpinsUsedToday: 1, LastResetDate: "2024-05-10",
	}))
	require.NoError(t, quotaRepo.Upsert(ctx, &entity.DrawQuota{
		UserID: "user1", FreeSpinsUsedToday: 2, LastResetDate: "2024-05-10",
	}))

	quota, err := quotaRepo.Get(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, 2, quota.FreeSpinsUsedToday)
	require.Equal(t, "2024-05-10", quota.LastResetDate)
}

func TestInventoryRepository(t *testing.T) {
	ctx := testutil.MockContext()
	inventoryRepo := repository.NewInventoryRepository()

	require.NoError(t, inventoryRepo.ReplaceByUserID(ctx, "user1", []entity.InventoryItem{
		{PrizeKind: "vip_trial", PrizeID: "5", Value: 3, Count: 2},
		{PrizeKind: "lottery_tickets", PrizeID: "6", Value: 3, Count: 0},
	}))
	require.NoError(t, inventoryRepo.ReplaceByUserID(ctx, "user2", []entity.InventoryItem{
		{PrizeKind: "lottery_tickets", PrizeID: "6", Value: 3, Count: 1},
	}))

	items, err := inventoryRepo.GetByUserID(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "user1", items[0].UserID)
	require.Equal(t, 2, items[0].Count)

	require.NoError(t, inventoryRepo.ReplaceByUserID(ctx, "user1", nil))
	items, err = inventoryRepo.GetByUserID(ctx, "user1")
	require.NoError(t, err)
	require.Empty(t, items)

	items, err = inventoryRepo.GetByUserID(ctx, "user2")
	require.NoError(t, err)
	require.Len(t, items, 1)
}
