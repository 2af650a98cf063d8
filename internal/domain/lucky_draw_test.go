package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/questx-lab/luckydraw/config"
	"github.com/questx-lab/luckydraw/internal/common"
	"github.com/questx-lab/luckydraw/internal/domain/draw"
	"github.com/questx-lab/luckydraw/internal/domain/recorder"
	"github.com/questx-lab/luckydraw/internal/entity"
	"github.com/questx-lab/luckydraw/internal/model"
	"github.com/questx-lab/luckydraw/internal/repository"
	"github.com/questx-lab/luckydraw/pkg/errorx"
	"github.com/questx-lab/luckydraw/pkg/testutil"
	"github.com/questx-lab/luckydraw/pkg/xredis"
	"github.com/stretchr/testify/require"
)

type mockQueue struct {
	records []draw.DrawRecord
}

func (q *mockQueue) Enqueue(_ context.Context, record draw.DrawRecord) bool {
	q.records = append(q.records, record)
	return true
}

func newTestDrawEngine(t *testing.T, source draw.RandomSource, prizes ...draw.Prize) *draw.Engine {
	table, err := draw.NewPrizeTable(prizes)
	require.NoError(t, err)

	engine, err := NewDrawEngineWithTable(config.Default().Draw, table, source)
	require.NoError(t, err)

	return engine
}

func newTestLuckyDrawDomain(engine *draw.Engine, redisClient xredis.Client, queue recorder.Queue) *luckyDrawDomain {
	return NewLuckyDrawDomain(
		engine,
		repository.NewUserRepository(),
		repository.NewDrawQuotaRepository(),
		repository.NewInventoryRepository(),
		repository.NewDrawRecordRepository(),
		repository.NewPointTransactionRepository(),
		redisClient,
		queue,
	)
}

func TestLuckyDrawDomain_DrawNewUser(t *testing.T) {
	ctx := testutil.MockContextWithUserID("new-user")
	engine := newTestDrawEngine(t, draw.NewFixedSource(0),
		draw.Prize{ID: "1", Name: "100 Points", Kind: draw.PrizeKindPoints, Value: 100, Weight: 1})
	queue := &mockQueue{}
	d := newTestLuckyDrawDomain(engine, nil, queue)

	resp, err := d.Draw(ctx, &model.DrawRequest{})
	require.NoError(t, err)
	require.Equal(t, "1", resp.Prize.ID)
	require.Equal(t, string(draw.DrawSourceFree), resp.Record.Source)
	require.Equal(t, int64(100), resp.PointsCredited)
	require.Equal(t, int64(100), resp.PointsBalance)
	require.Equal(t, 2, resp.RemainingFreeSpins)

	user, err := repository.NewUserRepository().GetByID(ctx, "new-user")
	require.NoError(t, err)
	require.Equal(t, int64(100), user.Points)
	require.Equal(t, "guest", user.MembershipLevel)

	quota, err := repository.NewDrawQuotaRepository().Get(ctx, "new-user")
	require.NoError(t, err)
	require.Equal(t, 1, quota.FreeSpinsUsedToday)

	count, err := repository.NewDrawRecordRepository().Count(ctx, "new-user")
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	txs, err := repository.NewPointTransactionRepository().GetListByUserID(ctx, "new-user", 0, 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, int64(100), txs[0].Amount)
	require.Equal(t, resp.Record.ID, txs[0].RefID)

	require.Len(t, queue.records, 1)
	require.Equal(t, resp.Record.ID, queue.records[0].ID)
}

func TestLuckyDrawDomain_PaidDraw(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixtureDb(ctx)

	engine := newTestDrawEngine(t, draw.NewFixedSource(0),
		draw.Prize{ID: "7", Name: "Nothing", Kind: draw.PrizeKindEmpty, Weight: 1})
	d := newTestLuckyDrawDomain(engine, nil, nil)

	// Silver has 3 base spins and 2 bonus spins.
	for i := 0; i < 5; i++ {
		resp, err := d.Draw(ctx, &model.DrawRequest{})
		require.NoError(t, err)
		require.Equal(t, string(draw.DrawSourceFree), resp.Record.Source)
	}

	for i := 0; i < 4; i++ {
		resp, err := d.Draw(ctx, &model.DrawRequest{})
		require.NoError(t, err)
		require.Equal(t, string(draw.DrawSourcePoints), resp.Record.Source)
		require.Equal(t, int64(50), resp.Record.Cost)
		require.Equal(t, int64(200-50*(i+1)), resp.PointsBalance)
	}

	_, err := d.Draw(ctx, &model.DrawRequest{})
	require.ErrorIs(t, err, errorx.New(errorx.InsufficientPoints, ""))

	user, err := repository.NewUserRepository().GetByID(ctx, testutil.User2.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), user.Points)

	txs, err := repository.NewPointTransactionRepository().GetListByUserID(ctx, testutil.User2.ID, 0, 50)
	require.NoError(t, err)
	require.Len(t, txs, 4)
	for _, tx := range txs {
		require.Equal(t, int64(-50), tx.Amount)
	}

	count, err := repository.NewDrawRecordRepository().Count(ctx, testutil.User2.ID)
	require.NoError(t, err)
	require.Equal(t, int64(9), count)
}

func TestLuckyDrawDomain_HistoryCap(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	cfg := config.Default().Draw
	cfg.PointsCost = 0
	cfg.HistoryLimit = 5
	table, err := draw.NewPrizeTable([]draw.Prize{{ID: "7", Kind: draw.PrizeKindEmpty, Weight: 1}})
	require.NoError(t, err)
	engine, err := NewDrawEngineWithTable(cfg, table, draw.NewFixedSource(0))
	require.NoError(t, err)
	d := newTestLuckyDrawDomain(engine, nil, nil)

	var last string
	for i := 0; i < 8; i++ {
		resp, err := d.Draw(ctx, &model.DrawRequest{})
		require.NoError(t, err)
		last = resp.Record.ID
	}

	count, err := repository.NewDrawRecordRepository().Count(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(5), count)

	history, err := d.GetDrawHistory(ctx, &model.GetDrawHistoryRequest{Limit: 50})
	require.NoError(t, err)
	require.Len(t, history.Records, 5)
	require.Equal(t, last, history.Records[0].ID)

	history, err = d.GetDrawHistory(ctx, &model.GetDrawHistoryRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, history.Records, 2)
}

func TestLuckyDrawDomain_ReadsWithoutState(t *testing.T) {
	ctx := testutil.MockContextWithUserID("stranger")
	engine := newTestDrawEngine(t, draw.NewFixedSource(0),
		draw.Prize{ID: "1", Kind: draw.PrizeKindPoints, Value: 10, Weight: 1})
	d := newTestLuckyDrawDomain(engine, nil, nil)

	quota, err := d.GetQuota(ctx, &model.GetQuotaRequest{})
	require.NoError(t, err)
	require.Equal(t, 3, quota.Quota.DailySpins)
	require.Equal(t, 3, quota.Quota.RemainingFreeSpins)
	require.Equal(t, 0, quota.Quota.FreeSpinsUsedToday)
	require.Equal(t, "guest", quota.User.EffectiveLevel)
	require.Equal(t, int64(50), quota.PointsCost)

	inventory, err := d.GetInventory(ctx, &model.GetInventoryRequest{})
	require.NoError(t, err)
	require.Empty(t, inventory.Items)

	history, err := d.GetDrawHistory(ctx, &model.GetDrawHistoryRequest{})
	require.NoError(t, err)
	require.Empty(t, history.Records)

	// Reads never create the user.
	_, err = repository.NewUserRepository().GetByID(ctx, "stranger")
	require.Error(t, err)
}

func TestLuckyDrawDomain_GetQuotaStaleDay(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	quotaRepo := repository.NewDrawQuotaRepository()
	require.NoError(t, quotaRepo.Upsert(ctx, &entity.DrawQuota{
		UserID:             testutil.User1.ID,
		FreeSpinsUsedToday: 3,
		LastResetDate:      "2000-01-01",
	}))

	engine := newTestDrawEngine(t, draw.NewFixedSource(0),
		draw.Prize{ID: "1", Kind: draw.PrizeKindEmpty, Weight: 1})
	d := newTestLuckyDrawDomain(engine, nil, nil)

	quota, err := d.GetQuota(ctx, &model.GetQuotaRequest{})
	require.NoError(t, err)
	require.Equal(t, 3, quota.Quota.RemainingFreeSpins)
	require.Equal(t, 0, quota.Quota.FreeSpinsUsedToday)

	// The read resets in memory only, the row keeps the old day until the
	// next draw.
	stored, err := quotaRepo.Get(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, "2000-01-01", stored.LastResetDate)

	_, err = d.Draw(ctx, &model.DrawRequest{})
	require.NoError(t, err)

	stored, err = quotaRepo.Get(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.FreeSpinsUsedToday)
	require.NotEqual(t, "2000-01-01", stored.LastResetDate)
}

func TestLuckyDrawDomain_ExpiredVIPIsIgnored(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User3.ID)
	testutil.CreateFixtureDb(ctx)

	engine := newTestDrawEngine(t, draw.NewFixedSource(0),
		draw.Prize{ID: "1", Kind: draw.PrizeKindPoints, Value: 100, Weight: 1})
	d := newTestLuckyDrawDomain(engine, nil, nil)

	quota, err := d.GetQuota(ctx, &model.GetQuotaRequest{})
	require.NoError(t, err)
	require.Equal(t, "guest", quota.User.EffectiveLevel)
	require.Equal(t, 3, quota.Quota.DailySpins)

	resp, err := d.Draw(ctx, &model.DrawRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(100), resp.PointsCredited)
}

func TestLuckyDrawDomain_ConsumeItem(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	engine := newTestDrawEngine(t, draw.NewFixedSource(0),
		draw.Prize{ID: "5", Name: "VIP 3 days", Kind: draw.PrizeKindVIPTrial, Value: 3, Weight: 1})
	d := newTestLuckyDrawDomain(engine, nil, nil)

	resp, err := d.Draw(ctx, &model.DrawRequest{})
	require.NoError(t, err)
	require.True(t, resp.StoredInInventory)

	inventory, err := d.GetInventory(ctx, &model.GetInventoryRequest{})
	require.NoError(t, err)
	require.Len(t, inventory.Items, 1)
	require.Equal(t, 1, inventory.Items[0].Count)
	require.Equal(t, "5", inventory.Items[0].Prize.ID)

	tests := []struct {
		name    string
		req     *model.ConsumeItemRequest
		wantErr error
	}{
		{
			name:    "invalid kind",
			req:     &model.ConsumeItemRequest{PrizeKind: "coupon", PrizeID: "5"},
			wantErr: errorx.New(errorx.BadRequest, ""),
		},
		{
			name:    "missing prize id",
			req:     &model.ConsumeItemRequest{PrizeKind: "vip_trial"},
			wantErr: errorx.New(errorx.BadRequest, ""),
		},
		{
			name:    "not in inventory",
			req:     &model.ConsumeItemRequest{PrizeKind: "vip_trial", PrizeID: "9"},
			wantErr: errorx.New(errorx.ItemNotFound, ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.ConsumeItem(ctx, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	consumed, err := d.ConsumeItem(ctx, &model.ConsumeItemRequest{PrizeKind: "vip_trial", PrizeID: "5"})
	require.NoError(t, err)
	require.NotNil(t, consumed.VIPExpiresAt)
	require.WithinDuration(t, time.Now().AddDate(0, 0, 3), *consumed.VIPExpiresAt, time.Minute)

	inventory, err = d.GetInventory(ctx, &model.GetInventoryRequest{})
	require.NoError(t, err)
	require.Empty(t, inventory.Items)

	quota, err := d.GetQuota(ctx, &model.GetQuotaRequest{})
	require.NoError(t, err)
	require.True(t, quota.User.IsVIPActive)
	require.Equal(t, "silver", quota.User.EffectiveLevel)
	require.Equal(t, "guest", quota.User.MembershipLevel)

	_, err = d.ConsumeItem(ctx, &model.ConsumeItemRequest{PrizeKind: "vip_trial", PrizeID: "5"})
	require.ErrorIs(t, err, errorx.New(errorx.ItemNotFound, ""))
}

func TestLuckyDrawDomain_RedisLock(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	engine := newTestDrawEngine(t, draw.NewFixedSource(0),
		draw.Prize{ID: "1", Kind: draw.PrizeKindPoints, Value: 10, Weight: 1})

	t.Run("held by another request", func(t *testing.T) {
		d := newTestLuckyDrawDomain(engine, &testutil.MockRedisClient{
			LockFunc: func(ctx context.Context, key string, ttl time.Duration) (string, error) {
				return "", xredis.ErrLocked
			},
		}, nil)

		_, err := d.Draw(ctx, &model.DrawRequest{})
		require.ErrorIs(t, err, errorx.New(errorx.DrawInProgress, ""))

		user, err := repository.NewUserRepository().GetByID(ctx, testutil.User1.ID)
		require.NoError(t, err)
		require.Equal(t, int64(0), user.Points)
	})

	t.Run("redis unavailable", func(t *testing.T) {
		d := newTestLuckyDrawDomain(engine, &testutil.MockRedisClient{
			LockFunc: func(ctx context.Context, key string, ttl time.Duration) (string, error) {
				return "", errors.New("connection refused")
			},
		}, nil)

		_, err := d.Draw(ctx, &model.DrawRequest{})
		require.ErrorIs(t, err, errorx.Unknown)
	})

	t.Run("released and cache invalidated", func(t *testing.T) {
		var unlocked, deleted []string
		d := newTestLuckyDrawDomain(engine, &testutil.MockRedisClient{
			UnlockFunc: func(ctx context.Context, key, token string) error {
				require.Equal(t, "token", token)
				unlocked = append(unlocked, key)
				return nil
			},
			DelFunc: func(ctx context.Context, key ...string) error {
				deleted = append(deleted, key...)
				return nil
			},
		}, nil)

		_, err := d.Draw(ctx, &model.DrawRequest{})
		require.NoError(t, err)
		require.Len(t, unlocked, 1)
		require.Equal(t, []string{common.RedisKeyDrawHistory(testutil.User1.ID)}, deleted)
	})

	t.Run("released after the client is gone", func(t *testing.T) {
		reqCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		var unlockErr error
		d := newTestLuckyDrawDomain(engine, &testutil.MockRedisClient{
			DelFunc: func(ctx context.Context, key ...string) error {
				cancel()
				return nil
			},
			UnlockFunc: func(ctx context.Context, key, token string) error {
				unlockErr = ctx.Err()
				return unlockErr
			},
		}, nil)

		_, err := d.Draw(reqCtx, &model.DrawRequest{})
		require.NoError(t, err)
		require.Error(t, reqCtx.Err())
		require.NoError(t, unlockErr)
	})
}

func TestLuckyDrawDomain_HistoryCache(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	engine := newTestDrawEngine(t, draw.NewFixedSource(0),
		draw.Prize{ID: "1", Kind: draw.PrizeKindPoints, Value: 10, Weight: 1})

	cached := []model.DrawRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	d := newTestLuckyDrawDomain(engine, &testutil.MockRedisClient{
		GetObjFunc: func(ctx context.Context, key string, v any) error {
			*(v.(*[]model.DrawRecord)) = cached
			return nil
		},
	}, nil)

	history, err := d.GetDrawHistory(ctx, &model.GetDrawHistoryRequest{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, cached[:2], history.Records)
}

func TestLuckyDrawDomain_GetPrizes(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	engine := newTestDrawEngine(t, nil,
		draw.Prize{ID: "1", Kind: draw.PrizeKindPoints, Value: 10, Weight: 3},
		draw.Prize{ID: "2", Kind: draw.PrizeKindEmpty, Weight: 1},
	)
	d := newTestLuckyDrawDomain(engine, nil, nil)

	resp, err := d.GetPrizes(ctx, &model.GetPrizesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Prizes, 2)
	require.InDelta(t, 0.75, resp.Prizes[0].Probability, 1e-9)
	require.InDelta(t, 0.25, resp.Prizes[1].Probability, 1e-9)
	require.Equal(t, int64(50), resp.PointsCost)
}
