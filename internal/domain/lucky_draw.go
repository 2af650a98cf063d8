package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/luckydraw/internal/common"
	"github.com/questx-lab/luckydraw/internal/domain/draw"
	"github.com/questx-lab/luckydraw/internal/domain/recorder"
	"github.com/questx-lab/luckydraw/internal/entity"
	"github.com/questx-lab/luckydraw/internal/model"
	"github.com/questx-lab/luckydraw/internal/repository"
	"github.com/questx-lab/luckydraw/pkg/enum"
	"github.com/questx-lab/luckydraw/pkg/errorx"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
	"github.com/questx-lab/luckydraw/pkg/xredis"
)

const historyCacheTTL = time.Minute

type LuckyDrawDomain interface {
	Draw(context.Context, *model.DrawRequest) (*model.DrawResponse, error)
	GetQuota(context.Context, *model.GetQuotaRequest) (*model.GetQuotaResponse, error)
	GetInventory(context.Context, *model.GetInventoryRequest) (*model.GetInventoryResponse, error)
	ConsumeItem(context.Context, *model.ConsumeItemRequest) (*model.ConsumeItemResponse, error)
	GetDrawHistory(context.Context, *model.GetDrawHistoryRequest) (*model.GetDrawHistoryResponse, error)
	GetPrizes(context.Context, *model.GetPrizesRequest) (*model.GetPrizesResponse, error)
}

type luckyDrawDomain struct {
	engine               *draw.Engine
	store                *sessionStore
	pointTransactionRepo repository.PointTransactionRepository
	redisClient          xredis.Client
	recordQueue          recorder.Queue
}

// NewLuckyDrawDomain returns the draw service. redisClient may be nil, then
// only the in-process guard and the row lock protect concurrent draws.
func NewLuckyDrawDomain(
	engine *draw.Engine,
	userRepo repository.UserRepository,
	quotaRepo repository.DrawQuotaRepository,
	inventoryRepo repository.InventoryRepository,
	drawRecordRepo repository.DrawRecordRepository,
	pointTransactionRepo repository.PointTransactionRepository,
	redisClient xredis.Client,
	recordQueue recorder.Queue,
) *luckyDrawDomain {
	if recordQueue == nil {
		recordQueue = recorder.NewNopQueue()
	}

	return &luckyDrawDomain{
		engine:               engine,
		store:                newSessionStore(userRepo, quotaRepo, inventoryRepo, drawRecordRepo, engine.HistoryLimit()),
		pointTransactionRepo: pointTransactionRepo,
		redisClient:          redisClient,
		recordQueue:          recordQueue,
	}
}

func (d *luckyDrawDomain) Draw(ctx context.Context, req *model.DrawRequest) (*model.DrawResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	unlock, err := d.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	session, err := d.store.load(ctx, userID, true)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load draw session: %v", err)
		return nil, errorx.Unknown
	}

	result, err := d.engine.Draw(ctx, session)
	if err != nil {
		return nil, d.drawError(ctx, err)
	}

	if err := d.settle(ctx, session, result); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot settle draw %s of user %s: %v", result.Record.ID, userID, err)
		common.PromCounters[common.DrawRejectedTotal].WithLabelValues("settlement").Inc()
		return nil, errorx.New(errorx.SettlementFailed, "Cannot save the draw, please try again")
	}

	d.invalidateHistory(ctx, userID)
	d.recordQueue.Enqueue(ctx, result.Record)
	common.PromCounters[common.DrawTotal].
		WithLabelValues(string(result.Source), string(result.Prize.Kind)).Inc()

	return &model.DrawResponse{
		Prize:              convertPrize(result.Prize, d.engine.Table().Probability(result.Prize.ID)),
		Record:             convertDrawRecord(result.Record),
		PointsCredited:     result.Effect.PointsCredited,
		StoredInInventory:  result.Effect.StoredInInventory,
		RemainingFreeSpins: result.RemainingFreeSpins,
		PointsBalance:      result.PointsBalance,
	}, nil
}

// settle persists a successful draw and commits the transaction of ctx.
func (d *luckyDrawDomain) settle(ctx context.Context, session *draw.Session, result *draw.DrawResult) error {
	if err := d.store.save(ctx, session); err != nil {
		return err
	}

	err := d.store.savePoints(ctx, session.User.UserID, result.Record.Cost, result.Effect.PointsCredited)
	if err != nil {
		return err
	}

	if err := d.store.saveRecord(ctx, result.Record); err != nil {
		return err
	}

	var ledger []*entity.PointTransaction
	if result.Record.Cost > 0 {
		ledger = append(ledger, &entity.PointTransaction{
			ID:        uuid.NewString(),
			UserID:    session.User.UserID,
			Amount:    -result.Record.Cost,
			Reason:    entity.PointReasonDraw,
			RefID:     result.Record.ID,
			CreatedAt: result.Record.CreatedAt,
		})
	}

	if result.Effect.PointsCredited > 0 {
		ledger = append(ledger, &entity.PointTransaction{
			ID:        uuid.NewString(),
			UserID:    session.User.UserID,
			Amount:    result.Effect.PointsCredited,
			Reason:    entity.PointReasonDraw,
			RefID:     result.Record.ID,
			CreatedAt: result.Record.CreatedAt,
		})
	}

	if err := d.pointTransactionRepo.Create(ctx, ledger...); err != nil {
		return err
	}

	return xcontext.WithCommitDBTransaction(ctx)
}

func (d *luckyDrawDomain) GetQuota(ctx context.Context, req *model.GetQuotaRequest) (*model.GetQuotaResponse, error) {
	session, err := d.store.load(ctx, xcontext.RequestUserID(ctx), false)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load draw session: %v", err)
		return nil, errorx.Unknown
	}

	remaining := d.engine.RemainingFreeSpins(session)
	level := d.engine.EffectiveLevel(session.User)

	return &model.GetQuotaResponse{
		Quota: model.Quota{
			DailySpins:         d.engine.Quota().DailySpins(level),
			FreeSpinsUsedToday: session.Quota.FreeSpinsUsedToday,
			RemainingFreeSpins: remaining,
			LastResetDate:      session.Quota.LastResetDate,
		},
		User:       convertRewardState(session.User, level),
		PointsCost: d.engine.PointsCost(),
	}, nil
}

func (d *luckyDrawDomain) GetInventory(
	ctx context.Context, req *model.GetInventoryRequest,
) (*model.GetInventoryResponse, error) {
	session, err := d.store.load(ctx, xcontext.RequestUserID(ctx), false)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load draw session: %v", err)
		return nil, errorx.Unknown
	}

	items := []model.InventoryItem{}
	for _, e := range session.Inventory.Entries() {
		items = append(items, convertInventoryEntry(e))
	}

	return &model.GetInventoryResponse{Items: items}, nil
}

func (d *luckyDrawDomain) ConsumeItem(
	ctx context.Context, req *model.ConsumeItemRequest,
) (*model.ConsumeItemResponse, error) {
	kind, err := enum.ToEnum[draw.PrizeKind](req.PrizeKind)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid prize kind")
	}

	if req.PrizeID == "" {
		return nil, errorx.New(errorx.BadRequest, "Prize id is required")
	}

	userID := xcontext.RequestUserID(ctx)
	unlock, err := d.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	session, err := d.store.load(ctx, userID, true)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load draw session: %v", err)
		return nil, errorx.Unknown
	}

	effect, err := d.engine.Consume(ctx, session, draw.InventoryKey{Kind: kind, PrizeID: req.PrizeID})
	if err != nil {
		return nil, d.drawError(ctx, err)
	}

	if err := d.store.save(ctx, session); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot save draw session: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit the transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ConsumeItemResponse{
		VIPExpiresAt:       effect.VIPExpiresAt,
		FreeSpinsRestored:  effect.FreeSpinsRestored,
		RemainingFreeSpins: d.engine.RemainingFreeSpins(session),
	}, nil
}

func (d *luckyDrawDomain) GetDrawHistory(
	ctx context.Context, req *model.GetDrawHistoryRequest,
) (*model.GetDrawHistoryResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	limit := common.Limit(ctx, req.Limit)
	if limit > d.engine.HistoryLimit() {
		limit = d.engine.HistoryLimit()
	}

	records, err := d.history(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get draw history: %v", err)
		return nil, errorx.Unknown
	}

	if len(records) > limit {
		records = records[:limit]
	}

	return &model.GetDrawHistoryResponse{Records: records}, nil
}

// history returns the whole capped history of the user, from the cache when
// possible.
func (d *luckyDrawDomain) history(ctx context.Context, userID string) ([]model.DrawRecord, error) {
	key := common.RedisKeyDrawHistory(userID)
	if d.redisClient != nil {
		var cached []model.DrawRecord
		if err := d.redisClient.GetObj(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	entities, err := d.store.drawRecordRepo.GetRecentByUserID(ctx, userID, d.engine.HistoryLimit())
	if err != nil {
		return nil, err
	}

	records := []model.DrawRecord{}
	for _, r := range entities {
		records = append(records, convertDrawRecord(toDrawRecord(r)))
	}

	if d.redisClient != nil {
		if err := d.redisClient.SetObj(ctx, key, records, historyCacheTTL); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot cache draw history: %v", err)
		}
	}

	return records, nil
}

func (d *luckyDrawDomain) invalidateHistory(ctx context.Context, userID string) {
	if d.redisClient == nil {
		return
	}

	if err := d.redisClient.Del(ctx, common.RedisKeyDrawHistory(userID)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot invalidate draw history cache: %v", err)
	}
}

func (d *luckyDrawDomain) GetPrizes(ctx context.Context, req *model.GetPrizesRequest) (*model.GetPrizesResponse, error) {
	table := d.engine.Table()
	prizes := []model.Prize{}
	for _, p := range table.Prizes() {
		prizes = append(prizes, convertPrize(p, table.Probability(p.ID)))
	}

	return &model.GetPrizesResponse{Prizes: prizes, PointsCost: d.engine.PointsCost()}, nil
}

// lock takes the distributed lock of the user when redis is configured. The
// returned function releases it.
func (d *luckyDrawDomain) lock(ctx context.Context, userID string) (func(), error) {
	if d.redisClient == nil {
		return func() {}, nil
	}

	key := common.RedisKeyDrawLock(userID)
	token, err := d.redisClient.Lock(ctx, key, xcontext.Configs(ctx).Redis.LockTTL)
	if err != nil {
		if errors.Is(err, xredis.ErrLocked) {
			common.PromCounters[common.DrawRejectedTotal].WithLabelValues("in_progress").Inc()
			return nil, errorx.New(errorx.DrawInProgress, "Another draw is in progress")
		}

		xcontext.Logger(ctx).Errorf("Cannot lock user %s: %v", userID, err)
		return nil, errorx.Unknown
	}

	return func() {
		// A gone client must not keep the user locked until the ttl.
		if err := d.redisClient.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot unlock user %s: %v", userID, err)
		}
	}, nil
}

func (d *luckyDrawDomain) drawError(ctx context.Context, err error) error {
	reject := func(reason string) {
		common.PromCounters[common.DrawRejectedTotal].WithLabelValues(reason).Inc()
	}

	switch {
	case errors.Is(err, draw.ErrQuotaExhausted):
		reject("quota_exhausted")
		return errorx.New(errorx.QuotaExhausted, "No free spin left today")

	case errors.Is(err, draw.ErrInsufficientPoints):
		reject("insufficient_points")
		return errorx.New(errorx.InsufficientPoints, "Not enough points to draw")

	case errors.Is(err, draw.ErrDrawInProgress):
		reject("in_progress")
		return errorx.New(errorx.DrawInProgress, "Another draw is in progress")

	case errors.Is(err, draw.ErrItemNotFound):
		reject("item_not_found")
		return errorx.New(errorx.ItemNotFound, "Item not found in inventory")

	case errors.Is(err, draw.ErrExhaustedTable):
		reject("exhausted_table")
		xcontext.Logger(ctx).Errorf("Prize table is broken: %v", err)
		return errorx.New(errorx.Internal, "Prize table is unavailable")

	case errors.Is(err, draw.ErrSettlement):
		reject("settlement")
		xcontext.Logger(ctx).Errorf("Cannot settle the draw: %v", err)
		return errorx.New(errorx.SettlementFailed, "Cannot save the draw, please try again")

	default:
		xcontext.Logger(ctx).Errorf("Cannot draw: %v", err)
		return errorx.Unknown
	}
}
