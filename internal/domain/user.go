package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/luckydraw/internal/common"
	"github.com/questx-lab/luckydraw/internal/domain/draw"
	"github.com/questx-lab/luckydraw/internal/entity"
	"github.com/questx-lab/luckydraw/internal/model"
	"github.com/questx-lab/luckydraw/internal/repository"
	"github.com/questx-lab/luckydraw/pkg/enum"
	"github.com/questx-lab/luckydraw/pkg/errorx"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
	"gorm.io/gorm"
)

type UserDomain interface {
	GetMe(context.Context, *model.GetMeRequest) (*model.GetMeResponse, error)
	GetPointTransactions(context.Context, *model.GetPointTransactionsRequest) (*model.GetPointTransactionsResponse, error)
	CreditPoints(context.Context, *model.CreditPointsRequest) (*model.CreditPointsResponse, error)
	UpdateMembership(context.Context, *model.UpdateMembershipRequest) (*model.UpdateMembershipResponse, error)
}

type userDomain struct {
	engine               *draw.Engine
	userRepo             repository.UserRepository
	pointTransactionRepo repository.PointTransactionRepository
}

func NewUserDomain(
	engine *draw.Engine,
	userRepo repository.UserRepository,
	pointTransactionRepo repository.PointTransactionRepository,
) *userDomain {
	return &userDomain{
		engine:               engine,
		userRepo:             userRepo,
		pointTransactionRepo: pointTransactionRepo,
	}
}

func (d *userDomain) GetMe(ctx context.Context, req *model.GetMeRequest) (*model.GetMeResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
			return nil, errorx.Unknown
		}

		user = &entity.User{Base: entity.Base{ID: userID}, MembershipLevel: draw.MembershipGuest.String()}
	}

	state, err := toRewardState(user)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Invalid reward state of user %s: %v", userID, err)
		return nil, errorx.Unknown
	}

	return &model.GetMeResponse{User: convertRewardState(state, d.engine.EffectiveLevel(state))}, nil
}

func (d *userDomain) GetPointTransactions(
	ctx context.Context, req *model.GetPointTransactionsRequest,
) (*model.GetPointTransactionsResponse, error) {
	if req.Offset < 0 {
		return nil, errorx.New(errorx.BadRequest, "Offset must not be negative")
	}

	txs, err := d.pointTransactionRepo.GetListByUserID(
		ctx, xcontext.RequestUserID(ctx), req.Offset, common.Limit(ctx, req.Limit))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get point transactions: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.PointTransaction{}
	for _, tx := range txs {
		result = append(result, convertPointTransaction(tx))
	}

	return &model.GetPointTransactionsResponse{Transactions: result}, nil
}

// CreditPoints adds earned points to a user and writes the ledger line in the
// same transaction.
func (d *userDomain) CreditPoints(
	ctx context.Context, req *model.CreditPointsRequest,
) (*model.CreditPointsResponse, error) {
	if req.UserID == "" {
		return nil, errorx.New(errorx.BadRequest, "User id is required")
	}

	if req.Amount <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Amount must be positive")
	}

	reason, err := enum.ToEnum[entity.PointReason](req.Reason)
	if err != nil || reason == entity.PointReasonDraw {
		return nil, errorx.New(errorx.BadRequest, "Invalid reason")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.userRepo.IncreasePoints(ctx, req.UserID, req.Amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot increase points: %v", err)
		return nil, errorx.Unknown
	}

	err = d.pointTransactionRepo.Create(ctx, &entity.PointTransaction{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Amount:    req.Amount,
		Reason:    reason,
		RefID:     req.RefID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create point transaction: %v", err)
		return nil, errorx.Unknown
	}

	user, err := d.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit the transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreditPointsResponse{PointsBalance: user.Points}, nil
}

func (d *userDomain) UpdateMembership(
	ctx context.Context, req *model.UpdateMembershipRequest,
) (*model.UpdateMembershipResponse, error) {
	level, err := draw.ParseMembershipLevel(req.Level)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid membership level")
	}

	user, err := d.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	if user.MembershipLevel == level.String() {
		return &model.UpdateMembershipResponse{}, nil
	}

	if err := d.userRepo.UpdateMembershipLevel(ctx, req.UserID, level.String()); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update membership level: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateMembershipResponse{}, nil
}
