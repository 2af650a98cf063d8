package repository

import (
	"context"

	"github.com/questx-lab/luckydraw/internal/entity"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
)

type PointTransactionRepository interface {
	Create(ctx context.Context, data ...*entity.PointTransaction) error
	GetListByUserID(ctx context.Context, userID string, offset, limit int) ([]entity.PointTransaction, error)
}

type pointTransactionRepository struct{}

func NewPointTransactionRepository() *pointTransactionRepository {
	return &pointTransactionRepository{}
}

func (r *pointTransactionRepository) Create(ctx context.Context, data ...*entity.PointTransaction) error {
	if len(data) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Create(data).Error
}

func (r *pointTransactionRepository) GetListByUserID(
	ctx context.Context, userID string, offset, limit int,
) ([]entity.PointTransaction, error) {
	var result []entity.PointTransaction
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
