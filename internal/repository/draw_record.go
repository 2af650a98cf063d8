package repository

import (
	"context"

	"github.com/questx-lab/luckydraw/internal/entity"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
)

type DrawRecordRepository interface {
	// Create inserts the record then removes the oldest records of the user
	// beyond limit.
	Create(ctx context.Context, data *entity.DrawRecord, limit int) error
	GetRecentByUserID(ctx context.Context, userID string, limit int) ([]entity.DrawRecord, error)
	Count(ctx context.Context, userID string) (int64, error)
}

type drawRecordRepository struct{}

func NewDrawRecordRepository() *drawRecordRepository {
	return &drawRecordRepository{}
}

func (r *drawRecordRepository) Create(ctx context.Context, data *entity.DrawRecord, limit int) error {
	if err := xcontext.DB(ctx).Create(data).Error; err != nil {
		return err
	}

	if limit <= 0 {
		return nil
	}

	n, err := r.Count(ctx, data.UserID)
	if err != nil {
		return err
	}

	if n <= int64(limit) {
		return nil
	}

	var staleIDs []string
	err = xcontext.DB(ctx).Model(&entity.DrawRecord{}).
		Where("user_id=?", data.UserID).
		Order("created_at DESC").Order("id DESC").
		Offset(limit).Limit(int(n)-limit).
		Pluck("id", &staleIDs).Error
	if err != nil {
		return err
	}

	if len(staleIDs) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Delete(&entity.DrawRecord{}, "id IN ?", staleIDs).Error
}

func (r *drawRecordRepository) GetRecentByUserID(
	ctx context.Context, userID string, limit int,
) ([]entity.DrawRecord, error) {
	var result []entity.DrawRecord
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *drawRecordRepository) Count(ctx context.Context, userID string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.DrawRecord{}).
		Where("user_id=?", userID).
		Count(&result).Error
	return result, err
}
