package repository

import (
	"context"

	"github.com/questx-lab/luckydraw/internal/entity"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type DrawQuotaRepository interface {
	// Get returns gorm.ErrRecordNotFound for a user who never drew.
	Get(ctx context.Context, userID string) (*entity.DrawQuota, error)
	Upsert(ctx context.Context, data *entity.DrawQuota) error
}

type drawQuotaRepository struct{}

func NewDrawQuotaRepository() *drawQuotaRepository {
	return &drawQuotaRepository{}
}

func (r *drawQuotaRepository) Get(ctx context.Context, userID string) (*entity.DrawQuota, error) {
	var result entity.DrawQuota
	if err := xcontext.DB(ctx).Take(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *drawQuotaRepository) Upsert(ctx context.Context, data *entity.DrawQuota) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"free_spins_used_today", "last_reset_date", "updated_at",
		}),
	}).Create(data).Error
}
