package repository

import (
	"context"

	"github.com/questx-lab/luckydraw/internal/entity"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
)

type InventoryRepository interface {
	GetByUserID(ctx context.Context, userID string) ([]entity.InventoryItem, error)
	// ReplaceByUserID makes items the whole inventory of the user. Items with
	// a non-positive count are not stored.
	ReplaceByUserID(ctx context.Context, userID string, items []entity.InventoryItem) error
}

type inventoryRepository struct{}

func NewInventoryRepository() *inventoryRepository {
	return &inventoryRepository{}
}

func (r *inventoryRepository) GetByUserID(ctx context.Context, userID string) ([]entity.InventoryItem, error) {
	var result []entity.InventoryItem
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("obtained_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *inventoryRepository) ReplaceByUserID(
	ctx context.Context, userID string, items []entity.InventoryItem,
) error {
	err := xcontext.DB(ctx).Where("user_id=?", userID).Delete(&entity.InventoryItem{}).Error
	if err != nil {
		return err
	}

	kept := make([]entity.InventoryItem, 0, len(items))
	for _, item := range items {
		if item.Count <= 0 {
			continue
		}

		item.UserID = userID
		kept = append(kept, item)
	}

	if len(kept) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Create(&kept).Error
}
