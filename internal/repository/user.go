package repository

import (
	"context"
	"errors"
	"time"

	"github.com/questx-lab/luckydraw/internal/entity"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, data *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.User, error)
	UpdateVIPState(ctx context.Context, data *entity.User) error
	UpdateMembershipLevel(ctx context.Context, id, level string) error
	IncreasePoints(ctx context.Context, id string, amount int64) error
	DecreasePoints(ctx context.Context, id string, amount int64) error
	ExpireVIP(ctx context.Context, now time.Time) (int64, error)
}

type userRepository struct{}

func NewUserRepository() *userRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, data *entity.User) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var result entity.User
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// GetByIDForUpdate locks the user row until the end of the running
// transaction. Databases without row locks ignore the clause.
func (r *userRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.User, error) {
	var result entity.User
	err := xcontext.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&result, "id=?", id).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// UpdateVIPState writes the VIP trial columns of the user. Points move only
// through IncreasePoints and DecreasePoints. It does not report a missing
// user, MySQL counts unchanged rows as not affected.
func (r *userRepository) UpdateVIPState(ctx context.Context, data *entity.User) error {
	tx := xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", data.ID).
		Updates(map[string]any{
			"is_vip_active":  data.IsVIPActive,
			"vip_expires_at": data.VIPExpiresAt,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of rows effected is invalid")
	}

	return nil
}

func (r *userRepository) UpdateMembershipLevel(ctx context.Context, id, level string) error {
	tx := xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", id).
		Update("membership_level", level)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userRepository) IncreasePoints(ctx context.Context, id string, amount int64) error {
	tx := xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", id).
		Update("points", gorm.Expr("points+?", amount))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of rows effected is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// DecreasePoints returns gorm.ErrRecordNotFound if the user does not have
// enough points.
func (r *userRepository) DecreasePoints(ctx context.Context, id string, amount int64) error {
	tx := xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=? AND points>=?", id, amount).
		Update("points", gorm.Expr("points-?", amount))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of rows effected is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ExpireVIP turns off every VIP trial whose expiry is not after now and
// returns the number of users changed.
func (r *userRepository) ExpireVIP(ctx context.Context, now time.Time) (int64, error) {
	tx := xcontext.DB(ctx).Model(&entity.User{}).
		Where("is_vip_active=? AND vip_expires_at<=?", true, now).
		Update("is_vip_active", false)
	return tx.RowsAffected, tx.Error
}
