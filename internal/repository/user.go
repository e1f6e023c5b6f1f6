package repository

import (
	"context"

	"github.com/kickslab/backend/internal/entity"
	"github.com/kickslab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.User, error)
	GetTopByXP(ctx context.Context, limit int) ([]entity.User, error)
	IncreaseXP(ctx context.Context, userID string, amount int64) error
	UpdateLevel(ctx context.Context, userID string, level entity.UserLevel, minXP int64) error
}

type userRepository struct{}

func NewUserRepository() *userRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return xcontext.DB(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var result entity.User
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	var result []entity.User
	if err := xcontext.DB(ctx).Find(&result, "id IN (?)", ids).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userRepository) GetTopByXP(ctx context.Context, limit int) ([]entity.User, error) {
	var result []entity.User
	err := xcontext.DB(ctx).Order("xp DESC").Limit(limit).Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userRepository) IncreaseXP(ctx context.Context, userID string, amount int64) error {
	tx := xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", userID).
		Update("xp", gorm.Expr("xp+?", amount))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// UpdateLevel promotes a user, guarded by the XP threshold so a stale read can
// never demote anyone.
func (r *userRepository) UpdateLevel(
	ctx context.Context, userID string, level entity.UserLevel, minXP int64,
) error {
	tx := xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=? AND xp >= ?", userID, minXP).
		Update("level", level)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
