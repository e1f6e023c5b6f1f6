package repository

import (
	"context"
	"time"

	"github.com/kickslab/backend/internal/entity"
	"github.com/kickslab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type GetListRaffleFilter struct {
	Statuses       []entity.RaffleStatus
	RequiredLevels []entity.UserLevel
	Offset         int
	Limit          int
}

type RaffleRepository interface {
	Create(ctx context.Context, raffle *entity.Raffle) error
	GetByID(ctx context.Context, id string) (*entity.Raffle, error)
	GetList(ctx context.Context, filter GetListRaffleFilter) ([]entity.Raffle, error)
	Update(ctx context.Context, id string, raffle *entity.Raffle) error
	DeleteByID(ctx context.Context, id string) error

	// Cycle deadline queries for the cron sweep. Deadlines are re-derived from
	// these columns on every pass, so no in-memory timer is authoritative.
	GetSelectionDue(ctx context.Context, startedBefore time.Time) ([]entity.Raffle, error)
	GetPurchaseDeadlinePassed(ctx context.Context, now time.Time) ([]entity.Raffle, error)

	// Cycle state transitions. Each one is a single conditional update whose
	// affected-row count signals whether this caller owns the transition.
	CheckAndArmSelection(ctx context.Context, raffleID string, startedAt time.Time) error
	CheckAndSetWinner(ctx context.Context, raffleID, userID string, deadline time.Time) error
	CheckAndResolvePurchase(ctx context.Context, raffleID, userID string) error
	CheckAndExpireWinner(ctx context.Context, raffleID, userID string) error
	CheckAndDeescalate(ctx context.Context, raffleID string, level entity.UserLevel) error
	CheckAndExhaust(ctx context.Context, raffleID string) error
}

type raffleRepository struct{}

func NewRaffleRepository() *raffleRepository {
	return &raffleRepository{}
}

func (r *raffleRepository) Create(ctx context.Context, raffle *entity.Raffle) error {
	return xcontext.DB(ctx).Create(raffle).Error
}

func (r *raffleRepository) GetByID(ctx context.Context, id string) (*entity.Raffle, error) {
	var result entity.Raffle
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *raffleRepository) GetList(
	ctx context.Context, filter GetListRaffleFilter,
) ([]entity.Raffle, error) {
	db := xcontext.DB(ctx)
	if len(filter.Statuses) > 0 {
		db = db.Where("status IN (?)", filter.Statuses)
	}

	if len(filter.RequiredLevels) > 0 {
		db = db.Where("required_level IN (?)", filter.RequiredLevels)
	}

	if filter.Limit > 0 {
		db = db.Offset(filter.Offset).Limit(filter.Limit)
	}

	var result []entity.Raffle
	if err := db.Order("created_at DESC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *raffleRepository) Update(ctx context.Context, id string, raffle *entity.Raffle) error {
	return xcontext.DB(ctx).Model(&entity.Raffle{}).Where("id=?", id).Updates(raffle).Error
}

func (r *raffleRepository) DeleteByID(ctx context.Context, id string) error {
	return xcontext.DB(ctx).Delete(&entity.Raffle{}, "id=?", id).Error
}

func (r *raffleRepository) GetSelectionDue(
	ctx context.Context, startedBefore time.Time,
) ([]entity.Raffle, error) {
	var result []entity.Raffle
	err := xcontext.DB(ctx).
		Where("cycle_state=? AND winner_selection_started_at <= ?", entity.CycleArmed, startedBefore).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *raffleRepository) GetPurchaseDeadlinePassed(
	ctx context.Context, now time.Time,
) ([]entity.Raffle, error) {
	var result []entity.Raffle
	err := xcontext.DB(ctx).
		Where("cycle_state=? AND winner_purchase_deadline <= ?", entity.CycleWinnerSelected, now).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *raffleRepository) CheckAndArmSelection(
	ctx context.Context, raffleID string, startedAt time.Time,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Raffle{}).
		Where("id=? AND cycle_state=?", raffleID, entity.CycleOpen).
		Updates(map[string]any{
			"cycle_state":                 entity.CycleArmed,
			"winner_selection_started_at": startedAt,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *raffleRepository) CheckAndSetWinner(
	ctx context.Context, raffleID, userID string, deadline time.Time,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Raffle{}).
		Where("id=? AND cycle_state=?", raffleID, entity.CycleArmed).
		Updates(map[string]any{
			"cycle_state":              entity.CycleWinnerSelected,
			"current_winner_id":        userID,
			"winner_purchase_deadline": deadline,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *raffleRepository) CheckAndResolvePurchase(
	ctx context.Context, raffleID, userID string,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Raffle{}).
		Where("id=? AND cycle_state=? AND current_winner_id=?",
			raffleID, entity.CycleWinnerSelected, userID).
		Updates(map[string]any{
			"cycle_state":              entity.CycleResolved,
			"current_winner_id":        nil,
			"winner_purchase_deadline": nil,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// CheckAndExpireWinner puts a raffle whose purchase window lapsed back into
// the armed state. The started-at timestamp is left untouched, so the next
// sweep reselects immediately even if the in-flight reselection is lost.
func (r *raffleRepository) CheckAndExpireWinner(
	ctx context.Context, raffleID, userID string,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Raffle{}).
		Where("id=? AND cycle_state=? AND current_winner_id=?",
			raffleID, entity.CycleWinnerSelected, userID).
		Updates(map[string]any{
			"cycle_state":              entity.CycleArmed,
			"current_winner_id":        nil,
			"winner_purchase_deadline": nil,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *raffleRepository) CheckAndDeescalate(
	ctx context.Context, raffleID string, level entity.UserLevel,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Raffle{}).
		Where("id=? AND cycle_state=?", raffleID, entity.CycleArmed).
		Updates(map[string]any{
			"cycle_state":                 entity.CycleOpen,
			"required_level":              level,
			"winner_selection_started_at": nil,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *raffleRepository) CheckAndExhaust(ctx context.Context, raffleID string) error {
	tx := xcontext.DB(ctx).Model(&entity.Raffle{}).
		Where("id=? AND cycle_state=?", raffleID, entity.CycleArmed).
		Updates(map[string]any{
			"cycle_state":                 entity.CycleExhausted,
			"winner_selection_started_at": nil,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
