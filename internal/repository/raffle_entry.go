package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kickslab/backend/internal/entity"
	"github.com/kickslab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type RaffleEntryRepository interface {
	Create(ctx context.Context, entry *entity.RaffleEntry) error
	GetActive(ctx context.Context, raffleID, userID string) (*entity.RaffleEntry, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.RaffleEntry, error)
	GetCandidates(ctx context.Context, raffleID string) ([]entity.RaffleEntry, error)
	GetWinningEntry(ctx context.Context, raffleID, userID string) (*entity.RaffleEntry, error)

	CheckAndMarkWinner(ctx context.Context, entryID string, selectedAt time.Time) error
	CheckAndMarkPurchased(ctx context.Context, raffleID, userID string, purchasedAt time.Time) error
	CheckAndRemoveFromPool(ctx context.Context, raffleID, userID string) error
}

type raffleEntryRepository struct{}

func NewRaffleEntryRepository() *raffleEntryRepository {
	return &raffleEntryRepository{}
}

func (r *raffleEntryRepository) Create(ctx context.Context, entry *entity.RaffleEntry) error {
	if !entry.RemovedFromPool {
		entry.Live = sql.NullString{String: "1", Valid: true}
	}

	return xcontext.DB(ctx).Create(entry).Error
}

// GetActive returns the user's live entry in a raffle, ignoring forfeited
// ones. At most one such entry exists per (raffle, user).
func (r *raffleEntryRepository) GetActive(
	ctx context.Context, raffleID, userID string,
) (*entity.RaffleEntry, error) {
	var result entity.RaffleEntry
	err := xcontext.DB(ctx).
		Where("raffle_id=? AND user_id=? AND removed_from_pool=?", raffleID, userID, false).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *raffleEntryRepository) GetByUserID(
	ctx context.Context, userID string,
) ([]entity.RaffleEntry, error) {
	var result []entity.RaffleEntry
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetCandidates returns every entry still drawable in the current cycle: not
// forfeited, not already holding the winner slot, not purchased.
func (r *raffleEntryRepository) GetCandidates(
	ctx context.Context, raffleID string,
) ([]entity.RaffleEntry, error) {
	var result []entity.RaffleEntry
	err := xcontext.DB(ctx).
		Where("raffle_id=? AND removed_from_pool=? AND is_winner=? AND purchased_at IS NULL",
			raffleID, false, false).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *raffleEntryRepository) GetWinningEntry(
	ctx context.Context, raffleID, userID string,
) (*entity.RaffleEntry, error) {
	var result entity.RaffleEntry
	err := xcontext.DB(ctx).
		Where("raffle_id=? AND user_id=? AND is_winner=? AND removed_from_pool=?",
			raffleID, userID, true, false).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *raffleEntryRepository) CheckAndMarkWinner(
	ctx context.Context, entryID string, selectedAt time.Time,
) error {
	tx := xcontext.DB(ctx).Model(&entity.RaffleEntry{}).
		Where("id=? AND is_winner=? AND removed_from_pool=? AND purchased_at IS NULL",
			entryID, false, false).
		Updates(map[string]any{
			"is_winner":          true,
			"winner_selected_at": selectedAt,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *raffleEntryRepository) CheckAndMarkPurchased(
	ctx context.Context, raffleID, userID string, purchasedAt time.Time,
) error {
	tx := xcontext.DB(ctx).Model(&entity.RaffleEntry{}).
		Where("raffle_id=? AND user_id=? AND is_winner=? AND removed_from_pool=? AND purchased_at IS NULL",
			raffleID, userID, true, false).
		Update("purchased_at", purchasedAt)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// CheckAndRemoveFromPool permanently disqualifies the forfeiting winner. The
// row is kept as an audit record and can never be reselected.
func (r *raffleEntryRepository) CheckAndRemoveFromPool(
	ctx context.Context, raffleID, userID string,
) error {
	tx := xcontext.DB(ctx).Model(&entity.RaffleEntry{}).
		Where("raffle_id=? AND user_id=? AND is_winner=? AND removed_from_pool=? AND purchased_at IS NULL",
			raffleID, userID, true, false).
		Updates(map[string]any{
			"removed_from_pool": true,
			"live":              nil,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
