package domain

import (
	"context"
	"errors"
	"time"

	"github.com/kickslab/backend/internal/entity"
	"github.com/kickslab/backend/internal/repository"
	"github.com/kickslab/backend/pkg/crypto"
	"github.com/kickslab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// RaffleCycleDomain drives the winner cycle of a raffle. It is invoked only by
// the cron sweep, never by a client. Every operation is a no-op when the
// raffle is gone or its cycle state already moved on, so a raffle deleted
// mid-cycle or a lost race simply falls through.
type RaffleCycleDomain interface {
	SelectWinner(ctx context.Context, raffleID string) error
	HandleTimeout(ctx context.Context, raffleID string) error
}

type raffleCycleDomain struct {
	raffleRepo repository.RaffleRepository
	entryRepo  repository.RaffleEntryRepository
}

func NewRaffleCycleDomain(
	raffleRepo repository.RaffleRepository,
	entryRepo repository.RaffleEntryRepository,
) *raffleCycleDomain {
	return &raffleCycleDomain{raffleRepo: raffleRepo, entryRepo: entryRepo}
}

// SelectWinner draws one candidate uniformly at random and opens their
// purchase window. An empty candidate pool lowers the raffle's required level
// by one step, or marks the raffle exhausted if it is already at the floor.
func (d *raffleCycleDomain) SelectWinner(ctx context.Context, raffleID string) error {
	raffle, err := d.raffleRepo.GetByID(ctx, raffleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Debugf("Raffle %s disappeared before selection", raffleID)
			return nil
		}

		return err
	}

	if raffle.CycleState != entity.CycleArmed {
		return nil
	}

	candidates, err := d.entryRepo.GetCandidates(ctx, raffleID)
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		return d.deescalate(ctx, raffle)
	}

	// Every live candidate has the same probability; the draw is not weighted
	// by entry time, xp, or anything else.
	winner := candidates[crypto.RandIntn(len(candidates))]

	now := time.Now()
	deadline := now.Add(xcontext.Configs(ctx).Raffle.PurchaseWindow.Duration)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err = d.raffleRepo.CheckAndSetWinner(ctx, raffleID, winner.UserID, deadline)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Another selection committed first.
			return nil
		}

		return err
	}

	if err := d.entryRepo.CheckAndMarkWinner(ctx, winner.ID, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The entry changed under us; the raffle stays armed and the next
			// sweep retries with a fresh pool.
			return nil
		}

		return err
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)
	xcontext.Logger(ctx).Infof("Selected winner %s for raffle %s", winner.UserID, raffleID)
	return nil
}

// HandleTimeout resolves a purchase window whose deadline passed without a
// purchase: the forfeiting entrant is permanently removed from the pool and
// selection re-runs immediately on the smaller pool. Each timeout strictly
// shrinks the pool, so the cycle ends after at most one iteration per entrant.
func (d *raffleCycleDomain) HandleTimeout(ctx context.Context, raffleID string) error {
	raffle, err := d.raffleRepo.GetByID(ctx, raffleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Debugf("Raffle %s disappeared before timeout", raffleID)
			return nil
		}

		return err
	}

	// Already purchased or otherwise resolved; the timeout lost the race.
	if raffle.CycleState != entity.CycleWinnerSelected || !raffle.CurrentWinnerID.Valid {
		return nil
	}

	winnerID := raffle.CurrentWinnerID.String

	func() {
		ctx = xcontext.WithDBTransaction(ctx)
		defer xcontext.WithRollbackDBTransaction(ctx)

		if err := d.raffleRepo.CheckAndExpireWinner(ctx, raffleID, winnerID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				xcontext.Logger(ctx).Errorf("Cannot expire winner: %v", err)
			}

			return
		}

		if err := d.entryRepo.CheckAndRemoveFromPool(ctx, raffleID, winnerID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				xcontext.Logger(ctx).Errorf("Cannot remove entry from pool: %v", err)
			}

			return
		}

		ctx = xcontext.WithCommitDBTransaction(ctx)
		xcontext.Logger(ctx).Infof("Winner %s of raffle %s forfeited the purchase window",
			winnerID, raffleID)
	}()

	// Continue the cycle right away. If this call is lost (crash, error), the
	// raffle is back in the armed state with an overdue started-at timestamp,
	// so the next sweep picks it up anyway.
	return d.SelectWinner(ctx, raffleID)
}

func (d *raffleCycleDomain) deescalate(ctx context.Context, raffle *entity.Raffle) error {
	lower, ok := raffle.RequiredLevel.Lower()
	if !ok {
		// Floor level and nobody left to draw: the cycle is terminal until a
		// product decision says otherwise.
		err := d.raffleRepo.CheckAndExhaust(ctx, raffle.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		xcontext.Logger(ctx).Infof("Raffle %s exhausted its candidate pool at the floor level",
			raffle.ID)
		return nil
	}

	err := d.raffleRepo.CheckAndDeescalate(ctx, raffle.ID, lower)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}

		return err
	}

	xcontext.Logger(ctx).Infof("Raffle %s lowered its required level to %s", raffle.ID, lower)
	return nil
}
