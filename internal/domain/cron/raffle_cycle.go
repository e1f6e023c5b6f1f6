package cron

import (
	"context"
	"time"

	"github.com/kickslab/backend/internal/domain"
	"github.com/kickslab/backend/internal/repository"
	"github.com/kickslab/backend/pkg/xcontext"
)

// RaffleCycleCronJob is the scheduler of the winner cycle. Instead of keeping
// timers in process memory, it re-derives every due deadline from the raffle
// table on each pass, so armed selections and purchase windows survive a
// restart and a crashed callback is simply retried on the next sweep.
type RaffleCycleCronJob struct {
	raffleRepo  repository.RaffleRepository
	cycleDomain domain.RaffleCycleDomain
	interval    time.Duration
}

func NewRaffleCycleCronJob(
	raffleRepo repository.RaffleRepository,
	cycleDomain domain.RaffleCycleDomain,
	interval time.Duration,
) *RaffleCycleCronJob {
	return &RaffleCycleCronJob{
		raffleRepo:  raffleRepo,
		cycleDomain: cycleDomain,
		interval:    interval,
	}
}

func (job *RaffleCycleCronJob) Do(ctx context.Context) {
	now := time.Now()

	// Armed raffles whose selection delay elapsed.
	startedBefore := now.Add(-xcontext.Configs(ctx).Raffle.SelectionDelay.Duration)
	dueSelections, err := job.raffleRepo.GetSelectionDue(ctx, startedBefore)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get due selections: %v", err)
		return
	}

	for _, raffle := range dueSelections {
		if err := job.cycleDomain.SelectWinner(ctx, raffle.ID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot select winner of raffle %s: %v", raffle.ID, err)
		}
	}

	// Winners whose purchase window expired.
	expired, err := job.raffleRepo.GetPurchaseDeadlinePassed(ctx, now)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get expired purchase windows: %v", err)
		return
	}

	for _, raffle := range expired {
		if err := job.cycleDomain.HandleTimeout(ctx, raffle.ID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot handle timeout of raffle %s: %v", raffle.ID, err)
		}
	}
}

// RunNow makes the first sweep act as the recovery pass after a restart:
// any raffle stuck with a passed deadline is re-driven immediately.
func (job *RaffleCycleCronJob) RunNow() bool {
	return true
}

func (job *RaffleCycleCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
