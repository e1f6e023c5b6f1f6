package main

import (
	"github.com/kickslab/backend/internal/domain"
	"github.com/kickslab/backend/internal/domain/cron"
	"github.com/kickslab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(ct *cli.Context) error {
	s.loadConfig(ct)
	s.loadLogger()
	s.loadDatabase()
	s.loadRepos()

	cycleDomain := domain.NewRaffleCycleDomain(s.raffleRepo, s.entryRepo)

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Start(
		s.ctx,
		cron.NewRaffleCycleCronJob(s.raffleRepo, cycleDomain,
			xcontext.Configs(s.ctx).Raffle.SweepInterval.Duration),
	)

	return nil
}
