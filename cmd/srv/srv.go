package main

import (
	"context"
	"net/http"

	"github.com/kickslab/backend/config"
	"github.com/kickslab/backend/internal/domain"
	"github.com/kickslab/backend/internal/domain/statistic"
	"github.com/kickslab/backend/internal/repository"
	"github.com/kickslab/backend/migration"
	"github.com/kickslab/backend/pkg/logger"
	"github.com/kickslab/backend/pkg/router"
	"github.com/kickslab/backend/pkg/xcontext"
	"github.com/kickslab/backend/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App
	ctx context.Context

	db          *gorm.DB
	redisClient xredis.Client

	userRepo   repository.UserRepository
	raffleRepo repository.RaffleRepository
	entryRepo  repository.RaffleEntryRepository

	leaderboard statistic.Leaderboard

	userDomain        domain.UserDomain
	raffleDomain      domain.RaffleDomain
	raffleCycleDomain domain.RaffleCycleDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig(ct *cli.Context) {
	cfg, err := config.Load(ct.String("config"))
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithConfigs(context.Background(), cfg)
}

func (s *srv) loadLogger() {
	level := logger.INFO
	if xcontext.Configs(s.ctx).Env == "local" {
		level = logger.DEBUG
	}

	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(level))
}

func (s *srv) loadDatabase() {
	var err error
	s.db, err = gorm.Open(mysql.Open(xcontext.Configs(s.ctx).Database.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithDB(s.ctx, s.db)
	if err := migration.AutoMigrate(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.raffleRepo = repository.NewRaffleRepository()
	s.entryRepo = repository.NewRaffleEntryRepository()
}

func (s *srv) loadDomains() {
	s.leaderboard = statistic.New(s.userRepo, s.redisClient)

	userDomain := domain.NewUserDomain(s.userRepo, s.leaderboard)
	s.userDomain = userDomain
	s.raffleDomain = domain.NewRaffleDomain(s.raffleRepo, s.entryRepo, s.userRepo, userDomain)
	s.raffleCycleDomain = domain.NewRaffleCycleDomain(s.raffleRepo, s.entryRepo)
}
