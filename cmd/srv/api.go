package main

import (
	"fmt"
	"net/http"

	"github.com/kickslab/backend/internal/middleware"
	"github.com/kickslab/backend/pkg/router"
	"github.com/kickslab/backend/pkg/xcontext"
	"github.com/rs/cors"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(ct *cli.Context) error {
	s.loadConfig(ct)
	s.loadLogger()
	s.loadDatabase()
	s.loadRedisClient()
	s.loadRepos()
	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx)
	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.ApiServer.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(s.router.Handler())

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.ApiServer.Host, cfg.ApiServer.Port),
		Handler: handler,
	}

	xcontext.Logger(s.ctx).Infof("Starting server on port %s", cfg.ApiServer.Port)
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}

	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.db, xcontext.Configs(s.ctx), xcontext.Logger(s.ctx))
	s.router.AddCloser(middleware.Logger())
	s.router.Before(middleware.VerifyAccessToken())

	// Public API. The raffle list and leaderboard work without a login but are
	// personalized when an access token is present.
	router.GET(s.router, "/getRaffles", s.raffleDomain.GetList)
	router.GET(s.router, "/getLeaderboard", s.userDomain.GetLeaderboard)

	// These following APIs need authentication with Access Token.
	authRouter := s.router.Branch()
	authRouter.Before(middleware.Authenticate())
	{
		// User API
		router.GET(authRouter, "/getMe", s.userDomain.GetMe)

		// Raffle API
		router.POST(authRouter, "/enterRaffle", s.raffleDomain.Enter)
		router.GET(authRouter, "/getMyRaffleEntries", s.raffleDomain.GetMyEntries)
		router.POST(authRouter, "/purchaseRaffle", s.raffleDomain.Purchase)

		// Admin API. The domain layer rejects callers without the admin role.
		router.POST(authRouter, "/createRaffle", s.raffleDomain.Create)
		router.POST(authRouter, "/updateRaffle", s.raffleDomain.Update)
		router.POST(authRouter, "/deleteRaffle", s.raffleDomain.Delete)
	}
}
