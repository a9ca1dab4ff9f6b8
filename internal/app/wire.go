package app

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/quiniela/platform/internal/auth"
	"github.com/quiniela/platform/internal/guard"
	"github.com/quiniela/platform/internal/handler"
	adminhandler "github.com/quiniela/platform/internal/handler/admin"
	"github.com/quiniela/platform/internal/infra"
	"github.com/quiniela/platform/internal/repository"
	"github.com/quiniela/platform/internal/service"
	"github.com/quiniela/platform/internal/settlement"
)

// Repositories is the full set of stores the API reads and writes.
type Repositories struct {
	Matches     repository.MatchRepository
	Tournaments repository.TournamentRepository
	Odds        repository.OddsRepository
	Bets        repository.BetRepository
	History     repository.PointsHistoryRepository
	Users       repository.UserRepository
	Config      repository.ConfigRepository
	Outbox      repository.OutboxRepository
	Messages    repository.WinnerMessageRepository
}

// PostgresRepositories returns the pgx-backed repositories.
func PostgresRepositories() Repositories {
	return Repositories{
		Matches:     repository.NewMatchRepository(),
		Tournaments: repository.NewTournamentRepository(),
		Odds:        repository.NewOddsRepository(),
		Bets:        repository.NewBetRepository(),
		History:     repository.NewPointsHistoryRepository(),
		Users:       repository.NewUserRepository(),
		Config:      repository.NewConfigRepository(),
		Outbox:      repository.NewOutboxRepository(),
		Messages:    repository.NewWinnerMessageRepository(),
	}
}

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	DB      repository.DBTX
	Tx      repository.Transactor
	Repos   Repositories
	JWTMgr  *auth.JWTManager
	Logger  *slog.Logger
	Metrics *infra.Metrics
	// Limiter throttles bet placement per user; nil disables throttling.
	Limiter guard.Limiter
	// Idempotency remembers Idempotency-Key values of batch placements; nil disables the check.
	Idempotency guard.Deduplicator
	// Health lists the dependencies pinged by GET /health.
	Health             map[string]infra.Pinger
	MaxBatchSize       int
	CORSAllowedOrigins string
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	db, tx, repos := deps.DB, deps.Tx, deps.Repos
	logger := deps.Logger

	// Services
	placement := service.NewBetPlacementService(tx, repos.Matches, repos.Odds, repos.Bets, repos.Outbox, deps.Metrics, logger, deps.MaxBatchSize)
	board := service.NewLeaderboardAggregator(db, repos.Bets, repos.History, repos.Matches, repos.Tournaments, repos.Users, logger)
	oddsSvc := service.NewOddsService(db, tx, repos.Matches, repos.Odds, logger)
	messageSvc := service.NewWinnerMessageService(db, board, repos.Messages, logger)
	configSvc := service.NewBettingConfigService(db, tx, repos.Config, repos.Tournaments, logger)
	engine := settlement.NewSettlementEngine(tx, repos.Matches, repos.Bets, repos.History, repos.Outbox, deps.Metrics, logger)
	resetSvc := settlement.NewReplayResetService(tx, repos.Tournaments, repos.Matches, repos.Bets, repos.History, repos.Users, repos.Outbox, deps.Metrics, logger)

	// Handlers
	betHandler := handler.NewBetHandler(placement, board, configSvc, deps.Idempotency)
	contestHandler := handler.NewContestHandler(board, oddsSvc, configSvc)
	messageHandler := handler.NewMessageHandler(messageSvc)

	// Admin handlers
	matchAdmin := adminhandler.NewMatchAdminHandler(engine, oddsSvc)
	fixtureAdmin := adminhandler.NewFixtureAdminHandler(resetSvc, board)
	contestAdmin := adminhandler.NewContestAdminHandler(board, configSvc)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(deps.CORSAllowedOrigins))

	// Infra (no auth)
	r.Get("/metrics", deps.Metrics.Handler().ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(handler.JSONContentType)

		r.Get("/health", handler.HealthHandler(deps.Health))

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(auth.AuthenticateUser(deps.JWTMgr))
			r.Use(handler.ActiveUser(repos.Users, db))

			r.Route("/bets", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					if deps.Limiter != nil {
						r.Use(handler.RateLimit(deps.Limiter, "place-bets"))
					}
					r.Post("/", betHandler.PlaceBet)
					r.Post("/batch", betHandler.PlaceBatch)
				})
				r.Get("/me", betHandler.MyBets)
				r.Get("/me/stats", betHandler.MyStats)
				r.Get("/me/scopes", betHandler.MyScopes)
				r.Get("/me/points", betHandler.MyPoints)
			})

			r.Get("/standings", contestHandler.Standings)
			r.Get("/standings/winners", contestHandler.Winners)
			r.Get("/standings/messages", messageHandler.List)
			r.Post("/standings/messages", messageHandler.Post)
			r.Get("/predictions", contestHandler.Predictions)
			r.Get("/matches/open", contestHandler.OpenMatches)
			r.Get("/matches/{id}/odds", contestHandler.MatchOdds)
			r.Get("/betting/config", contestHandler.BettingConfig)
		})

		// Admin-authenticated routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.AuthenticateAdmin(deps.JWTMgr))

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(auth.AllAdminRoles()...))
				r.Get("/fixtures/matches", fixtureAdmin.ListMatches)
				r.Get("/standings", contestAdmin.Standings)
				r.Get("/users/{id}/bets", contestAdmin.UserBets)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(auth.WriteRoles()...))
				r.Post("/matches/{id}/settle", matchAdmin.Settle)
				r.Put("/matches/{id}/odds", matchAdmin.ReplaceOdds)
				r.Put("/betting/config", contestAdmin.UpdateBettingConfig)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(auth.ResetRoles()...))
				r.Post("/fixtures/reset", fixtureAdmin.Reset)
				r.Delete("/users/{id}/bets", fixtureAdmin.PurgeUserBets)
			})
		})
	})

	return r
}
