package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/smartwealth/advisor/internal/advisor"
	"github.com/smartwealth/advisor/internal/api"
	"github.com/smartwealth/advisor/internal/auth"
	"github.com/smartwealth/advisor/internal/config"
	"github.com/smartwealth/advisor/internal/database"
	"github.com/smartwealth/advisor/internal/llm"
	"github.com/smartwealth/advisor/internal/logging"
	"github.com/smartwealth/advisor/internal/marketdata"
	"github.com/smartwealth/advisor/internal/metrics"
	"github.com/smartwealth/advisor/internal/portfolio"
	"github.com/smartwealth/advisor/internal/scheduler"
	"github.com/smartwealth/advisor/internal/sentiment"
	"github.com/smartwealth/advisor/internal/server"
	"github.com/smartwealth/advisor/internal/simulation"
	"log/slog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging, nil)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting smartwealth advisor")

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics collector", "error", err)
		os.Exit(1)
	}

	// Persistence is optional: without DATABASE_URL the engine runs with
	// cold caches and no session history.
	var db *sql.DB
	var headlineRepo *database.HeadlineRepository
	var priceRepo *database.PriceRepository
	var sessionRepo *database.SessionRepository

	if cfg.Database.URL != "" {
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.Database.URL

		logger.Info("connecting to database")
		db, err = database.Connect(context.Background(), dbCfg)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		logger.Info("database connected")

		// Non-fatal so the app can start even if migrations fail.
		if err := database.RunMigrations(db, cfg.Database.MigrationsDir, logger); err != nil {
			logger.Warn("failed to run migrations, continuing anyway", "error", err)
		}

		headlineRepo = database.NewHeadlineRepository(db)
		priceRepo = database.NewPriceRepository(db)
		sessionRepo = database.NewSessionRepository(db)
	} else {
		logger.Warn("DATABASE_URL not set, running without persistence")
	}

	// Collaborator: OpenAI when a key is configured, the rule-based mock
	// otherwise.
	var collab llm.Collaborator
	llmCfg := llm.ConfigFromEnv()
	if llmCfg.APIKey != "" {
		logger.Info("using OpenAI collaborator", "model", llmCfg.Model)
		collab = llm.NewOpenAIClient(llmCfg, logger, collector)
	} else {
		logger.Warn("OPENAI_API_KEY not set, using mock collaborator")
		collab = llm.NewMockCollaborator()
	}

	// Market data refresh needs API keys and the cache repositories.
	var refresher *marketdata.Refresher
	if db != nil && cfg.MarketData.NewsAPIKey != "" && cfg.MarketData.AlphaVantageAPIKey != "" {
		news := marketdata.NewNewsClient(cfg.MarketData.NewsAPIKey, logger)
		prices := marketdata.NewAlphaVantageClient(cfg.MarketData.AlphaVantageAPIKey, logger)
		refresher = marketdata.NewRefresher(news, prices, headlineRepo, priceRepo, cfg.MarketData.Tickers, logger)
	} else {
		logger.Warn("market data refresh disabled (missing database or API keys)")
	}

	deps := advisor.Deps{
		Collab:    collab,
		Table:     portfolio.NewTable(logger),
		Adjuster:  sentiment.NewAdjuster(logger),
		Scorer:    sentiment.NewScorer(collab, logger),
		Projector: simulation.NewProjector(simulation.NewSimulator(), logger),
		Metrics:   collector,
		Logger:    logger,
	}
	if headlineRepo != nil {
		deps.Headlines = headlineRepo
	}
	if priceRepo != nil {
		deps.Prices = priceRepo
	}
	if sessionRepo != nil {
		deps.Sessions = sessionRepo
	}
	if refresher != nil {
		deps.Refresher = refresher
	}

	engine, err := advisor.NewEngine(deps)
	if err != nil {
		logger.Error("failed to build advisory engine", "error", err)
		os.Exit(1)
	}

	authConfig, err := auth.LoadConfigFromEnv()
	if err != nil {
		logger.Error("failed to load auth config", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	var adminRefresher api.MarketDataRefresher
	if refresher != nil {
		adminRefresher = refresher
	}
	var sessionCounter api.SessionCounter
	if sessionRepo != nil {
		sessionCounter = sessionRepo
	}
	api.SetupRoutes(mux, engine, adminRefresher, db, sessionCounter, authConfig, collector, logger)

	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelScheduler()
	if refresher != nil {
		refreshScheduler := scheduler.NewRefreshScheduler(refresher, 0, logger)
		go refreshScheduler.Start(schedulerCtx)
	}

	srv := server.New(cfg.Server, logger, collector.InstrumentHandler(mux))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	cancelScheduler()
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
