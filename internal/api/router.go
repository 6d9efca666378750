package api

import (
	"database/sql"
	"net/http"

	"github.com/smartwealth/advisor/internal/auth"
	"github.com/smartwealth/advisor/internal/metrics"
	"log/slog"
)

// SetupRoutes configures all API routes on the mux. refresher, db and
// sessions may be nil; the matching endpoints degrade instead of
// registering broken handlers.
func SetupRoutes(mux *http.ServeMux, engine ChatService, refresher MarketDataRefresher, db *sql.DB, sessions SessionCounter, authConfig auth.Config, collector *metrics.Collector, logger *slog.Logger) {
	handler := NewHandler(engine, db, sessions, logger)
	authHandler := NewAuthHandler(authConfig, logger)
	adminHandler := NewAdminHandler(refresher, logger)

	authMiddleware := auth.Middleware(authConfig)

	// Public routes
	mux.HandleFunc("/api/chat", handler.ChatHandler)
	mux.HandleFunc("/api/chat/history", handler.HistoryHandler)
	mux.HandleFunc("/api/healthz", handler.HealthzHandler)
	mux.HandleFunc("/api/auth/login", authHandler.Login)

	// Protected admin routes
	mux.Handle("/api/admin/refresh", authMiddleware(http.HandlerFunc(adminHandler.RefreshHandler)))

	if collector != nil {
		mux.Handle("/metrics", collector.Handler())
	}
}
