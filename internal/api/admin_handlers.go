package api

import (
	"context"
	"net/http"

	"github.com/smartwealth/advisor/internal/marketdata"
	"log/slog"
)

// MarketDataRefresher triggers a full market-data refresh. The
// marketdata.Refresher satisfies it.
type MarketDataRefresher interface {
	RefreshAll(ctx context.Context) (*marketdata.RefreshResult, error)
}

// AdminHandler serves the JWT-protected admin endpoints.
type AdminHandler struct {
	refresher MarketDataRefresher
	logger    *slog.Logger
}

// NewAdminHandler creates the admin handler. refresher may be nil when
// no market data APIs are configured.
func NewAdminHandler(refresher MarketDataRefresher, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{refresher: refresher, logger: logger}
}

// RefreshHandler handles POST /api/admin/refresh.
func (h *AdminHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.refresher == nil {
		http.Error(w, "Market data refresh is not configured", http.StatusServiceUnavailable)
		return
	}

	result, err := h.refresher.RefreshAll(r.Context())
	if err != nil {
		h.logger.Error("market data refresh failed", "error", err)
		writeJSON(w, h.logger, http.StatusBadGateway, result)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}
