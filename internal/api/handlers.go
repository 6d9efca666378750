package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartwealth/advisor/internal/database"
	"github.com/smartwealth/advisor/internal/models"
	"log/slog"
)

const maxQueryLength = 4000

// ChatService runs conversational turns and serves back recorded
// history. The advisor engine satisfies it.
type ChatService interface {
	Chat(ctx context.Context, sessionID, query string) (*models.Advice, error)
	History(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
}

// SessionCounter reports how many distinct sessions the store holds.
// The session repository satisfies it.
type SessionCounter interface {
	SessionCount(ctx context.Context) (int, error)
}

// Handler serves the public advisory endpoints.
type Handler struct {
	engine   ChatService
	db       *sql.DB
	sessions SessionCounter
	logger   *slog.Logger
}

// NewHandler creates the public API handler. db and sessions may be nil
// when the server runs without persistence; the health endpoint then
// skips the database check and the session count.
func NewHandler(engine ChatService, db *sql.DB, sessions SessionCounter, logger *slog.Logger) *Handler {
	return &Handler{engine: engine, db: db, sessions: sessions, logger: logger}
}

// ChatRequest is the POST /api/chat payload.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Query     string `json:"query"`
}

// ChatResponse wraps the advice payload with the echoed session id.
type ChatResponse struct {
	SessionID string         `json:"session_id"`
	Advice    *models.Advice `json:"advice"`
}

// ChatHandler handles POST /api/chat.
func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	if len(query) > maxQueryLength {
		http.Error(w, "query too long", http.StatusBadRequest)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	} else if _, err := uuid.Parse(sessionID); err != nil {
		http.Error(w, "session_id must be a UUID", http.StatusBadRequest)
		return
	}

	advice, err := h.engine.Chat(r.Context(), sessionID, query)
	if err != nil {
		h.logger.Error("chat pipeline failed", "session_id", sessionID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, ChatResponse{SessionID: sessionID, Advice: advice})
}

// HistoryResponse is the GET /api/chat/history payload.
type HistoryResponse struct {
	SessionID string               `json:"session_id"`
	Messages  []models.ChatMessage `json:"messages"`
}

// HistoryHandler handles GET /api/chat/history?session_id=<uuid>.
func (h *Handler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		http.Error(w, "session_id must be a UUID", http.StatusBadRequest)
		return
	}

	messages, err := h.engine.History(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("history lookup failed", "session_id", sessionID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}

	writeJSON(w, h.logger, http.StatusOK, HistoryResponse{SessionID: sessionID, Messages: messages})
}

// HealthzHandler handles GET /api/healthz.
func (h *Handler) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}

	if h.db != nil {
		if err := database.HealthCheck(r.Context(), h.db); err != nil {
			h.logger.Error("health check failed", "error", err)
			status["status"] = "degraded"
			status["database"] = err.Error()
			writeJSON(w, h.logger, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
		status["pool"] = database.Stats(h.db)

		if h.sessions != nil {
			if count, err := h.sessions.SessionCount(r.Context()); err != nil {
				h.logger.Warn("session count failed", "error", err)
			} else {
				status["sessions"] = count
			}
		}
	}

	writeJSON(w, h.logger, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
