package realtime

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/taskwell/matrix-api/internal/api/shared"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from app origins; origin policy is enforced
	// by token auth rather than the Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades authenticated HTTP requests to websocket sessions.
type Handler struct {
	hub    *Hub
	logger *slog.Logger
}

// NewHandler creates a websocket handler bound to the given hub.
func NewHandler(hub *Hub, logger *slog.Logger) *Handler {
	if hub == nil {
		panic("hub cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		hub:    hub,
		logger: logger.With(slog.String("component", "ws_handler")),
	}
}

// Serve handles GET /ws. Auth middleware runs before this, so a missing or
// invalid user ID means the connection was never authenticated: the socket is
// closed immediately.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || ownerID == uuid.Nil {
		h.logger.Warn("websocket connect without authenticated user")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn("websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return
	}

	newSession(h.hub, conn, ownerID, h.logger)
	h.logger.Debug("websocket session opened",
		slog.String("owner_id", ownerID.String()),
		slog.Int("session_count", h.hub.SessionCount(ownerID)))
}
