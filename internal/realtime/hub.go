package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Hub keeps the registry of connected sessions keyed by owner and fans
// messages out to them. All methods are safe for concurrent use.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[*Session]struct{}
	logger   *slog.Logger
}

// Ensure Hub implements Broadcaster.
var _ Broadcaster = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		sessions: make(map[uuid.UUID]map[*Session]struct{}),
		logger:   logger.With(slog.String("component", "realtime_hub")),
	}
}

// register adds a session to its owner's set.
func (h *Hub) register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.sessions[s.ownerID]
	if !ok {
		set = make(map[*Session]struct{})
		h.sessions[s.ownerID] = set
	}
	set[s] = struct{}{}

	h.logger.Debug("session registered",
		slog.String("owner_id", s.ownerID.String()),
		slog.Int("owner_sessions", len(set)))
}

// unregister removes a session and closes its send channel. Safe to call
// more than once per session.
func (h *Hub) unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.sessions[s.ownerID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}

	delete(set, s)
	close(s.send)
	if len(set) == 0 {
		delete(h.sessions, s.ownerID)
	}

	h.logger.Debug("session unregistered",
		slog.String("owner_id", s.ownerID.String()))
}

// Publish sends the message to every currently-connected session of the
// owner. Sessions whose send buffer is full are skipped: delivery is
// at-most-once, and a slow reader must not block the mutation path.
// Publishing to an owner with no sessions is a no-op.
func (h *Hub) Publish(ownerID uuid.UUID, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode broadcast message",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.sessions[ownerID] {
		select {
		case s.send <- data:
		default:
			h.logger.Warn("dropping frame for slow session",
				slog.String("owner_id", ownerID.String()))
		}
	}
}

// SessionCount reports the number of live sessions for an owner.
func (h *Hub) SessionCount(ownerID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[ownerID])
}
