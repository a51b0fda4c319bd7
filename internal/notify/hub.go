package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/olahol/melody"

	"mywallet/internal/core"
	"mywallet/internal/log"
)

const ownerKey = "owner_id"

// Hub pushes alerts to websocket subscribers. A subscriber that connects
// with ?owner_id=N only receives events addressed to N or to nobody; one
// without it receives everything.
type Hub struct {
	m      *melody.Melody
	logger *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentWebsocket)

	m := melody.New()
	m.Config.MaxMessageSize = 4096
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		owner, _ := s.Get(ownerKey)
		logger.Debug("Subscriber connected", log.FieldOwnerID, owner)
	})
	m.HandleDisconnect(func(s *melody.Session) {
		owner, _ := s.Get(ownerKey)
		logger.Debug("Subscriber disconnected", log.FieldOwnerID, owner)
	})
	m.HandleError(func(s *melody.Session, err error) {
		logger.Warn("Websocket error", log.FieldError, err)
	})

	return &Hub{m: m, logger: logger}
}

// ServeHTTP upgrades the request to a websocket subscription.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	keys := map[string]any{}
	if raw := r.URL.Query().Get(ownerKey); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "owner_id must be a positive integer", http.StatusBadRequest)
			return
		}
		keys[ownerKey] = id
	}

	if err := h.m.HandleRequestWithKeys(w, r, keys); err != nil {
		h.logger.WarnContext(r.Context(), "Websocket upgrade failed", log.FieldError, err)
	}
}

// Publish broadcasts ev as {"type": ..., "data": ...}.
func (h *Hub) Publish(ctx context.Context, ev core.AlertEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	owner, addressed := ev.OwnerID()
	err = h.m.BroadcastFilter(msg, func(s *melody.Session) bool {
		id, tagged := s.Get(ownerKey)
		if !tagged || !addressed {
			return true
		}
		return id == owner
	})
	if err != nil {
		return fmt.Errorf("broadcast alert: %w", err)
	}
	return nil
}

// Sessions reports the number of connected subscribers.
func (h *Hub) Sessions() int {
	return h.m.Len()
}

func (h *Hub) Close() error {
	return h.m.Close()
}
