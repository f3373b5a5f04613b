package broadcast

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yourusername/sportsedge/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests into hub subscriptions
type Handler struct {
	hub *Hub
}

// NewHandler creates a new handler instance
func NewHandler(h *Hub) *Handler {
	return &Handler{hub: h}
}

// ServeHTTP accepts an optional initial filter via ?sport=football,basketball&min_severity=medium
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	c := newClient(uuid.New().String(), conn, h.hub, filter)
	h.hub.Register(c)

	go c.writePump()
	go c.readPump()
}

func filterFromQuery(r *http.Request) (Filter, error) {
	var f Filter
	q := r.URL.Query()

	if raw := q.Get("sport"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			s, err := models.ParseSport(strings.TrimSpace(part))
			if err != nil {
				return Filter{}, err
			}
			f.Sports = append(f.Sports, s)
		}
	}

	if raw := q.Get("min_severity"); raw != "" {
		sev := models.Severity(raw)
		if sev.Rank() < 0 {
			return Filter{}, fmt.Errorf("unknown severity %q", raw)
		}
		f.MinSeverity = sev
	}
	return f, nil
}
