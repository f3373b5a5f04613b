package broadcast

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sportsedge/internal/models"
)

// ErrBufferFull is returned when the hub cannot accept another edge
var ErrBufferFull = errors.New("broadcast buffer full")

// Hub maintains the set of active subscribers and fans edges out to them
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan *models.Edge
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	log logrus.FieldLogger
}

// NewHub creates a new Hub instance
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *models.Edge, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.WithField("component", "broadcast"),
	}
}

// Run starts the hub's main loop and blocks until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.registerClient(c)
		case c := <-h.unregister:
			h.unregisterClient(c)
		case edge := <-h.broadcast:
			h.broadcastEdge(edge)
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Name identifies the sink in metrics and logs
func (h *Hub) Name() string { return "websocket" }

// Publish queues an edge for every matching subscriber without blocking
func (h *Hub) Publish(ctx context.Context, edge *models.Edge) error {
	select {
	case h.broadcast <- edge:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// ClientCount returns the number of active subscribers
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.clientsMu.Unlock()

	h.log.WithFields(logrus.Fields{"client_id": c.ID, "total": total}).Info("Subscriber connected")
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.log.WithFields(logrus.Fields{"client_id": c.ID, "total": len(h.clients)}).Info("Subscriber disconnected")
	}
}

func (h *Hub) broadcastEdge(edge *models.Edge) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	message := ServerMessage{
		Type:      MessageTypeEdge,
		Payload:   edge,
		Timestamp: time.Now(),
	}

	for _, c := range clients {
		if !c.wants(edge) {
			continue
		}
		if !c.trySend(message) {
			// slow consumer
			h.log.WithField("client_id", c.ID).Warn("Subscriber buffer full, disconnecting")
			h.unregisterClient(c)
		}
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.log.WithField("clients", len(h.clients)).Info("Shutting down broadcast hub")
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}
