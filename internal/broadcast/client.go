package broadcast

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sportsedge/internal/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024

	sendBufferSize = 64
)

// Client is one websocket subscriber
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan ServerMessage
	hub  *Hub
	log  logrus.FieldLogger

	filterMu sync.RWMutex
	filter   Filter
}

func newClient(id string, conn *websocket.Conn, hub *Hub, filter Filter) *Client {
	return &Client{
		ID:     id,
		conn:   conn,
		send:   make(chan ServerMessage, sendBufferSize),
		hub:    hub,
		log:    hub.log.WithField("client_id", id),
		filter: filter,
	}
}

// readPump handles subscription changes until the peer goes away
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("Unexpected websocket close")
			}
			return
		}
		c.handleMessage(msg)
	}
}

// writePump delivers queued messages and keeps the connection alive
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.log.WithError(err).Debug("Websocket write failed")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues a message without blocking; false means the buffer is full
func (c *Client) trySend(msg ServerMessage) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) setFilter(f Filter) {
	c.filterMu.Lock()
	defer c.filterMu.Unlock()
	c.filter = f
}

func (c *Client) wants(edge *models.Edge) bool {
	c.filterMu.RLock()
	defer c.filterMu.RUnlock()
	return c.filter.Matches(edge)
}

func (c *Client) handleMessage(msg ClientMessage) {
	switch msg.Type {
	case MessageTypeSubscribe:
		for _, s := range msg.Filter.Sports {
			if !s.Valid() {
				c.sendError("invalid_filter", "unknown sport "+string(s))
				return
			}
		}
		c.setFilter(msg.Filter)
		c.log.WithField("sports", msg.Filter.Sports).Debug("Subscription updated")
	case MessageTypeUnsubscribe:
		c.setFilter(Filter{})
	case MessageTypeHeartbeat:
		c.trySend(ServerMessage{Type: MessageTypeHeartbeat, Timestamp: time.Now()})
	default:
		c.sendError("unknown_message_type", "unknown message type: "+msg.Type)
	}
}

func (c *Client) sendError(code, message string) {
	c.trySend(ServerMessage{
		Type:      MessageTypeError,
		Payload:   ErrorPayload{Code: code, Message: message},
		Timestamp: time.Now(),
	})
}
