// Package broadcast streams detected edges to websocket subscribers.
package broadcast

import (
	"time"

	"github.com/yourusername/sportsedge/internal/models"
)

// Message types exchanged with subscribers
const (
	MessageTypeEdge        = "edge"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
	MessageTypeHeartbeat   = "heartbeat"
	MessageTypeError       = "error"
)

// ServerMessage is pushed from the hub to a subscriber
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ClientMessage is sent by a subscriber to adjust its subscription
type ClientMessage struct {
	Type   string `json:"type"`
	Filter Filter `json:"filter,omitempty"`
}

// Filter narrows which edges a subscriber receives. Zero value accepts all.
type Filter struct {
	Sports      []models.Sport  `json:"sports,omitempty"`
	MinSeverity models.Severity `json:"min_severity,omitempty"`
}

// Matches reports whether the edge passes the filter
func (f Filter) Matches(edge *models.Edge) bool {
	if len(f.Sports) > 0 {
		found := false
		for _, s := range f.Sports {
			if s == edge.Prediction.Sport {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinSeverity != "" && !edge.Dominant.Severity.AtLeast(f.MinSeverity) {
		return false
	}
	return true
}

// ErrorPayload describes a rejected client message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
