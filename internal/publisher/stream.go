// Package publisher pushes detected edges onto Redis streams.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/sportsedge/internal/models"
)

const (
	// GlobalStream receives every edge regardless of sport
	GlobalStream = "edges.detected"
	// defaultMaxLen caps each stream; trimming is approximate
	defaultMaxLen = 10000
)

// StreamKey returns the per-sport stream an edge is published to
func StreamKey(sport models.Sport) string {
	return fmt.Sprintf("%s.%s", GlobalStream, sport)
}

// StreamPublisher publishes edges to Redis Streams
type StreamPublisher struct {
	client redis.Cmdable
	maxLen int64
}

// NewStreamPublisher creates a new stream publisher
func NewStreamPublisher(client redis.Cmdable) *StreamPublisher {
	return &StreamPublisher{client: client, maxLen: defaultMaxLen}
}

// Name identifies the sink in metrics and logs
func (p *StreamPublisher) Name() string { return "redis" }

// Publish writes the edge to its sport stream and to the global stream
func (p *StreamPublisher) Publish(ctx context.Context, edge *models.Edge) error {
	payload, err := json.Marshal(edge)
	if err != nil {
		return fmt.Errorf("failed to marshal edge: %w", err)
	}

	values := map[string]interface{}{
		"match_id": edge.MatchID.String(),
		"severity": string(edge.Dominant.Severity),
		"edge":     string(payload),
	}

	for _, stream := range []string{StreamKey(edge.Prediction.Sport), GlobalStream} {
		_, err := p.client.XAdd(ctx, &redis.XAddArgs{
			Stream: stream,
			MaxLen: p.maxLen,
			Approx: true,
			Values: values,
		}).Result()
		if err != nil {
			return fmt.Errorf("failed to publish to stream %s: %w", stream, err)
		}
	}
	return nil
}

// NewClient opens a Redis client and verifies connectivity
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}
