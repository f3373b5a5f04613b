package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/sportsedge/internal/models"
)

// CatchUpReport summarises a rating catch-up run
type CatchUpReport struct {
	Sport    models.Sport
	Total    int
	Applied  int
	Skipped  int
	Failures map[uuid.UUID]error
	Duration time.Duration
}

func newCatchUpReport(sport models.Sport) *CatchUpReport {
	return &CatchUpReport{Sport: sport, Failures: make(map[uuid.UUID]error)}
}

// Failed returns the number of matches that could not be rated
func (r *CatchUpReport) Failed() int {
	return len(r.Failures)
}

// String returns a formatted summary
func (r *CatchUpReport) String() string {
	return fmt.Sprintf("CatchUpReport{Sport=%s, Total=%d, Applied=%d, Skipped=%d, Failed=%d, Duration=%v}",
		r.Sport, r.Total, r.Applied, r.Skipped, r.Failed(), r.Duration)
}

// BatchReport collects the outcome of a concurrent prediction batch.
// A failed match never removes the predictions of the others.
type BatchReport struct {
	mu          sync.Mutex
	Sport       models.Sport
	Total       int
	Predictions []*models.Prediction
	Failures    map[uuid.UUID]error
	Duration    time.Duration
}

func newBatchReport(sport models.Sport, total int) *BatchReport {
	return &BatchReport{
		Sport:    sport,
		Total:    total,
		Failures: make(map[uuid.UUID]error),
	}
}

func (r *BatchReport) recordPrediction(p *models.Prediction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Predictions = append(r.Predictions, p)
}

func (r *BatchReport) recordFailure(matchID uuid.UUID, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures[matchID] = err
}

// Succeeded returns the number of predictions produced
func (r *BatchReport) Succeeded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Predictions)
}

// Failed returns the number of matches that could not be predicted
func (r *BatchReport) Failed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Failures)
}

// String returns a formatted summary
func (r *BatchReport) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	successRate := float64(0)
	if r.Total > 0 {
		successRate = float64(len(r.Predictions)) / float64(r.Total) * 100
	}
	return fmt.Sprintf("BatchReport{Sport=%s, Total=%d, Succeeded=%d (%.1f%%), Failed=%d, Duration=%v}",
		r.Sport, r.Total, len(r.Predictions), successRate, len(r.Failures), r.Duration)
}

// EdgeReport summarises an edge scan
type EdgeReport struct {
	Sport       models.Sport
	Edges       []*models.Edge
	Unavailable map[uuid.UUID]error
	Delivered   int
}

// OddsRefreshReport summarises one odds refresh for a sport
type OddsRefreshReport struct {
	Sport     models.Sport
	SportKey  string
	Throttled bool
	Skipped   bool
	Events    int
	Stored    int
	Unmatched int
	NoQuote   int
}
