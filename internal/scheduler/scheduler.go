// Package scheduler runs the periodic odds refresh, prediction and rating jobs.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sportsedge/internal/models"
	"github.com/yourusername/sportsedge/internal/service"
)

// Job names
const (
	JobOddsRefresh   = "odds_refresh"
	JobPredictions   = "predictions"
	JobRatingCatchUp = "rating_catch_up"
)

// OddsRefresher refreshes market odds for a set of sports
type OddsRefresher interface {
	RefreshAll(ctx context.Context, sports []models.Sport) ([]*service.OddsRefreshReport, error)
}

// BatchPredictor predicts every upcoming match in a window
type BatchPredictor interface {
	GenerateBatch(ctx context.Context, sport models.Sport, from, to time.Time) (*service.BatchReport, error)
}

// EdgeScanner computes and dispatches edges for upcoming matches
type EdgeScanner interface {
	ScanUpcoming(ctx context.Context, sport models.Sport, from, to time.Time) (*service.EdgeReport, error)
}

// RatingCatcher applies completed results not yet rated
type RatingCatcher interface {
	CatchUp(ctx context.Context, sport models.Sport, since time.Time) (*service.CatchUpReport, error)
}

// Scheduler manages the cron jobs of the serve command
type Scheduler struct {
	cron            *cron.Cron
	sports          []models.Sport
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          map[string]cron.EntryID
	jobs            map[string]func()
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
	now             func() time.Time
}

// NewScheduler creates a new scheduler for the given sports
func NewScheduler(sports []models.Sport, logger *logrus.Logger) *Scheduler {
	entry := logger.WithField("component", "scheduler")
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(entry))),
		),
		sports:          sports,
		logger:          entry,
		jobIDs:          make(map[string]cron.EntryID),
		jobs:            make(map[string]func()),
		jobTimeout:      30 * time.Minute,
		gracefulTimeout: 30 * time.Second,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *Scheduler) add(name, spec string, job func(ctx context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if _, exists := s.jobIDs[name]; exists {
		return fmt.Errorf("job %s already scheduled", name)
	}

	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		start := time.Now()
		s.logger.WithField("job", name).Debug("Job started")
		job(ctx)
		s.logger.WithFields(logrus.Fields{
			"job":      name,
			"duration": time.Since(start).String(),
		}).Debug("Job finished")
	}

	entryID, err := s.cron.AddFunc(spec, run)
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", name, err)
	}

	s.jobIDs[name] = entryID
	s.jobs[name] = run
	s.logger.WithFields(logrus.Fields{"job": name, "schedule": spec}).Info("Scheduled job")
	return nil
}

// ScheduleOddsRefresh refreshes market odds for every sport
func (s *Scheduler) ScheduleOddsRefresh(spec string, refresher OddsRefresher) error {
	return s.add(JobOddsRefresh, spec, func(ctx context.Context) {
		reports, err := refresher.RefreshAll(ctx, s.sports)
		if err != nil {
			s.logger.WithError(err).Error("Odds refresh failed")
		}
		for _, r := range reports {
			s.logger.WithFields(logrus.Fields{
				"sport":     r.Sport,
				"throttled": r.Throttled,
				"stored":    r.Stored,
			}).Info("Odds refresh completed")
		}
	})
}

// SchedulePredictions regenerates predictions for matches within horizon and,
// when scanner is not nil, scans the refreshed predictions for edges
func (s *Scheduler) SchedulePredictions(spec string, horizon time.Duration, predictor BatchPredictor, scanner EdgeScanner) error {
	return s.add(JobPredictions, spec, func(ctx context.Context) {
		from := s.now()
		to := from.Add(horizon)
		for _, sport := range s.sports {
			report, err := predictor.GenerateBatch(ctx, sport, from, to)
			if err != nil {
				s.logger.WithError(err).WithField("sport", sport).Error("Prediction batch failed")
				continue
			}
			s.logger.Info(report.String())

			if scanner == nil {
				continue
			}
			edges, err := scanner.ScanUpcoming(ctx, sport, from, to)
			if err != nil {
				s.logger.WithError(err).WithField("sport", sport).Error("Edge scan failed")
				continue
			}
			s.logger.WithFields(logrus.Fields{
				"sport":       sport,
				"edges":       len(edges.Edges),
				"unavailable": len(edges.Unavailable),
				"delivered":   edges.Delivered,
			}).Info("Edge scan completed")
		}
	})
}

// ScheduleRatingCatchUp rates completed matches that kicked off within lookback
func (s *Scheduler) ScheduleRatingCatchUp(spec string, lookback time.Duration, catcher RatingCatcher) error {
	return s.add(JobRatingCatchUp, spec, func(ctx context.Context) {
		since := s.now().Add(-lookback)
		for _, sport := range s.sports {
			report, err := catcher.CatchUp(ctx, sport, since)
			if err != nil {
				s.logger.WithError(err).WithField("sport", sport).Error("Rating catch-up failed")
				continue
			}
			s.logger.Info(report.String())
		}
	})
}

// Trigger runs a scheduled job immediately on the calling goroutine
func (s *Scheduler) Trigger(name string) error {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("job %s is not scheduled", name)
	}
	job()
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler, waiting up to the graceful timeout for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	stopped := s.cron.Stop()
	s.isRunning = false

	select {
	case <-stopped.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler stop timed out after %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled job run
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, id := range s.jobIDs {
		entry := s.cron.Entry(id)
		if entry.Valid() && (nextRun.IsZero() || entry.Next.Before(nextRun)) {
			nextRun = entry.Next
		}
	}
	return nextRun
}

// Jobs returns the names of the scheduled jobs
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobIDs))
	for name := range s.jobIDs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
