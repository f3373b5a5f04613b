package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/sportsedge/internal/api"
	"github.com/yourusername/sportsedge/internal/broadcast"
	"github.com/yourusername/sportsedge/internal/health"
	"github.com/yourusername/sportsedge/internal/metrics"
	"github.com/yourusername/sportsedge/internal/notify"
	"github.com/yourusername/sportsedge/internal/publisher"
	"github.com/yourusername/sportsedge/internal/scheduler"
	"github.com/yourusername/sportsedge/internal/service"
)

const (
	predictionHorizon = 72 * time.Hour
	catchUpLookback   = 7 * 24 * time.Hour
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler, health endpoints and edge sinks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	appLog.WithFields(logrus.Fields{
		"version":     Version,
		"commit":      GitCommit,
		"environment": cfg.App.Environment,
	}).Info("Starting sportsedge")

	var sinks []service.EdgeSink
	checks := make(map[string]health.Checker)

	var hub *broadcast.Hub
	if cfg.Features.BroadcastEdges {
		hub = broadcast.NewHub(appLog.WithField("component", "broadcast"))
		go hub.Run(ctx)
		sinks = append(sinks, hub)
	}

	if cfg.Features.PublishEdges {
		rdb, err := publisher.NewClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()
		sinks = append(sinks, publisher.NewStreamPublisher(rdb))
		checks["redis"] = health.CheckFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	if cfg.Features.NotifyHigh {
		notifier, err := notify.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID, cfg.Notify.MaxRetries)
		if err != nil {
			return fmt.Errorf("failed to create telegram notifier: %w", err)
		}
		sinks = append(sinks, notifier)
	}

	a, err := newApp(ctx, sinks...)
	if err != nil {
		return err
	}
	defer a.Close()
	checks["database"] = health.CheckFunc(a.db.Ping)

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        cfg.App.HealthPort,
		GRPCPort:    cfg.App.GRPCPort,
		Logger:      appLog,
		Checks:      checks,
	})
	if hub != nil {
		healthServer.Mount("/ws", broadcast.NewHandler(hub))
	}
	if cfg.API.Enabled {
		healthServer.Mount("/api/", api.NewRouter(a.predictions, a.edges, a.repos, api.Config{
			CORSOrigins: cfg.API.CORSOrigins,
			Timeout:     time.Duration(cfg.API.TimeoutSeconds) * time.Second,
			Sports:      a.sports,
		}, appLog))
	}
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsServer = startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	sched := scheduler.NewScheduler(a.sports, appLog)
	if err := sched.ScheduleOddsRefresh(cfg.Scheduler.OddsRefresh, a.odds); err != nil {
		return err
	}
	if err := sched.SchedulePredictions(cfg.Scheduler.PredictionRefresh, predictionHorizon, a.predictions, a.edges); err != nil {
		return err
	}
	if err := sched.ScheduleRatingCatchUp(cfg.Scheduler.RatingCatchUp, catchUpLookback, a.ratings); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Bring ratings up to date before the first prediction run
	if err := sched.Trigger(scheduler.JobRatingCatchUp); err != nil {
		appLog.WithError(err).Warn("Initial rating catch-up failed")
	}

	healthServer.SetReady(true)
	appLog.WithFields(logrus.Fields{
		"sports":   a.sports,
		"jobs":     sched.Jobs(),
		"next_run": sched.NextRun(),
		"sinks":    len(sinks),
	}).Info("sportsedge is running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		appLog.WithField("signal", sig).Info("Shutdown signal received")
	case <-ctx.Done():
	}

	appLog.Info("Initiating graceful shutdown...")
	healthServer.SetReady(false)

	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error during scheduler shutdown")
	}
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Error("Error during metrics server shutdown")
		}
		shutdownCancel()
	}
	cancel()
	if err := healthServer.Shutdown(); err != nil {
		appLog.WithError(err).Error("Error during health server shutdown")
	}

	appLog.Info("sportsedge shut down successfully")
	return nil
}

func startMetricsServer(port int, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		appLog.WithFields(logrus.Fields{"port": port, "path": path}).Info("Metrics server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.WithError(err).Error("Metrics server error")
		}
	}()

	return srv
}
