// Package api serves predictions, edges and team ratings over a read-mostly JSON API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sportsedge/internal/models"
	"github.com/yourusername/sportsedge/internal/repository"
	"github.com/yourusername/sportsedge/internal/service"
)

// Predictor recomputes and stores the prediction of one match
type Predictor interface {
	PredictMatchByID(ctx context.Context, matchID uuid.UUID) (*models.Prediction, error)
}

// EdgeFinder computes edges without delivering them
type EdgeFinder interface {
	EdgeForMatch(ctx context.Context, matchID uuid.UUID) (*models.Edge, error)
	Upcoming(ctx context.Context, sport models.Sport, from, to time.Time) (*service.EdgeReport, error)
}

// Config holds router options
type Config struct {
	CORSOrigins []string
	Timeout     time.Duration
	// Sports are scanned by /edges when no sport is requested
	Sports []models.Sport
}

// Handler holds the dependencies of every route
type Handler struct {
	predictor Predictor
	edges     EdgeFinder
	repos     *repository.Repositories
	sports    []models.Sport
	logger    *logrus.Entry
	now       func() time.Time
}

// NewRouter builds the chi router serving /api/v1
func NewRouter(predictor Predictor, edges EdgeFinder, repos *repository.Repositories, cfg Config, log *logrus.Logger) http.Handler {
	return newHandler(predictor, edges, repos, cfg.Sports, log).routes(cfg)
}

func newHandler(predictor Predictor, edges EdgeFinder, repos *repository.Repositories, sports []models.Sport, log *logrus.Logger) *Handler {
	return &Handler{
		predictor: predictor,
		edges:     edges,
		repos:     repos,
		sports:    sports,
		logger:    log.WithField("component", "api"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) routes(cfg Config) http.Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.Timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Get("/prediction", h.GetPrediction)
			r.Post("/prediction", h.RefreshPrediction)
			r.Get("/edge", h.GetEdge)
		})

		r.Get("/edges", h.ListEdges)

		r.Route("/teams/{teamID}", func(r chi.Router) {
			r.Get("/", h.GetTeam)
			r.Get("/ratings", h.GetRatingHistory)
		})
	})

	return r
}

// requestLogger logs one line per request at debug level, warning on 5xx
func requestLogger(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			entry := log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": chimiddleware.GetReqID(r.Context()),
			})
			if ww.Status() >= http.StatusInternalServerError {
				entry.Warn("Request failed")
				return
			}
			entry.Debug("Request served")
		})
	}
}
