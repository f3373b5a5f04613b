package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yourusername/sportsedge/internal/analysis"
	"github.com/yourusername/sportsedge/internal/edge"
	"github.com/yourusername/sportsedge/internal/models"
)

const (
	defaultHorizon = 72 * time.Hour
	maxHorizon     = 14 * 24 * time.Hour
	formLength     = 5
	defaultHistory = 20
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// TeamResponse is a team with its recent form
type TeamResponse struct {
	*models.Team
	Form string `json:"form"`
}

// EdgesResponse lists ranked edges of upcoming matches
type EdgesResponse struct {
	Edges       []*models.Edge `json:"edges"`
	Count       int            `json:"count"`
	Unavailable int            `json:"unavailable"`
	From        time.Time      `json:"from"`
	To          time.Time      `json:"to"`
}

// GetPrediction returns the stored prediction of a match
func (h *Handler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "matchID")
	if !ok {
		return
	}

	pred, err := h.repos.Prediction.GetByMatchID(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "failed to load prediction")
		return
	}
	respondJSON(w, http.StatusOK, pred)
}

// RefreshPrediction recomputes, stores and returns the prediction of a match
func (h *Handler) RefreshPrediction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "matchID")
	if !ok {
		return
	}

	pred, err := h.predictor.PredictMatchByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "failed to predict match")
		return
	}
	respondJSON(w, http.StatusOK, pred)
}

// GetEdge compares the stored prediction of a match with its latest odds
func (h *Handler) GetEdge(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "matchID")
	if !ok {
		return
	}

	e, err := h.edges.EdgeForMatch(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "edge unavailable")
		return
	}
	respondJSON(w, http.StatusOK, e)
}

// ListEdges ranks the edges of upcoming matches.
// Query: sport=football,basketball  hours=72  min_severity=medium
func (h *Handler) ListEdges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sports := h.sports
	if raw := q.Get("sport"); raw != "" {
		sports = nil
		for _, part := range strings.Split(raw, ",") {
			s, err := models.ParseSport(strings.TrimSpace(part))
			if err != nil {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			sports = append(sports, s)
		}
	}

	horizon := defaultHorizon
	if raw := q.Get("hours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			respondError(w, http.StatusBadRequest, "hours must be a positive integer")
			return
		}
		horizon = time.Duration(hours) * time.Hour
		if horizon > maxHorizon {
			horizon = maxHorizon
		}
	}

	minSeverity := models.SeverityLow
	if raw := q.Get("min_severity"); raw != "" {
		minSeverity = models.Severity(raw)
		if minSeverity.Rank() < 0 {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown severity %q", raw))
			return
		}
	}

	from := h.now()
	to := from.Add(horizon)
	resp := EdgesResponse{Edges: []*models.Edge{}, From: from, To: to}

	for _, sport := range sports {
		report, err := h.edges.Upcoming(r.Context(), sport, from, to)
		if err != nil {
			h.respondError(w, err, "failed to scan edges")
			return
		}
		resp.Unavailable += len(report.Unavailable)
		for _, e := range report.Edges {
			if e.Dominant.Severity.AtLeast(minSeverity) {
				resp.Edges = append(resp.Edges, e)
			}
		}
	}

	edge.Rank(resp.Edges)
	resp.Count = len(resp.Edges)
	respondJSON(w, http.StatusOK, resp)
}

// GetTeam returns a team with its last five results as a form string
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "teamID")
	if !ok {
		return
	}

	team, err := h.repos.Team.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "failed to load team")
		return
	}

	recent, err := h.repos.Match.GetRecentByTeam(r.Context(), id, formLength)
	if err != nil {
		h.respondError(w, err, "failed to load recent matches")
		return
	}

	respondJSON(w, http.StatusOK, TeamResponse{
		Team: team,
		Form: analysis.FormString(id, recent, formLength),
	})
}

// GetRatingHistory returns the last points of a team's rating trajectory.
// Query: limit=20
func (h *Handler) GetRatingHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "teamID")
	if !ok {
		return
	}

	limit := defaultHistory
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	if _, err := h.repos.Team.GetByID(r.Context(), id); err != nil {
		h.respondError(w, err, "failed to load team")
		return
	}

	history, err := h.repos.Rating.GetHistory(r.Context(), id, limit)
	if err != nil {
		h.respondError(w, err, "failed to load rating history")
		return
	}
	if history == nil {
		history = []models.RatingHistoryPoint{}
	}
	respondJSON(w, http.StatusOK, history)
}

func (h *Handler) uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrMissingInput),
		errors.Is(err, models.ErrInvalidOdds),
		errors.Is(err, models.ErrInvalidMatchResult),
		errors.Is(err, models.ErrNumericDrift):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error, message string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).Error(message)
		respondError(w, status, message)
		return
	}
	respondError(w, status, fmt.Sprintf("%s: %v", message, err))
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
