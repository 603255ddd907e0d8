package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/charleschow/playoff-odds/internal/core/forecast"
	"github.com/charleschow/playoff-odds/internal/core/montecarlo"
	"github.com/charleschow/playoff-odds/internal/core/scenario"
	"github.com/charleschow/playoff-odds/internal/league"
	"github.com/charleschow/playoff-odds/internal/telemetry"
)

const maxIterations = 1_000_000

// Handler serves forecasts and scenarios for the active league snapshot.
//
// Routes:
//
//	GET  /health
//	GET  /forecast?iterations=N
//	GET  /scenario/{franchise}?kind=best|worst|likely&residual=1
//	POST /scenario/{franchise}/custom
//	GET  /ws                          (when a websocket handler is attached)
type Handler struct {
	svc     atomic.Pointer[forecast.Service]
	ws      http.HandlerFunc
	started time.Time
}

func NewHandler(svc *forecast.Service, ws http.HandlerFunc) *Handler {
	h := &Handler{ws: ws, started: time.Now()}
	h.svc.Store(svc)
	return h
}

// SetService swaps in a service built from a newer league snapshot.
// In-flight requests finish on the old one.
func (h *Handler) SetService(svc *forecast.Service) {
	h.svc.Store(svc)
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.healthCheck)
	mux.HandleFunc("GET /forecast", h.forecast)
	mux.HandleFunc("GET /scenario/{franchise}", h.scenario)
	mux.HandleFunc("POST /scenario/{franchise}/custom", h.custom)
	if h.ws != nil {
		mux.HandleFunc("GET /ws", h.ws)
	}
}

func (h *Handler) healthCheck(w http.ResponseWriter, _ *http.Request) {
	l := h.svc.Load().League()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"league":     l.ID,
		"week":       l.Week,
		"franchises": len(l.Standings),
		"uptime_s":   int(time.Since(h.started).Seconds()),
		"forecasts":  telemetry.Metrics.ForecastsRun.Value(),
		"trials":     telemetry.Metrics.TrialsRun.Value(),
		"clients":    telemetry.Metrics.ActiveClients.Value(),
		"p50_ms":     telemetry.Metrics.ForecastLatency.P50().Milliseconds(),
		"p99_ms":     telemetry.Metrics.ForecastLatency.P99().Milliseconds(),
	})
}

func (h *Handler) forecast(w http.ResponseWriter, r *http.Request) {
	iterations := 0
	if v := r.URL.Query().Get("iterations"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxIterations {
			writeError(w, http.StatusBadRequest, fmt.Errorf("iterations must be in 1..%d", maxIterations))
			return
		}
		iterations = n
	}

	report, err := h.svc.Load().Forecast(r.Context(), iterations)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) scenario(w http.ResponseWriter, r *http.Request) {
	svc := h.svc.Load()
	id, ok := svc.League().ResolveFranchise(r.PathValue("franchise"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%q: %w", r.PathValue("franchise"), league.ErrUnknownFranchise))
		return
	}

	kind := forecast.Kind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = forecast.KindLikely
	}
	opts := scenario.Options{Residual: truthy(r.URL.Query().Get("residual"))}

	res, err := svc.Scenario(r.Context(), kind, id, opts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type customRequest struct {
	Weeks    map[string]string `json:"weeks"`
	Residual bool              `json:"residual"`
}

func (h *Handler) custom(w http.ResponseWriter, r *http.Request) {
	svc := h.svc.Load()
	id, ok := svc.League().ResolveFranchise(r.PathValue("franchise"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%q: %w", r.PathValue("franchise"), league.ErrUnknownFranchise))
		return
	}

	var req customRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return
	}
	picks, err := parsePicks(req.Weeks)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := svc.Custom(r.Context(), id, picks, scenario.Options{Residual: req.Residual})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func parsePicks(weeks map[string]string) (map[int]scenario.Pick, error) {
	picks := make(map[int]scenario.Pick, len(weeks))
	for k, v := range weeks {
		week, err := strconv.Atoi(k)
		if err != nil || week <= 0 {
			return nil, fmt.Errorf("invalid week %q", k)
		}
		switch scenario.Pick(v) {
		case scenario.PickWin, scenario.PickLoss, scenario.PickUndecided:
			picks[week] = scenario.Pick(v)
		default:
			return nil, fmt.Errorf("week %d: pick must be W, L or empty, got %q", week, v)
		}
	}
	return picks, nil
}

func truthy(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, league.ErrUnknownFranchise):
		return http.StatusNotFound
	case errors.Is(err, forecast.ErrUnknownKind), errors.Is(err, montecarlo.ErrNoIterations):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		telemetry.Warnf("httpapi: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		telemetry.Errorf("httpapi: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
