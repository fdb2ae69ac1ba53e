// Package api serves a shared timer registry and host snapshots over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/WebTargetLtd/wolves-cli-helper/pkg/logging"
	"github.com/WebTargetLtd/wolves-cli-helper/pkg/sysinfo"
	"github.com/WebTargetLtd/wolves-cli-helper/pkg/timers"
	"github.com/gorilla/mux"
)

// snapshotTimeout bounds a single /sysinfo request
const snapshotTimeout = 10 * time.Second

// TimerResponse describes one timer in API responses
type TimerResponse struct {
	Name       string    `json:"name"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Running    bool      `json:"running"`
	Rate       *int64    `json:"rate,omitempty"`
}

// TimerHandler handles timer and host API requests
type TimerHandler struct {
	timers   *timers.Locked
	provider sysinfo.Provider
	logger   *logging.Logger
}

// NewTimerHandler creates a handler over a shared registry
func NewTimerHandler(t *timers.Locked, p sysinfo.Provider, logger *logging.Logger) *TimerHandler {
	return &TimerHandler{
		timers:   t,
		provider: p,
		logger:   logger,
	}
}

// RegisterRoutes registers all API routes
func (h *TimerHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/timers", h.ListTimers).Methods("GET")
	r.HandleFunc("/timers/{name}/end", h.EndTimer).Methods("POST")
	r.HandleFunc("/timers/{name}", h.StartTimer).Methods("POST")
	r.HandleFunc("/timers/{name}", h.GetTimer).Methods("GET")
	r.HandleFunc("/timers/{name}", h.DeleteTimer).Methods("DELETE")

	r.HandleFunc("/sysinfo", h.SystemInfo).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")
}

// StartTimer starts (or restarts) a timer. With ?strict=true an existing
// timer is left alone and 409 is returned.
func (h *TimerHandler) StartTimer(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var st timers.Stat
	if r.URL.Query().Get("strict") == "true" {
		var err error
		if st, err = h.timers.AddStrictStat(name); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
	} else {
		st = h.timers.AddStat(name)
	}

	h.logger.Debug("Timer started", logging.Fields{"timer": name})
	writeJSON(w, http.StatusCreated, toResponse(st))
}

// EndTimer stops a timer and returns its fixed duration
func (h *TimerHandler) EndTimer(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	st, err := h.timers.EndStat(name)
	if err != nil {
		writeError(w, err)
		return
	}
	h.logger.Debug("Timer ended", logging.Fields{"timer": name, "duration_ms": st.DurationMS})
	writeJSON(w, http.StatusOK, toResponse(st))
}

// GetTimer returns a timer's duration and, with ?quantity=N, its rate
func (h *TimerHandler) GetTimer(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	st, ok := h.timers.Lookup(name)
	if !ok {
		http.Error(w, "timer not found", http.StatusNotFound)
		return
	}
	resp := toResponse(st)

	if q := r.URL.Query().Get("quantity"); q != "" {
		qty, err := strconv.ParseInt(q, 10, 64)
		if err != nil {
			http.Error(w, "Invalid quantity", http.StatusBadRequest)
			return
		}
		// rate from the same reading as duration_ms
		rate, err := timers.RateOf(qty, st.DurationMS)
		if err != nil {
			writeError(w, err)
			return
		}
		resp.Rate = &rate
	}

	writeJSON(w, http.StatusOK, resp)
}

// DeleteTimer removes a timer
func (h *TimerHandler) DeleteTimer(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if !h.timers.Remove(name) {
		http.Error(w, "timer not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTimers returns every timer sorted by name
func (h *TimerHandler) ListTimers(w http.ResponseWriter, r *http.Request) {
	stats := h.timers.Stats()
	resp := make([]TimerResponse, 0, len(stats))
	for _, st := range stats {
		resp = append(resp, toResponse(st))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"timers": resp,
		"count":  len(resp),
	})
}

// SystemInfo returns a fresh host snapshot
func (h *TimerHandler) SystemInfo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), snapshotTimeout)
	defer cancel()

	info, err := h.provider.Snapshot(ctx)
	if err != nil {
		h.logger.Error("Snapshot failed", logging.Fields{"error": err.Error()})
		http.Error(w, "Failed to read system info", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Health reports liveness
func (h *TimerHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func toResponse(st timers.Stat) TimerResponse {
	return TimerResponse{
		Name:       st.Name,
		StartedAt:  st.StartedAt,
		DurationMS: st.DurationMS,
		Running:    st.Running,
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, timers.ErrTimerNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, timers.ErrNegativeQuantity), errors.Is(err, timers.ErrQuantityTooLarge):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
