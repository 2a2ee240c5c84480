package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/school-locator/internal/locator"
	"github.com/ukydev/school-locator/internal/metrics"
	"github.com/ukydev/school-locator/internal/query"
)

// Invoker runs a nearest-schools invocation.
type Invoker interface {
	Invoke(ctx context.Context, q query.Query) (*locator.Result, error)
}

// NearestHandler handles nearest-school requests
type NearestHandler struct {
	invoker Invoker
}

// NewNearestHandler creates a new nearest-school handler
func NewNearestHandler(invoker Invoker) *NearestHandler {
	return &NearestHandler{invoker: invoker}
}

// Nearest accepts a JSON body on POST or query parameters on GET.
func (h *NearestHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	var (
		q   query.Query
		err error
	)
	switch r.Method {
	case http.MethodPost:
		q, err = query.FromJSON(r.Body)
	case http.MethodGet:
		q, err = query.FromValues(r.URL.Query())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		writeQueryError(w, err)
		return
	}

	res, err := h.invoker.Invoke(r.Context(), q)
	if err != nil {
		log.WithError(err).Error("Nearest-schools invocation failed")
		if errors.Is(err, locator.ErrRecording) {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, query.ErrInvalidBody):
		metrics.ValidationFailuresTotal.Inc()
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
	case errors.Is(err, query.ErrMissingCoordinates),
		errors.Is(err, query.ErrInvalidCoordinate),
		errors.Is(err, query.ErrInvalidLength):
		metrics.ValidationFailuresTotal.Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to write response")
	}
}
