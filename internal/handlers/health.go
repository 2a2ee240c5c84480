package handlers

import (
	"net/http"
)

// DatasetInfo describes the loaded dataset.
type DatasetInfo interface {
	Len() int
	Version() string
}

// HealthHandler reports service liveness
type HealthHandler struct {
	dataset DatasetInfo
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(ds DatasetInfo) *HealthHandler {
	return &HealthHandler{dataset: ds}
}

type healthResponse struct {
	Status         string `json:"status"`
	DatasetSize    int    `json:"dataset_size"`
	DatasetVersion string `json:"dataset_version"`
}

// Health returns the service status and dataset summary
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:         "healthy",
		DatasetSize:    h.dataset.Len(),
		DatasetVersion: h.dataset.Version(),
	})
}
