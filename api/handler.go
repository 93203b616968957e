package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/hedera-audit/contract-census/entities"
	"github.com/pkg/errors"
)

type RunStore interface {
	GetLastRun() (entities.RunInfo, error)
}

type Handler struct {
	runs RunStore
}

type HealthResponse struct {
	Status string `json:"status"`
}

func NewHandler(runs RunStore) *Handler {
	return &Handler{runs: runs}
}

func (h *Handler) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, HealthResponse{Status: "UP"})
}

// GetStatus reports the last completed fetch run, if any.
func (h *Handler) GetStatus(w http.ResponseWriter, _ *http.Request) {
	info, err := h.runs.GetLastRun()
	if errors.Is(err, entities.ErrStoreEntityNotFound) {
		http.Error(w, "no completed run", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[ERROR] getting last run: %v", err)
		http.Error(w, "error getting last run", http.StatusInternalServerError)
		return
	}
	writeJSON(w, info)
}

func writeJSON(w http.ResponseWriter, response interface{}) {
	w.Header().Add("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding response: %v", err)
		http.Error(w, "Error encoding response", http.StatusInternalServerError)
	}
}
