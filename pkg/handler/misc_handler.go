// Handler for miscellaneous endpoints such as health check

package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yumyai/snpview/logger"
)

type HealthResponse struct {
	Health    string    `json:"health"`
	Timestamp time.Time `json:"timestamp"`
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {

	response := HealthResponse{
		Health:    "ok",
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)

}

// List the reference genome's contigs, for the query form's
// autocomplete.
func (appctx *AppContext) ContigListHandler(w http.ResponseWriter, r *http.Request) {

	contigs, err := appctx.RefDB.Contigs()
	if err != nil {
		logger.Error(err.Error())
		http.Error(w, "Failed to list contigs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"contigs": contigs})
}
