package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/oriolpt/senderisme/backend/database"
	"github.com/oriolpt/senderisme/backend/gpx"
	"github.com/oriolpt/senderisme/backend/scraper"
	"github.com/oriolpt/senderisme/backend/services"
)

// Helper to respond with JSON
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshalling JSON response: %v", err)
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper to respond with an error
func respondWithError(w http.ResponseWriter, code int, message string) {
	log.Printf("API Error %d: %s", code, message)
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps a service error to its HTTP status: missing
// rows are 404, bad or insufficient tracks are the caller's problem,
// unreachable track hosts are a bad gateway, everything else is a 500.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, gpx.ErrMalformedTrack),
		errors.Is(err, gpx.ErrInsufficientTrackData),
		errors.Is(err, services.ErrNoTrackFile):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, scraper.ErrTrackSourceUnreachable):
		respondWithError(w, http.StatusBadGateway, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}

// parseID parses one numeric path segment.
func parseID(segment string) (int64, bool) {
	id, err := strconv.ParseInt(segment, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter; 0 means "use the
// configured default".
func queryInt(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
