package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/oriolpt/senderisme/backend/models"
	"github.com/oriolpt/senderisme/backend/services"
)

// PreferenceHandler serves everything under /api/users/.
type PreferenceHandler struct {
	Prefs *services.PreferenceService
}

func NewPreferenceHandler(prefs *services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{Prefs: prefs}
}

// ServeHTTP dispatches on the path under /api/users/:
//
//	GET  /api/users/{id}/preferences
//	PUT  /api/users/{id}/preferences
//	POST /api/users/{id}/completions/{routeID}
func (h *PreferenceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// pathParts: ["api", "users", "{id}", ...]
	if len(pathParts) < 4 {
		respondWithError(w, http.StatusNotFound, "Unknown users path")
		return
	}
	userID, ok := parseID(pathParts[2])
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid user id in path")
		return
	}

	rest := pathParts[3:]
	switch {
	case len(rest) == 1 && rest[0] == "preferences":
		h.preferences(w, r, userID)
	case len(rest) == 2 && rest[0] == "completions":
		routeID, ok := parseID(rest[1])
		if !ok {
			respondWithError(w, http.StatusBadRequest, "Invalid route id in path")
			return
		}
		h.completeRoute(w, r, userID, routeID)
	default:
		respondWithError(w, http.StatusNotFound, "Unknown users path")
	}
}

func (h *PreferenceHandler) preferences(w http.ResponseWriter, r *http.Request, userID int64) {
	switch r.Method {
	case http.MethodGet:
		resp, err := h.Prefs.GetPreferencesWithSignals(userID)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, resp)

	case http.MethodPut, http.MethodPost:
		var req models.UpsertPreferencesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
		defer r.Body.Close()

		resp, err := h.Prefs.UpsertPreferences(userID, req)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, resp)

	default:
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET, PUT and POST methods are allowed")
	}
}

func (h *PreferenceHandler) completeRoute(w http.ResponseWriter, r *http.Request, userID, routeID int64) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}
	resp, err := h.Prefs.CompleteRoute(userID, routeID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}
