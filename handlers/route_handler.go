package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/oriolpt/senderisme/backend/models"
	"github.com/oriolpt/senderisme/backend/services"
)

// RouteHandler serves everything under /api/routes/.
type RouteHandler struct {
	Proximity *services.ProximityService
	Routes    *services.RouteService
}

func NewRouteHandler(proximity *services.ProximityService, routes *services.RouteService) *RouteHandler {
	return &RouteHandler{Proximity: proximity, Routes: routes}
}

// ServeHTTP dispatches on the path under /api/routes/:
//
//	GET  /api/routes/{id}/cultural-items
//	POST /api/routes/{id}/cultural-items/recompute
//	POST /api/routes/{id}/cultural-items/sync-flags
//	POST /api/routes/{id}/difficulty/recompute
func (h *RouteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// pathParts: ["api", "routes", "{id}", ...]
	if len(pathParts) < 4 || pathParts[0] != "api" || pathParts[1] != "routes" {
		respondWithError(w, http.StatusNotFound, "Unknown route path")
		return
	}
	routeID, ok := parseID(pathParts[2])
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid route id in path")
		return
	}

	rest := pathParts[3:]
	switch {
	case len(rest) == 1 && rest[0] == "cultural-items":
		h.listCulturalItems(w, r, routeID)
	case len(rest) == 2 && rest[0] == "cultural-items" && rest[1] == "recompute":
		h.recomputeCulturalItems(w, r, routeID)
	case len(rest) == 2 && rest[0] == "cultural-items" && rest[1] == "sync-flags":
		h.syncInterestFlags(w, r, routeID)
	case len(rest) == 2 && rest[0] == "difficulty" && rest[1] == "recompute":
		h.recomputeDifficulty(w, r, routeID)
	default:
		respondWithError(w, http.StatusNotFound, "Unknown route path")
	}
}

func (h *RouteHandler) listCulturalItems(w http.ResponseWriter, r *http.Request, routeID int64) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}
	limit, ok := queryInt(r, "limit")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid 'limit' query parameter")
		return
	}

	items, err := h.Proximity.ListRouteItems(routeID, limit)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if items == nil {
		items = []models.AssociatedItem{}
	}
	respondWithJSON(w, http.StatusOK, items)
}

func (h *RouteHandler) recomputeCulturalItems(w http.ResponseWriter, r *http.Request, routeID int64) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	// Body is optional; an empty one means config defaults.
	var req models.RecomputeCulturalItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	log.Printf("Handler: Received recompute request for route %d (radius %dm, step %d)\n",
		routeID, req.RadiusM, req.Step)

	resp, err := h.Proximity.RecomputeRouteItems(routeID, req.RadiusM, req.Step)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *RouteHandler) syncInterestFlags(w http.ResponseWriter, r *http.Request, routeID int64) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}
	if err := h.Proximity.SyncRouteInterestFlags(routeID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Interest flags synchronised."})
}

func (h *RouteHandler) recomputeDifficulty(w http.ResponseWriter, r *http.Request, routeID int64) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}
	resp, err := h.Routes.RecomputeDifficulty(routeID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}
