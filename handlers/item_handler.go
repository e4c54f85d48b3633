package handlers

import (
	"net/http"
	"strings"

	"github.com/oriolpt/senderisme/backend/models"
	"github.com/oriolpt/senderisme/backend/services"
)

// ItemHandler serves everything under /api/cultural-items/.
type ItemHandler struct {
	Proximity *services.ProximityService
}

func NewItemHandler(proximity *services.ProximityService) *ItemHandler {
	return &ItemHandler{Proximity: proximity}
}

// ServeHTTP handles GET /api/cultural-items/{id}/nearby-routes with the
// optional radius_m and limit query parameters.
func (h *ItemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// pathParts: ["api", "cultural-items", "{id}", "nearby-routes"]
	if len(pathParts) != 4 || pathParts[3] != "nearby-routes" {
		respondWithError(w, http.StatusNotFound, "Unknown cultural-items path")
		return
	}
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}
	itemID, ok := parseID(pathParts[2])
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid cultural item id in path")
		return
	}
	radiusM, ok := queryInt(r, "radius_m")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid 'radius_m' query parameter")
		return
	}
	limit, ok := queryInt(r, "limit")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid 'limit' query parameter")
		return
	}

	resp, err := h.Proximity.NearbyRoutesForItem(itemID, radiusM, limit)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if resp.Routes == nil {
		resp.Routes = []models.Route{}
	}
	respondWithJSON(w, http.StatusOK, resp)
}
