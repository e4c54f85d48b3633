package handlers

import (
	"fmt"
	"net/http"

	"github.com/oriolpt/senderisme/backend/services"
)

// AdminHandler serves the manual dataset maintenance endpoints.
type AdminHandler struct {
	Import *services.CulturalImportService
}

func NewAdminHandler(importSvc *services.CulturalImportService) *AdminHandler {
	return &AdminHandler{Import: importSvc}
}

// ForceRefreshCulturalItemsHandler handles POST /api/admin/refresh-cultural-items:
// unconditionally redownload and reimport the heritage-inventory CSV.
func (h *AdminHandler) ForceRefreshCulturalItemsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	if err := h.Import.ForceUpdateCulturalItems(nil); err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to refresh cultural items data: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Cultural items data refreshed successfully."})
}

// CheckAndUpdateCulturalItemsHandler handles POST /api/admin/check-update-cultural-items:
// scrape the catalog page for the published date and reimport only when it
// is newer than the last import.
func (h *AdminHandler) CheckAndUpdateCulturalItemsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	updated, err := h.Import.UpdateCulturalItemsIfNeeded()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to check cultural items freshness: %v", err))
		return
	}
	message := "Cultural items are already current."
	if updated {
		message = "Newer cultural items found and imported."
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"updated": updated, "message": message})
}
