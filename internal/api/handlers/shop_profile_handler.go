package handlers

import (
	"net/http"

	"github.com/isdelr/shopdesk-be/internal/models"
	"github.com/isdelr/shopdesk-be/internal/services"
)

// ShopProfileHandler serves the singleton shop profile.
type ShopProfileHandler struct {
	service services.ShopProfileServiceProvider
}

// NewShopProfileHandler creates a new ShopProfileHandler.
func NewShopProfileHandler(service services.ShopProfileServiceProvider) *ShopProfileHandler {
	return &ShopProfileHandler{service: service}
}

type shopProfileResponse struct {
	Message string             `json:"message"`
	Profile models.ShopProfile `json:"profile"`
}

// Get returns the profile, empty when the shop has not been set up.
func (h *ShopProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(r.Context())
	if err != nil {
		writeError(w, err, "Error fetching shop profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Save creates or replaces the profile.
func (h *ShopProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	var profile models.ShopProfile
	if !decodeJSON(w, r, &profile) {
		return
	}
	saved, err := h.service.SaveProfile(r.Context(), profile)
	if err != nil {
		writeError(w, err, "Error updating shop profile")
		return
	}
	writeJSON(w, http.StatusOK, shopProfileResponse{Message: "Shop profile updated", Profile: saved})
}
