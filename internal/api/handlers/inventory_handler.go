package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/shopdesk-be/internal/models"
	"github.com/isdelr/shopdesk-be/internal/services"
)

// InventoryHandler handles HTTP requests for inventory items.
type InventoryHandler struct {
	service services.InventoryServiceProvider
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(service services.InventoryServiceProvider) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// GetAll lists the catalogue.
func (h *InventoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.GetAllItems(r.Context())
	if err != nil {
		writeError(w, err, "Failed to retrieve inventory")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Get returns one item.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetItemByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "Failed to retrieve inventory item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Create adds an item.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var item models.InventoryItem
	if !decodeJSON(w, r, &item) {
		return
	}
	created, err := h.service.CreateItem(r.Context(), item)
	if err != nil {
		writeError(w, err, "Failed to create inventory item")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update replaces an item's name and price.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var item models.InventoryItem
	if !decodeJSON(w, r, &item) {
		return
	}
	updated, err := h.service.UpdateItem(r.Context(), chi.URLParam(r, "id"), item)
	if err != nil {
		writeError(w, err, "Failed to update inventory item")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes an item.
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err, "Failed to delete inventory item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
