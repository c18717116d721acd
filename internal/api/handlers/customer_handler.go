package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/shopdesk-be/internal/models"
	"github.com/isdelr/shopdesk-be/internal/services"
)

// CustomerHandler handles HTTP requests for customers.
type CustomerHandler struct {
	service services.CustomerServiceProvider
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(service services.CustomerServiceProvider) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// GetAll handles the request to get all customers.
func (h *CustomerHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.GetAllCustomers(r.Context())
	if err != nil {
		writeError(w, err, "Failed to retrieve customers")
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

// Get handles the request to get a single customer by its ID.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.GetCustomerByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "Failed to retrieve customer")
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// Create handles the request to create a new customer.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var customer models.Customer
	if !decodeJSON(w, r, &customer) {
		return
	}
	created, err := h.service.CreateCustomer(r.Context(), customer)
	if err != nil {
		writeError(w, err, "Failed to create customer")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update handles the request to update an existing customer.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var customer models.Customer
	if !decodeJSON(w, r, &customer) {
		return
	}
	updated, err := h.service.UpdateCustomer(r.Context(), chi.URLParam(r, "id"), customer)
	if err != nil {
		writeError(w, err, "Failed to update customer")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles the request to delete a customer.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCustomer(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err, "Failed to delete customer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
