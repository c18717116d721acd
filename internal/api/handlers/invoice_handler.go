package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/shopdesk-be/internal/models"
	"github.com/isdelr/shopdesk-be/internal/services"
)

// InvoiceHandler handles HTTP requests for invoices.
type InvoiceHandler struct {
	service services.InvoiceServiceProvider
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(service services.InvoiceServiceProvider) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// PaymentStatusPayload is the body of the payment status update.
type PaymentStatusPayload struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
}

// GetAll lists every invoice.
func (h *InvoiceHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.GetAllInvoices(r.Context())
	if err != nil {
		writeError(w, err, "Failed to retrieve invoices")
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

// Get returns one invoice by its invoice id.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.service.GetInvoice(r.Context(), chi.URLParam(r, "invoiceId"))
	if err != nil {
		writeError(w, err, "Failed to retrieve invoice")
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

// Create stores a new invoice, numbering it when the body has no
// invoiceId. Serves both /api/invoices and /api/save-invoice.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.InvoiceInput
	if !decodeJSON(w, r, &input) {
		return
	}

	invoice, err := h.service.CreateInvoice(r.Context(), input)
	if err != nil {
		writeError(w, err, "Failed to create invoice")
		return
	}
	writeJSON(w, http.StatusCreated, invoice)
}

// NextID previews the id the next invoice would get. Nothing is reserved.
func (h *InvoiceHandler) NextID(w http.ResponseWriter, r *http.Request) {
	id, err := h.service.PreviewNextInvoiceID(r.Context())
	if err != nil {
		writeError(w, err, "Failed to compute next invoice id")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"invoiceId": id})
}

// UpdatePaymentStatus sets the payment status from the request body.
func (h *InvoiceHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var payload PaymentStatusPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	invoice, err := h.service.SetPaymentStatus(r.Context(), chi.URLParam(r, "invoiceId"), payload.PaymentStatus)
	if err != nil {
		writeError(w, err, "Failed to update payment status")
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

// MarkPaid moves an invoice to Paid.
func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.service.MarkPaid(r.Context(), chi.URLParam(r, "invoiceId"))
	if err != nil {
		writeError(w, err, "Failed to mark invoice as paid")
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}
