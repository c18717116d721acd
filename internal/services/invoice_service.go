package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/shopdesk-be/internal/models"
	"github.com/isdelr/shopdesk-be/internal/repository"
	"github.com/rs/zerolog/log"
)

// InvoiceServiceProvider defines the interface for invoice services.
type InvoiceServiceProvider interface {
	GetAllInvoices(ctx context.Context) ([]models.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID string) (models.Invoice, error)
	CreateInvoice(ctx context.Context, input InvoiceInput) (models.Invoice, error)
	PreviewNextInvoiceID(ctx context.Context) (string, error)
	SetPaymentStatus(ctx context.Context, invoiceID string, status models.PaymentStatus) (models.Invoice, error)
	MarkPaid(ctx context.Context, invoiceID string) (models.Invoice, error)
}

// InvoiceInput is the caller-supplied part of a new invoice. Line totals
// and the grand total are always recomputed.
type InvoiceInput struct {
	InvoiceID     string               `json:"invoiceId"`
	CustomerID    string               `json:"customerId"`
	Customer      string               `json:"customer"`
	Date          string               `json:"date"`
	Items         []models.LineItem    `json:"items"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
}

// InvoiceService provides business logic for invoices.
type InvoiceService struct {
	repo      repository.InvoiceRepository
	customers repository.CustomerRepository
	allocator *InvoiceIDAllocator
	events    EventPublisher
}

// NewInvoiceService creates a new InvoiceService. events may be nil.
func NewInvoiceService(repo repository.InvoiceRepository, customers repository.CustomerRepository, allocator *InvoiceIDAllocator, events EventPublisher) *InvoiceService {
	if events == nil {
		events = noopPublisher{}
	}
	return &InvoiceService{repo: repo, customers: customers, allocator: allocator, events: events}
}

// GetAllInvoices retrieves every invoice ordered by identifier.
func (s *InvoiceService) GetAllInvoices(ctx context.Context) ([]models.Invoice, error) {
	return s.repo.ListInvoices(ctx)
}

// GetInvoice retrieves a single invoice by its human-readable identifier.
func (s *InvoiceService) GetInvoice(ctx context.Context, invoiceID string) (models.Invoice, error) {
	inv, err := s.repo.FindInvoiceByInvoiceID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Invoice{}, fmt.Errorf("invoice %s: %w", invoiceID, ErrNotFound)
		}
		return models.Invoice{}, err
	}
	return inv, nil
}

// PreviewNextInvoiceID returns the identifier the next created invoice
// would receive right now. Nothing is reserved, so a concurrent create may
// take it first.
func (s *InvoiceService) PreviewNextInvoiceID(ctx context.Context) (string, error) {
	return s.allocator.Next(ctx)
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func (s *InvoiceService) validate(ctx context.Context, input InvoiceInput) (models.Invoice, error) {
	inv := models.Invoice{
		InvoiceID:     strings.TrimSpace(input.InvoiceID),
		CustomerID:    strings.TrimSpace(input.CustomerID),
		Customer:      strings.TrimSpace(input.Customer),
		Date:          strings.TrimSpace(input.Date),
		PaymentStatus: input.PaymentStatus,
	}
	if inv.CustomerID != "" {
		customer, err := s.customers.FindCustomerByID(ctx, inv.CustomerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return models.Invoice{}, invalid("customerId", "customer %s does not exist", inv.CustomerID)
			}
			return models.Invoice{}, fmt.Errorf("failed to look up customer: %w", err)
		}
		inv.Customer = customer.Name
	}
	if inv.Customer == "" {
		return models.Invoice{}, invalid("customer", "customer is required")
	}
	if inv.Date == "" {
		return models.Invoice{}, invalid("date", "date is required")
	}
	if inv.PaymentStatus == "" {
		inv.PaymentStatus = models.PaymentPending
	}
	if !inv.PaymentStatus.Valid() {
		return models.Invoice{}, invalid("paymentStatus", "paymentStatus must be %q or %q", models.PaymentPending, models.PaymentPaid)
	}
	if inv.InvoiceID != "" && !s.allocator.Valid(inv.InvoiceID) {
		return models.Invoice{}, invalid("invoiceId", "invoiceId must look like %s", s.allocator.Format(1))
	}
	if len(input.Items) == 0 {
		return models.Invoice{}, invalid("items", "at least one line item is required")
	}
	for i, item := range input.Items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			return models.Invoice{}, invalid("items", "item %d: name is required", i+1)
		}
		if !finite(item.Quantity) || !finite(item.Price) {
			return models.Invoice{}, invalid("items", "item %d: quantity and price must be finite numbers", i+1)
		}
		if item.Quantity <= 0 {
			return models.Invoice{}, invalid("items", "item %d: quantity must be greater than zero", i+1)
		}
		if item.Price < 0 {
			return models.Invoice{}, invalid("items", "item %d: price must not be negative", i+1)
		}
		inv.Items = append(inv.Items, item)
	}
	inv.ComputeTotals()
	for i, item := range inv.Items {
		if !finite(item.Total) {
			return models.Invoice{}, invalid("items", "item %d: line total is out of range", i+1)
		}
	}
	if !finite(inv.GrandTotal) {
		return models.Invoice{}, invalid("items", "grand total is out of range")
	}
	return inv, nil
}

// CreateInvoice validates input and stores a new invoice. Without a
// caller-supplied identifier the next one in sequence is assigned.
func (s *InvoiceService) CreateInvoice(ctx context.Context, input InvoiceInput) (models.Invoice, error) {
	inv, err := s.validate(ctx, input)
	if err != nil {
		return models.Invoice{}, err
	}

	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	if inv.InvoiceID != "" {
		inv.ID = uuid.New().String()
		if err := s.repo.InsertInvoice(ctx, inv); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return models.Invoice{}, conflict("Invoice %s already exists", inv.InvoiceID)
			}
			return models.Invoice{}, fmt.Errorf("failed to store invoice: %w", err)
		}
	} else {
		_, err := s.allocator.Assign(ctx, func(ctx context.Context, id string) error {
			inv.ID = uuid.New().String()
			inv.InvoiceID = id
			return s.repo.InsertInvoice(ctx, inv)
		})
		if err != nil {
			return models.Invoice{}, err
		}
	}

	log.Info().Str("invoice_id", inv.InvoiceID).Float64("grand_total", inv.GrandTotal).Msg("Invoice created")
	s.events.Publish(EventInvoiceCreated, inv)
	return inv, nil
}

// SetPaymentStatus changes the payment status of an invoice. A paid
// invoice stays paid: Paid -> Pending is a conflict, Paid -> Paid is a
// no-op.
func (s *InvoiceService) SetPaymentStatus(ctx context.Context, invoiceID string, status models.PaymentStatus) (models.Invoice, error) {
	if !status.Valid() {
		return models.Invoice{}, invalid("paymentStatus", "paymentStatus must be %q or %q", models.PaymentPending, models.PaymentPaid)
	}

	inv, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return models.Invoice{}, err
	}
	if inv.PaymentStatus == status {
		return inv, nil
	}
	if inv.PaymentStatus == models.PaymentPaid {
		return models.Invoice{}, conflict("Invoice %s is already paid", invoiceID)
	}

	inv.PaymentStatus = status
	inv.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Invoice{}, fmt.Errorf("invoice %s: %w", invoiceID, ErrNotFound)
		}
		return models.Invoice{}, fmt.Errorf("failed to update invoice: %w", err)
	}

	s.events.Publish(EventInvoiceUpdated, inv)
	return inv, nil
}

// MarkPaid moves an invoice to Paid.
func (s *InvoiceService) MarkPaid(ctx context.Context, invoiceID string) (models.Invoice, error) {
	return s.SetPaymentStatus(ctx, invoiceID, models.PaymentPaid)
}
