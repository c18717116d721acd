// Package repository defines the persistence operations the services need
// and provides in-memory, MongoDB and SQLite implementations of them.
package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/isdelr/shopdesk-be/internal/models"
)

var (
	// ErrNotFound is returned when no document matches the lookup.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a write would violate a unique key
	// (account email, invoice identifier).
	ErrDuplicate = errors.New("duplicate key")
)

// AccountRepository persists accounts.
type AccountRepository interface {
	// InsertAccountIfAbsent stores a new account unless one with the same
	// email exists, in which case it returns ErrDuplicate.
	InsertAccountIfAbsent(ctx context.Context, account models.Account) error
	FindAccountByEmail(ctx context.Context, email string) (models.Account, error)
	FindAccountByID(ctx context.Context, id string) (models.Account, error)
}

// InvoiceRepository persists invoices.
type InvoiceRepository interface {
	// FindMaxInvoiceID returns the greatest identifier of the form
	// prefix + width decimal digits, or "" when there is none.
	FindMaxInvoiceID(ctx context.Context, prefix string, width int) (string, error)
	// InsertInvoice stores a new invoice and returns ErrDuplicate when its
	// InvoiceID is already taken.
	InsertInvoice(ctx context.Context, invoice models.Invoice) error
	ListInvoices(ctx context.Context) ([]models.Invoice, error)
	FindInvoiceByInvoiceID(ctx context.Context, invoiceID string) (models.Invoice, error)
	// UpdateInvoice replaces the stored invoice with the same InvoiceID.
	UpdateInvoice(ctx context.Context, invoice models.Invoice) error
}

// CustomerRepository persists customers.
type CustomerRepository interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	InsertCustomer(ctx context.Context, customer models.Customer) error
	FindCustomerByID(ctx context.Context, id string) (models.Customer, error)
	UpdateCustomer(ctx context.Context, customer models.Customer) error
	DeleteCustomer(ctx context.Context, id string) error
}

// InventoryRepository persists inventory items.
type InventoryRepository interface {
	ListInventoryItems(ctx context.Context) ([]models.InventoryItem, error)
	InsertInventoryItem(ctx context.Context, item models.InventoryItem) error
	FindInventoryItemByID(ctx context.Context, id string) (models.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, item models.InventoryItem) error
	DeleteInventoryItem(ctx context.Context, id string) error
}

// ShopProfileRepository persists the singleton shop profile.
type ShopProfileRepository interface {
	FindShopProfile(ctx context.Context) (models.ShopProfile, error)
	SaveShopProfile(ctx context.Context, profile models.ShopProfile) error
}

// Store bundles every repository behind one backend.
type Store interface {
	AccountRepository
	InvoiceRepository
	CustomerRepository
	InventoryRepository
	ShopProfileRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// InvoiceIDPattern matches identifiers made of prefix followed by exactly
// width decimal digits.
func InvoiceIDPattern(prefix string, width int) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`^%s[0-9]{%d}$`, regexp.QuoteMeta(prefix), width))
}
