package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/isdelr/shopdesk-be/internal/models"
)

// MemoryStore keeps every collection in process memory. It enforces the
// same unique keys as the persistent backends and is used by tests and by
// STORE_DRIVER=memory.
type MemoryStore struct {
	mu        sync.RWMutex
	accounts  []models.Account
	invoices  []models.Invoice
	customers []models.Customer
	items     []models.InventoryItem
	profile   *models.ShopProfile
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Ping(ctx context.Context) error  { return nil }
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

func (s *MemoryStore) InsertAccountIfAbsent(ctx context.Context, account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == account.Email || a.ID == account.ID {
			return ErrDuplicate
		}
	}
	s.accounts = append(s.accounts, account)
	return nil
}

func (s *MemoryStore) FindAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return models.Account{}, ErrNotFound
}

func (s *MemoryStore) FindAccountByID(ctx context.Context, id string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Account{}, ErrNotFound
}

// CountAccounts returns the number of stored accounts.
func (s *MemoryStore) CountAccounts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

func (s *MemoryStore) FindMaxInvoiceID(ctx context.Context, prefix string, width int) (string, error) {
	pattern := InvoiceIDPattern(prefix, width)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var highest string
	for _, inv := range s.invoices {
		if pattern.MatchString(inv.InvoiceID) && inv.InvoiceID > highest {
			highest = inv.InvoiceID
		}
	}
	return highest, nil
}

func (s *MemoryStore) InsertInvoice(ctx context.Context, invoice models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invoices {
		if inv.InvoiceID == invoice.InvoiceID || inv.ID == invoice.ID {
			return ErrDuplicate
		}
	}
	s.invoices = append(s.invoices, cloneInvoice(invoice))
	return nil
}

func (s *MemoryStore) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, cloneInvoice(inv))
	}
	return out, nil
}

func (s *MemoryStore) FindInvoiceByInvoiceID(ctx context.Context, invoiceID string) (models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.invoices {
		if inv.InvoiceID == invoiceID {
			return cloneInvoice(inv), nil
		}
	}
	return models.Invoice{}, ErrNotFound
}

func (s *MemoryStore) UpdateInvoice(ctx context.Context, invoice models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, inv := range s.invoices {
		if inv.InvoiceID == invoice.InvoiceID {
			invoice.ID = inv.ID
			s.invoices[i] = cloneInvoice(invoice)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.customers), nil
}

func (s *MemoryStore) InsertCustomer(ctx context.Context, customer models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.ContainsFunc(s.customers, func(c models.Customer) bool { return c.ID == customer.ID }) {
		return ErrDuplicate
	}
	s.customers = append(s.customers, customer)
	return nil
}

func (s *MemoryStore) FindCustomerByID(ctx context.Context, id string) (models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Customer{}, ErrNotFound
}

func (s *MemoryStore) UpdateCustomer(ctx context.Context, customer models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.customers {
		if c.ID == customer.ID {
			s.customers[i] = customer
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteCustomer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.customers {
		if c.ID == id {
			s.customers = slices.Delete(s.customers, i, i+1)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ListInventoryItems(ctx context.Context) ([]models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items), nil
}

func (s *MemoryStore) InsertInventoryItem(ctx context.Context, item models.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.ContainsFunc(s.items, func(it models.InventoryItem) bool { return it.ID == item.ID }) {
		return ErrDuplicate
	}
	s.items = append(s.items, item)
	return nil
}

func (s *MemoryStore) FindInventoryItemByID(ctx context.Context, id string) (models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, nil
		}
	}
	return models.InventoryItem{}, ErrNotFound
}

func (s *MemoryStore) UpdateInventoryItem(ctx context.Context, item models.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.items {
		if it.ID == item.ID {
			s.items[i] = item
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteInventoryItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.items {
		if it.ID == id {
			s.items = slices.Delete(s.items, i, i+1)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) FindShopProfile(ctx context.Context) (models.ShopProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return models.ShopProfile{}, ErrNotFound
	}
	return *s.profile, nil
}

func (s *MemoryStore) SaveShopProfile(ctx context.Context, profile models.ShopProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile.ID = models.ShopProfileID
	s.profile = &profile
	return nil
}

func cloneInvoice(inv models.Invoice) models.Invoice {
	inv.Items = slices.Clone(inv.Items)
	return inv
}
