package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/shopdesk-be/internal/models"
	"github.com/isdelr/shopdesk-be/internal/repository"
)

// CustomerServiceProvider defines the interface for customer services.
type CustomerServiceProvider interface {
	GetAllCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomerByID(ctx context.Context, id string) (models.Customer, error)
	CreateCustomer(ctx context.Context, customer models.Customer) (models.Customer, error)
	UpdateCustomer(ctx context.Context, id string, customer models.Customer) (models.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

// CustomerService provides business logic for the customer directory.
type CustomerService struct {
	repo repository.CustomerRepository
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(repo repository.CustomerRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

func normalizeCustomer(c models.Customer) (models.Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Name == "" {
		return c, invalid("name", "name is required")
	}
	if strings.TrimSpace(c.Email) != "" {
		email, err := NormalizeEmail(c.Email)
		if err != nil {
			return c, err
		}
		c.Email = email
	} else {
		c.Email = ""
	}
	return c, nil
}

// GetAllCustomers retrieves every customer.
func (s *CustomerService) GetAllCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// GetCustomerByID retrieves a single customer.
func (s *CustomerService) GetCustomerByID(ctx context.Context, id string) (models.Customer, error) {
	c, err := s.repo.FindCustomerByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Customer{}, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	return c, err
}

// CreateCustomer validates and stores a new customer.
func (s *CustomerService) CreateCustomer(ctx context.Context, customer models.Customer) (models.Customer, error) {
	c, err := normalizeCustomer(customer)
	if err != nil {
		return models.Customer{}, err
	}
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now().UTC()
	if err := s.repo.InsertCustomer(ctx, c); err != nil {
		return models.Customer{}, fmt.Errorf("failed to store customer: %w", err)
	}
	return c, nil
}

// UpdateCustomer replaces the editable fields of an existing customer.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id string, customer models.Customer) (models.Customer, error) {
	existing, err := s.GetCustomerByID(ctx, id)
	if err != nil {
		return models.Customer{}, err
	}
	c, err := normalizeCustomer(customer)
	if err != nil {
		return models.Customer{}, err
	}
	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt
	if err := s.repo.UpdateCustomer(ctx, c); err != nil {
		return models.Customer{}, fmt.Errorf("failed to update customer: %w", err)
	}
	return c, nil
}

// DeleteCustomer removes a customer. Invoices keep the name they were
// issued with.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	err := s.repo.DeleteCustomer(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	return err
}
