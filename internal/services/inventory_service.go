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

// InventoryServiceProvider defines the interface for inventory services.
type InventoryServiceProvider interface {
	GetAllItems(ctx context.Context) ([]models.InventoryItem, error)
	GetItemByID(ctx context.Context, id string) (models.InventoryItem, error)
	CreateItem(ctx context.Context, item models.InventoryItem) (models.InventoryItem, error)
	UpdateItem(ctx context.Context, id string, item models.InventoryItem) (models.InventoryItem, error)
	DeleteItem(ctx context.Context, id string) error
}

// InventoryService provides business logic for the product catalogue.
type InventoryService struct {
	repo repository.InventoryRepository
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(repo repository.InventoryRepository) *InventoryService {
	return &InventoryService{repo: repo}
}

func normalizeItem(item models.InventoryItem) (models.InventoryItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return item, invalid("name", "name is required")
	}
	if item.Price < 0 {
		return item, invalid("price", "price must not be negative")
	}
	return item, nil
}

// GetAllItems retrieves the whole catalogue.
func (s *InventoryService) GetAllItems(ctx context.Context) ([]models.InventoryItem, error) {
	return s.repo.ListInventoryItems(ctx)
}

// GetItemByID retrieves a single item.
func (s *InventoryService) GetItemByID(ctx context.Context, id string) (models.InventoryItem, error) {
	item, err := s.repo.FindInventoryItemByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.InventoryItem{}, fmt.Errorf("inventory item %s: %w", id, ErrNotFound)
	}
	return item, err
}

// CreateItem validates and stores a new item.
func (s *InventoryService) CreateItem(ctx context.Context, item models.InventoryItem) (models.InventoryItem, error) {
	item, err := normalizeItem(item)
	if err != nil {
		return models.InventoryItem{}, err
	}
	item.ID = uuid.New().String()
	item.CreatedAt = time.Now().UTC()
	if err := s.repo.InsertInventoryItem(ctx, item); err != nil {
		return models.InventoryItem{}, fmt.Errorf("failed to store inventory item: %w", err)
	}
	return item, nil
}

// UpdateItem replaces the name and price of an existing item. Invoices
// already issued keep their own copy of both.
func (s *InventoryService) UpdateItem(ctx context.Context, id string, item models.InventoryItem) (models.InventoryItem, error) {
	existing, err := s.GetItemByID(ctx, id)
	if err != nil {
		return models.InventoryItem{}, err
	}
	item, err = normalizeItem(item)
	if err != nil {
		return models.InventoryItem{}, err
	}
	item.ID = existing.ID
	item.CreatedAt = existing.CreatedAt
	if err := s.repo.UpdateInventoryItem(ctx, item); err != nil {
		return models.InventoryItem{}, fmt.Errorf("failed to update inventory item: %w", err)
	}
	return item, nil
}

// DeleteItem removes an item from the catalogue.
func (s *InventoryService) DeleteItem(ctx context.Context, id string) error {
	err := s.repo.DeleteInventoryItem(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("inventory item %s: %w", id, ErrNotFound)
	}
	return err
}
