package services_test

import (
	"context"
	"testing"

	"github.com/isdelr/shopdesk-be/internal/models"
	"github.com/isdelr/shopdesk-be/internal/repository"
	"github.com/isdelr/shopdesk-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerService(t *testing.T) {
	ctx := context.Background()
	svc := services.NewCustomerService(repository.NewMemoryStore())

	_, err := svc.CreateCustomer(ctx, models.Customer{Name: "  "})
	require.ErrorIs(t, err, services.ErrValidation)
	_, err = svc.CreateCustomer(ctx, models.Customer{Name: "Acme", Email: "not-an-email"})
	require.ErrorIs(t, err, services.ErrValidation)

	c, err := svc.CreateCustomer(ctx, models.Customer{Name: " Acme ", Email: "Billing@Acme.com", Phone: "555-0100"})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, "billing@acme.com", c.Email)

	_, err = svc.CreateCustomer(ctx, models.Customer{Name: "Walk-in"})
	require.NoError(t, err)

	all, err := svc.GetAllCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	updated, err := svc.UpdateCustomer(ctx, c.ID, models.Customer{Name: "Acme Ltd"})
	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.ID)
	assert.Equal(t, c.CreatedAt, updated.CreatedAt)
	assert.Empty(t, updated.Email)

	got, err := svc.GetCustomerByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", got.Name)

	require.NoError(t, svc.DeleteCustomer(ctx, c.ID))
	_, err = svc.GetCustomerByID(ctx, c.ID)
	require.ErrorIs(t, err, services.ErrNotFound)
	require.ErrorIs(t, svc.DeleteCustomer(ctx, c.ID), services.ErrNotFound)
	_, err = svc.UpdateCustomer(ctx, c.ID, models.Customer{Name: "x"})
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestInventoryService(t *testing.T) {
	ctx := context.Background()
	svc := services.NewInventoryService(repository.NewMemoryStore())

	_, err := svc.CreateItem(ctx, models.InventoryItem{Name: ""})
	require.ErrorIs(t, err, services.ErrValidation)
	_, err = svc.CreateItem(ctx, models.InventoryItem{Name: "Widget", Price: -0.01})
	require.ErrorIs(t, err, services.ErrValidation)

	item, err := svc.CreateItem(ctx, models.InventoryItem{Name: "Widget", Price: 2.5})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)

	free, err := svc.CreateItem(ctx, models.InventoryItem{Name: "Sticker"})
	require.NoError(t, err)
	assert.Zero(t, free.Price)

	updated, err := svc.UpdateItem(ctx, item.ID, models.InventoryItem{Name: "Widget XL", Price: 3})
	require.NoError(t, err)
	assert.Equal(t, item.CreatedAt, updated.CreatedAt)

	got, err := svc.GetItemByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget XL", got.Name)
	assert.InDelta(t, 3, got.Price, 1e-9)

	all, err := svc.GetAllItems(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, svc.DeleteItem(ctx, item.ID))
	_, err = svc.GetItemByID(ctx, item.ID)
	require.ErrorIs(t, err, services.ErrNotFound)
	require.ErrorIs(t, svc.DeleteItem(ctx, item.ID), services.ErrNotFound)
}

func TestShopProfileService(t *testing.T) {
	ctx := context.Background()
	svc := services.NewShopProfileService(repository.NewMemoryStore())

	empty, err := svc.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ShopProfile{}, empty)

	_, err = svc.SaveProfile(ctx, models.ShopProfile{ShopPhone: "555"})
	require.ErrorIs(t, err, services.ErrValidation)
	_, err = svc.SaveProfile(ctx, models.ShopProfile{ShopName: "Corner Shop"})
	require.ErrorIs(t, err, services.ErrValidation)

	created, err := svc.SaveProfile(ctx, models.ShopProfile{ShopName: " Corner Shop ", ShopPhone: "555-0100"})
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop", created.ShopName)
	assert.False(t, created.CreatedAt.IsZero())

	updated, err := svc.SaveProfile(ctx, models.ShopProfile{ShopName: "Corner Shop & Co", ShopPhone: "555-0199", LogoURL: "data:image/png;base64,AAAA"})
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	got, err := svc.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop & Co", got.ShopName)
	assert.Equal(t, "555-0199", got.ShopPhone)
	assert.Equal(t, "data:image/png;base64,AAAA", got.LogoURL)
}
