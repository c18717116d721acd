package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/shopdesk-be/internal/models"
	"github.com/isdelr/shopdesk-be/internal/repository"
)

// ShopProfileServiceProvider defines the interface for the shop profile.
type ShopProfileServiceProvider interface {
	GetProfile(ctx context.Context) (models.ShopProfile, error)
	SaveProfile(ctx context.Context, profile models.ShopProfile) (models.ShopProfile, error)
}

// ShopProfileService manages the single shop profile document.
type ShopProfileService struct {
	repo repository.ShopProfileRepository
}

// NewShopProfileService creates a new ShopProfileService.
func NewShopProfileService(repo repository.ShopProfileRepository) *ShopProfileService {
	return &ShopProfileService{repo: repo}
}

// GetProfile returns the stored profile, or an empty one when the shop has
// not been set up yet.
func (s *ShopProfileService) GetProfile(ctx context.Context) (models.ShopProfile, error) {
	profile, err := s.repo.FindShopProfile(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return models.ShopProfile{}, nil
	}
	return profile, err
}

// SaveProfile creates the profile on first use and overwrites it after.
func (s *ShopProfileService) SaveProfile(ctx context.Context, profile models.ShopProfile) (models.ShopProfile, error) {
	profile.ShopName = strings.TrimSpace(profile.ShopName)
	profile.ShopPhone = strings.TrimSpace(profile.ShopPhone)
	profile.LogoURL = strings.TrimSpace(profile.LogoURL)
	if profile.ShopName == "" {
		return models.ShopProfile{}, invalid("shopName", "shopName is required")
	}
	if profile.ShopPhone == "" {
		return models.ShopProfile{}, invalid("shopPhone", "shopPhone is required")
	}

	now := time.Now().UTC()
	existing, err := s.repo.FindShopProfile(ctx)
	switch {
	case err == nil:
		profile.CreatedAt = existing.CreatedAt
	case errors.Is(err, repository.ErrNotFound):
		profile.CreatedAt = now
	default:
		return models.ShopProfile{}, err
	}
	profile.ID = models.ShopProfileID
	profile.UpdatedAt = now

	if err := s.repo.SaveShopProfile(ctx, profile); err != nil {
		return models.ShopProfile{}, fmt.Errorf("failed to save shop profile: %w", err)
	}
	return profile, nil
}
