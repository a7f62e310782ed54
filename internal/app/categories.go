/**
 * @description
 * Category listing served through the read cache. The per-user category set is
 * seeded on first read; seeding is a write, so the cached key is invalidated
 * synchronously before the fresh rows are cached.
 */

package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/monetra/sync-service/internal/cache"
	"github.com/monetra/sync-service/internal/domain"
)

// ListCategories returns the user's categories, seeding the default set the
// first time. Reads go through the cache; a hit skips the store entirely.
func (s *Service) ListCategories(ctx context.Context, userID uuid.UUID) ([]domain.Category, error) {
	key := cache.Key("categories", userID.String())
	if cached, ok := s.readCache.Get(key); ok {
		if categories, ok := cached.([]domain.Category); ok {
			return categories, nil
		}
	}

	categories, err := s.repo.ListCategoriesByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	if len(categories) == 0 {
		if err := s.repo.SeedDefaultCategories(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to seed default categories: %w", err)
		}
		s.readCache.Invalidate(key)
		categories, err = s.repo.ListCategoriesByUserID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list categories after seeding: %w", err)
		}
	}

	s.readCache.SetDefault(key, categories)
	return categories, nil
}
