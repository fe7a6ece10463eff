// Package catalog даёт доступ на чтение к товарам каталога с кешированием.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/storefront/internal/cache"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/services/plan"
)

// Repository источник товаров каталога.
type Repository interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

// Service читает товары каталога через кеш.
type Service struct {
	repo  Repository
	cache plan.Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache plan.Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// Get возвращает товар по id или apperr.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*models.Product, error) {
	const op = "services.catalog.Get"
	key := cache.ProductKey(id)

	var cached models.Product
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read product from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(ctx, key, p, 0); err != nil {
		s.log.Warn("failed to cache product", slog.String("key", key), sl.Err(err))
	}
	return p, nil
}
