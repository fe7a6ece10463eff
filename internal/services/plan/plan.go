// Package plan содержит бизнес-логику тарифных планов с кешированием в Redis.
package plan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/storefront/internal/cache"
	"github.com/magabrotheeeer/storefront/internal/lib/apperr"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
)

// Repository определяет методы хранилища планов.
type Repository interface {
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	GetPlan(ctx context.Context, id int64) (*models.Plan, error)
	CreatePlan(ctx context.Context, plan models.Plan) (int64, error)
	// UpdatePlan и DeletePlan возвращают apperr.ErrInUse, пока на план ссылается действующая подписка.
	UpdatePlan(ctx context.Context, plan models.Plan) error
	DeletePlan(ctx context.Context, id int64) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш; нулевой expiration означает TTL по умолчанию.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(ctx context.Context, key string) error
}

// Service реализует чтение и администрирование планов.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// List возвращает все планы.
func (s *Service) List(ctx context.Context) ([]*models.Plan, error) {
	const op = "services.plan.List"
	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// Get возвращает план по id, сначала из кеша. Ошибки кеша не мешают чтению из хранилища.
func (s *Service) Get(ctx context.Context, id int64) (*models.Plan, error) {
	const op = "services.plan.Get"
	key := cache.PlanKey(id)

	var cached models.Plan
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read plan from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	p, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(ctx, key, p, 0); err != nil {
		s.log.Warn("failed to cache plan", slog.String("key", key), sl.Err(err))
	}
	return p, nil
}

// Create сохраняет новый план.
func (s *Service) Create(ctx context.Context, req models.PlanRequest) (*models.Plan, error) {
	const op = "services.plan.Create"
	p := req.ToPlan()
	if err := validatePlan(p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.repo.CreatePlan(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.ID = id
	s.log.Info("plan created", slog.Int64("plan_id", id))
	return &p, nil
}

// Update заменяет поля плана и сбрасывает его кеш.
func (s *Service) Update(ctx context.Context, id int64, req models.PlanRequest) (*models.Plan, error) {
	const op = "services.plan.Update"
	p := req.ToPlan()
	p.ID = id
	if err := validatePlan(p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdatePlan(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, id)
	s.log.Info("plan updated", slog.Int64("plan_id", id))
	return &p, nil
}

// Delete удаляет план и сбрасывает его кеш.
func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "services.plan.Delete"
	if err := s.repo.DeletePlan(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, id)
	s.log.Info("plan deleted", slog.Int64("plan_id", id))
	return nil
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	key := cache.PlanKey(id)
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("failed to invalidate plan cache", slog.String("key", key), sl.Err(err))
	}
}

func validatePlan(p models.Plan) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("plan name is required: %w", apperr.ErrValidation)
	case p.Price < 0:
		return fmt.Errorf("plan price must not be negative: %w", apperr.ErrValidation)
	case p.DurationInDays <= 0:
		return fmt.Errorf("plan duration must be positive: %w", apperr.ErrValidation)
	}
	return nil
}
