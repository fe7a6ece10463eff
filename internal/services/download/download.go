// Package download решает, может ли пользователь скачать товар, и ведёт
// учёт бесплатных скачиваний.
package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/storefront/internal/lib/apperr"
	"github.com/magabrotheeeer/storefront/internal/lib/metrics"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
)

// Причины решения о доступе.
const (
	ReasonOwned        = "owned"
	ReasonSubscription = "subscription"
	ReasonFreeQuota    = "free quota"
	ReasonLimitReached = "limit reached"
)

// Repository определяет методы хранилища для проверки доступа.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	OwnsProduct(ctx context.Context, userUID string, productID int64) (bool, error)
	// RecordDownload при consumeQuota атомарно расходует бесплатное скачивание или возвращает apperr.ErrLimitExceeded.
	RecordDownload(ctx context.Context, userUID string, productID int64, consumeQuota bool, limit int) (int, error)
}

// PlanGetter источник тарифных планов.
type PlanGetter interface {
	Get(ctx context.Context, id int64) (*models.Plan, error)
}

// ProductGetter источник товаров каталога.
type ProductGetter interface {
	Get(ctx context.Context, id int64) (*models.Product, error)
}

// Decision итог проверки доступа. Отказ не является ошибкой.
type Decision struct {
	Allowed           bool   `json:"allowed"`
	Reason            string `json:"reason"`
	FreeDownloadsUsed int    `json:"free_downloads_used"`
	FileRef           string `json:"file_ref,omitempty"`
}

// Service применяет политику доступа к скачиваниям.
type Service struct {
	repo     Repository
	plans    PlanGetter
	products ProductGetter
	limit    int
	log      *slog.Logger
}

// New создает новый экземпляр Service. limit число бесплатных скачиваний на пользователя.
func New(repo Repository, plans PlanGetter, products ProductGetter, limit int, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		plans:    plans,
		products: products,
		limit:    limit,
		log:      log,
	}
}

// CanDownload проверяет доступ по порядку: купленный товар, действующий
// платный план, бесплатная квота. Разрешённое скачивание записывается в журнал.
func (s *Service) CanDownload(ctx context.Context, principal models.Principal, productID int64) (*Decision, error) {
	const op = "services.download.CanDownload"
	log := s.log.With(
		slog.String("op", op),
		slog.String("user_uid", principal.UserUID),
		slog.Int64("product_id", productID),
	)

	d, err := s.decide(ctx, principal, productID)
	if err != nil {
		metrics.DownloadDecisions.WithLabelValues(metrics.ResultError).Inc()
		log.Warn("download check failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := metrics.ResultAllowed
	if !d.Allowed {
		result = metrics.ResultDenied
	}
	metrics.DownloadDecisions.WithLabelValues(result).Inc()
	log.Info("download decision",
		slog.Bool("allowed", d.Allowed),
		slog.String("reason", d.Reason),
		slog.Int("free_downloads_used", d.FreeDownloadsUsed))
	return d, nil
}

func (s *Service) decide(ctx context.Context, principal models.Principal, productID int64) (*Decision, error) {
	if principal.UserUID == "" {
		return nil, apperr.ErrUnauthorized
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.GetUser(ctx, principal.UserUID)
	if err != nil {
		return nil, err
	}

	owns, err := s.repo.OwnsProduct(ctx, u.UUID, product.ID)
	if err != nil {
		return nil, err
	}
	if owns {
		used, err := s.repo.RecordDownload(ctx, u.UUID, product.ID, false, s.limit)
		if err != nil {
			return nil, err
		}
		return allowed(ReasonOwned, used, product), nil
	}

	paid, err := s.hasPaidPlan(ctx, u, time.Now())
	if err != nil {
		return nil, err
	}
	if paid {
		used, err := s.repo.RecordDownload(ctx, u.UUID, product.ID, false, s.limit)
		if err != nil {
			return nil, err
		}
		return allowed(ReasonSubscription, used, product), nil
	}

	used, err := s.repo.RecordDownload(ctx, u.UUID, product.ID, true, s.limit)
	if err != nil {
		if errors.Is(err, apperr.ErrLimitExceeded) {
			return &Decision{Allowed: false, Reason: ReasonLimitReached, FreeDownloadsUsed: u.FreeDownloadsUsed}, nil
		}
		return nil, err
	}
	return allowed(ReasonFreeQuota, used, product), nil
}

// hasPaidPlan сверяет снимок подписки с текущим временем и ценой плана.
// Удалённый план считается отсутствующим.
func (s *Service) hasPaidPlan(ctx context.Context, u *models.User, now time.Time) (bool, error) {
	if !u.Subscription.ActiveAt(now) {
		return false, nil
	}
	p, err := s.plans.Get(ctx, *u.Subscription.PlanID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return p.IsPaid(), nil
}

func allowed(reason string, used int, product *models.Product) *Decision {
	return &Decision{
		Allowed:           true,
		Reason:            reason,
		FreeDownloadsUsed: used,
		FileRef:           product.FileRef,
	}
}
