// Package coupon реализует журнал купонов: применение скидки с учётом
// срока действия, лимита и однократного погашения, а также администрирование.
package coupon

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

// Repository определяет методы хранилища купонов.
type Repository interface {
	CreateCoupon(ctx context.Context, c models.Coupon) (int64, error)
	ListCoupons(ctx context.Context) ([]*models.Coupon, error)
	DeleteCoupon(ctx context.Context, id int64) error
	// RedeemCoupon блокирует купон, вызывает check и при успехе добавляет погашение.
	RedeemCoupon(ctx context.Context, code, userUID string, check func(*models.Coupon) error) (*models.Coupon, error)
}

// Service применяет и администрирует купоны.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Apply погашает купон для пользователя и считает скидку от цены плана.
// Погашение происходит сразу и не откатывается, если оплата не состоится.
func (s *Service) Apply(ctx context.Context, principal models.Principal, code string, planPrice int64) (*models.Discount, error) {
	const op = "services.coupon.Apply"
	log := s.log.With(slog.String("op", op), slog.String("user_uid", principal.UserUID), slog.String("code", code))

	if principal.UserUID == "" {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrUnauthorized)
	}
	if code == "" || planPrice < 0 || planPrice > models.MaxAmount {
		return nil, fmt.Errorf("%s: code and plan price in [0, %d] required: %w", op, int64(models.MaxAmount), apperr.ErrValidation)
	}

	now := time.Now()
	c, err := s.repo.RedeemCoupon(ctx, code, principal.UserUID, func(c *models.Coupon) error {
		return checkRedeemable(c, principal.UserUID, now)
	})
	if err != nil {
		metrics.CouponApplications.WithLabelValues(resultFor(err)).Inc()
		log.Info("coupon rejected", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	discount := Compute(c.DiscountType, c.DiscountValue, planPrice)
	metrics.CouponApplications.WithLabelValues(metrics.ResultApplied).Inc()
	log.Info("coupon applied",
		slog.Int64("plan_price", planPrice),
		slog.Int64("discount", discount.Amount),
		slog.Int("used", len(c.UsedBy)),
		slog.Int("limit", c.UsageLimit))
	return &discount, nil
}

// checkRedeemable проверяет купон в порядке: срок, повторное погашение, лимит.
func checkRedeemable(c *models.Coupon, userUID string, now time.Time) error {
	if c.ExpiresAt.Before(now) {
		return fmt.Errorf("coupon %q expired at %s: %w", c.Code, c.ExpiresAt.Format(time.RFC3339), apperr.ErrExpired)
	}
	if c.UsedByUser(userUID) {
		return fmt.Errorf("coupon %q: %w", c.Code, apperr.ErrAlreadyUsed)
	}
	if len(c.UsedBy) >= c.UsageLimit {
		return fmt.Errorf("coupon %q usage limit %d reached: %w", c.Code, c.UsageLimit, apperr.ErrLimitExceeded)
	}
	return nil
}

// Compute считает скидку. Процентная скидка округляется вниз,
// итоговая сумма не бывает отрицательной. Скидка всегда в пределах [0, planPrice].
func Compute(discountType string, value, planPrice int64) models.Discount {
	var amount int64
	switch discountType {
	case models.DiscountPercentage:
		pct := min(max(value, 0), 100)
		// planPrice*pct/100 без переполнения int64
		amount = planPrice/100*pct + planPrice%100*pct/100
	default:
		amount = max(value, 0)
	}
	if amount > planPrice {
		amount = planPrice
	}
	return models.Discount{
		DiscountType:  discountType,
		DiscountValue: value,
		Amount:        amount,
		FinalAmount:   planPrice - amount,
	}
}

func resultFor(err error) string {
	switch {
	case errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrExpired),
		errors.Is(err, apperr.ErrAlreadyUsed),
		errors.Is(err, apperr.ErrLimitExceeded):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}

// Create сохраняет новый купон.
func (s *Service) Create(ctx context.Context, req models.CouponRequest) (*models.Coupon, error) {
	const op = "services.coupon.Create"
	if req.DiscountType != models.DiscountPercentage && req.DiscountType != models.DiscountFlat {
		return nil, fmt.Errorf("%s: unknown discount type %q: %w", op, req.DiscountType, apperr.ErrValidation)
	}
	if req.Code == "" || req.DiscountValue <= 0 || req.DiscountValue > models.MaxAmount || req.UsageLimit <= 0 {
		return nil, fmt.Errorf("%s: code, positive value and positive usage limit required: %w", op, apperr.ErrValidation)
	}

	c := models.Coupon{
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		ExpiresAt:     req.ExpiresAt,
		UsageLimit:    req.UsageLimit,
		UsedBy:        []string{},
	}
	id, err := s.repo.CreateCoupon(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.ID = id
	s.log.Info("coupon created", slog.Int64("coupon_id", id), slog.String("code", c.Code))
	return &c, nil
}

// List возвращает все купоны.
func (s *Service) List(ctx context.Context) ([]*models.Coupon, error) {
	const op = "services.coupon.List"
	coupons, err := s.repo.ListCoupons(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return coupons, nil
}

// Delete удаляет купон.
func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "services.coupon.Delete"
	if err := s.repo.DeleteCoupon(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("coupon deleted", slog.Int64("coupon_id", id))
	return nil
}
