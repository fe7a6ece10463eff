// Package entitlement выдаёт доступ к планам и товарам после проверки
// оплаты в платёжном шлюзе. Выдача идемпотентна по id заказа и id платежа.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/storefront/internal/lib/apperr"
	"github.com/magabrotheeeer/storefront/internal/lib/metrics"
	"github.com/magabrotheeeer/storefront/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/paymentgateway"
	"github.com/magabrotheeeer/storefront/internal/services/coupon"
	"github.com/magabrotheeeer/storefront/internal/storage/repository"
)

// publishTimeout ограничивает отправку события после фиксации выдачи.
const publishTimeout = 5 * time.Second

// State этап проверки платежа.
type State string

// Этапы проверки: Initiated -> Verifying -> Granted | Rejected.
const (
	StateInitiated State = "initiated"
	StateVerifying State = "verifying"
	StateGranted   State = "granted"
	StateRejected  State = "rejected"
)

// Repository определяет методы хранилища, которые нужны для выдачи доступа.
type Repository interface {
	CreateCheckoutOrder(ctx context.Context, o models.CheckoutOrder) error
	GetCheckoutOrder(ctx context.Context, gatewayOrderID string) (*models.CheckoutOrder, error)
	GrantSubscription(ctx context.Context, p repository.GrantSubscriptionParams) (*models.Subscription, bool, error)
	GrantProduct(ctx context.Context, p repository.GrantProductParams) (*models.Order, bool, error)
	AddToLibrary(ctx context.Context, userUID string, p models.ProductSnapshot) (bool, error)
	ListLibrary(ctx context.Context, userUID string) ([]*models.ProductSnapshot, error)
}

// Gateway платёжный шлюз.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*paymentgateway.OrderHandle, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// PlanGetter источник тарифных планов.
type PlanGetter interface {
	Get(ctx context.Context, id int64) (*models.Plan, error)
}

// ProductGetter источник товаров каталога.
type ProductGetter interface {
	Get(ctx context.Context, id int64) (*models.Product, error)
}

// CouponGetter источник купонов, погашенных пользователями.
type CouponGetter interface {
	GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// Publisher отправляет события внешним получателям.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// GrantedEvent событие о выданном доступе.
type GrantedEvent struct {
	Flow             string    `json:"flow"`
	UserUID          string    `json:"user_uid"`
	UserEmail        string    `json:"user_email"`
	PlanID           *int64    `json:"plan_id,omitempty"`
	ProductID        *int64    `json:"product_id,omitempty"`
	Amount           int64     `json:"amount"`
	GatewayOrderID   string    `json:"gateway_order_id"`
	GatewayPaymentID string    `json:"gateway_payment_id"`
	GrantedAt        time.Time `json:"granted_at"`
}

// SubscriptionGrant результат подтверждения оплаты плана.
type SubscriptionGrant struct {
	State          State                `json:"state"`
	Subscription   *models.Subscription `json:"subscription"`
	AlreadyGranted bool                 `json:"already_granted"`
}

// ProductGrant результат подтверждения оплаты товара.
type ProductGrant struct {
	State          State         `json:"state"`
	Order          *models.Order `json:"order"`
	AlreadyGranted bool          `json:"already_granted"`
}

// Service реализует выдачу доступа.
type Service struct {
	repo      Repository
	gateway   Gateway
	plans     PlanGetter
	products  ProductGetter
	coupons   CouponGetter
	publisher Publisher
	currency  string
	log       *slog.Logger
}

// New создает новый экземпляр Service. publisher может быть nil, тогда события не отправляются.
// coupons может быть nil, тогда оплата плана со скидкой не принимается.
func New(log *slog.Logger, repo Repository, gateway Gateway, plans PlanGetter, products ProductGetter,
	coupons CouponGetter, publisher Publisher, currency string) *Service {
	return &Service{
		repo:      repo,
		gateway:   gateway,
		plans:     plans,
		products:  products,
		coupons:   coupons,
		publisher: publisher,
		currency:  currency,
		log:       log,
	}
}

// CreateOrder создаёт заказ в шлюзе и запоминает его владельца.
func (s *Service) CreateOrder(ctx context.Context, principal models.Principal, amount int64) (*paymentgateway.OrderHandle, error) {
	const op = "services.entitlement.CreateOrder"
	if principal.UserUID == "" {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrUnauthorized)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%s: amount must be positive: %w", op, apperr.ErrValidation)
	}

	receipt := "rcpt_" + uuid.NewString()
	handle, err := s.gateway.CreateOrder(ctx, amount, s.currency, receipt)
	if err != nil {
		s.log.Error("failed to create gateway order", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = s.repo.CreateCheckoutOrder(ctx, models.CheckoutOrder{
		GatewayOrderID: handle.ID,
		UserUID:        principal.UserUID,
		Amount:         handle.Amount,
		Currency:       handle.Currency,
		Receipt:        receipt,
		Status:         models.OrderStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("checkout order created",
		slog.String("op", op),
		slog.String("user_uid", principal.UserUID),
		slog.String("gateway_order_id", handle.ID),
		slog.Int64("amount", handle.Amount))
	return handle, nil
}

// PurchaseSubscription проверяет оплату плана и выдаёт подписку.
// Повторный вызов с тем же платежом возвращает ранее выданную подписку.
func (s *Service) PurchaseSubscription(ctx context.Context, principal models.Principal, req models.VerifySubscriptionRequest) (*SubscriptionGrant, error) {
	const op = "services.entitlement.PurchaseSubscription"
	log := s.log.With(
		slog.String("op", op),
		slog.String("user_uid", principal.UserUID),
		slog.String("gateway_order_id", req.GatewayOrderID),
		slog.Int64("plan_id", req.PlanID),
	)

	grant, err := s.purchaseSubscription(ctx, log, principal, req)
	if err != nil {
		metrics.EntitlementVerifications.WithLabelValues(metrics.FlowSubscription, resultFor(err)).Inc()
		log.Warn("subscription verification finished", slog.String("state", string(StateRejected)), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if grant.AlreadyGranted {
		metrics.EntitlementVerifications.WithLabelValues(metrics.FlowSubscription, metrics.ResultDuplicate).Inc()
		log.Info("subscription already granted", slog.String("state", string(grant.State)),
			slog.Int64("subscription_id", grant.Subscription.ID))
		return grant, nil
	}

	metrics.EntitlementVerifications.WithLabelValues(metrics.FlowSubscription, metrics.ResultGranted).Inc()
	log.Info("subscription granted", slog.String("state", string(grant.State)),
		slog.Int64("subscription_id", grant.Subscription.ID),
		slog.Time("end_date", grant.Subscription.EndDate))
	return grant, nil
}

func (s *Service) purchaseSubscription(ctx context.Context, log *slog.Logger, principal models.Principal, req models.VerifySubscriptionRequest) (*SubscriptionGrant, error) {
	log.Debug("verification started", slog.String("state", string(StateInitiated)))
	if err := validateCallback(principal, req.PaymentCallback); err != nil {
		return nil, err
	}
	if req.PlanID <= 0 {
		return nil, fmt.Errorf("plan id must be positive: %w", apperr.ErrValidation)
	}

	log.Debug("verifying payment", slog.String("state", string(StateVerifying)))
	checkout, err := s.verify(ctx, principal, req.PaymentCallback)
	if err != nil {
		return nil, err
	}

	p, err := s.plans.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	due, err := s.subscriptionDue(ctx, principal, p, req.CouponCode)
	if err != nil {
		return nil, err
	}
	if checkout.Amount < due {
		return nil, fmt.Errorf("order %s paid %d, plan %d requires %d: %w",
			req.GatewayOrderID, checkout.Amount, p.ID, due, apperr.ErrPaymentRequired)
	}

	start := time.Now().UTC()
	sub, created, err := s.repo.GrantSubscription(ctx, repository.GrantSubscriptionParams{
		UserUID:    principal.UserUID,
		PlanID:     p.ID,
		Amount:     checkout.Amount,
		CouponCode: req.CouponCode,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, p.DurationInDays),
		Payment:    paymentRef(req.PaymentCallback),
	})
	if err != nil {
		return nil, err
	}
	if sub.UserUID != principal.UserUID {
		return nil, fmt.Errorf("payment %s belongs to another user: %w", req.GatewayPaymentID, apperr.ErrConflict)
	}

	if created {
		planID := p.ID
		s.publish(ctx, log, GrantedEvent{
			Flow:             metrics.FlowSubscription,
			UserUID:          principal.UserUID,
			UserEmail:        principal.Email,
			PlanID:           &planID,
			Amount:           checkout.Amount,
			GatewayOrderID:   req.GatewayOrderID,
			GatewayPaymentID: req.GatewayPaymentID,
			GrantedAt:        start,
		})
	}
	return &SubscriptionGrant{State: StateGranted, Subscription: sub, AlreadyGranted: !created}, nil
}

// PurchaseProduct проверяет оплату товара, создаёт заказ и добавляет товар в библиотеку.
// Повторный вызов с тем же платежом возвращает ранее созданный заказ.
func (s *Service) PurchaseProduct(ctx context.Context, principal models.Principal, req models.VerifyProductRequest) (*ProductGrant, error) {
	const op = "services.entitlement.PurchaseProduct"
	log := s.log.With(
		slog.String("op", op),
		slog.String("user_uid", principal.UserUID),
		slog.String("gateway_order_id", req.GatewayOrderID),
		slog.Int64("product_id", req.ProductID),
	)

	grant, err := s.purchaseProduct(ctx, log, principal, req)
	if err != nil {
		metrics.EntitlementVerifications.WithLabelValues(metrics.FlowProduct, resultFor(err)).Inc()
		log.Warn("product verification finished", slog.String("state", string(StateRejected)), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if grant.AlreadyGranted {
		metrics.EntitlementVerifications.WithLabelValues(metrics.FlowProduct, metrics.ResultDuplicate).Inc()
		log.Info("product already granted", slog.String("state", string(grant.State)),
			slog.Int64("order_id", grant.Order.ID))
		return grant, nil
	}

	metrics.EntitlementVerifications.WithLabelValues(metrics.FlowProduct, metrics.ResultGranted).Inc()
	log.Info("product granted", slog.String("state", string(grant.State)), slog.Int64("order_id", grant.Order.ID))
	return grant, nil
}

func (s *Service) purchaseProduct(ctx context.Context, log *slog.Logger, principal models.Principal, req models.VerifyProductRequest) (*ProductGrant, error) {
	log.Debug("verification started", slog.String("state", string(StateInitiated)))
	if err := validateCallback(principal, req.PaymentCallback); err != nil {
		return nil, err
	}
	if req.ProductID <= 0 {
		return nil, fmt.Errorf("product id must be positive: %w", apperr.ErrValidation)
	}

	log.Debug("verifying payment", slog.String("state", string(StateVerifying)))
	checkout, err := s.verify(ctx, principal, req.PaymentCallback)
	if err != nil {
		return nil, err
	}

	product, err := s.products.Get(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if checkout.Amount < product.Price {
		return nil, fmt.Errorf("order %s paid %d, product %d costs %d: %w",
			req.GatewayOrderID, checkout.Amount, product.ID, product.Price, apperr.ErrPaymentRequired)
	}

	order, created, err := s.repo.GrantProduct(ctx, repository.GrantProductParams{
		UserUID: principal.UserUID,
		Product: product.Snapshot(),
		Amount:  checkout.Amount,
		Payment: paymentRef(req.PaymentCallback),
	})
	if err != nil {
		return nil, err
	}
	if order.UserUID != principal.UserUID {
		return nil, fmt.Errorf("payment %s belongs to another user: %w", req.GatewayPaymentID, apperr.ErrConflict)
	}

	if created {
		productID := product.ID
		s.publish(ctx, log, GrantedEvent{
			Flow:             metrics.FlowProduct,
			UserUID:          principal.UserUID,
			UserEmail:        principal.Email,
			ProductID:        &productID,
			Amount:           checkout.Amount,
			GatewayOrderID:   req.GatewayOrderID,
			GatewayPaymentID: req.GatewayPaymentID,
			GrantedAt:        order.CreatedAt,
		})
	}
	return &ProductGrant{State: StateGranted, Order: order, AlreadyGranted: !created}, nil
}

// verify сверяет подпись и владельца заказа шлюза. Подпись проверяется до любого обращения к хранилищу.
func (s *Service) verify(ctx context.Context, principal models.Principal, cb models.PaymentCallback) (*models.CheckoutOrder, error) {
	if !s.gateway.VerifySignature(cb.GatewayOrderID, cb.GatewayPaymentID, cb.GatewaySignature) {
		return nil, fmt.Errorf("order %s: %w", cb.GatewayOrderID, apperr.ErrSignatureMismatch)
	}

	checkout, err := s.repo.GetCheckoutOrder(ctx, cb.GatewayOrderID)
	if err != nil {
		return nil, err
	}
	if checkout.UserUID != principal.UserUID {
		return nil, fmt.Errorf("order %s belongs to another user: %w", cb.GatewayOrderID, apperr.ErrUnauthorized)
	}
	return checkout, nil
}

// subscriptionDue возвращает сумму, которую должен покрыть платёж за план.
// Купон учитывается, только если пользователь его уже погасил.
func (s *Service) subscriptionDue(ctx context.Context, principal models.Principal, p *models.Plan, code string) (int64, error) {
	if code == "" {
		return p.Price, nil
	}
	if s.coupons == nil {
		return 0, fmt.Errorf("coupon %q: %w", code, apperr.ErrValidation)
	}
	c, err := s.coupons.GetCouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return 0, fmt.Errorf("coupon %q: %w", code, apperr.ErrValidation)
		}
		return 0, err
	}
	if !c.UsedByUser(principal.UserUID) {
		return 0, fmt.Errorf("coupon %q is not redeemed by user: %w", code, apperr.ErrValidation)
	}
	return coupon.Compute(c.DiscountType, c.DiscountValue, p.Price).FinalAmount, nil
}

// publish отправляет событие после фиксации выдачи. Отмена запроса
// клиентом не прерывает отправку.
func (s *Service) publish(ctx context.Context, log *slog.Logger, event GrantedEvent) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, rabbitmq.RoutingKeyEntitlementGranted, event); err != nil {
		log.Error("failed to publish entitlement event", sl.Err(err))
	}
}

// AddToLibrary добавляет бесплатный товар в библиотеку пользователя.
// Платный товар можно получить только через оплату.
func (s *Service) AddToLibrary(ctx context.Context, principal models.Principal, productID int64) (bool, error) {
	const op = "services.entitlement.AddToLibrary"
	if principal.UserUID == "" {
		return false, fmt.Errorf("%s: %w", op, apperr.ErrUnauthorized)
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if product.Price > 0 {
		return false, fmt.Errorf("%s: product %d costs %d: %w", op, productID, product.Price, apperr.ErrPaymentRequired)
	}

	added, err := s.repo.AddToLibrary(ctx, principal.UserUID, product.Snapshot())
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("free product added to library",
		slog.String("op", op),
		slog.String("user_uid", principal.UserUID),
		slog.Int64("product_id", productID),
		slog.Bool("added", added))
	return added, nil
}

// Library возвращает товары пользователя.
func (s *Service) Library(ctx context.Context, principal models.Principal) ([]*models.ProductSnapshot, error) {
	const op = "services.entitlement.Library"
	if principal.UserUID == "" {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrUnauthorized)
	}
	items, err := s.repo.ListLibrary(ctx, principal.UserUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

func validateCallback(principal models.Principal, cb models.PaymentCallback) error {
	if principal.UserUID == "" {
		return apperr.ErrUnauthorized
	}
	if cb.GatewayOrderID == "" || cb.GatewayPaymentID == "" || cb.GatewaySignature == "" {
		return fmt.Errorf("gateway order id, payment id and signature required: %w", apperr.ErrValidation)
	}
	return nil
}

func paymentRef(cb models.PaymentCallback) repository.PaymentRef {
	return repository.PaymentRef{
		GatewayOrderID:   cb.GatewayOrderID,
		GatewayPaymentID: cb.GatewayPaymentID,
		GatewaySignature: cb.GatewaySignature,
	}
}

func resultFor(err error) string {
	switch {
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrSignatureMismatch),
		errors.Is(err, apperr.ErrUnauthorized),
		errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrConflict),
		errors.Is(err, apperr.ErrPaymentRequired):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}
