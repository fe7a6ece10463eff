package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/storefront/internal/lib/apperr"
	"github.com/magabrotheeeer/storefront/internal/models"
)

// PaymentRef данные подтверждённого платежа, которые становятся ключом идемпотентности.
type PaymentRef struct {
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
}

// GrantSubscriptionParams параметры выдачи подписки. Amount сумма,
// фактически списанная шлюзом. CouponCode, если задан, списывает
// погашение купона пользователем на этот платёж.
type GrantSubscriptionParams struct {
	UserUID    string
	PlanID     int64
	Amount     int64
	CouponCode string
	StartDate  time.Time
	EndDate    time.Time
	Payment    PaymentRef
}

// GrantProductParams параметры выдачи товара. Amount сумма,
// фактически списанная шлюзом.
type GrantProductParams struct {
	UserUID string
	Product models.ProductSnapshot
	Amount  int64
	Payment PaymentRef
}

// insertPayment добавляет запись в журнал платежей. Возвращает false,
// если платёж с тем же id заказа или id платежа уже записан.
func insertPayment(ctx context.Context, tx *sql.Tx, userUID string, planID, productID *int64, amount int64, ref PaymentRef) (bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `INSERT INTO payments
			(user_uid, plan_id, product_id, amount, gateway_order_id, gateway_payment_id, gateway_signature)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING
		RETURNING id`,
		userUID, planID, productID, amount, ref.GatewayOrderID, ref.GatewayPaymentID, ref.GatewaySignature).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GrantSubscription в одной транзакции записывает платёж, закрывает заказ
// шлюза, перезаписывает снимок подписки пользователя и добавляет запись
// о подписке. Если платёж уже был записан, ничего не меняет и возвращает
// ранее выданную подписку с created = false.
func (s *Storage) GrantSubscription(ctx context.Context, p GrantSubscriptionParams) (*models.Subscription, bool, error) {
	const op = "storage.GrantSubscription"
	if err := ctxDone(ctx, op); err != nil {
		return nil, false, err
	}

	var (
		sub     *models.Subscription
		created bool
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		inserted, err := insertPayment(ctx, tx, p.UserUID, &p.PlanID, nil, p.Amount, p.Payment)
		if err != nil {
			return err
		}
		if !inserted {
			sub, err = findSubscriptionByPayment(ctx, tx, p.Payment)
			return err
		}

		if err := completeCheckoutOrder(ctx, tx, p.Payment.GatewayOrderID, p.UserUID); err != nil {
			return err
		}

		if p.CouponCode != "" {
			if err := spendCouponRedemption(ctx, tx, p.CouponCode, p.UserUID, p.Payment.GatewayOrderID); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx, `UPDATE users
			SET subscription_plan_id = $2,
			    subscription_start = $3,
			    subscription_end = $4,
			    subscription_active = TRUE,
			    subscription_payment_id = $5
			WHERE uid = $1`,
			p.UserUID, p.PlanID, p.StartDate, p.EndDate, p.Payment.GatewayPaymentID)
		if err != nil {
			return err
		}
		if affected, err := res.RowsAffected(); err != nil {
			return err
		} else if affected == 0 {
			return fmt.Errorf("user %s: %w", p.UserUID, apperr.ErrNotFound)
		}

		sub = &models.Subscription{
			UserUID:          p.UserUID,
			PlanID:           p.PlanID,
			StartDate:        p.StartDate,
			EndDate:          p.EndDate,
			IsActive:         true,
			GatewayOrderID:   p.Payment.GatewayOrderID,
			GatewayPaymentID: p.Payment.GatewayPaymentID,
		}
		err = tx.QueryRowContext(ctx, `INSERT INTO subscriptions
				(user_uid, plan_id, start_date, end_date, is_active, gateway_order_id, gateway_payment_id)
			VALUES ($1, $2, $3, $4, TRUE, $5, $6)
			RETURNING id`,
			p.UserUID, p.PlanID, p.StartDate, p.EndDate, p.Payment.GatewayOrderID, p.Payment.GatewayPaymentID).
			Scan(&sub.ID)
		if err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return sub, created, nil
}

func findSubscriptionByPayment(ctx context.Context, tx *sql.Tx, ref PaymentRef) (*models.Subscription, error) {
	var sub models.Subscription
	err := tx.QueryRowContext(ctx, `SELECT id, user_uid, plan_id, start_date, end_date, is_active,
			gateway_order_id, gateway_payment_id
		FROM subscriptions
		WHERE gateway_order_id = $1 OR gateway_payment_id = $2
		ORDER BY id LIMIT 1`, ref.GatewayOrderID, ref.GatewayPaymentID).
		Scan(&sub.ID, &sub.UserUID, &sub.PlanID, &sub.StartDate, &sub.EndDate, &sub.IsActive,
			&sub.GatewayOrderID, &sub.GatewayPaymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment %s already used for another purchase: %w", ref.GatewayPaymentID, apperr.ErrConflict)
		}
		return nil, err
	}
	return &sub, nil
}

// GrantProduct в одной транзакции записывает заказ со снимком товара, платёж,
// закрывает заказ шлюза и добавляет товар в библиотеку пользователя.
// Повторный платёж возвращает ранее созданный заказ с created = false.
func (s *Storage) GrantProduct(ctx context.Context, p GrantProductParams) (*models.Order, bool, error) {
	const op = "storage.GrantProduct"
	if err := ctxDone(ctx, op); err != nil {
		return nil, false, err
	}

	var (
		order   *models.Order
		created bool
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		productID := p.Product.ProductID
		inserted, err := insertPayment(ctx, tx, p.UserUID, nil, &productID, p.Amount, p.Payment)
		if err != nil {
			return err
		}
		if !inserted {
			order, err = findOrderByPayment(ctx, tx, p.Payment)
			return err
		}

		order = &models.Order{
			UserUID:          p.UserUID,
			ProductID:        p.Product.ProductID,
			Amount:           p.Amount,
			GatewayOrderID:   p.Payment.GatewayOrderID,
			GatewayPaymentID: p.Payment.GatewayPaymentID,
			Status:           models.OrderStatusCompleted,
			ProductDetails:   p.Product,
		}
		err = tx.QueryRowContext(ctx, `INSERT INTO orders
				(user_uid, product_id, amount, gateway_order_id, gateway_payment_id, status,
				 product_title, product_price, product_file_ref, product_image_ref)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, created_at`,
			p.UserUID, p.Product.ProductID, p.Amount, p.Payment.GatewayOrderID, p.Payment.GatewayPaymentID,
			models.OrderStatusCompleted, p.Product.Title, p.Product.Price, p.Product.FileRef, p.Product.ImageRef).
			Scan(&order.ID, &order.CreatedAt)
		if err != nil {
			return err
		}

		if err := completeCheckoutOrder(ctx, tx, p.Payment.GatewayOrderID, p.UserUID); err != nil {
			return err
		}

		if _, err := insertLibraryItem(ctx, tx, p.UserUID, p.Product); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return order, created, nil
}

// spendCouponRedemption привязывает погашение купона пользователем к заказу шлюза.
// Одно погашение оплачивает только один заказ.
func spendCouponRedemption(ctx context.Context, tx *sql.Tx, code, userUID, gatewayOrderID string) error {
	res, err := tx.ExecContext(ctx, `UPDATE coupon_redemptions r
		SET gateway_order_id = $3
		FROM coupons c
		WHERE r.coupon_id = c.id AND c.code = $1 AND r.user_uid = $2 AND r.gateway_order_id IS NULL`,
		code, userUID, gatewayOrderID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("coupon %q is not redeemed by user or already spent: %w", code, apperr.ErrPaymentRequired)
	}
	return nil
}

func findOrderByPayment(ctx context.Context, tx *sql.Tx, ref PaymentRef) (*models.Order, error) {
	var o models.Order
	err := tx.QueryRowContext(ctx, `SELECT id, user_uid, product_id, amount, gateway_order_id, gateway_payment_id,
			status, product_title, product_price, product_file_ref, product_image_ref, created_at
		FROM orders
		WHERE gateway_order_id = $1 OR gateway_payment_id = $2
		ORDER BY id LIMIT 1`, ref.GatewayOrderID, ref.GatewayPaymentID).
		Scan(&o.ID, &o.UserUID, &o.ProductID, &o.Amount, &o.GatewayOrderID, &o.GatewayPaymentID,
			&o.Status, &o.ProductDetails.Title, &o.ProductDetails.Price, &o.ProductDetails.FileRef,
			&o.ProductDetails.ImageRef, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment %s already used for another purchase: %w", ref.GatewayPaymentID, apperr.ErrConflict)
		}
		return nil, err
	}
	o.ProductDetails.ProductID = o.ProductID
	return &o, nil
}

func insertLibraryItem(ctx context.Context, tx *sql.Tx, userUID string, p models.ProductSnapshot) (bool, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO user_products (user_uid, product_id, title, price, file_ref, image_ref)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_uid, product_id) DO NOTHING`,
		userUID, p.ProductID, p.Title, p.Price, p.FileRef, p.ImageRef)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// AddToLibrary добавляет снимок товара в библиотеку пользователя.
// Возвращает false, если товар уже там был.
func (s *Storage) AddToLibrary(ctx context.Context, userUID string, p models.ProductSnapshot) (bool, error) {
	const op = "storage.AddToLibrary"
	if err := ctxDone(ctx, op); err != nil {
		return false, err
	}

	var added bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		added, err = insertLibraryItem(ctx, tx, userUID, p)
		return err
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("%s: user %s: %w", op, userUID, apperr.ErrNotFound)
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return added, nil
}

// ListLibrary возвращает купленные и добавленные пользователем товары.
func (s *Storage) ListLibrary(ctx context.Context, userUID string) ([]*models.ProductSnapshot, error) {
	const op = "storage.ListLibrary"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT product_id, title, price, file_ref, image_ref
		FROM user_products WHERE user_uid = $1 ORDER BY acquired_at, product_id`, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ProductSnapshot
	for rows.Next() {
		var p models.ProductSnapshot
		if err := rows.Scan(&p.ProductID, &p.Title, &p.Price, &p.FileRef, &p.ImageRef); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// OwnsProduct сообщает, есть ли товар в библиотеке пользователя.
func (s *Storage) OwnsProduct(ctx context.Context, userUID string, productID int64) (bool, error) {
	const op = "storage.OwnsProduct"
	if err := ctxDone(ctx, op); err != nil {
		return false, err
	}

	var owns bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
		SELECT 1 FROM user_products WHERE user_uid = $1 AND product_id = $2
	)`, userUID, productID).Scan(&owns)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return owns, nil
}
