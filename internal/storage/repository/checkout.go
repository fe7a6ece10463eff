package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/storefront/internal/lib/apperr"
	"github.com/magabrotheeeer/storefront/internal/models"
)

// CreateCheckoutOrder запоминает заказ шлюза и его владельца.
func (s *Storage) CreateCheckoutOrder(ctx context.Context, o models.CheckoutOrder) error {
	const op = "storage.CreateCheckoutOrder"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	_, err := s.DB.ExecContext(ctx, `INSERT INTO checkout_orders
			(gateway_order_id, user_uid, amount, currency, receipt, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		o.GatewayOrderID, o.UserUID, o.Amount, o.Currency, o.Receipt, models.OrderStatusPending)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: order %s: %w", op, o.GatewayOrderID, apperr.ErrConflict)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetCheckoutOrder возвращает заказ шлюза по его id.
func (s *Storage) GetCheckoutOrder(ctx context.Context, gatewayOrderID string) (*models.CheckoutOrder, error) {
	const op = "storage.GetCheckoutOrder"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	var o models.CheckoutOrder
	err := s.DB.QueryRowContext(ctx, `SELECT gateway_order_id, user_uid, amount, currency, receipt, status, created_at
		FROM checkout_orders WHERE gateway_order_id = $1`, gatewayOrderID).
		Scan(&o.GatewayOrderID, &o.UserUID, &o.Amount, &o.Currency, &o.Receipt, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: order %s: %w", op, gatewayOrderID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &o, nil
}

// completeCheckoutOrder переводит заказ pending -> completed. Обратного перехода нет.
func completeCheckoutOrder(ctx context.Context, tx *sql.Tx, gatewayOrderID, userUID string) error {
	res, err := tx.ExecContext(ctx, `UPDATE checkout_orders SET status = $3
		WHERE gateway_order_id = $1 AND user_uid = $2 AND status = $4`,
		gatewayOrderID, userUID, models.OrderStatusCompleted, models.OrderStatusPending)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("checkout order %s is not pending: %w", gatewayOrderID, apperr.ErrConflict)
	}
	return nil
}
