package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/storefront/internal/lib/apperr"
	"github.com/magabrotheeeer/storefront/internal/models"
)

// CreateCoupon сохраняет купон. Повтор кода возвращает apperr.ErrConflict.
func (s *Storage) CreateCoupon(ctx context.Context, c models.Coupon) (int64, error) {
	const op = "storage.CreateCoupon"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	err := s.DB.QueryRowContext(ctx, `INSERT INTO coupons (code, discount_type, discount_value, expires_at, usage_limit)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		c.Code, c.DiscountType, c.DiscountValue, c.ExpiresAt, c.UsageLimit).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: coupon %q: %w", op, c.Code, apperr.ErrConflict)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListCoupons возвращает купоны вместе со списками погасивших пользователей.
func (s *Storage) ListCoupons(ctx context.Context) ([]*models.Coupon, error) {
	const op = "storage.ListCoupons"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT c.id, c.code, c.discount_type, c.discount_value,
			c.expires_at, c.usage_limit, r.user_uid
		FROM coupons c
		LEFT JOIN coupon_redemptions r ON r.coupon_id = c.id
		ORDER BY c.id, r.redeemed_at`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Coupon
	for rows.Next() {
		var (
			c       models.Coupon
			userUID sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue,
			&c.ExpiresAt, &c.UsageLimit, &userUID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if n := len(result); n == 0 || result[n-1].ID != c.ID {
			c.UsedBy = []string{}
			result = append(result, &c)
		}
		if userUID.Valid {
			last := result[len(result)-1]
			last.UsedBy = append(last.UsedBy, userUID.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetCouponByCode возвращает купон по коду вместе со списком погасивших пользователей.
func (s *Storage) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	const op = "storage.GetCouponByCode"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT c.id, c.code, c.discount_type, c.discount_value,
			c.expires_at, c.usage_limit, r.user_uid
		FROM coupons c
		LEFT JOIN coupon_redemptions r ON r.coupon_id = c.id
		WHERE c.code = $1
		ORDER BY r.redeemed_at`, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var c *models.Coupon
	for rows.Next() {
		var (
			row     models.Coupon
			userUID sql.NullString
		)
		if err := rows.Scan(&row.ID, &row.Code, &row.DiscountType, &row.DiscountValue,
			&row.ExpiresAt, &row.UsageLimit, &userUID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if c == nil {
			row.UsedBy = []string{}
			c = &row
		}
		if userUID.Valid {
			c.UsedBy = append(c.UsedBy, userUID.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%s: coupon %q: %w", op, code, apperr.ErrNotFound)
	}
	return c, nil
}

// DeleteCoupon удаляет купон вместе с журналом его погашений.
func (s *Storage) DeleteCoupon(ctx context.Context, id int64) error {
	const op = "storage.DeleteCoupon"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: coupon %d: %w", op, id, apperr.ErrNotFound)
	}
	return nil
}

// RedeemCoupon погашает купон для пользователя. Строка купона блокируется
// (SELECT ... FOR UPDATE) на время транзакции, check получает купон
// с актуальным UsedBy и может отклонить погашение. Уникальный ключ
// (coupon_id, user_uid) дополнительно запрещает повторное погашение.
func (s *Storage) RedeemCoupon(ctx context.Context, code, userUID string, check func(*models.Coupon) error) (*models.Coupon, error) {
	const op = "storage.RedeemCoupon"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	var c models.Coupon
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT id, code, discount_type, discount_value, expires_at, usage_limit
			FROM coupons WHERE code = $1 FOR UPDATE`, code).
			Scan(&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.ExpiresAt, &c.UsageLimit)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("coupon %q: %w", code, apperr.ErrNotFound)
			}
			return err
		}

		rows, err := tx.QueryContext(ctx, `SELECT user_uid FROM coupon_redemptions
			WHERE coupon_id = $1 ORDER BY redeemed_at`, c.ID)
		if err != nil {
			return err
		}
		c.UsedBy = []string{}
		for rows.Next() {
			var uid string
			if err := rows.Scan(&uid); err != nil {
				_ = rows.Close()
				return err
			}
			c.UsedBy = append(c.UsedBy, uid)
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}

		if err := check(&c); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO coupon_redemptions (coupon_id, user_uid)
			VALUES ($1, $2)`, c.ID, userUID); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("coupon %q: %w", code, apperr.ErrAlreadyUsed)
			}
			return err
		}
		c.UsedBy = append(c.UsedBy, userUID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}
