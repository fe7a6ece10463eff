package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/storefront/internal/lib/apperr"
)

// RecordDownload записывает скачивание. При consumeQuota счётчик бесплатных
// скачиваний увеличивается условным UPDATE только если он меньше limit,
// иначе возвращается apperr.ErrLimitExceeded и ничего не записывается.
// Возвращает значение счётчика после операции.
func (s *Storage) RecordDownload(ctx context.Context, userUID string, productID int64, consumeQuota bool, limit int) (int, error) {
	const op = "storage.RecordDownload"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	var used int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if consumeQuota {
			err = tx.QueryRowContext(ctx, `UPDATE users
				SET free_downloads_used = free_downloads_used + 1
				WHERE uid = $1 AND free_downloads_used < $2
				RETURNING free_downloads_used`, userUID, limit).Scan(&used)
			if errors.Is(err, sql.ErrNoRows) {
				var exists bool
				if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE uid = $1)`, userUID).Scan(&exists); err != nil {
					return err
				}
				if !exists {
					return fmt.Errorf("user %s: %w", userUID, apperr.ErrNotFound)
				}
				return fmt.Errorf("free download quota of %d used: %w", limit, apperr.ErrLimitExceeded)
			}
		} else {
			err = tx.QueryRowContext(ctx, `SELECT free_downloads_used FROM users WHERE uid = $1`, userUID).Scan(&used)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("user %s: %w", userUID, apperr.ErrNotFound)
			}
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `INSERT INTO downloads (user_uid, product_id) VALUES ($1, $2)`, userUID, productID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return used, nil
}
