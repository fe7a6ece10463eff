package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/storefront/internal/lib/apperr"
	"github.com/magabrotheeeer/storefront/internal/models"
)

// GetProduct возвращает товар каталога по id.
func (s *Storage) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	const op = "storage.GetProduct"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	var p models.Product
	err := s.DB.QueryRowContext(ctx, `SELECT id, title, price, file_ref, image_ref
		FROM products WHERE id = $1`, id).Scan(&p.ID, &p.Title, &p.Price, &p.FileRef, &p.ImageRef)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: product %d: %w", op, id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}
