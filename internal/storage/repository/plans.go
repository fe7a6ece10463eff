package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/storefront/internal/lib/apperr"
	"github.com/magabrotheeeer/storefront/internal/models"
)

// planNotReferenced истинно, пока ни один действующий снимок подписки не ссылается на план $1.
const planNotReferenced = `NOT EXISTS (
	SELECT 1 FROM users
	WHERE subscription_plan_id = $1
	  AND subscription_active
	  AND subscription_end > NOW()
)`

// ListPlans возвращает все планы по возрастанию цены.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListPlans"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, price, duration_in_days, description
		FROM plans ORDER BY price, id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Plan
	for rows.Next() {
		var p models.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.DurationInDays, &p.Description); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPlan возвращает план по id.
func (s *Storage) GetPlan(ctx context.Context, id int64) (*models.Plan, error) {
	const op = "storage.GetPlan"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	var p models.Plan
	err := s.DB.QueryRowContext(ctx, `SELECT id, name, price, duration_in_days, description
		FROM plans WHERE id = $1`, id).Scan(&p.ID, &p.Name, &p.Price, &p.DurationInDays, &p.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: plan %d: %w", op, id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// CreatePlan сохраняет план и возвращает его id.
func (s *Storage) CreatePlan(ctx context.Context, plan models.Plan) (int64, error) {
	const op = "storage.CreatePlan"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	err := s.DB.QueryRowContext(ctx, `INSERT INTO plans (name, price, duration_in_days, description)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		plan.Name, plan.Price, plan.DurationInDays, plan.Description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdatePlan заменяет поля плана, если на него не ссылается действующая подписка.
// Проверка и запись выполняются одним условным UPDATE.
func (s *Storage) UpdatePlan(ctx context.Context, plan models.Plan) error {
	const op = "storage.UpdatePlan"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE plans
		SET name = $2, price = $3, duration_in_days = $4, description = $5
		WHERE id = $1 AND `+planNotReferenced,
		plan.ID, plan.Name, plan.Price, plan.DurationInDays, plan.Description)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.explainPlanMiss(ctx, op, res, plan.ID)
}

// DeletePlan удаляет план, если на него не ссылаются подписки или платежи.
func (s *Storage) DeletePlan(ctx context.Context, id int64) error {
	const op = "storage.DeletePlan"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM plans WHERE id = $1 AND `+planNotReferenced, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%s: plan %d has purchase history: %w", op, id, apperr.ErrInUse)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.explainPlanMiss(ctx, op, res, id)
}

// explainPlanMiss различает отсутствующий план и план, занятый подпиской.
func (s *Storage) explainPlanMiss(ctx context.Context, op string, res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM plans WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: plan %d: %w", op, id, apperr.ErrNotFound)
	}
	return fmt.Errorf("%s: plan %d referenced by active subscription: %w", op, id, apperr.ErrInUse)
}
