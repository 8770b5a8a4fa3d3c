package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/cardlink/internal/models"
)

// GetSubscription возвращает тарифный план пользователя.
func (s *Storage) GetSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT uid, plan, plan_expires_at
			  FROM users
			  WHERE uid = $1`
	var (
		sub       models.Subscription
		expiresAt sql.NullTime
	)
	err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&sub.UserUID, &sub.Plan, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if expiresAt.Valid {
		sub.PlanExpiresAt = &expiresAt.Time
	}
	return &sub, nil
}

// UpdatePlan устанавливает план пользователя и срок его действия.
func (s *Storage) UpdatePlan(ctx context.Context, upgrade models.PlanUpgrade) error {
	const op = "storage.UpdatePlan"
	if err := ctxErr(ctx, op); err != nil {
		return err
	}

	var expiresAt sql.NullTime
	if upgrade.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *upgrade.ExpiresAt, Valid: true}
	}

	query := `UPDATE users
			  SET plan = $1, plan_expires_at = $2
			  WHERE uid = $3`
	res, err := s.DB.ExecContext(ctx, query, upgrade.Plan, expiresAt, upgrade.UserUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
