package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/cardlink/internal/models"
)

// GetCard возвращает карточку вместе с почтой владельца.
func (s *Storage) GetCard(ctx context.Context, cardID string) (*models.Card, error) {
	const op = "storage.GetCard"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT c.id, c.owner_uid, c.slug, c.type, c.title, u.email, c.created_at
			  FROM cards c
			  JOIN users u ON u.uid = c.owner_uid
			  WHERE c.id = $1`
	var card models.Card
	err := s.DB.QueryRowContext(ctx, query, cardID).Scan(&card.ID, &card.OwnerUID, &card.Slug,
		&card.Type, &card.Title, &card.OwnerMail, &card.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &card, nil
}

// ListCardsByOwner возвращает карточки пользователя, новые первыми.
// Порядок определяет индекс карточки для проверки тарифа.
func (s *Storage) ListCardsByOwner(ctx context.Context, ownerUID string) ([]*models.Card, error) {
	const op = "storage.ListCardsByOwner"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, owner_uid, slug, type, title, created_at
			  FROM cards
			  WHERE owner_uid = $1
			  ORDER BY created_at DESC, id`
	rows, err := s.DB.QueryContext(ctx, query, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.Card{}
	for rows.Next() {
		var card models.Card
		if err := rows.Scan(&card.ID, &card.OwnerUID, &card.Slug, &card.Type, &card.Title, &card.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetWorkingHours возвращает рабочие часы карточки.
func (s *Storage) GetWorkingHours(ctx context.Context, cardID string) (*models.WorkingHours, error) {
	const op = "storage.GetWorkingHours"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT days, start_time, end_time, slot_duration_minutes
			  FROM working_hours
			  WHERE card_id = $1`
	var (
		wh   models.WorkingHours
		days []byte
	)
	err := s.DB.QueryRowContext(ctx, query, cardID).Scan(&days, &wh.Start, &wh.End, &wh.SlotDurationMinutes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(days, &wh.Days); err != nil {
		return nil, fmt.Errorf("%s: decode days: %w", op, err)
	}
	return &wh, nil
}

// UpsertWorkingHours сохраняет рабочие часы карточки.
func (s *Storage) UpsertWorkingHours(ctx context.Context, cardID string, wh models.WorkingHours) error {
	const op = "storage.UpsertWorkingHours"
	if err := ctxErr(ctx, op); err != nil {
		return err
	}
	days, err := json.Marshal(wh.Days)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO working_hours (card_id, days, start_time, end_time, slot_duration_minutes)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (card_id) DO UPDATE
			  SET days = EXCLUDED.days, start_time = EXCLUDED.start_time,
			      end_time = EXCLUDED.end_time, slot_duration_minutes = EXCLUDED.slot_duration_minutes`
	if _, err := s.DB.ExecContext(ctx, query, cardID, days, wh.Start, wh.End, wh.SlotDurationMinutes); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
