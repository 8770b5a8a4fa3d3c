package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/cardlink/internal/models"
)

// ListReservedTimes возвращает занятые времена карточки на дату.
func (s *Storage) ListReservedTimes(ctx context.Context, cardID, date string) ([]string, error) {
	const op = "storage.ListReservedTimes"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT booking_time
			  FROM reserved_slots
			  WHERE card_id = $1 AND booking_date = $2 AND reserved = true
			  ORDER BY booking_time`
	rows, err := s.DB.QueryContext(ctx, query, cardID, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []string{}
	for rows.Next() {
		var bookingTime string
		if err := rows.Scan(&bookingTime); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, bookingTime)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateReservedSlot добавляет отметку о занятом слоте и возвращает её ID.
func (s *Storage) CreateReservedSlot(ctx context.Context, slot models.ReservedSlot) (string, error) {
	const op = "storage.CreateReservedSlot"
	if err := ctxErr(ctx, op); err != nil {
		return "", err
	}
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}

	query := `INSERT INTO reserved_slots (id, card_id, booking_date, booking_time, reserved, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.DB.ExecContext(ctx, query,
		slot.ID, slot.CardID, slot.BookingDate, slot.BookingTime, slot.Reserved, slot.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return slot.ID, nil
}

const leadColumns = `id, card_id, name, phone, email, interest, type, booking_date, booking_time,
			      meeting_link, meeting_password, status, history, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanLead(row scanner) (*models.Lead, error) {
	var (
		lead    models.Lead
		history []byte
	)
	if err := row.Scan(&lead.ID, &lead.CardID, &lead.Name, &lead.Phone, &lead.Email, &lead.Interest,
		&lead.Type, &lead.BookingDate, &lead.BookingTime, &lead.MeetingLink, &lead.MeetingPassword,
		&lead.Status, &history, &lead.CreatedAt, &lead.UpdatedAt); err != nil {
		return nil, err
	}
	lead.History = []models.HistoryEntry{}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &lead.History); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
	}
	return &lead, nil
}

func encodeHistory(history []models.HistoryEntry) ([]byte, error) {
	if history == nil {
		history = []models.HistoryEntry{}
	}
	return json.Marshal(history)
}

// FindLeadByPhone ищет лид карточки по номеру телефона.
// Второе значение false, если лида нет.
func (s *Storage) FindLeadByPhone(ctx context.Context, cardID, phone string) (*models.Lead, bool, error) {
	const op = "storage.FindLeadByPhone"
	if err := ctxErr(ctx, op); err != nil {
		return nil, false, err
	}

	query := `SELECT ` + leadColumns + `
			  FROM leads
			  WHERE card_id = $1 AND phone = $2
			  ORDER BY created_at
			  LIMIT 1`
	lead, err := scanLead(s.DB.QueryRowContext(ctx, query, cardID, phone))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return lead, true, nil
}

// CreateLead добавляет новый лид и возвращает его ID. Если лид с тем же
// телефоном на карточке уже есть, возвращает ErrAlreadyExists.
func (s *Storage) CreateLead(ctx context.Context, lead models.Lead) (string, error) {
	const op = "storage.CreateLead"
	if err := ctxErr(ctx, op); err != nil {
		return "", err
	}
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	history, err := encodeHistory(lead.History)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO leads (` + leadColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err = s.DB.ExecContext(ctx, query,
		lead.ID, lead.CardID, lead.Name, lead.Phone, lead.Email, lead.Interest, lead.Type,
		lead.BookingDate, lead.BookingTime, lead.MeetingLink, lead.MeetingPassword,
		lead.Status, history, lead.CreatedAt, lead.UpdatedAt)
	if isUniqueViolation(err) {
		return "", fmt.Errorf("%s: card %s phone %s: %w", op, lead.CardID, lead.Phone, ErrAlreadyExists)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return lead.ID, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// UpdateLead перезаписывает поля лида по его ID.
func (s *Storage) UpdateLead(ctx context.Context, lead models.Lead) error {
	const op = "storage.UpdateLead"
	if err := ctxErr(ctx, op); err != nil {
		return err
	}
	history, err := encodeHistory(lead.History)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE leads
			  SET name = $1, phone = $2, email = $3, interest = $4, type = $5,
			      booking_date = $6, booking_time = $7, meeting_link = $8, meeting_password = $9,
			      status = $10, history = $11, updated_at = $12
			  WHERE id = $13`
	res, err := s.DB.ExecContext(ctx, query,
		lead.Name, lead.Phone, lead.Email, lead.Interest, lead.Type,
		lead.BookingDate, lead.BookingTime, lead.MeetingLink, lead.MeetingPassword,
		lead.Status, history, lead.UpdatedAt, lead.ID)
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

// ListLeads возвращает лиды карточки, новые первыми.
func (s *Storage) ListLeads(ctx context.Context, cardID string, limit, offset int) ([]*models.Lead, error) {
	const op = "storage.ListLeads"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + leadColumns + `
			  FROM leads
			  WHERE card_id = $1
			  ORDER BY updated_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, cardID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
