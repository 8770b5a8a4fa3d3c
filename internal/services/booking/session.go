package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/cardlink/internal/models"
)

// ErrInvalidTransition переход не разрешён из текущего состояния сессии.
var ErrInvalidTransition = errors.New("invalid booking session transition")

// State состояние сессии бронирования.
type State int

const (
	StateSelectingDate State = iota
	StateSelectingTime
	StateSubmitting
	StateConfirmed
)

func (s State) String() string {
	switch s {
	case StateSelectingDate:
		return "selecting_date"
	case StateSelectingTime:
		return "selecting_time"
	case StateSubmitting:
		return "submitting"
	case StateConfirmed:
		return "confirmed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session одна попытка посетителя записаться на встречу.
// При неудачной отправке выбранные дата и время сохраняются.
type Session struct {
	state  State
	date   string
	clock  string
	result *models.BookingResult
}

// NewSession создаёт сессию в состоянии выбора даты.
func NewSession() *Session {
	return &Session{state: StateSelectingDate}
}

func (s *Session) State() State                  { return s.state }
func (s *Session) Date() string                  { return s.date }
func (s *Session) Time() string                  { return s.clock }
func (s *Session) Result() *models.BookingResult { return s.result }

// SelectDate выбирает дату. Смена даты сбрасывает выбранное время.
func (s *Session) SelectDate(date string) error {
	if s.state != StateSelectingDate && s.state != StateSelectingTime {
		return s.invalid("select date")
	}
	if date != s.date {
		s.clock = ""
	}
	s.date = date
	s.state = StateSelectingTime
	return nil
}

// SelectTime выбирает время на уже выбранную дату.
func (s *Session) SelectTime(clock string) error {
	if s.state != StateSelectingTime {
		return s.invalid("select time")
	}
	s.clock = clock
	return nil
}

// Submit переводит сессию в отправку. Время должно быть выбрано.
func (s *Session) Submit() error {
	if s.state != StateSelectingTime || s.clock == "" {
		return s.invalid("submit")
	}
	s.state = StateSubmitting
	return nil
}

// Complete завершает отправку. При ошибке сессия возвращается к выбору времени.
func (s *Session) Complete(res *models.BookingResult, err error) error {
	if s.state != StateSubmitting {
		return s.invalid("complete")
	}
	if err != nil {
		s.state = StateSelectingTime
		return nil
	}
	s.result = res
	s.state = StateConfirmed
	return nil
}

func (s *Session) invalid(action string) error {
	return fmt.Errorf("%s from %s: %w", action, s.state, ErrInvalidTransition)
}

// Book отправляет бронь выбранного в сессии слота и переводит сессию
// в следующее состояние по результату.
func (s *Service) Book(ctx context.Context, sess *Session, cardID string, client models.ClientInfo) (*models.BookingResult, error) {
	const op = "booking.Book"
	if err := sess.Submit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	res, err := s.ReserveSlot(ctx, cardID, sess.Date(), sess.Time(), client)
	if cerr := sess.Complete(res, err); cerr != nil {
		return nil, fmt.Errorf("%s: %w", op, cerr)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
