// Package booking реализует запись посетителей на встречу с владельцем карточки:
// расчёт свободных слотов и бронирование с объединением повторных клиентов.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/cardlink/internal/cache"
	"github.com/magabrotheeeer/cardlink/internal/config"
	"github.com/magabrotheeeer/cardlink/internal/lib/besteffort"
	"github.com/magabrotheeeer/cardlink/internal/lib/metrics"
	"github.com/magabrotheeeer/cardlink/internal/lib/sl"
	"github.com/magabrotheeeer/cardlink/internal/lib/slots"
	"github.com/magabrotheeeer/cardlink/internal/lib/validation"
	"github.com/magabrotheeeer/cardlink/internal/models"
	"github.com/magabrotheeeer/cardlink/internal/storage/repository"
)

var (
	// ErrSlotsUnavailable не удалось получить данные для расчёта слотов.
	ErrSlotsUnavailable = errors.New("slots are temporarily unavailable")
	// ErrSlotUnavailable запрошенное время не входит в рабочую сетку дня.
	ErrSlotUnavailable = errors.New("requested time is not a bookable slot")
	// ErrInvalidDate дата или время не в ожидаемом формате.
	ErrInvalidDate = errors.New("invalid booking date or time")
	// ErrCardNotFound карточка не существует.
	ErrCardNotFound = errors.New("card not found")
)

// Repository хранилище карточек, лидов и занятых слотов.
type Repository interface {
	GetCard(ctx context.Context, cardID string) (*models.Card, error)
	GetWorkingHours(ctx context.Context, cardID string) (*models.WorkingHours, error)
	ListReservedTimes(ctx context.Context, cardID, date string) ([]string, error)
	FindLeadByPhone(ctx context.Context, cardID, phone string) (*models.Lead, bool, error)
	CreateLead(ctx context.Context, lead models.Lead) (string, error)
	UpdateLead(ctx context.Context, lead models.Lead) error
	CreateReservedSlot(ctx context.Context, slot models.ReservedSlot) (string, error)
	UpsertWorkingHours(ctx context.Context, cardID string, wh models.WorkingHours) error
}

// Cache кэш рабочих часов.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// MeetingProvider создаёт ссылку на видеовстречу.
type MeetingProvider interface {
	CreateMeeting(ctx context.Context, topic, startISO string) (*models.Meeting, error)
}

// Notifier отправляет уведомление о новой брони.
type Notifier interface {
	PublishBooking(ctx context.Context, n models.BookingNotification) error
}

// Service сервис записи на встречи.
type Service struct {
	repo     Repository
	cache    Cache
	meetings MeetingProvider
	notifier Notifier
	metrics  *metrics.Metrics
	log      *slog.Logger
	cfg      config.Booking
	loc      *time.Location
	validate *validator.Validate
	now      func() time.Time
}

// NewService создаёт сервис бронирования.
func NewService(repo Repository, cache Cache, meetings MeetingProvider, notifier Notifier,
	m *metrics.Metrics, log *slog.Logger, cfg config.Booking) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		meetings: meetings,
		notifier: notifier,
		metrics:  m,
		log:      log,
		cfg:      cfg,
		loc:      cfg.TimeLocation(),
		validate: validation.New(),
		now:      time.Now,
	}
}

// AvailableSlots возвращает свободные слоты карточки на дату "YYYY-MM-DD".
//
// Загрузка данных ограничена cfg.SlotsTimeout. При таймауте или ошибке
// хранилища возвращается пустой список и ErrSlotsUnavailable.
// Ошибки настроек рабочего времени возвращаются как есть.
func (s *Service) AvailableSlots(ctx context.Context, cardID, date string) ([]string, error) {
	const op = "booking.AvailableSlots"
	start := time.Now()

	day, err := time.ParseInLocation(models.DateLayout, date, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidDate)
	}

	wh, reserved, err := s.loadDay(ctx, cardID, date)
	if errors.Is(err, repository.ErrNotFound) {
		s.metrics.ObserveSlotQuery(start, metrics.ResultOK)
		return []string{}, nil
	}
	if err != nil {
		s.log.Warn("slots data unavailable", sl.Op(op), slog.String("card_id", cardID), sl.Err(err))
		s.metrics.ObserveSlotQuery(start, metrics.ResultUnavailable)
		return []string{}, fmt.Errorf("%s: %w", op, ErrSlotsUnavailable)
	}

	free, err := slots.Compute(day, *wh, reserved)
	if err != nil {
		s.metrics.ObserveSlotQuery(start, metrics.ResultFailed)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.ObserveSlotQuery(start, metrics.ResultOK)
	return free, nil
}

// loadDay параллельно читает рабочие часы и занятые времена. Ожидание
// ограничено таймаутом, даже если хранилище не реагирует на отмену контекста.
func (s *Service) loadDay(ctx context.Context, cardID, date string) (*models.WorkingHours, []string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SlotsTimeout)
	defer cancel()

	var (
		wh       *models.WorkingHours
		reserved []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		wh, err = s.workingHours(gctx, cardID)
		return err
	})
	g.Go(func() error {
		var err error
		reserved, err = s.repo.ListReservedTimes(gctx, cardID, date)
		return err
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return nil, nil, err
		}
		return wh, reserved, nil
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

func (s *Service) workingHours(ctx context.Context, cardID string) (*models.WorkingHours, error) {
	key := cache.WorkingHoursKey(cardID)

	var cached models.WorkingHours
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read working hours from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	wh, err := s.repo.GetWorkingHours(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, wh, s.cfg.WorkingHoursTTL); err != nil {
		s.log.Warn("failed to cache working hours", slog.String("key", key), sl.Err(err))
	}
	return wh, nil
}

// SetWorkingHours проверяет и сохраняет рабочее время карточки, после чего
// сбрасывает его копию в кэше, чтобы новые слоты были видны сразу.
func (s *Service) SetWorkingHours(ctx context.Context, cardID string, wh models.WorkingHours) error {
	const op = "booking.SetWorkingHours"

	if err := slots.Validate(wh); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpsertWorkingHours(ctx, cardID, wh); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	key := cache.WorkingHoursKey(cardID)
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("failed to invalidate working hours cache", sl.Op(op), slog.String("key", key), sl.Err(err))
	}
	s.log.Info("working hours updated", slog.String("card_id", cardID))
	return nil
}

// ReserveSlot бронирует время clock на дату date для клиента.
//
// Лид с тем же телефоном обновляется, а его прежнее состояние уходит в историю.
// Отметка о занятом слоте создаётся при каждом вызове. Ошибки создания
// ссылки на встречу и отправки уведомления не прерывают бронирование.
// Одновременные брони одного слота не исключают друг друга.
func (s *Service) ReserveSlot(ctx context.Context, cardID, date, clock string, client models.ClientInfo) (res *models.BookingResult, err error) {
	const op = "booking.ReserveSlot"
	defer func() { s.metrics.ObserveBooking(err) }()

	if err := s.validate.Struct(client); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	const layout = models.DateLayout + " " + models.ClockLayout
	start, err := time.ParseInLocation(layout, date+" "+clock, s.loc)
	if err != nil || start.Format(layout) != date+" "+clock {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidDate)
	}

	card, err := s.repo.GetCard(ctx, cardID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrCardNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.checkOnGrid(ctx, cardID, start, clock); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	existing, found, err := s.repo.FindLeadByPhone(ctx, cardID, client.Phone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	meeting, ok := besteffort.DoWithin(ctx, s.log, op+".meeting", s.cfg.MeetingTimeout,
		func(ctx context.Context) (*models.Meeting, error) {
			return s.meetings.CreateMeeting(ctx, meetingTopic(card, client), start.Format(time.RFC3339))
		})
	if !ok || meeting == nil {
		s.metrics.BestEffortFailed("meeting")
		meeting = &models.Meeting{}
	}

	now := s.now()
	if !found {
		id, err := s.repo.CreateLead(ctx, newLead(cardID, client, date, clock, meeting, now))
		switch {
		case err == nil:
			s.log.Info("lead created", slog.String("card_id", cardID), slog.String("lead_id", id))
		case errors.Is(err, repository.ErrAlreadyExists):
			// параллельная бронь с тем же телефоном успела создать лид
			existing, found, err = s.repo.FindLeadByPhone(ctx, cardID, client.Phone)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			if !found {
				return nil, fmt.Errorf("%s: lead for phone vanished after conflict: %w", op, repository.ErrNotFound)
			}
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if found {
		lead := mergeLead(*existing, client, date, clock, meeting, now)
		if err := s.repo.UpdateLead(ctx, lead); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("lead updated by repeat booking", slog.String("card_id", cardID),
			slog.String("lead_id", lead.ID), slog.Int("history", len(lead.History)))
	}

	if _, err := s.repo.CreateReservedSlot(ctx, models.ReservedSlot{
		CardID:      cardID,
		BookingDate: date,
		BookingTime: clock,
		Reserved:    true,
		CreatedAt:   now,
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	notification := models.BookingNotification{
		CardID:      cardID,
		CardTitle:   card.Title,
		OwnerEmail:  card.OwnerMail,
		ClientName:  client.Name,
		ClientPhone: client.Phone,
		Interest:    client.Interest,
		Date:        date,
		Time:        clock,
		MeetingLink: meeting.JoinURL,
	}
	if !besteffort.Run(ctx, s.log, op+".notify", func(ctx context.Context) error {
		return s.notifier.PublishBooking(ctx, notification)
	}) {
		s.metrics.BestEffortFailed("notify")
	}

	return &models.BookingResult{
		Date:            date,
		Time:            clock,
		MeetingLink:     meeting.JoinURL,
		MeetingPassword: meeting.Password,
	}, nil
}

func (s *Service) checkOnGrid(ctx context.Context, cardID string, day time.Time, clock string) error {
	wh, err := s.workingHours(ctx, cardID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSlotUnavailable
	}
	if err != nil {
		return err
	}
	ok, err := slots.Contains(day, *wh, clock)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSlotUnavailable
	}
	return nil
}

func meetingTopic(card *models.Card, client models.ClientInfo) string {
	if card.Title == "" {
		return "Meeting with " + client.Name
	}
	return card.Title + ": meeting with " + client.Name
}

// mergeLead переносит текущее состояние лида в историю и перезаписывает поля брони.
func mergeLead(lead models.Lead, client models.ClientInfo, date, clock string,
	meeting *models.Meeting, now time.Time) models.Lead {
	prevDate := lead.BookingDate
	if prevDate == "" {
		prevDate = lead.CreatedAt.Format(models.DateLayout)
	}
	history := make([]models.HistoryEntry, 0, len(lead.History)+1)
	history = append(history, lead.History...)
	history = append(history, models.HistoryEntry{
		Date:     prevDate,
		Interest: lead.Interest,
		Type:     lead.Type,
		Note:     models.PreviousInteractionNote,
	})

	lead.Name = client.Name
	lead.Phone = client.Phone
	if client.Email != "" {
		lead.Email = client.Email
	}
	lead.Interest = client.Interest
	lead.Type = models.LeadTypeBooking
	lead.BookingDate = date
	lead.BookingTime = clock
	lead.MeetingLink = meeting.JoinURL
	lead.MeetingPassword = meeting.Password
	// TODO: сбрасывать статус только для отклонённых лидов, если владельцы подтвердят такое поведение.
	lead.Status = models.LeadStatusNew
	lead.History = history
	lead.UpdatedAt = now
	return lead
}

func newLead(cardID string, client models.ClientInfo, date, clock string,
	meeting *models.Meeting, now time.Time) models.Lead {
	return models.Lead{
		CardID:          cardID,
		Name:            client.Name,
		Phone:           client.Phone,
		Email:           client.Email,
		Interest:        client.Interest,
		Type:            models.LeadTypeBooking,
		BookingDate:     date,
		BookingTime:     clock,
		MeetingLink:     meeting.JoinURL,
		MeetingPassword: meeting.Password,
		Status:          models.LeadStatusNew,
		History:         []models.HistoryEntry{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
