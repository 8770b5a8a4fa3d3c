package booking

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/cardlink/internal/config"
	"github.com/magabrotheeeer/cardlink/internal/lib/metrics"
	"github.com/magabrotheeeer/cardlink/internal/models"
	"github.com/magabrotheeeer/cardlink/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetCard(ctx context.Context, cardID string) (*models.Card, error) {
	args := m.Called(ctx, cardID)
	card, _ := args.Get(0).(*models.Card)
	return card, args.Error(1)
}

func (m *RepoMock) GetWorkingHours(ctx context.Context, cardID string) (*models.WorkingHours, error) {
	args := m.Called(ctx, cardID)
	wh, _ := args.Get(0).(*models.WorkingHours)
	return wh, args.Error(1)
}

func (m *RepoMock) ListReservedTimes(ctx context.Context, cardID, date string) ([]string, error) {
	args := m.Called(ctx, cardID, date)
	times, _ := args.Get(0).([]string)
	return times, args.Error(1)
}

func (m *RepoMock) FindLeadByPhone(ctx context.Context, cardID, phone string) (*models.Lead, bool, error) {
	args := m.Called(ctx, cardID, phone)
	lead, _ := args.Get(0).(*models.Lead)
	return lead, args.Bool(1), args.Error(2)
}

func (m *RepoMock) CreateLead(ctx context.Context, lead models.Lead) (string, error) {
	args := m.Called(ctx, lead)
	return args.String(0), args.Error(1)
}

func (m *RepoMock) UpdateLead(ctx context.Context, lead models.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *RepoMock) CreateReservedSlot(ctx context.Context, slot models.ReservedSlot) (string, error) {
	args := m.Called(ctx, slot)
	return args.String(0), args.Error(1)
}

func (m *RepoMock) UpsertWorkingHours(ctx context.Context, cardID string, wh models.WorkingHours) error {
	return m.Called(ctx, cardID, wh).Error(0)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MeetingMock struct{ mock.Mock }

func (m *MeetingMock) CreateMeeting(ctx context.Context, topic, startISO string) (*models.Meeting, error) {
	args := m.Called(ctx, topic, startISO)
	meeting, _ := args.Get(0).(*models.Meeting)
	return meeting, args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) PublishBooking(ctx context.Context, n models.BookingNotification) error {
	return m.Called(ctx, n).Error(0)
}

// memoryRepo хранилище в памяти для сценариев из нескольких броней.
type memoryRepo struct {
	mu       sync.Mutex
	card     models.Card
	wh       models.WorkingHours
	leads    map[string]*models.Lead
	reserved []models.ReservedSlot
}

func newMemoryRepo(card models.Card, wh models.WorkingHours) *memoryRepo {
	return &memoryRepo{card: card, wh: wh, leads: map[string]*models.Lead{}}
}

func (r *memoryRepo) GetCard(_ context.Context, cardID string) (*models.Card, error) {
	if cardID != r.card.ID {
		return nil, repository.ErrNotFound
	}
	card := r.card
	return &card, nil
}

func (r *memoryRepo) GetWorkingHours(_ context.Context, cardID string) (*models.WorkingHours, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cardID != r.card.ID {
		return nil, repository.ErrNotFound
	}
	wh := r.wh
	return &wh, nil
}

func (r *memoryRepo) ListReservedTimes(_ context.Context, cardID, date string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []string{}
	for _, s := range r.reserved {
		if s.CardID == cardID && s.BookingDate == date && s.Reserved {
			result = append(result, s.BookingTime)
		}
	}
	return result, nil
}

func (r *memoryRepo) FindLeadByPhone(_ context.Context, cardID, phone string) (*models.Lead, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.leads {
		if l.CardID == cardID && l.Phone == phone {
			cp := *l
			cp.History = append([]models.HistoryEntry(nil), l.History...)
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (r *memoryRepo) CreateLead(_ context.Context, lead models.Lead) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.leads {
		if l.CardID == lead.CardID && l.Phone == lead.Phone {
			return "", repository.ErrAlreadyExists
		}
	}
	lead.ID = uuid.NewString()
	r.leads[lead.ID] = &lead
	return lead.ID, nil
}

func (r *memoryRepo) UpdateLead(_ context.Context, lead models.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leads[lead.ID]; !ok {
		return repository.ErrNotFound
	}
	r.leads[lead.ID] = &lead
	return nil
}

func (r *memoryRepo) CreateReservedSlot(_ context.Context, slot models.ReservedSlot) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot.ID = uuid.NewString()
	r.reserved = append(r.reserved, slot)
	return slot.ID, nil
}

func (r *memoryRepo) UpsertWorkingHours(_ context.Context, cardID string, wh models.WorkingHours) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cardID != r.card.ID {
		return repository.ErrNotFound
	}
	r.wh = wh
	return nil
}

// noCache кэш, в котором ничего не хранится.
type noCache struct{}

func (noCache) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (noCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (noCache) Invalidate(context.Context, string) error              { return nil }

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func testConfig() config.Booking {
	return config.Booking{
		SlotsTimeout:    time.Second,
		MeetingDuration: 30 * time.Minute,
		MeetingTimeout:  time.Second,
		Location:        "UTC",
		WorkingHoursTTL: 10 * time.Minute,
	}
}

func newTestService(repo Repository, cache Cache, meetings MeetingProvider, notifier Notifier) *Service {
	svc := NewService(repo, cache, meetings, notifier, metrics.New(prometheus.NewRegistry()), newNoopLogger(), testConfig())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

var (
	fixedNow    = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	weekdays    = models.WorkingHours{Days: []int{1, 2, 3, 4, 5}, Start: "09:00", End: "17:00", SlotDurationMinutes: 30}
	testCard    = models.Card{ID: "card-1", OwnerUID: "owner-1", Title: "Ann Smith", OwnerMail: "ann@example.com"}
	monday      = "2025-03-10"
	saturday    = "2025-03-15"
	testClient  = models.ClientInfo{Name: "Bob", Phone: "+15550001", Interest: "pricing"}
	testMeeting = &models.Meeting{JoinURL: "https://zoom.us/j/1", Password: "secret"}
)
