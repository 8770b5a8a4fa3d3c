// Package plan применяет тарифные ограничения к карточкам пользователя
// и обновляет тариф по уведомлениям об оплате.
package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/cardlink/internal/cache"
	"github.com/magabrotheeeer/cardlink/internal/config"
	"github.com/magabrotheeeer/cardlink/internal/lib/metrics"
	"github.com/magabrotheeeer/cardlink/internal/lib/plangate"
	"github.com/magabrotheeeer/cardlink/internal/lib/sl"
	"github.com/magabrotheeeer/cardlink/internal/models"
	"github.com/magabrotheeeer/cardlink/internal/storage/repository"
)

const subscriptionTTL = time.Hour

var (
	// ErrCardLocked карточка недоступна на текущем тарифе.
	ErrCardLocked = errors.New("card is locked by current plan")
	// ErrCardNotOwned карточка не принадлежит пользователю.
	ErrCardNotOwned = errors.New("card does not belong to user")
	// ErrInvalidPayment уведомление об оплате не содержит нужных данных.
	ErrInvalidPayment = errors.New("invalid payment event")
)

// Repository хранилище пользователей и карточек.
type Repository interface {
	GetSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	UpdatePlan(ctx context.Context, upgrade models.PlanUpgrade) error
	GetCard(ctx context.Context, cardID string) (*models.Card, error)
	ListCardsByOwner(ctx context.Context, ownerUID string) ([]*models.Card, error)
}

// Cache кэш подписок.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// CardList карточки пользователя с решением о доступе.
type CardList struct {
	Tier   plangate.Tier       `json:"tier"`
	Limits plangate.Limits     `json:"limits"`
	Cards  []models.CardAccess `json:"cards"`
}

// Service сервис тарифов.
type Service struct {
	repo    Repository
	cache   Cache
	metrics *metrics.Metrics
	log     *slog.Logger
	cfg     config.Payment
	now     func() time.Time
}

// NewService создаёт сервис тарифов.
func NewService(repo Repository, cache Cache, m *metrics.Metrics, log *slog.Logger, cfg config.Payment) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		metrics: m,
		log:     log,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Subscription возвращает подписку пользователя. Неизвестный пользователь
// получает nil, что для проверок равносильно бесплатному тарифу.
func (s *Service) Subscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "plan.Subscription"
	key := cache.SubscriptionKey(userUID)

	var cached models.Subscription
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read subscription from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	sub, err := s.repo.GetSubscription(ctx, userUID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(ctx, key, sub, subscriptionTTL); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", key), sl.Err(err))
	}
	return sub, nil
}

// CardAccess возвращает карточки пользователя, новые первыми, с отметкой
// о блокировке для текущего тарифа.
func (s *Service) CardAccess(ctx context.Context, userUID string) (*CardList, error) {
	const op = "plan.CardAccess"

	sub, err := s.Subscription(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cards, err := s.repo.ListCardsByOwner(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	tier := plangate.EffectivePlanAt(sub, now)
	list := &CardList{
		Tier:   tier,
		Limits: plangate.LimitsFor(tier),
		Cards:  make([]models.CardAccess, 0, len(cards)),
	}
	for i, card := range cards {
		list.Cards = append(list.Cards, models.CardAccess{
			Card:   *card,
			Index:  i,
			Locked: plangate.IsItemLockedAt(i, sub, now),
		})
	}
	return list, nil
}

// CheckCardAccess возвращает ErrCardLocked, если карточка пользователя
// заблокирована тарифом, и ErrCardNotOwned, если карточка чужая.
func (s *Service) CheckCardAccess(ctx context.Context, userUID, cardID string) error {
	const op = "plan.CheckCardAccess"

	list, err := s.CardAccess(ctx, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, c := range list.Cards {
		if c.Card.ID != cardID {
			continue
		}
		if c.Locked {
			s.metrics.LockedCardRequests.Inc()
			return fmt.Errorf("%s: %w", op, ErrCardLocked)
		}
		return nil
	}
	return fmt.Errorf("%s: %w", op, ErrCardNotOwned)
}

// CheckBookable проверяет, что публичная карточка принимает брони,
// то есть не заблокирована тарифом своего владельца.
func (s *Service) CheckBookable(ctx context.Context, cardID string) error {
	const op = "plan.CheckBookable"

	card, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.CheckCardAccess(ctx, card.OwnerUID, cardID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ApplyPayment обновляет тариф по уведомлению об оплате.
// Успешная оплата продлевает план, возврат переводит на бесплатный тариф.
// Остальные события игнорируются.
func (s *Service) ApplyPayment(ctx context.Context, event models.PaymentEvent) error {
	const op = "plan.ApplyPayment"

	userUID := event.Object.Metadata["user_uid"]
	if userUID == "" {
		return fmt.Errorf("%s: missing user_uid: %w", op, ErrInvalidPayment)
	}

	var upgrade models.PlanUpgrade
	switch strings.ToLower(event.Event) {
	case models.PaymentSucceeded:
		p, err := paidPlan(event.Object.Metadata["plan"])
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		expiresAt := s.now().Add(s.cfg.PlanPeriod)
		if t, ok := plangate.ToInstant(event.Object.Metadata["expires_at"]); ok {
			expiresAt = t
		}
		upgrade = models.PlanUpgrade{UserUID: userUID, Plan: p, ExpiresAt: &expiresAt, PaymentID: event.Object.ID}
	case models.PaymentRefunded:
		upgrade = models.PlanUpgrade{UserUID: userUID, Plan: models.PlanFree, PaymentID: event.Object.ID}
	default:
		s.log.Info("ignored payment event", slog.String("event", event.Event), slog.String("payment_id", event.Object.ID))
		return nil
	}

	if err := s.repo.UpdatePlan(ctx, upgrade); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(ctx, cache.SubscriptionKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate subscription cache", slog.String("user_uid", userUID), sl.Err(err))
	}
	s.log.Info("plan updated", slog.String("user_uid", userUID), slog.String("plan", string(upgrade.Plan)),
		slog.String("payment_id", upgrade.PaymentID))
	return nil
}

func paidPlan(raw string) (models.Plan, error) {
	if raw == "" {
		return models.PlanPro, nil
	}
	p := models.Plan(strings.ToLower(raw))
	if !p.IsPaid() {
		return "", fmt.Errorf("unknown plan %q: %w", raw, ErrInvalidPayment)
	}
	return p, nil
}
