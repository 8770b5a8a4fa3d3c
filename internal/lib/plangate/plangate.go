// Package plangate принимает решения о доступе к функциям по состоянию подписки.
//
// Все функции чистые и тотальные: nil-подписка, пустой или неизвестный план
// трактуются как бесплатный тариф, то есть как самый строгий вариант.
package plangate

import (
	"time"

	"github.com/magabrotheeeer/cardlink/internal/models"
)

// Tier эффективный уровень доступа.
type Tier string

const (
	// TierFree бесплатный доступ.
	TierFree Tier = "free"
	// TierPaid доступ по действующему платному плану.
	TierPaid Tier = "paid"
)

// FreeUnlockedItems количество элементов, доступных на бесплатном тарифе.
const FreeUnlockedItems = 1

// Limits ограничения, действующие для уровня доступа.
type Limits struct {
	MaxUnlockedCards int  `json:"max_unlocked_cards"` // 0 без ограничений
	Bookings         bool `json:"bookings"`
	CustomDomain     bool `json:"custom_domain"`
}

// IsPlanActive сообщает, действует ли платный план на текущий момент.
func IsPlanActive(sub *models.Subscription) bool {
	return IsPlanActiveAt(sub, time.Now())
}

// IsPlanActiveAt сообщает, действует ли платный план на момент now.
// Платный план без даты окончания бессрочный.
func IsPlanActiveAt(sub *models.Subscription, now time.Time) bool {
	if sub == nil || !sub.Plan.IsPaid() {
		return false
	}
	expiresAt, ok := ToInstant(sub.PlanExpiresAt)
	if !ok {
		return true
	}
	return expiresAt.After(now)
}

// EffectivePlan возвращает уровень доступа с учётом срока действия плана.
func EffectivePlan(sub *models.Subscription) Tier {
	return EffectivePlanAt(sub, time.Now())
}

// EffectivePlanAt то же, что EffectivePlan, на момент now.
func EffectivePlanAt(sub *models.Subscription, now time.Time) Tier {
	if IsPlanActiveAt(sub, now) {
		return TierPaid
	}
	return TierFree
}

// IsItemLocked сообщает, заблокирован ли элемент с позицией index.
// На бесплатном тарифе открыт только элемент с индексом 0.
func IsItemLocked(index int, sub *models.Subscription) bool {
	return IsItemLockedAt(index, sub, time.Now())
}

// IsItemLockedAt то же, что IsItemLocked, на момент now.
func IsItemLockedAt(index int, sub *models.Subscription, now time.Time) bool {
	return EffectivePlanAt(sub, now) == TierFree && index >= FreeUnlockedItems
}

// LimitsFor возвращает ограничения уровня доступа.
func LimitsFor(tier Tier) Limits {
	if tier == TierPaid {
		return Limits{MaxUnlockedCards: 0, Bookings: true, CustomDomain: true}
	}
	return Limits{MaxUnlockedCards: FreeUnlockedItems, Bookings: true, CustomDomain: false}
}
