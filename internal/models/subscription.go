// Package models содержит доменные структуры сервиса визиток:
// подписку пользователя, карточки, рабочие часы, лиды и забронированные слоты.
package models

import "time"

// Plan тарифный план пользователя.
type Plan string

const (
	// PlanFree бесплатный тариф.
	PlanFree Plan = "free"
	// PlanPro платный тариф Pro.
	PlanPro Plan = "pro"
	// PlanEnterprise платный тариф Enterprise.
	PlanEnterprise Plan = "enterprise"
)

// IsPaid сообщает, относится ли план к платным.
// Неизвестные значения считаются бесплатными.
func (p Plan) IsPaid() bool {
	return p == PlanPro || p == PlanEnterprise
}

// Subscription состояние подписки пользователя.
// PlanExpiresAt == nil означает бессрочный план.
type Subscription struct {
	UserUID       string     `json:"user_uid"`
	Plan          Plan       `json:"plan"`
	PlanExpiresAt *time.Time `json:"plan_expires_at,omitempty"`
}

// PlanUpgrade описывает изменение плана после успешной оплаты.
type PlanUpgrade struct {
	UserUID   string
	Plan      Plan
	ExpiresAt *time.Time
	PaymentID string
}
