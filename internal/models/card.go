package models

import "time"

// CardType тип визитки.
type CardType string

const (
	CardTypeEmployee CardType = "employee"
	CardTypeCompany  CardType = "company"
)

// Card визитка пользователя.
type Card struct {
	ID        string    `json:"id"`
	OwnerUID  string    `json:"owner_uid"`
	Slug      string    `json:"slug"`
	Type      CardType  `json:"type"`
	Title     string    `json:"title"`
	OwnerMail string    `json:"owner_email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CardAccess визитка вместе с решением о доступе для текущего плана.
type CardAccess struct {
	Card   Card `json:"card"`
	Index  int  `json:"index"`
	Locked bool `json:"locked"`
}

// WorkingHours настройки рабочего времени карточки.
// Days содержит номера дней недели 0-6 (0 это воскресенье).
type WorkingHours struct {
	Days                []int  `json:"days"`
	Start               string `json:"start"`
	End                 string `json:"end"`
	SlotDurationMinutes int    `json:"slot_duration_minutes"`
}

// HasDay проверяет, является ли день недели рабочим.
func (w WorkingHours) HasDay(day time.Weekday) bool {
	for _, d := range w.Days {
		if d == int(day) {
			return true
		}
	}
	return false
}
