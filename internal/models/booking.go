package models

import "time"

// DateLayout формат даты бронирования.
const DateLayout = "2006-01-02"

// ClockLayout формат времени слота.
const ClockLayout = "15:04"

// ReservedSlot отметка о занятом слоте. Создаётся один раз на каждую бронь
// и больше не изменяется.
type ReservedSlot struct {
	ID          string    `json:"id"`
	CardID      string    `json:"card_id"`
	BookingDate string    `json:"booking_date"`
	BookingTime string    `json:"booking_time"`
	Reserved    bool      `json:"reserved"`
	CreatedAt   time.Time `json:"created_at"`
}

// ClientInfo данные посетителя, оформляющего бронь.
type ClientInfo struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Interest string `json:"interest,omitempty"`
}

// DummyBooking используется для приёма брони из JSON-запроса.
type DummyBooking struct {
	Date   string     `json:"date" validate:"required,datetime=2006-01-02"`
	Time   string     `json:"time" validate:"required,datetime=15:04"`
	Client ClientInfo `json:"client"`
}

// BookingResult результат успешного бронирования.
type BookingResult struct {
	Date            string `json:"date"`
	Time            string `json:"time"`
	MeetingLink     string `json:"meeting_link,omitempty"`
	MeetingPassword string `json:"meeting_password,omitempty"`
}

// BookingNotification сообщение о новой брони для владельца карточки.
type BookingNotification struct {
	CardID      string `json:"card_id"`
	CardTitle   string `json:"card_title"`
	OwnerEmail  string `json:"owner_email"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	Interest    string `json:"interest,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	MeetingLink string `json:"meeting_link,omitempty"`
}

// Meeting ссылка на видеовстречу, созданную для брони.
type Meeting struct {
	JoinURL  string `json:"join_url"`
	Password string `json:"password,omitempty"`
}
