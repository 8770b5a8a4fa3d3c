package models

import "time"

// LeadType источник лида.
type LeadType string

const (
	LeadTypeManual  LeadType = "manual"
	LeadTypeBooking LeadType = "booking"
	LeadTypeContact LeadType = "contact"
)

// LeadStatus статус работы с лидом.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusFollowUp  LeadStatus = "follow_up"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusRejected  LeadStatus = "rejected"
)

// PreviousInteractionNote пометка записи истории, перенесённой при повторной брони.
const PreviousInteractionNote = "Previous Interaction"

// HistoryEntry предыдущее обращение клиента.
type HistoryEntry struct {
	Date     string   `json:"date"`
	Interest string   `json:"interest"`
	Type     LeadType `json:"type"`
	Note     string   `json:"note"`
}

// Lead клиент, оставивший контакт на визитке.
// Телефон уникален в пределах одной карточки.
type Lead struct {
	ID              string         `json:"id"`
	CardID          string         `json:"card_id"`
	Name            string         `json:"name"`
	Phone           string         `json:"phone"`
	Email           string         `json:"email,omitempty"`
	Interest        string         `json:"interest"`
	Type            LeadType       `json:"type"`
	BookingDate     string         `json:"booking_date,omitempty"`
	BookingTime     string         `json:"booking_time,omitempty"`
	MeetingLink     string         `json:"meeting_link,omitempty"`
	MeetingPassword string         `json:"meeting_password,omitempty"`
	Status          LeadStatus     `json:"status"`
	History         []HistoryEntry `json:"history"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
