// Package slots вычисляет свободные слоты для записи на указанный день
// по настройкам рабочего времени карточки.
package slots

import (
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/cardlink/internal/models"
)

var (
	// ErrInvalidSlotDuration длительность слота не положительная.
	ErrInvalidSlotDuration = errors.New("slot duration must be positive")
	// ErrInvalidClock время не в формате HH:MM.
	ErrInvalidClock = errors.New("clock must be in HH:MM format")
	// ErrInvalidDay номер дня недели вне диапазона 0-6.
	ErrInvalidDay = errors.New("day must be in range 0-6")
	// ErrEmptyGrid в рабочем дне не помещается ни одного слота.
	ErrEmptyGrid = errors.New("working hours contain no slots")
)

// ParseClock разбирает строку "HH:MM" и возвращает смещение от полуночи.
func ParseClock(s string) (time.Duration, error) {
	const op = "slots.ParseClock"
	t, err := time.Parse(models.ClockLayout, s)
	if err != nil || t.Format(models.ClockLayout) != s {
		return 0, fmt.Errorf("%s: %q: %w", op, s, ErrInvalidClock)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Compute возвращает свободные слоты на дату date в хронологическом порядке.
//
// Для нерабочего дня и при start >= end возвращается пустой список.
// Слот, начинающийся в момент end или позже, не включается.
// Время из reserved в результат не попадает.
func Compute(date time.Time, wh models.WorkingHours, reserved []string) ([]string, error) {
	const op = "slots.Compute"
	if wh.SlotDurationMinutes <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidSlotDuration)
	}
	if !wh.HasDay(date.Weekday()) {
		return []string{}, nil
	}

	grid, err := dayGrid(date, wh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	taken := make(map[string]struct{}, len(reserved))
	for _, r := range reserved {
		taken[r] = struct{}{}
	}

	result := make([]string, 0, len(grid))
	for _, slot := range grid {
		if _, ok := taken[slot]; ok {
			continue
		}
		result = append(result, slot)
	}
	return result, nil
}

// Validate проверяет настройки рабочего времени перед сохранением:
// дни 0-6, время HH:MM, положительная длительность и хотя бы один слот.
func Validate(wh models.WorkingHours) error {
	const op = "slots.Validate"
	for _, d := range wh.Days {
		if d < 0 || d > 6 {
			return fmt.Errorf("%s: %d: %w", op, d, ErrInvalidDay)
		}
	}
	g, err := grid(wh)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(g) == 0 {
		return fmt.Errorf("%s: %s-%s: %w", op, wh.Start, wh.End, ErrEmptyGrid)
	}
	return nil
}

// grid полная сетка слотов рабочего дня без учёта занятых.
func grid(wh models.WorkingHours) ([]string, error) {
	if wh.SlotDurationMinutes <= 0 {
		return nil, ErrInvalidSlotDuration
	}
	return dayGrid(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), wh)
}

// Contains сообщает, есть ли слот в рабочей сетке даты.
func Contains(date time.Time, wh models.WorkingHours, clock string) (bool, error) {
	free, err := Compute(date, wh, nil)
	if err != nil {
		return false, err
	}
	for _, s := range free {
		if s == clock {
			return true, nil
		}
	}
	return false, nil
}

// dayGrid строит сетку на календарную дату date. Время считается как
// настенное, поэтому переход на летнее время не сдвигает метки.
func dayGrid(date time.Time, wh models.WorkingHours) ([]string, error) {
	startOffset, err := ParseClock(wh.Start)
	if err != nil {
		return nil, err
	}
	endOffset, err := ParseClock(wh.End)
	if err != nil {
		return nil, err
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	start := day.Add(startOffset)
	end := day.Add(endOffset)
	step := time.Duration(wh.SlotDurationMinutes) * time.Minute

	var grid []string
	for cur := start; cur.Before(end); cur = cur.Add(step) {
		grid = append(grid, cur.Format(models.ClockLayout))
	}
	if grid == nil {
		grid = []string{}
	}
	return grid, nil
}
