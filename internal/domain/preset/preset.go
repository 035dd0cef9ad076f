// Package preset превращает быстрые варианты из формы бронирования в конкретный интервал.
package preset

import (
	"time"

	"github.com/qrave1/RoomBook/internal/domain/errs"
	"github.com/qrave1/RoomBook/internal/domain/models"
)

type Kind string

const (
	KindHours     Kind = "hours"
	KindMorning   Kind = "morning"
	KindAfternoon Kind = "afternoon"
	KindFullDay   Kind = "full_day"
)

const (
	FirstStartHour = 8
	LastStartHour  = 18
	MinHours       = 1
	MaxHours       = 4
)

// Hours - n часов начиная с startHour в день day (в локации day).
func Hours(day time.Time, startHour, n int) (models.TimeRange, error) {
	if startHour < FirstStartHour || startHour > LastStartHour {
		return models.TimeRange{}, errs.Validation("start hour must be between %d and %d", FirstStartHour, LastStartHour)
	}
	if n < MinHours || n > MaxHours {
		return models.TimeRange{}, errs.Validation("duration must be between %d and %d hours", MinHours, MaxHours)
	}

	start := at(day, startHour)

	return models.NewTimeRange(start, start.Add(time.Duration(n)*time.Hour)), nil
}

func Morning(day time.Time) models.TimeRange {
	return models.NewTimeRange(at(day, 8), at(day, 12))
}

func Afternoon(day time.Time) models.TimeRange {
	return models.NewTimeRange(at(day, 13), at(day, 17))
}

func FullDay(day time.Time) models.TimeRange {
	return models.NewTimeRange(at(day, 8), at(day, 17))
}

// Resolve выбирает пресет по kind. startHour и n нужны только для KindHours.
func Resolve(kind Kind, day time.Time, startHour, n int) (models.TimeRange, error) {
	switch kind {
	case KindHours:
		return Hours(day, startHour, n)
	case KindMorning:
		return Morning(day), nil
	case KindAfternoon:
		return Afternoon(day), nil
	case KindFullDay:
		return FullDay(day), nil
	default:
		return models.TimeRange{}, errs.Validation("unknown preset %q", kind)
	}
}

func at(day time.Time, hour int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, day.Location())
}
