package service

import (
	"errors"
	"strings"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/util"
)

const (
	minYear = 2000
	maxYear = 2100
)

// validateYearMonth checks a year/month pair and maps month errors to domain.ErrInvalidInput
func validateYearMonth(year, month int) (util.YearMonth, error) {
	if year < minYear || year > maxYear {
		return util.YearMonth{}, domain.ErrInvalidInput
	}
	if _, err := util.MonthName(month); err != nil {
		return util.YearMonth{}, mapUtilError(err)
	}
	return util.YearMonth{Year: year, Month: month}, nil
}

func mapUtilError(err error) error {
	if errors.Is(err, util.ErrInvalidArgument) {
		return domain.ErrInvalidInput
	}
	return err
}

// validateName trims and validates a required display name
func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return "", domain.ErrNameTooLong
	}
	return name, nil
}

func validateNotes(notes *string) (*string, error) {
	if notes == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > domain.MaxNotesLength {
		return nil, domain.ErrInvalidInput
	}
	return &trimmed, nil
}

// normalizePhone keeps digits and a leading plus
func normalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", domain.ErrInvalidInput
		}
	}
	out := b.String()
	digits := strings.TrimPrefix(out, "+")
	if len(digits) < 8 || len(out) > domain.MaxPhoneLength {
		return "", domain.ErrInvalidInput
	}
	return out, nil
}

// monthRange returns [first instant of month, first instant of next month) in loc
func monthRange(ym util.YearMonth, loc *time.Location) (time.Time, time.Time, error) {
	next, err := util.NextMonth(ym.Month, ym.Year)
	if err != nil {
		return time.Time{}, time.Time{}, mapUtilError(err)
	}
	start := time.Date(ym.Year, time.Month(ym.Month), 1, 0, 0, 0, 0, loc)
	end := time.Date(next.Year, time.Month(next.Month), 1, 0, 0, 0, 0, loc)
	return start, end, nil
}

// dayRange returns [00:00, next 00:00) in loc of date's calendar day.
// Only the year, month and day of date are used.
func dayRange(date time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// yearMonthOf returns the calendar month t falls in, seen from loc
func yearMonthOf(t time.Time, loc *time.Location) util.YearMonth {
	local := t.In(loc)
	return util.YearMonth{Year: local.Year(), Month: int(local.Month())}
}
