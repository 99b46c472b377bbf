package util

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidArgument is the parent of all argument validation errors in this package
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidMonth is returned when a month number falls outside 1..12
	ErrInvalidMonth = fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidArgument)
)

// monthNames holds the pt-BR display names, January first
var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// YearMonth identifies a calendar month
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// String renders the month as YYYY-MM
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// Label renders the month as "<name> de <year>", e.g. "Janeiro de 2026"
func (ym YearMonth) Label() string {
	name, err := MonthName(ym.Month)
	if err != nil {
		return ym.String()
	}
	return fmt.Sprintf("%s de %d", name, ym.Year)
}

// ParseYearMonth parses a YYYY-MM string
func ParseYearMonth(s string) (YearMonth, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return YearMonth{}, fmt.Errorf("%w: expected YYYY-MM, got %q", ErrInvalidArgument, s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: invalid year %q", ErrInvalidArgument, parts[0])
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: invalid month %q", ErrInvalidArgument, parts[1])
	}
	if !validMonth(month) {
		return YearMonth{}, ErrInvalidMonth
	}
	return YearMonth{Year: year, Month: month}, nil
}

func validMonth(month int) bool {
	return month >= 1 && month <= 12
}

// PreviousMonth returns the calendar month before the given one, wrapping
// January into December of the prior year
func PreviousMonth(month, year int) (YearMonth, error) {
	if !validMonth(month) {
		return YearMonth{}, ErrInvalidMonth
	}
	if month == 1 {
		return YearMonth{Year: year - 1, Month: 12}, nil
	}
	return YearMonth{Year: year, Month: month - 1}, nil
}

// NextMonth returns the calendar month after the given one
func NextMonth(month, year int) (YearMonth, error) {
	if !validMonth(month) {
		return YearMonth{}, ErrInvalidMonth
	}
	if month == 12 {
		return YearMonth{Year: year + 1, Month: 1}, nil
	}
	return YearMonth{Year: year, Month: month + 1}, nil
}

// MonthName returns the pt-BR name for a 1-indexed month
func MonthName(month int) (string, error) {
	if !validMonth(month) {
		return "", ErrInvalidMonth
	}
	return monthNames[month-1], nil
}

// MonthBoundaries returns the first and last day of a month at 00:00 UTC
func MonthBoundaries(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}

// IsHistoricalMonth returns true if the given year/month is before the current month
func IsHistoricalMonth(year, month int) bool {
	return IsHistoricalMonthAt(year, month, time.Now())
}

// IsHistoricalMonthAt compares against the month of now in now's own location
func IsHistoricalMonthAt(year, month int, now time.Time) bool {
	currentYear := now.Year()
	currentMonth := int(now.Month())

	if year < currentYear {
		return true
	}
	if year == currentYear && month < currentMonth {
		return true
	}
	return false
}

// CalculateActualDate returns the actual date for a target day in a given month,
// handling months with fewer days (e.g., day 31 in February returns Feb 28/29)
func CalculateActualDate(year int, month time.Month, targetDay int) time.Time {
	// day 0 of next month is the last day of this one
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	actualDay := targetDay
	if actualDay > lastDay {
		actualDay = lastDay
	}

	return time.Date(year, month, actualDay, 0, 0, 0, 0, time.UTC)
}
