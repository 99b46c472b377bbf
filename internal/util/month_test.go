package util

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviousMonth_SameYear(t *testing.T) {
	tests := []struct {
		month     int
		year      int
		wantMonth int
		wantYear  int
	}{
		{6, 2026, 5, 2026},   // June -> May
		{12, 2026, 11, 2026}, // Dec -> Nov
		{2, 2026, 1, 2026},   // Feb -> Jan
		{5, 2026, 4, 2026},
	}

	for _, tt := range tests {
		got, err := PreviousMonth(tt.month, tt.year)
		require.NoError(t, err)
		if got.Year != tt.wantYear || got.Month != tt.wantMonth {
			t.Errorf("PreviousMonth(%d, %d) = (%d, %d), want (%d, %d)",
				tt.month, tt.year, got.Month, got.Year, tt.wantMonth, tt.wantYear)
		}
	}
}

func TestPreviousMonth_YearBoundary(t *testing.T) {
	for _, year := range []int{2026, 2000, 1, 0, -5} {
		got, err := PreviousMonth(1, year)
		require.NoError(t, err)
		assert.Equal(t, YearMonth{Year: year - 1, Month: 12}, got)
	}
}

func TestPreviousMonth_AllValidMonths(t *testing.T) {
	for month := 1; month <= 12; month++ {
		got, err := PreviousMonth(month, 2026)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.Month, 1)
		assert.LessOrEqual(t, got.Month, 12)
		if month != 1 {
			assert.Equal(t, 2026, got.Year)
		}
	}
}

func TestPreviousMonth_InvalidMonth(t *testing.T) {
	for _, month := range []int{0, 13, -1, 100} {
		_, err := PreviousMonth(month, 2026)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidMonth))
		assert.True(t, errors.Is(err, ErrInvalidArgument))
		assert.Contains(t, err.Error(), "month must be between 1 and 12")
	}
}

func TestNextMonth(t *testing.T) {
	got, err := NextMonth(12, 2025)
	require.NoError(t, err)
	assert.Equal(t, YearMonth{Year: 2026, Month: 1}, got)

	got, err = NextMonth(3, 2026)
	require.NoError(t, err)
	assert.Equal(t, YearMonth{Year: 2026, Month: 4}, got)

	_, err = NextMonth(13, 2026)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestMonthName(t *testing.T) {
	tests := []struct {
		month int
		want  string
	}{
		{1, "Janeiro"},
		{2, "Fevereiro"},
		{3, "Março"},
		{6, "Junho"},
		{12, "Dezembro"},
	}

	for _, tt := range tests {
		got, err := MonthName(tt.month)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestMonthName_InvalidMonth(t *testing.T) {
	for _, month := range []int{0, 13, -1} {
		name, err := MonthName(month)
		assert.ErrorIs(t, err, ErrInvalidMonth)
		assert.Empty(t, name)
	}
}

func TestYearMonth_StringAndLabel(t *testing.T) {
	ym := YearMonth{Year: 2026, Month: 3}
	assert.Equal(t, "2026-03", ym.String())
	assert.Equal(t, "Março de 2026", ym.Label())

	// an invalid month falls back to the numeric form
	assert.Equal(t, "2026-13", YearMonth{Year: 2026, Month: 13}.Label())
}

func TestParseYearMonth(t *testing.T) {
	got, err := ParseYearMonth("2026-01")
	require.NoError(t, err)
	assert.Equal(t, YearMonth{Year: 2026, Month: 1}, got)

	_, err = ParseYearMonth("2026-13")
	assert.ErrorIs(t, err, ErrInvalidMonth)

	_, err = ParseYearMonth("2026")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ParseYearMonth("abcd-01")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMonthBoundaries(t *testing.T) {
	start, end := MonthBoundaries(2024, 2)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), end)

	start, end = MonthBoundaries(2025, 12)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), end)
}

func TestIsHistoricalMonth_YearBoundary(t *testing.T) {
	// December of previous year should always be historical
	now := time.Now()
	if !IsHistoricalMonth(now.Year()-1, 12) {
		t.Errorf("IsHistoricalMonth(%d, 12) = false, want true", now.Year()-1)
	}

	// January of next year should never be historical
	if IsHistoricalMonth(now.Year()+1, 1) {
		t.Errorf("IsHistoricalMonth(%d, 1) = true, want false", now.Year()+1)
	}

	if IsHistoricalMonth(now.Year(), int(now.Month())) {
		t.Error("current month must not be historical")
	}
}

func TestIsHistoricalMonthAt(t *testing.T) {
	saoPaulo, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	instant := time.Date(2030, 4, 1, 1, 0, 0, 0, time.UTC)

	assert.True(t, IsHistoricalMonthAt(2030, 3, instant))
	assert.False(t, IsHistoricalMonthAt(2030, 3, instant.In(saoPaulo)))
	assert.True(t, IsHistoricalMonthAt(2029, 12, instant))
	assert.False(t, IsHistoricalMonthAt(2030, 4, instant))
}

func TestCalculateActualDate(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     time.Month
		targetDay int
		want      time.Time
	}{
		{"regular day", 2026, time.March, 15, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"day 31 in february", 2026, time.February, 31, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"day 31 in leap february", 2024, time.February, 31, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"day 31 in april", 2026, time.April, 31, time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateActualDate(tt.year, tt.month, tt.targetDay))
		})
	}
}
