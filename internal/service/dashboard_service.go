package service

import (
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/util"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var hundred = decimal.NewFromInt(100)

// DashboardService builds the monthly financial dashboard
type DashboardService struct {
	clinicRepo      domain.ClinicRepository
	appointmentRepo domain.AppointmentRepository
	expenseRepo     domain.ExpenseRepository
	now             func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	clinicRepo domain.ClinicRepository,
	appointmentRepo domain.AppointmentRepository,
	expenseRepo domain.ExpenseRepository,
) *DashboardService {
	return &DashboardService{
		clinicRepo:      clinicRepo,
		appointmentRepo: appointmentRepo,
		expenseRepo:     expenseRepo,
		now:             time.Now,
	}
}

// GetCurrentSummary returns the summary for the current month in the clinic timezone
func (s *DashboardService) GetCurrentSummary(clinicID int32) (*domain.DashboardSummary, error) {
	clinic, err := s.clinicRepo.GetByID(clinicID)
	if err != nil {
		return nil, err
	}
	ym := yearMonthOf(s.now(), clinic.Location())
	return s.summary(clinic, ym)
}

// GetSummary returns a month's figures compared with the month before
func (s *DashboardService) GetSummary(clinicID int32, year, month int) (*domain.DashboardSummary, error) {
	ym, err := validateYearMonth(year, month)
	if err != nil {
		return nil, err
	}
	clinic, err := s.clinicRepo.GetByID(clinicID)
	if err != nil {
		return nil, err
	}
	return s.summary(clinic, ym)
}

func (s *DashboardService) summary(clinic *domain.Clinic, ym util.YearMonth) (*domain.DashboardSummary, error) {
	prev, err := util.PreviousMonth(ym.Month, ym.Year)
	if err != nil {
		return nil, mapUtilError(err)
	}

	var current, previous *domain.MonthFinancials
	var g errgroup.Group
	g.Go(func() error {
		var err error
		current, err = s.monthFinancials(clinic, ym)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.monthFinancials(clinic, prev)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	used := current.Appointments.Scheduled + current.Appointments.Confirmed + current.Appointments.Completed

	return &domain.DashboardSummary{
		Current:    current,
		Previous:   previous,
		Comparison: compareMonths(current, previous),
		LimitUsage: limitUsage(clinic, ym.Year, ym.Month, used),
		IsHistoric: util.IsHistoricalMonthAt(ym.Year, ym.Month, s.now().In(clinic.Location())),
	}, nil
}

func (s *DashboardService) monthFinancials(clinic *domain.Clinic, ym util.YearMonth) (*domain.MonthFinancials, error) {
	start, end, err := monthRange(ym, clinic.Location())
	if err != nil {
		return nil, err
	}
	stats, err := s.appointmentRepo.GetStatsByRange(clinic.ID, start, end)
	if err != nil {
		return nil, err
	}

	firstDay, lastDay := util.MonthBoundaries(ym.Year, ym.Month)
	expenses, err := s.expenseRepo.SumByRange(clinic.ID, firstDay, lastDay)
	if err != nil {
		return nil, err
	}

	return &domain.MonthFinancials{
		Year:         ym.Year,
		Month:        ym.Month,
		Label:        ym.Label(),
		Revenue:      stats.PaidRevenue,
		Receivable:   stats.Receivable,
		Expenses:     expenses,
		Net:          stats.PaidRevenue.Sub(expenses.Total),
		Appointments: stats,
	}, nil
}

func compareMonths(current, previous *domain.MonthFinancials) *domain.MonthComparison {
	cmp := &domain.MonthComparison{
		RevenueDelta:      current.Revenue.Sub(previous.Revenue),
		ExpensesDelta:     current.Expenses.Total.Sub(previous.Expenses.Total),
		NetDelta:          current.Net.Sub(previous.Net),
		AppointmentsDelta: current.Appointments.Total - previous.Appointments.Total,
	}
	if !previous.Revenue.IsZero() {
		pct := cmp.RevenueDelta.Div(previous.Revenue).Mul(hundred).Round(2)
		cmp.RevenueChangePct = &pct
	}
	return cmp
}
