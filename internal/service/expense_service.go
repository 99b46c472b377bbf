package service

import (
	"strings"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/util"
	"github.com/dafibh/clinica/clinica-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ExpenseService handles clinic expenses
type ExpenseService struct {
	expenseRepo domain.ExpenseRepository
	publisher   websocket.EventPublisher
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo domain.ExpenseRepository) *ExpenseService {
	return &ExpenseService{expenseRepo: expenseRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ExpenseService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.publisher = publisher
}

func (s *ExpenseService) publishEvent(clinicID int32, event websocket.Event) {
	if s.publisher != nil {
		s.publisher.Publish(clinicID, event)
	}
}

// ExpenseInput holds the writable expense fields
type ExpenseInput struct {
	Description  string                 `json:"description"`
	Amount       decimal.Decimal        `json:"amount"`
	Category     domain.ExpenseCategory `json:"category"`
	ExpenseDate  time.Time              `json:"expenseDate"`
	IsPaid       bool                   `json:"isPaid"`
	RecurringDay *int                   `json:"recurringDay,omitempty"`
}

func (in ExpenseInput) validate() (*domain.Expense, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, domain.ErrNameRequired
	}
	if len(description) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	category := in.Category
	if category == "" {
		category = domain.ExpenseCategoryOther
	}
	if !category.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	if in.ExpenseDate.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if in.RecurringDay != nil && (*in.RecurringDay < 1 || *in.RecurringDay > 31) {
		return nil, domain.ErrInvalidInput
	}
	date := in.ExpenseDate
	return &domain.Expense{
		Description:  description,
		Amount:       in.Amount,
		Category:     category,
		ExpenseDate:  time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		IsPaid:       in.IsPaid,
		RecurringDay: in.RecurringDay,
	}, nil
}

// CreateExpense records an expense
func (s *ExpenseService) CreateExpense(clinicID int32, input ExpenseInput) (*domain.Expense, error) {
	expense, err := input.validate()
	if err != nil {
		return nil, err
	}
	expense.ClinicID = clinicID

	created, err := s.expenseRepo.Create(expense)
	if err != nil {
		return nil, err
	}
	log.Info().Int32("clinic_id", clinicID).Int32("expense_id", created.ID).Msg("Expense created")
	s.publishEvent(clinicID, websocket.ExpenseCreated(created))
	return created, nil
}

// GetExpense retrieves an expense
func (s *ExpenseService) GetExpense(clinicID, id int32) (*domain.Expense, error) {
	return s.expenseRepo.GetByID(clinicID, id)
}

// ListByMonth lists a month's expenses. Recurring templates are materialized
// first unless the month is already in the past.
func (s *ExpenseService) ListByMonth(clinicID int32, year, month int) ([]*domain.Expense, error) {
	ym, err := validateYearMonth(year, month)
	if err != nil {
		return nil, err
	}
	if !util.IsHistoricalMonth(ym.Year, ym.Month) {
		if _, err := s.MaterializeRecurring(clinicID, ym.Year, ym.Month); err != nil {
			return nil, err
		}
	}
	start, end := util.MonthBoundaries(ym.Year, ym.Month)
	return s.expenseRepo.GetByRange(clinicID, start, end)
}

// UpdateExpense replaces an expense's writable fields
func (s *ExpenseService) UpdateExpense(clinicID, id int32, input ExpenseInput) (*domain.Expense, error) {
	existing, err := s.expenseRepo.GetByID(clinicID, id)
	if err != nil {
		return nil, err
	}
	expense, err := input.validate()
	if err != nil {
		return nil, err
	}
	// a materialized copy cannot become a template itself
	if existing.TemplateID != nil && expense.RecurringDay != nil {
		return nil, domain.ErrInvalidInput
	}

	existing.Description = expense.Description
	existing.Amount = expense.Amount
	existing.Category = expense.Category
	existing.ExpenseDate = expense.ExpenseDate
	existing.IsPaid = expense.IsPaid
	existing.RecurringDay = expense.RecurringDay

	updated, err := s.expenseRepo.Update(existing)
	if err != nil {
		return nil, err
	}
	s.publishEvent(clinicID, websocket.ExpenseUpdated(updated))
	return updated, nil
}

// TogglePaid flips an expense between paid and unpaid
func (s *ExpenseService) TogglePaid(clinicID, id int32) (*domain.Expense, error) {
	updated, err := s.expenseRepo.TogglePaid(clinicID, id)
	if err != nil {
		return nil, err
	}
	s.publishEvent(clinicID, websocket.ExpenseUpdated(updated))
	return updated, nil
}

// DeleteExpense removes an expense
func (s *ExpenseService) DeleteExpense(clinicID, id int32) error {
	if err := s.expenseRepo.Delete(clinicID, id); err != nil {
		return err
	}
	s.publishEvent(clinicID, websocket.ExpenseDeleted(map[string]int32{"id": id}))
	return nil
}

// MaterializeRecurring copies each recurring template into the month once,
// on its recurring day clamped to the month length
func (s *ExpenseService) MaterializeRecurring(clinicID int32, year, month int) ([]*domain.Expense, error) {
	ym, err := validateYearMonth(year, month)
	if err != nil {
		return nil, err
	}
	start, end := util.MonthBoundaries(ym.Year, ym.Month)

	templates, err := s.expenseRepo.GetRecurringTemplates(clinicID)
	if err != nil {
		return nil, err
	}

	var created []*domain.Expense
	for _, tmpl := range templates {
		// the template covers its own month and never reaches back in time
		if !tmpl.ExpenseDate.Before(start) {
			continue
		}

		exists, err := s.expenseRepo.ExistsForTemplate(clinicID, tmpl.ID, start, end)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		templateID := tmpl.ID
		expense := &domain.Expense{
			ClinicID:    clinicID,
			Description: tmpl.Description,
			Amount:      tmpl.Amount,
			Category:    tmpl.Category,
			ExpenseDate: util.CalculateActualDate(ym.Year, time.Month(ym.Month), *tmpl.RecurringDay),
			TemplateID:  &templateID,
		}
		saved, err := s.expenseRepo.Create(expense)
		if err != nil {
			return nil, err
		}
		created = append(created, saved)
	}

	if len(created) > 0 {
		log.Info().
			Int32("clinic_id", clinicID).
			Str("month", ym.String()).
			Int("count", len(created)).
			Msg("Materialized recurring expenses")
	}
	return created, nil
}
