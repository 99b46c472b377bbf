package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseCategory string

const (
	ExpenseCategoryRent     ExpenseCategory = "rent"
	ExpenseCategorySupplies ExpenseCategory = "supplies"
	ExpenseCategoryPayroll  ExpenseCategory = "payroll"
	ExpenseCategoryTaxes    ExpenseCategory = "taxes"
	ExpenseCategoryUtility  ExpenseCategory = "utilities"
	ExpenseCategoryOther    ExpenseCategory = "other"
)

// IsValid reports whether c is a known category
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategoryRent, ExpenseCategorySupplies, ExpenseCategoryPayroll,
		ExpenseCategoryTaxes, ExpenseCategoryUtility, ExpenseCategoryOther:
		return true
	}
	return false
}

type Expense struct {
	ID          int32           `json:"id"`
	ClinicID    int32           `json:"clinicId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    ExpenseCategory `json:"category"`
	ExpenseDate time.Time       `json:"expenseDate"`
	IsPaid      bool            `json:"isPaid"`
	// RecurringDay marks a monthly template; the expense repeats on that day of month
	RecurringDay *int      `json:"recurringDay,omitempty"`
	TemplateID   *int32    `json:"templateId,omitempty"`
	ReceiptPath  *string   `json:"receiptPath,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ExpenseTotals holds expense sums for a date range
type ExpenseTotals struct {
	Total  decimal.Decimal                     `json:"total"`
	Paid   decimal.Decimal                     `json:"paid"`
	Unpaid decimal.Decimal                     `json:"unpaid"`
	ByCat  map[ExpenseCategory]decimal.Decimal `json:"byCategory"`
}

type ExpenseRepository interface {
	Create(expense *Expense) (*Expense, error)
	GetByID(clinicID, id int32) (*Expense, error)
	GetByRange(clinicID int32, start, end time.Time) ([]*Expense, error)
	GetRecurringTemplates(clinicID int32) ([]*Expense, error)
	ExistsForTemplate(clinicID, templateID int32, start, end time.Time) (bool, error)
	SumByRange(clinicID int32, start, end time.Time) (*ExpenseTotals, error)
	Update(expense *Expense) (*Expense, error)
	TogglePaid(clinicID, id int32) (*Expense, error)
	Delete(clinicID, id int32) error
}
