package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const expenseColumns = `id, clinic_id, description, amount, category, expense_date, is_paid,
	recurring_day, template_id, receipt_path, created_at, updated_at`

// ExpenseRepository implements domain.ExpenseRepository using PostgreSQL
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

// Create creates a new expense
func (r *ExpenseRepository) Create(e *domain.Expense) (*domain.Expense, error) {
	amount, err := decimalToPgNumeric(e.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO expenses (clinic_id, description, amount, category, expense_date, is_paid,
			recurring_day, template_id, receipt_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+expenseColumns,
		e.ClinicID, e.Description, amount, string(e.Category), timeToPgDate(e.ExpenseDate), e.IsPaid,
		intPtrToPg(e.RecurringDay), int32PtrToPg(e.TemplateID), stringPtrToPgText(e.ReceiptPath))
	return scanExpense(row)
}

// GetByID retrieves an expense
func (r *ExpenseRepository) GetByID(clinicID, id int32) (*domain.Expense, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+expenseColumns+` FROM expenses WHERE clinic_id = $1 AND id = $2`, clinicID, id)
	e, err := scanExpense(row)
	if err != nil {
		return nil, notFound(err, domain.ErrExpenseNotFound)
	}
	return e, nil
}

// GetByRange returns expenses dated within [start, end] inclusive
func (r *ExpenseRepository) GetByRange(clinicID int32, start, end time.Time) ([]*domain.Expense, error) {
	return r.query(`SELECT `+expenseColumns+` FROM expenses
		WHERE clinic_id = $1 AND expense_date BETWEEN $2 AND $3
		ORDER BY expense_date, id`,
		clinicID, timeToPgDate(start), timeToPgDate(end))
}

// GetRecurringTemplates returns expenses flagged as monthly templates
func (r *ExpenseRepository) GetRecurringTemplates(clinicID int32) ([]*domain.Expense, error) {
	return r.query(`SELECT `+expenseColumns+` FROM expenses
		WHERE clinic_id = $1 AND recurring_day IS NOT NULL
		ORDER BY id`, clinicID)
}

// ExistsForTemplate reports whether a template was already materialized in [start, end]
func (r *ExpenseRepository) ExistsForTemplate(clinicID, templateID int32, start, end time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(context.Background(), `
		SELECT EXISTS (
			SELECT 1 FROM expenses
			WHERE clinic_id = $1 AND template_id = $2 AND expense_date BETWEEN $3 AND $4
		)`, clinicID, templateID, timeToPgDate(start), timeToPgDate(end)).Scan(&exists)
	return exists, err
}

// SumByRange totals expenses dated within [start, end] inclusive
func (r *ExpenseRepository) SumByRange(clinicID int32, start, end time.Time) (*domain.ExpenseTotals, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT category,
			COALESCE(SUM(amount), 0),
			COALESCE(SUM(amount) FILTER (WHERE is_paid), 0)
		FROM expenses
		WHERE clinic_id = $1 AND expense_date BETWEEN $2 AND $3
		GROUP BY category`,
		clinicID, timeToPgDate(start), timeToPgDate(end))
	if err != nil {
		return nil, fmt.Errorf("sum expenses: %w", err)
	}
	defer rows.Close()

	totals := &domain.ExpenseTotals{
		Total:  decimal.Zero,
		Paid:   decimal.Zero,
		Unpaid: decimal.Zero,
		ByCat:  make(map[domain.ExpenseCategory]decimal.Decimal),
	}
	for rows.Next() {
		var (
			category string
			total    pgtype.Numeric
			paid     pgtype.Numeric
		)
		if err := rows.Scan(&category, &total, &paid); err != nil {
			return nil, err
		}
		catTotal := pgNumericToDecimal(total)
		totals.ByCat[domain.ExpenseCategory(category)] = catTotal
		totals.Total = totals.Total.Add(catTotal)
		totals.Paid = totals.Paid.Add(pgNumericToDecimal(paid))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	totals.Unpaid = totals.Total.Sub(totals.Paid)
	return totals, nil
}

// Update updates an expense
func (r *ExpenseRepository) Update(e *domain.Expense) (*domain.Expense, error) {
	amount, err := decimalToPgNumeric(e.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(context.Background(), `
		UPDATE expenses SET description = $3, amount = $4, category = $5, expense_date = $6, is_paid = $7,
			recurring_day = $8, receipt_path = $9, updated_at = NOW()
		WHERE clinic_id = $1 AND id = $2
		RETURNING `+expenseColumns,
		e.ClinicID, e.ID, e.Description, amount, string(e.Category), timeToPgDate(e.ExpenseDate), e.IsPaid,
		intPtrToPg(e.RecurringDay), stringPtrToPgText(e.ReceiptPath))
	updated, err := scanExpense(row)
	if err != nil {
		return nil, notFound(err, domain.ErrExpenseNotFound)
	}
	return updated, nil
}

// TogglePaid flips the paid flag
func (r *ExpenseRepository) TogglePaid(clinicID, id int32) (*domain.Expense, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE expenses SET is_paid = NOT is_paid, updated_at = NOW()
		WHERE clinic_id = $1 AND id = $2
		RETURNING `+expenseColumns, clinicID, id)
	updated, err := scanExpense(row)
	if err != nil {
		return nil, notFound(err, domain.ErrExpenseNotFound)
	}
	return updated, nil
}

// Delete removes an expense
func (r *ExpenseRepository) Delete(clinicID, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM expenses WHERE clinic_id = $1 AND id = $2`, clinicID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

func (r *ExpenseRepository) query(sql string, args ...any) ([]*domain.Expense, error) {
	rows, err := r.pool.Query(context.Background(), sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var result []*domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func intPtrToPg(v *int) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*v), Valid: true}
}

func int32PtrToPg(v *int32) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: *v, Valid: true}
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var (
		e            domain.Expense
		amount       pgtype.Numeric
		category     string
		expenseDate  pgtype.Date
		recurringDay pgtype.Int4
		templateID   pgtype.Int4
		receiptPath  pgtype.Text
	)
	err := row.Scan(&e.ID, &e.ClinicID, &e.Description, &amount, &category, &expenseDate, &e.IsPaid,
		&recurringDay, &templateID, &receiptPath, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Amount = pgNumericToDecimal(amount)
	e.Category = domain.ExpenseCategory(category)
	e.ExpenseDate = pgDateToTime(expenseDate)
	e.ReceiptPath = pgTextToStringPtr(receiptPath)
	if recurringDay.Valid {
		day := int(recurringDay.Int32)
		e.RecurringDay = &day
	}
	if templateID.Valid {
		id := templateID.Int32
		e.TemplateID = &id
	}
	return &e, nil
}
