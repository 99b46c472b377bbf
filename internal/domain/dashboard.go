package domain

import "github.com/shopspring/decimal"

// MonthFinancials aggregates one month of clinic activity
type MonthFinancials struct {
	Year         int               `json:"year"`
	Month        int               `json:"month"`
	Label        string            `json:"label"`
	Revenue      decimal.Decimal   `json:"revenue"`
	Receivable   decimal.Decimal   `json:"receivable"`
	Expenses     *ExpenseTotals    `json:"expenses"`
	Net          decimal.Decimal   `json:"net"`
	Appointments *AppointmentStats `json:"appointments"`
}

// MonthComparison holds deltas between a month and the month before it
type MonthComparison struct {
	RevenueDelta      decimal.Decimal  `json:"revenueDelta"`
	ExpensesDelta     decimal.Decimal  `json:"expensesDelta"`
	NetDelta          decimal.Decimal  `json:"netDelta"`
	AppointmentsDelta int              `json:"appointmentsDelta"`
	RevenueChangePct  *decimal.Decimal `json:"revenueChangePct,omitempty"`
}

// DashboardSummary contains the main dashboard metrics
type DashboardSummary struct {
	Current    *MonthFinancials `json:"current"`
	Previous   *MonthFinancials `json:"previous"`
	Comparison *MonthComparison `json:"comparison"`
	LimitUsage *LimitUsage      `json:"limitUsage"`
	IsHistoric bool             `json:"isHistoric"`
}
