package core

import "github.com/shopspring/decimal"

// CurrencyBucket accumulates income and expense totals for one currency.
// Amounts are never converted between currencies.
type CurrencyBucket struct {
	Currency string
	Income   decimal.Decimal
	Expense  decimal.Decimal
}

// MonthSummary is a derived per-currency aggregate for a specific year+month,
// rebuilt by the summary worker from the transaction log.
type MonthSummary struct {
	Currency string
	Year     int
	Month    int // 1-12
	Income   decimal.Decimal
	Expense  decimal.Decimal
}
