package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	// Date is a day-granularity point in time. The time-of-day portion is
	// always midnight UTC.
	Date struct {
		time.Time
	}

	// Transaction is a single recorded income or expense.
	//
	// DepartmentName, when non-empty, overrides the owning category's default
	// department for display and grouping. Empty means "inherit from category".
	Transaction struct {
		ID             string
		Type           TransactionType
		Amount         decimal.Decimal
		Currency       string
		CategoryID     string // may reference a deleted category
		DepartmentName string
		Date           Date
		Description    string

		// Payout receipt payload. Opaque to filtering and aggregation.
		IssuedTo       string
		DecisionNumber string
		CashierName    string
		AmountInWords  string
	}

	// Category groups transactions and carries an optional default department.
	Category struct {
		ID             string
		Name           string
		DepartmentName string
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyCurrency    = errors.New("empty currency code")
	ErrEmptyName        = errors.New("empty category name")
	ErrDescriptionLimit = errors.New("description too long (max 200 characters)")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to day granularity.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

// Validate checks caller-supplied invariants before a transaction enters
// storage. The analytics engine itself never validates; it relies on this
// being enforced at the write path.
func (tx Transaction) Validate() error {
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if tx.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(tx.Currency) == "" {
		return ErrEmptyCurrency
	}
	if len(tx.Description) > 200 {
		return ErrDescriptionLimit
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}
