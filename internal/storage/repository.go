package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"kasa/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist (or was soft deleted).
var ErrNotFound = errors.New("not found")

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction implements services.TransactionStore.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := r.queries.CreateTransaction(ctx, transactionToRow(tx)); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"type", string(tx.Type),
		"amount", tx.Amount.String(),
		"currency", tx.Currency,
		"date", tx.Date.Format(dateLayout))

	return tx, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return rowToTransaction(row)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return rowsToTransactions(rows)
}

// ListTransactionsInMonth returns live transactions dated within the given
// calendar month, boundaries inclusive.
func (r *SQLiteRepository) ListTransactionsInMonth(ctx context.Context, year, month int) ([]core.Transaction, error) {
	from := core.NewDate(year, month, 1)
	to := core.NewDate(year, month+1, 0) // day zero of the next month
	rows, err := r.queries.ListTransactionsBetween(ctx, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("list transactions for %d-%02d: %w", year, month, err)
	}
	return rowsToTransactions(rows)
}

func (r *SQLiteRepository) SoftDeleteTransaction(ctx context.Context, id string) error {
	n, err := r.queries.SoftDeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	slog.InfoContext(ctx, "Transaction soft deleted", "id", id)
	return nil
}

// UpdateTransactionDepartment implements services.TransactionUpdater.
// An empty department clears the override (stored as NULL).
func (r *SQLiteRepository) UpdateTransactionDepartment(ctx context.Context, id, department string) error {
	n, err := r.queries.UpdateTransactionDepartment(ctx, id, nullable(department))
	if err != nil {
		return fmt.Errorf("update transaction department: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "Transaction department updated",
		"id", id,
		"department", department,
		"cleared", department == "")
	return nil
}

func (r *SQLiteRepository) ListTransactionMonths(ctx context.Context) ([][2]int, error) {
	months, err := r.queries.ListTransactionMonths(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transaction months: %w", err)
	}
	return months, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := r.queries.CreateCategory(ctx, categoryRow{
		ID:             c.ID,
		Name:           c.Name,
		DepartmentName: nullable(c.DepartmentName),
	}); err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	slog.InfoContext(ctx, "Category saved", "id", c.ID, "name", c.Name)
	return c, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	row, err := r.queries.GetCategory(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return core.Category{ID: row.ID, Name: row.Name, DepartmentName: row.DepartmentName.String}, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	out := make([]core.Category, len(rows))
	for i, row := range rows {
		out[i] = core.Category{ID: row.ID, Name: row.Name, DepartmentName: row.DepartmentName.String}
	}
	return out, nil
}

// UpdateCategory implements services.CategoryUpdater. The name is written
// back as given; an empty department clears the category default.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, id, name, department string) error {
	n, err := r.queries.UpdateCategory(ctx, id, name, nullable(department))
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "Category updated",
		"id", id,
		"name", name,
		"department", department)
	return nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	if err := r.queries.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

// ReplaceMonthSummaries rewrites the derived per-currency totals for one
// month in a single transaction.
func (r *SQLiteRepository) ReplaceMonthSummaries(ctx context.Context, year, month int, summaries []core.MonthSummary) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin summary rewrite: %w", err)
	}
	defer dbTx.Rollback()

	q := New(dbTx)
	if err := q.DeleteMonthSummaries(ctx, year, month); err != nil {
		return fmt.Errorf("clear month summaries: %w", err)
	}
	for _, s := range summaries {
		if err := q.UpsertMonthSummary(ctx, summaryRow{
			Currency:     s.Currency,
			Year:         s.Year,
			Month:        s.Month,
			TotalIncome:  s.Income.String(),
			TotalExpense: s.Expense.String(),
		}); err != nil {
			return fmt.Errorf("upsert summary %s %d-%02d: %w", s.Currency, s.Year, s.Month, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit summary rewrite: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListMonthSummaries(ctx context.Context, year, month int) ([]core.MonthSummary, error) {
	rows, err := r.queries.ListMonthSummaries(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("list month summaries: %w", err)
	}

	out := make([]core.MonthSummary, len(rows))
	for i, row := range rows {
		income, err := decimal.NewFromString(row.TotalIncome)
		if err != nil {
			return nil, fmt.Errorf("parse income for %s: %w", row.Currency, err)
		}
		expense, err := decimal.NewFromString(row.TotalExpense)
		if err != nil {
			return nil, fmt.Errorf("parse expense for %s: %w", row.Currency, err)
		}
		out[i] = core.MonthSummary{
			Currency: row.Currency,
			Year:     row.Year,
			Month:    row.Month,
			Income:   income,
			Expense:  expense,
		}
	}
	return out, nil
}

func transactionToRow(tx core.Transaction) transactionRow {
	return transactionRow{
		ID:             tx.ID,
		Type:           string(tx.Type),
		Amount:         tx.Amount.String(),
		Currency:       tx.Currency,
		CategoryID:     nullable(tx.CategoryID),
		DepartmentName: nullable(tx.DepartmentName),
		TxDate:         tx.Date.Format(dateLayout),
		Description:    tx.Description,
		IssuedTo:       tx.IssuedTo,
		DecisionNumber: tx.DecisionNumber,
		CashierName:    tx.CashierName,
		AmountInWords:  tx.AmountInWords,
	}
}

func rowToTransaction(row transactionRow) (core.Transaction, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount of %s: %w", row.ID, err)
	}
	date, err := parseDate(row.TxDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date of %s: %w", row.ID, err)
	}

	return core.Transaction{
		ID:             row.ID,
		Type:           core.TransactionType(row.Type),
		Amount:         amount,
		Currency:       row.Currency,
		CategoryID:     row.CategoryID.String,
		DepartmentName: row.DepartmentName.String,
		Date:           date,
		Description:    row.Description,
		IssuedTo:       row.IssuedTo,
		DecisionNumber: row.DecisionNumber,
		CashierName:    row.CashierName,
		AmountInWords:  row.AmountInWords,
	}, nil
}

func rowsToTransactions(rows []transactionRow) ([]core.Transaction, error) {
	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		tx, err := rowToTransaction(row)
		if err != nil {
			return nil, err
		}
		out[i] = tx
	}
	return out, nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: t}, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
