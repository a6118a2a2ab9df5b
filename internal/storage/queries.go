package storage

import (
	"context"
	"database/sql"
)

// DBTX abstracts *sql.DB and *sql.Tx so queries can run in either.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds the raw SQL access layer.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const transactionColumns = `id, type, amount, currency, category_id, department_name, tx_date,
	description, issued_to, decision_number, cashier_name, amount_in_words`

// transactionRow mirrors one transactions table row.
type transactionRow struct {
	ID             string
	Type           string
	Amount         string
	Currency       string
	CategoryID     sql.NullString
	DepartmentName sql.NullString
	TxDate         string
	Description    string
	IssuedTo       string
	DecisionNumber string
	CashierName    string
	AmountInWords  string
}

// categoryRow mirrors one categories table row.
type categoryRow struct {
	ID             string
	Name           string
	DepartmentName sql.NullString
}

// summaryRow mirrors one month_summaries table row.
type summaryRow struct {
	Currency     string
	Year         int
	Month        int
	TotalIncome  string
	TotalExpense string
}

func scanTransaction(s interface{ Scan(...any) error }) (transactionRow, error) {
	var r transactionRow
	err := s.Scan(
		&r.ID, &r.Type, &r.Amount, &r.Currency, &r.CategoryID, &r.DepartmentName,
		&r.TxDate, &r.Description, &r.IssuedTo, &r.DecisionNumber, &r.CashierName,
		&r.AmountInWords,
	)
	return r, err
}

func (q *Queries) CreateTransaction(ctx context.Context, r transactionRow) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Type, r.Amount, r.Currency, r.CategoryID, r.DepartmentName,
		r.TxDate, r.Description, r.IssuedTo, r.DecisionNumber, r.CashierName,
		r.AmountInWords,
	)
	return err
}

func (q *Queries) GetTransaction(ctx context.Context, id string) (transactionRow, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ? AND deleted_at IS NULL`, id)
	return scanTransaction(row)
}

// ListTransactions returns live transactions in creation order, so callers
// that sort by date keep a deterministic tie-break.
func (q *Queries) ListTransactions(ctx context.Context) ([]transactionRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE deleted_at IS NULL
		ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []transactionRow
	for rows.Next() {
		r, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListTransactionsBetween returns live transactions with tx_date in the
// inclusive [from, to] range (dates formatted YYYY-MM-DD).
func (q *Queries) ListTransactionsBetween(ctx context.Context, from, to string) ([]transactionRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE deleted_at IS NULL AND tx_date >= ? AND tx_date <= ?
		ORDER BY created_at, id`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []transactionRow
	for rows.Next() {
		r, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) SoftDeleteTransaction(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE transactions
		SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) UpdateTransactionDepartment(ctx context.Context, id string, department sql.NullString) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE transactions
		SET department_name = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`, department, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListTransactionMonths returns the distinct (year, month) pairs that have
// live transactions, for full summary rebuilds.
func (q *Queries) ListTransactionMonths(ctx context.Context) ([][2]int, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT DISTINCT CAST(strftime('%Y', tx_date) AS INTEGER),
		       CAST(strftime('%m', tx_date) AS INTEGER)
		FROM transactions
		WHERE deleted_at IS NULL
		ORDER BY 1, 2`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][2]int
	for rows.Next() {
		var ym [2]int
		if err := rows.Scan(&ym[0], &ym[1]); err != nil {
			return nil, err
		}
		out = append(out, ym)
	}
	return out, rows.Err()
}

func (q *Queries) CreateCategory(ctx context.Context, r categoryRow) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, department_name)
		VALUES (?, ?, ?)`,
		r.ID, r.Name, r.DepartmentName,
	)
	return err
}

func (q *Queries) GetCategory(ctx context.Context, id string) (categoryRow, error) {
	var r categoryRow
	err := q.db.QueryRowContext(ctx, `
		SELECT id, name, department_name
		FROM categories
		WHERE id = ?`, id).Scan(&r.ID, &r.Name, &r.DepartmentName)
	return r, err
}

func (q *Queries) ListCategories(ctx context.Context) ([]categoryRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, department_name
		FROM categories
		ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []categoryRow
	for rows.Next() {
		var r categoryRow
		if err := rows.Scan(&r.ID, &r.Name, &r.DepartmentName); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) UpdateCategory(ctx context.Context, id, name string, department sql.NullString) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, department_name = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, name, department, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteCategory(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	return err
}

func (q *Queries) UpsertMonthSummary(ctx context.Context, r summaryRow) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO month_summaries (currency, year, month, total_income, total_expense, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (currency, year, month) DO UPDATE SET
			total_income = excluded.total_income,
			total_expense = excluded.total_expense,
			updated_at = CURRENT_TIMESTAMP`,
		r.Currency, r.Year, r.Month, r.TotalIncome, r.TotalExpense,
	)
	return err
}

func (q *Queries) DeleteMonthSummaries(ctx context.Context, year, month int) error {
	_, err := q.db.ExecContext(ctx, `
		DELETE FROM month_summaries WHERE year = ? AND month = ?`, year, month)
	return err
}

func (q *Queries) ListMonthSummaries(ctx context.Context, year, month int) ([]summaryRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT currency, year, month, total_income, total_expense
		FROM month_summaries
		WHERE year = ? AND month = ?
		ORDER BY currency`, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []summaryRow
	for rows.Next() {
		var r summaryRow
		if err := rows.Scan(&r.Currency, &r.Year, &r.Month, &r.TotalIncome, &r.TotalExpense); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
