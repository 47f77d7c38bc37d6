// Package storage persists users, expenses and incomes in SQLite. All
// queries are owner-scoped: a record owned by another user behaves exactly
// like a record that does not exist.
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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record is absent or owned by someone else.
var ErrNotFound = errors.New("record not found")

// ErrEmailTaken is returned when registering an already-known email.
var ErrEmailTaken = errors.New("email already registered")

type Repository struct {
	db *sql.DB
}

// NewRepository opens (and migrates) the SQLite database at dbPath.
func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serializes every transaction, which is what makes
	// the income read-modify-write and the budget-guarded insert atomic.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping verifies the database connection is still usable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const timeFormat = time.RFC3339Nano

func nowUTC() time.Time {
	return time.Now().UTC()
}

// --- users ---

// CreateUser stores a new account with an already-hashed password.
func (r *Repository) CreateUser(ctx context.Context, email, passwordHash string) (core.User, error) {
	u := core.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    nowUTC(),
		UpdatedAt:    nowUTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt.Format(timeFormat), u.UpdatedAt.Format(timeFormat))
	if err != nil {
		var exists int
		if scanErr := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&exists); scanErr == nil && exists > 0 {
			return core.User{}, ErrEmailTaken
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetUserByEmail looks up an account for login.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var u core.User
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	u.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	return u, nil
}

// --- expenses ---

const expenseColumns = `id, user_id, amount, main_category, sub_category, occurred_on, year, month, note, source, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var e core.Expense
	var amount, occurredOn, createdAt, updatedAt string
	err := row.Scan(&e.ID, &e.UserID, &amount, &e.MainCategory, &e.SubCategory,
		&occurredOn, &e.Year, &e.Month, &e.Note, &e.Source, &createdAt, &updatedAt)
	if err != nil {
		return core.Expense{}, err
	}
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Expense{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	if e.Date, err = core.ParseDate(occurredOn); err != nil {
		return core.Expense{}, fmt.Errorf("parse stored date %q: %w", occurredOn, err)
	}
	e.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	e.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	return e, nil
}

// CreateExpense validates the proposed expense against the month's budget
// and inserts it, all inside one transaction. It returns
// core.ErrNoIncomeSet or *core.BudgetExceededError on rejection; nothing is
// written in that case.
func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = uuid.NewString()
	e.SetPeriod()
	e.CreatedAt = nowUTC()
	e.UpdatedAt = e.CreatedAt
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	spent, err := monthTotalTx(ctx, tx, e.UserID, e.Year, e.Month)
	if err != nil {
		return core.Expense{}, err
	}
	income, err := incomeAmountTx(ctx, tx, e.UserID, e.Date.MonthKey())
	if err != nil {
		return core.Expense{}, err
	}
	if err := core.CheckBudget(e.Amount, spent, income); err != nil {
		return core.Expense{}, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Amount.String(), e.MainCategory, e.SubCategory,
		e.Date.Format("2006-01-02"), e.Year, e.Month, e.Note, e.Source,
		e.CreatedAt.Format(timeFormat), e.UpdatedAt.Format(timeFormat))
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Expense{}, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"expense_id", e.ID, "user_id", e.UserID, "amount", e.Amount.String(),
		"category", string(e.MainCategory), "month", string(e.Date.MonthKey()))
	return e, nil
}

// ListExpenses returns the owner's expenses, newest first. A nil month
// returns the full ledger.
func (r *Repository) ListExpenses(ctx context.Context, userID string, month *core.MonthKey) ([]core.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = ?`
	args := []any{userID}
	if month != nil {
		query += ` AND year = ? AND month = ?`
		args = append(args, month.Year(), month.Month())
	}
	query += ` ORDER BY occurred_on DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// ExpenseUpdate carries the fields of a partial expense edit. Nil fields
// are left unchanged.
type ExpenseUpdate struct {
	Amount       *decimal.Decimal
	MainCategory *core.MainCategory
	SubCategory  *string
	Date         *core.Date
	Note         *string
}

// UpdateExpense applies a partial edit to an owned expense. The period key
// is re-derived whenever the date changes.
func (r *Repository) UpdateExpense(ctx context.Context, userID, id string, upd ExpenseUpdate) (core.Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("load expense: %w", err)
	}

	if upd.Amount != nil {
		e.Amount = *upd.Amount
	}
	if upd.MainCategory != nil {
		e.MainCategory = *upd.MainCategory
	}
	if upd.SubCategory != nil {
		e.SubCategory = *upd.SubCategory
	}
	if upd.Date != nil {
		e.Date = *upd.Date
	}
	if upd.Note != nil {
		e.Note = *upd.Note
	}
	e.SetPeriod()
	e.UpdatedAt = nowUTC()
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, main_category = ?, sub_category = ?, occurred_on = ?,
		 year = ?, month = ?, note = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		e.Amount.String(), e.MainCategory, e.SubCategory, e.Date.Format("2006-01-02"),
		e.Year, e.Month, e.Note, e.UpdatedAt.Format(timeFormat), id, userID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Expense{}, fmt.Errorf("commit: %w", err)
	}
	return e, nil
}

// DeleteExpense removes an owned expense and returns the deleted record.
func (r *Repository) DeleteExpense(ctx context.Context, userID, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("load expense: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return core.Expense{}, fmt.Errorf("delete expense: %w", err)
	}
	return e, nil
}

func monthTotalTx(ctx context.Context, tx *sql.Tx, userID string, year, month int) (decimal.Decimal, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT amount FROM expenses WHERE user_id = ? AND year = ? AND month = ?`, userID, year, month)
	if err != nil {
		return decimal.Zero, fmt.Errorf("month total: %w", err)
	}
	defer rows.Close()

	// Sum in Go: SQLite would coerce the decimal strings to floats.
	total := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("scan amount: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse stored amount %q: %w", amount, err)
		}
		total = total.Add(d)
	}
	return total, rows.Err()
}

func incomeAmountTx(ctx context.Context, tx *sql.Tx, userID string, month core.MonthKey) (decimal.Decimal, error) {
	var amount string
	err := tx.QueryRowContext(ctx,
		`SELECT amount FROM incomes WHERE user_id = ? AND month = ?`, userID, string(month)).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("income amount: %w", err)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	return d, nil
}

// --- incomes ---

const incomeColumns = `id, user_id, amount, month, note, created_at, updated_at`

func scanIncome(row rowScanner) (core.Income, error) {
	var in core.Income
	var amount, createdAt, updatedAt string
	err := row.Scan(&in.ID, &in.UserID, &amount, &in.Month, &in.Note, &createdAt, &updatedAt)
	if err != nil {
		return core.Income{}, err
	}
	if in.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Income{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	in.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	in.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	return in, nil
}

// AddIncome performs the upsert-by-addition: the first submission for a
// month creates the record, later ones add to its amount and append the
// note. The whole read-modify-write runs in one transaction so concurrent
// submissions cannot lose updates. added reports whether an existing record
// was extended rather than created.
func (r *Repository) AddIncome(ctx context.Context, userID string, amount decimal.Decimal, month core.MonthKey, note string) (income core.Income, added bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Income{}, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+incomeColumns+` FROM incomes WHERE user_id = ? AND month = ?`, userID, string(month))
	existing, scanErr := scanIncome(row)

	switch {
	case scanErr == nil:
		existing.Amount = existing.Amount.Add(amount)
		if note != "" {
			if existing.Note != "" {
				existing.Note = existing.Note + ", " + note
			} else {
				existing.Note = note
			}
		}
		existing.UpdatedAt = nowUTC()
		_, err = tx.ExecContext(ctx,
			`UPDATE incomes SET amount = ?, note = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
			existing.Amount.String(), existing.Note, existing.UpdatedAt.Format(timeFormat), existing.ID, userID)
		if err != nil {
			return core.Income{}, false, fmt.Errorf("update income: %w", err)
		}
		income, added = existing, true

	case errors.Is(scanErr, sql.ErrNoRows):
		income = core.Income{
			ID:        uuid.NewString(),
			UserID:    userID,
			Amount:    amount,
			Month:     month,
			Note:      note,
			CreatedAt: nowUTC(),
			UpdatedAt: nowUTC(),
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO incomes (`+incomeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			income.ID, income.UserID, income.Amount.String(), string(income.Month), income.Note,
			income.CreatedAt.Format(timeFormat), income.UpdatedAt.Format(timeFormat))
		if err != nil {
			return core.Income{}, false, fmt.Errorf("insert income: %w", err)
		}

	default:
		return core.Income{}, false, fmt.Errorf("load income: %w", scanErr)
	}

	if err := tx.Commit(); err != nil {
		return core.Income{}, false, fmt.Errorf("commit: %w", err)
	}
	return income, added, nil
}

// GetIncome returns the owner's income record for one month.
func (r *Repository) GetIncome(ctx context.Context, userID string, month core.MonthKey) (core.Income, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+incomeColumns+` FROM incomes WHERE user_id = ? AND month = ?`, userID, string(month))
	in, err := scanIncome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, ErrNotFound
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("get income: %w", err)
	}
	return in, nil
}

// ListIncomes returns all income records for the owner, newest month first.
func (r *Repository) ListIncomes(ctx context.Context, userID string) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+incomeColumns+` FROM incomes WHERE user_id = ? ORDER BY month DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

// UpdateIncome overwrites amount and/or note directly. This is the edit
// path, distinct from the additive AddIncome.
func (r *Repository) UpdateIncome(ctx context.Context, userID, id string, amount *decimal.Decimal, note *string) (core.Income, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Income{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+incomeColumns+` FROM incomes WHERE id = ? AND user_id = ?`, id, userID)
	in, err := scanIncome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, ErrNotFound
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("load income: %w", err)
	}

	if amount != nil {
		in.Amount = *amount
	}
	if note != nil {
		in.Note = *note
	}
	in.UpdatedAt = nowUTC()
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE incomes SET amount = ?, note = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		in.Amount.String(), in.Note, in.UpdatedAt.Format(timeFormat), id, userID)
	if err != nil {
		return core.Income{}, fmt.Errorf("update income: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Income{}, fmt.Errorf("commit: %w", err)
	}
	return in, nil
}

// DeleteIncome removes an owned income record and returns it.
func (r *Repository) DeleteIncome(ctx context.Context, userID, id string) (core.Income, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+incomeColumns+` FROM incomes WHERE id = ? AND user_id = ?`, id, userID)
	in, err := scanIncome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, ErrNotFound
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("load income: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM incomes WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return core.Income{}, fmt.Errorf("delete income: %w", err)
	}
	return in, nil
}

// MonthIncomeAmount returns the declared income for a month, zero when none
// is set.
func (r *Repository) MonthIncomeAmount(ctx context.Context, userID string, month core.MonthKey) (decimal.Decimal, error) {
	in, err := r.GetIncome(ctx, userID, month)
	if errors.Is(err, ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return in.Amount, nil
}
