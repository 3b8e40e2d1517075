package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"moneyboard/internal/core"
	"moneyboard/internal/log"

	_ "modernc.org/sqlite"
)

const timestampLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// migrates it.
func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	schema, err := RunMigrations(dsn)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger = logger.WithComponent(log.ComponentStorage)
	if schema.Applied() {
		logger.Info("Ledger schema migrated", "from", schema.Before, "to", schema.After)
	}
	logger.Info("SQLite database ready", "path", dbPath, "schema_version", schema.After)

	return &SQLiteRepository{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) stamp() string {
	return r.now().Format(timestampLayout)
}

// table maps a kind to its table name; kinds are a closed set so the name
// is safe to interpolate.
func table(kind core.Kind) (string, error) {
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid transaction kind %q", kind)
	}
	return kind.Collection(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c       core.Category
		created string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Color, &created); err != nil {
		return core.Category{}, err
	}
	c.CreatedAt = parseStamp(created)
	return c, nil
}

func parseStamp(s string) core.Timestamp {
	ts, err := core.ParseTimestamp(s)
	if err != nil {
		return core.Timestamp{}
	}
	return ts
}

// ListCategories implements CategoryStore.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, color, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	cats := []core.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, color, created_at FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}
	if in.Color == "" {
		in.Color = DefaultColor
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, color, created_at) VALUES (?, ?, ?)`,
		in.Name, in.Color, r.stamp())
	if err != nil {
		return core.Category{}, categoryWriteError(in.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	return r.GetCategory(ctx, id)
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, id int64, patch core.CategoryPatch) (core.Category, error) {
	c, err := r.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	in := core.CategoryInput{Name: c.Name, Color: c.Color}
	if patch.Name != nil {
		in.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Color != nil {
		in.Color = *patch.Color
	}
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, color = ? WHERE id = ?`, in.Name, in.Color, id); err != nil {
		return core.Category{}, categoryWriteError(in.Name, err)
	}
	return r.GetCategory(ctx, id)
}

func categoryWriteError(name string, err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %q", ErrDuplicateCategory, name)
	}
	return fmt.Errorf("write category %q: %w", name, err)
}

// DeleteCategory refuses to delete categories that transactions still reference.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE id = ?`, id).Scan(&exists); err != nil {
		return fmt.Errorf("find category %d: %w", id, err)
	}
	if exists == 0 {
		return fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}

	var used int
	if err := tx.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM expenses WHERE category_id = ?) + (SELECT COUNT(*) FROM income WHERE category_id = ?)`,
		id, id).Scan(&used); err != nil {
		return fmt.Errorf("count category usage: %w", err)
	}
	if used > 0 {
		return fmt.Errorf("category %d: %w", id, ErrCategoryInUse)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return tx.Commit()
}

const transactionColumns = `t.id, t.amount_cents, t.description, t.date, t.category_id, t.created_at, t.updated_at,
	c.id, c.name, c.color, c.created_at`

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx                    core.Transaction
		cat                   core.Category
		cents                 int64
		date                  string
		created, updated, cAt string
	)
	if err := row.Scan(&tx.ID, &cents, &tx.Description, &date, &tx.CategoryID, &created, &updated,
		&cat.ID, &cat.Name, &cat.Color, &cAt); err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", tx.ID, err)
	}
	tx.Amount = core.MoneyFromCents(cents)
	tx.Date = d
	tx.CreatedAt = parseStamp(created)
	tx.UpdatedAt = parseStamp(updated)
	cat.CreatedAt = parseStamp(cAt)
	tx.Category = &cat
	return tx, nil
}

// ListTransactions implements TransactionStore.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, kind core.Kind, f Filter) ([]core.Transaction, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + ` FROM ` + tbl + ` t JOIN categories c ON c.id = t.category_id WHERE 1 = 1`
	var args []any
	if !f.Start.IsZero() {
		query += ` AND t.date >= ?`
		args = append(args, f.Start.String())
	}
	if !f.End.IsZero() {
		query += ` AND t.date <= ?`
		args = append(args, f.End.String())
	}
	query += ` ORDER BY t.date DESC, t.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", tbl, err)
	}
	defer rows.Close()

	txs := []core.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", tbl, err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, kind core.Kind, id int64) (core.Transaction, error) {
	tbl, err := table(kind)
	if err != nil {
		return core.Transaction{}, err
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM `+tbl+` t JOIN categories c ON c.id = t.category_id WHERE t.id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("%s %d: %w", kind, id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get %s %d: %w", kind, id, err)
	}
	return tx, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, kind core.Kind, in core.TransactionInput) (core.Transaction, error) {
	tbl, err := table(kind)
	if err != nil {
		return core.Transaction{}, err
	}
	in.Description = strings.TrimSpace(in.Description)
	if err := CheckTransactionInput(ctx, r, in); err != nil {
		return core.Transaction{}, err
	}

	now := r.stamp()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO `+tbl+` (amount_cents, description, date, category_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		in.Amount.Cents(), in.Description, in.Date.String(), in.CategoryID, now, now)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create %s: %w", kind, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%s id: %w", kind, err)
	}

	r.logger.InfoContext(ctx, "Transaction saved to SQLite",
		log.FieldKind, kind.String(),
		log.FieldTransactionID, id,
		"amount_cents", in.Amount.Cents(),
		log.FieldCategoryID, in.CategoryID)

	return r.GetTransaction(ctx, kind, id)
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, kind core.Kind, id int64, patch core.TransactionPatch) (core.Transaction, error) {
	tbl, err := table(kind)
	if err != nil {
		return core.Transaction{}, err
	}
	current, err := r.GetTransaction(ctx, kind, id)
	if err != nil {
		return core.Transaction{}, err
	}
	in := patch.Apply(current.Input())
	in.Description = strings.TrimSpace(in.Description)
	if err := CheckTransactionInput(ctx, r, in); err != nil {
		return core.Transaction{}, err
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE `+tbl+` SET amount_cents = ?, description = ?, date = ?, category_id = ?, updated_at = ? WHERE id = ?`,
		in.Amount.Cents(), in.Description, in.Date.String(), in.CategoryID, r.stamp(), id); err != nil {
		return core.Transaction{}, fmt.Errorf("update %s %d: %w", kind, id, err)
	}
	return r.GetTransaction(ctx, kind, id)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, kind core.Kind, id int64) error {
	tbl, err := table(kind)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+tbl+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, core.ErrNotFound)
	}
	r.logger.InfoContext(ctx, "Transaction deleted from SQLite", log.FieldKind, kind.String(), log.FieldTransactionID, id)
	return nil
}

// MonthlyTotals groups by the calendar month of the stored date.
func (r *SQLiteRepository) MonthlyTotals(ctx context.Context, kind core.Kind, limit int) ([]core.MonthlyPoint, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT CAST(substr(date, 1, 4) AS INTEGER) AS y,
		       CAST(substr(date, 6, 2) AS INTEGER) AS m,
		       SUM(amount_cents)
		FROM `+tbl+`
		GROUP BY y, m
		ORDER BY y DESC, m DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("monthly totals for %s: %w", tbl, err)
	}
	defer rows.Close()

	points := []core.MonthlyPoint{}
	for rows.Next() {
		var year, month int
		var cents int64
		if err := rows.Scan(&year, &month, &cents); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		points = append(points, core.MonthlyPoint{Month: core.MonthName(month), Year: year, Amount: core.MoneyFromCents(cents)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(points)
	return points, nil
}
