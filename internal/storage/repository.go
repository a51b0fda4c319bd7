package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"mywallet/internal/core"
	"mywallet/internal/filter"
	"mywallet/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements the transaction store, identity lookups and
// budget lookup on a single SQLite file. Amounts are stored as integer cents.
type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentStorage)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dsn)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("SQLite database ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db, logger: logger}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const selectTransaction = `
SELECT t.id, t.description, t.amount_cents, t.date,
       u.id, u.email, u.username,
       c.id, c.name, c.transaction_type_id
FROM transactions t
JOIN users u ON u.id = t.user_id
JOIN categories c ON c.id = t.category_id`

const selectSummary = `
SELECT t.id, t.category_id, c.name, c.transaction_type_id,
       t.description, t.amount_cents, t.date, u.email
FROM transactions t
JOIN users u ON u.id = t.user_id
JOIN categories c ON c.id = t.category_id`

// Save inserts tx when it has no ID and updates it otherwise. Amounts finer
// than a cent are rejected rather than rounded.
func (r *SQLiteRepository) Save(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := core.ValidateAmount(tx.Amount); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	date := nullDate(tx.Date)
	cents := core.ToCents(tx.Amount)

	if tx.ID == 0 {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO transactions (user_id, category_id, description, amount_cents, date) VALUES (?, ?, ?, ?, ?)`,
			tx.Owner.ID, tx.Category.ID, tx.Description, cents, date)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return core.Transaction{}, fmt.Errorf("read transaction id: %w", err)
		}
		tx.ID = id
	} else {
		res, err := r.db.ExecContext(ctx,
			`UPDATE transactions
			 SET user_id = ?, category_id = ?, description = ?, amount_cents = ?, date = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`,
			tx.Owner.ID, tx.Category.ID, tx.Description, cents, date, tx.ID)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("update transaction %d: %w", tx.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return core.Transaction{}, fmt.Errorf("update transaction %d: %w", tx.ID, core.ErrTransactionNotFound)
		}
	}

	tx.Amount = core.FromCents(cents)
	r.logger.DebugContext(ctx, "Transaction saved",
		log.FieldTransactionID, tx.ID,
		log.FieldOwnerID, tx.Owner.ID)
	return tx, nil
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id int64) (core.Transaction, bool, error) {
	row := r.db.QueryRowContext(ctx, selectTransaction+` WHERE t.id = ?`, id)

	var (
		tx    core.Transaction
		cents int64
		date  sql.NullString
	)
	err := row.Scan(&tx.ID, &tx.Description, &cents, &date,
		&tx.Owner.ID, &tx.Owner.Email, &tx.Owner.Username,
		&tx.Category.ID, &tx.Category.Name, &tx.Category.TransactionType)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, false, nil
	}
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("get transaction %d: %w", id, err)
	}

	tx.Amount = core.FromCents(cents)
	if tx.Date, err = scanDate(date); err != nil {
		return core.Transaction{}, false, err
	}
	return tx, true, nil
}

func (r *SQLiteRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check transaction %d: %w", id, err)
	}
	return exists, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) QueryPage(ctx context.Context, q core.OwnerQuery) (core.Page[core.TransactionSummary], error) {
	order, err := orderBy(q.Page.Sort)
	if err != nil {
		return core.Page[core.TransactionSummary]{}, err
	}

	var w where
	if email := strings.TrimSpace(q.OwnerEmail); email != "" {
		w.add(`u.email = ? COLLATE NOCASE`, email)
	}
	if q.TransactionType != 0 {
		w.add(`c.transaction_type_id = ?`, q.TransactionType)
	}
	w.search(q.SearchKey)

	return r.page(ctx, w, order, q.Page)
}

func (r *SQLiteRepository) QueryAll(ctx context.Context, q core.PageQuery) (core.Page[core.TransactionSummary], error) {
	var w where
	w.search(q.SearchKey)
	return r.page(ctx, w, `t.id DESC`, q.Page)
}

func (r *SQLiteRepository) QueryFiltered(ctx context.Context, spec filter.Spec) ([]core.TransactionSummary, error) {
	w, err := whereFromSpec(spec)
	if err != nil {
		return nil, err
	}
	return r.summaries(ctx, selectSummary+w.sql()+` ORDER BY t.date DESC, t.id DESC`, w.args...)
}

// SumAmount totals dated transactions of txType within the month.
func (r *SQLiteRepository) SumAmount(ctx context.Context, ownerID int64, txType, month, year int) (decimal.Decimal, error) {
	from := core.NewDate(year, month, 1)
	to := from.Time.AddDate(0, 1, 0)

	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(t.amount_cents), 0)
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ? AND c.transaction_type_id = ?
		  AND t.date >= ? AND t.date < ?`,
		ownerID, txType, from.String(), to.Format(core.ISODate)).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum transactions for %d-%02d: %w", year, month, err)
	}
	return core.FromCents(total), nil
}

func (r *SQLiteRepository) page(ctx context.Context, w where, order string, p core.PageRequest) (core.Page[core.TransactionSummary], error) {
	var total int64
	countSQL := `SELECT COUNT(*) FROM transactions t
		JOIN users u ON u.id = t.user_id
		JOIN categories c ON c.id = t.category_id` + w.sql()
	if err := r.db.QueryRowContext(ctx, countSQL, w.args...).Scan(&total); err != nil {
		return core.Page[core.TransactionSummary]{}, fmt.Errorf("count transactions: %w", err)
	}
	if total == 0 {
		return core.EmptyPage[core.TransactionSummary](), nil
	}

	args := append(append([]any{}, w.args...), p.Size, p.Offset())
	items, err := r.summaries(ctx, selectSummary+w.sql()+` ORDER BY `+order+` LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return core.Page[core.TransactionSummary]{}, err
	}
	return core.NewPage(items, p.Size, total), nil
}

func (r *SQLiteRepository) summaries(ctx context.Context, query string, args ...any) ([]core.TransactionSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	items := []core.TransactionSummary{}
	for rows.Next() {
		var (
			s     core.TransactionSummary
			cents int64
			date  sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.CategoryName, &s.TransactionType,
			&s.Description, &cents, &date, &s.OwnerEmail); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		s.Amount = core.FromCents(cents)
		if s.Date, err = scanDate(date); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return items, nil
}

func nullDate(d core.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func scanDate(s sql.NullString) (core.Date, error) {
	if !s.Valid || s.String == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(s.String)
	if err != nil {
		return core.Date{}, fmt.Errorf("malformed stored date %q", s.String)
	}
	return d, nil
}
