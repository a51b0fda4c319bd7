package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"mywallet/internal/core"
)

func (r *SQLiteRepository) FindByEmail(ctx context.Context, email string) (core.Identity, bool, error) {
	var u core.Identity
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, username FROM users WHERE email = ? COLLATE NOCASE`,
		strings.TrimSpace(email)).Scan(&u.ID, &u.Email, &u.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Identity{}, false, nil
	}
	if err != nil {
		return core.Identity{}, false, fmt.Errorf("get user by email: %w", err)
	}
	return u, true, nil
}

// EnsureUser creates the user if the address is unknown and returns it.
func (r *SQLiteRepository) EnsureUser(ctx context.Context, email, username string) (core.Identity, error) {
	email = strings.TrimSpace(email)
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, username) VALUES (?, ?) ON CONFLICT (email) DO NOTHING`,
		email, username); err != nil {
		return core.Identity{}, fmt.Errorf("create user: %w", err)
	}
	u, _, err := r.FindByEmail(ctx, email)
	return u, err
}

func (r *SQLiteRepository) FindCategory(ctx context.Context, id int64) (core.CategoryRef, bool, error) {
	var c core.CategoryRef
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, transaction_type_id FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.TransactionType)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CategoryRef{}, false, nil
	}
	if err != nil {
		return core.CategoryRef{}, false, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, true, nil
}

// Categories returns the repository's category lookup.
func (r *SQLiteRepository) Categories() CategoryLookup {
	return CategoryLookup{r}
}

// CategoryLookup adapts SQLiteRepository to ports.CategoryLookup.
type CategoryLookup struct {
	repo *SQLiteRepository
}

func (c CategoryLookup) FindByID(ctx context.Context, id int64) (core.CategoryRef, bool, error) {
	return c.repo.FindCategory(ctx, id)
}

func (r *SQLiteRepository) FindByOwnerMonthYear(ctx context.Context, ownerID int64, month, year int) (core.BudgetThreshold, bool, error) {
	b := core.BudgetThreshold{OwnerID: ownerID, Month: month, Year: year}
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT transaction_type_id, limit_cents FROM budgets WHERE user_id = ? AND month = ? AND year = ?`,
		ownerID, month, year).Scan(&b.TransactionType, &cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BudgetThreshold{}, false, nil
	}
	if err != nil {
		return core.BudgetThreshold{}, false, fmt.Errorf("get budget %d-%02d: %w", year, month, err)
	}
	b.Limit = core.FromCents(cents)
	return b, true, nil
}

// SetBudget stores or replaces the owner's limit for a month.
func (r *SQLiteRepository) SetBudget(ctx context.Context, b core.BudgetThreshold) error {
	txType := b.TransactionType
	if txType == 0 {
		txType = core.TransactionTypeExpense
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, month, year, transaction_type_id, limit_cents)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, month, year)
		DO UPDATE SET transaction_type_id = excluded.transaction_type_id, limit_cents = excluded.limit_cents`,
		b.OwnerID, b.Month, b.Year, txType, core.ToCents(b.Limit))
	if err != nil {
		return fmt.Errorf("set budget %d-%02d: %w", b.Year, b.Month, err)
	}
	return nil
}
