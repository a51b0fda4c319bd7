// Package memory is an in-process transaction store used for development
// and tests. It implements the same capabilities as the SQLite repository.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"mywallet/internal/core"
	"mywallet/internal/filter"
)

type budgetKey struct {
	owner       int64
	month, year int
}

type Store struct {
	mu         sync.RWMutex
	users      map[string]core.Identity
	categories map[int64]core.CategoryRef
	budgets    map[budgetKey]core.BudgetThreshold
	items      map[int64]core.Transaction
	nextTxID   int64
	nextUserID int64
}

// New returns a store seeded with the given categories.
func New(categories []core.CategoryRef) *Store {
	s := &Store{
		users:      make(map[string]core.Identity),
		categories: make(map[int64]core.CategoryRef, len(categories)),
		budgets:    make(map[budgetKey]core.BudgetThreshold),
		items:      make(map[int64]core.Transaction),
	}
	for _, c := range categories {
		s.categories[c.ID] = c
	}
	return s
}

// AddUser registers email and returns its identity. Registering the same
// address twice returns the existing identity.
func (s *Store) AddUser(email, username string) core.Identity {
	key := normalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[key]; ok {
		return u
	}
	s.nextUserID++
	u := core.Identity{ID: s.nextUserID, Email: strings.TrimSpace(email), Username: username}
	s.users[key] = u
	return u
}

// SetBudget stores or replaces the owner's limit for a month.
func (s *Store) SetBudget(b core.BudgetThreshold) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[budgetKey{b.OwnerID, b.Month, b.Year}] = b
}

func (s *Store) FindByEmail(_ context.Context, email string) (core.Identity, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[normalizeEmail(email)]
	return u, ok, nil
}

func (s *Store) FindCategory(_ context.Context, id int64) (core.CategoryRef, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	return c, ok, nil
}

func (s *Store) FindByOwnerMonthYear(_ context.Context, ownerID int64, month, year int) (core.BudgetThreshold, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[budgetKey{ownerID, month, year}]
	return b, ok, nil
}

func (s *Store) Save(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := core.ValidateAmount(tx.Amount); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.ID == 0 {
		s.nextTxID++
		tx.ID = s.nextTxID
	} else if _, ok := s.items[tx.ID]; !ok {
		return core.Transaction{}, fmt.Errorf("save transaction %d: %w", tx.ID, core.ErrTransactionNotFound)
	}
	s.items[tx.ID] = tx
	return tx, nil
}

func (s *Store) FindByID(_ context.Context, id int64) (core.Transaction, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.items[id]
	return tx, ok, nil
}

func (s *Store) ExistsByID(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[id]
	return ok, nil
}

func (s *Store) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *Store) QueryPage(_ context.Context, q core.OwnerQuery) (core.Page[core.TransactionSummary], error) {
	cmpFn, err := comparator(q.Page.Sort)
	if err != nil {
		return core.Page[core.TransactionSummary]{}, err
	}
	owner := normalizeEmail(q.OwnerEmail)
	matches := s.collect(func(t core.TransactionSummary) bool {
		if owner != "" && normalizeEmail(t.OwnerEmail) != owner {
			return false
		}
		if q.TransactionType != 0 && t.TransactionType != q.TransactionType {
			return false
		}
		return matchesSearch(t, q.SearchKey)
	})
	slices.SortFunc(matches, cmpFn)
	return paginate(matches, q.Page), nil
}

func (s *Store) QueryAll(_ context.Context, q core.PageQuery) (core.Page[core.TransactionSummary], error) {
	matches := s.collect(func(t core.TransactionSummary) bool {
		return matchesSearch(t, q.SearchKey)
	})
	slices.SortFunc(matches, func(a, b core.TransactionSummary) int {
		return cmp.Compare(b.ID, a.ID)
	})
	return paginate(matches, q.Page), nil
}

func (s *Store) QueryFiltered(_ context.Context, spec filter.Spec) ([]core.TransactionSummary, error) {
	matches := s.collect(spec.Matches)
	slices.SortFunc(matches, func(a, b core.TransactionSummary) int {
		if c := a.Date.Compare(b.Date.Time); c != 0 {
			return -c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return matches, nil
}

func (s *Store) SumAmount(_ context.Context, ownerID int64, txType, month, year int) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, tx := range s.items {
		if tx.Owner.ID != ownerID || tx.Category.TransactionType != txType || tx.Date.IsZero() {
			continue
		}
		if tx.Date.Month() != month || tx.Date.Year() != year {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total, nil
}

// Categories returns the store's category lookup.
func (s *Store) Categories() CategoryLookup {
	return CategoryLookup{s}
}

// CategoryLookup adapts Store to ports.CategoryLookup.
type CategoryLookup struct {
	store *Store
}

func (c CategoryLookup) FindByID(ctx context.Context, id int64) (core.CategoryRef, bool, error) {
	return c.store.FindCategory(ctx, id)
}

func (s *Store) collect(keep func(core.TransactionSummary) bool) []core.TransactionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.TransactionSummary, 0, len(s.items))
	for _, tx := range s.items {
		sum := tx.Summary()
		if keep(sum) {
			out = append(out, sum)
		}
	}
	return out
}

func paginate(items []core.TransactionSummary, p core.PageRequest) core.Page[core.TransactionSummary] {
	total := int64(len(items))
	start := min(p.Offset(), len(items))
	end := len(items)
	if p.Size < end-start {
		end = start + p.Size
	}
	return core.NewPage(slices.Clone(items[start:end]), p.Size, total)
}

func comparator(s core.Sort) (func(a, b core.TransactionSummary) int, error) {
	var primary func(a, b core.TransactionSummary) int
	switch strings.ToLower(s.Field) {
	case "", core.SortByID:
		primary = func(a, b core.TransactionSummary) int { return 0 }
	case core.SortByDate:
		primary = func(a, b core.TransactionSummary) int { return a.Date.Compare(b.Date.Time) }
	case core.SortByAmount:
		primary = func(a, b core.TransactionSummary) int { return a.Amount.Cmp(b.Amount) }
	case core.SortByDescription:
		primary = func(a, b core.TransactionSummary) int {
			return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
		}
	case core.SortByCategory:
		primary = func(a, b core.TransactionSummary) int {
			return strings.Compare(strings.ToLower(a.CategoryName), strings.ToLower(b.CategoryName))
		}
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidSortField, s.Field)
	}

	desc := s.Direction == core.Desc
	return func(a, b core.TransactionSummary) int {
		c := primary(a, b)
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if desc {
			return -c
		}
		return c
	}, nil
}

func matchesSearch(t core.TransactionSummary, key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Description), key) ||
		strings.Contains(strings.ToLower(t.CategoryName), key)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
