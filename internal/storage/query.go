package storage

import (
	"fmt"
	"strings"

	"mywallet/internal/core"
	"mywallet/internal/filter"
)

// where accumulates AND-ed conditions and their bound arguments.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// search matches key as a case-insensitive substring of the description or
// the category name.
func (w *where) search(key string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	pattern := "%" + escapeLike(key) + "%"
	w.add(`(t.description LIKE ? ESCAPE '\' OR c.name LIKE ? ESCAPE '\')`, pattern, pattern)
}

func (w where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// whereFromSpec renders each clause of spec as a bound condition.
func whereFromSpec(spec filter.Spec) (where, error) {
	var w where
	for _, c := range spec.Clauses {
		switch c := c.(type) {
		case filter.OwnerEquals:
			w.add(`u.email = ? COLLATE NOCASE`, c.Email)
		case filter.DateBetween:
			if c.From != nil {
				w.add(`t.date >= ?`, c.From.String())
			}
			if c.To != nil {
				w.add(`t.date <= ?`, c.To.String())
			}
		case filter.CategoryEquals:
			w.add(`t.category_id = ?`, c.CategoryID)
		case filter.AmountBetween:
			// Stored amounts are whole cents, so the bounds round inwards.
			if c.Min != nil {
				w.add(`t.amount_cents >= ?`, c.Min.Shift(2).Ceil().IntPart())
			}
			if c.Max != nil {
				w.add(`t.amount_cents <= ?`, c.Max.Shift(2).Floor().IntPart())
			}
		default:
			return where{}, fmt.Errorf("unsupported filter clause %T", c)
		}
	}
	return w, nil
}

var sortColumns = map[string]string{
	core.SortByID:          "t.id",
	core.SortByDate:        "t.date",
	core.SortByAmount:      "t.amount_cents",
	core.SortByDescription: "t.description COLLATE NOCASE",
	core.SortByCategory:    "c.name COLLATE NOCASE",
}

// orderBy whitelists the sort column. Ties break on id in the same direction.
func orderBy(s core.Sort) (string, error) {
	field := strings.ToLower(strings.TrimSpace(s.Field))
	if field == "" {
		field = core.SortByID
	}
	col, ok := sortColumns[field]
	if !ok {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidSortField, s.Field)
	}
	dir := "ASC"
	if s.Direction == core.Desc {
		dir = "DESC"
	}
	if field == core.SortByID {
		return col + " " + dir, nil
	}
	return col + " " + dir + ", t.id " + dir, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
