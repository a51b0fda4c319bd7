// Package filter composes optional transaction criteria into a conjunction
// of clauses that stores can evaluate in memory or render to SQL.
package filter

import (
	"strings"

	"github.com/shopspring/decimal"

	"mywallet/internal/core"
)

// Criteria holds the optional filters of an export query. Nil pointers and
// an empty OwnerEmail mean "no constraint".
type Criteria struct {
	OwnerEmail string
	From       *core.Date
	To         *core.Date
	CategoryID *int64
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
}

// Clause is one predicate of a Spec.
type Clause interface {
	Matches(s core.TransactionSummary) bool
}

type (
	OwnerEquals struct {
		Email string
	}

	// DateBetween is inclusive on both ends. A nil bound is open.
	DateBetween struct {
		From *core.Date
		To   *core.Date
	}

	CategoryEquals struct {
		CategoryID int64
	}

	// AmountBetween is inclusive on both ends. A nil bound is open.
	AmountBetween struct {
		Min *decimal.Decimal
		Max *decimal.Decimal
	}
)

func (c OwnerEquals) Matches(s core.TransactionSummary) bool {
	return strings.EqualFold(s.OwnerEmail, c.Email)
}

// Matches rejects undated records whenever a bound is set.
func (c DateBetween) Matches(s core.TransactionSummary) bool {
	if s.Date.IsZero() {
		return c.From == nil && c.To == nil
	}
	if c.From != nil && s.Date.Before(c.From.Time) {
		return false
	}
	if c.To != nil && s.Date.After(c.To.Time) {
		return false
	}
	return true
}

func (c CategoryEquals) Matches(s core.TransactionSummary) bool {
	return s.CategoryID == c.CategoryID
}

func (c AmountBetween) Matches(s core.TransactionSummary) bool {
	if c.Min != nil && s.Amount.LessThan(*c.Min) {
		return false
	}
	if c.Max != nil && s.Amount.GreaterThan(*c.Max) {
		return false
	}
	return true
}

// Spec is the AND of its clauses. The zero Spec matches everything.
type Spec struct {
	Clauses []Clause
}

// Build emits one clause per present criterion. Inverted ranges are kept
// as given and simply match nothing.
func Build(c Criteria) Spec {
	var clauses []Clause
	if email := strings.TrimSpace(c.OwnerEmail); email != "" {
		clauses = append(clauses, OwnerEquals{Email: email})
	}
	if c.From != nil || c.To != nil {
		clauses = append(clauses, DateBetween{From: c.From, To: c.To})
	}
	if c.CategoryID != nil {
		clauses = append(clauses, CategoryEquals{CategoryID: *c.CategoryID})
	}
	if c.MinAmount != nil || c.MaxAmount != nil {
		clauses = append(clauses, AmountBetween{Min: c.MinAmount, Max: c.MaxAmount})
	}
	return Spec{Clauses: clauses}
}

func (s Spec) Matches(t core.TransactionSummary) bool {
	for _, c := range s.Clauses {
		if !c.Matches(t) {
			return false
		}
	}
	return true
}

func (s Spec) Empty() bool {
	return len(s.Clauses) == 0
}

// Apply returns the items matching the spec, preserving order.
func (s Spec) Apply(items []core.TransactionSummary) []core.TransactionSummary {
	out := make([]core.TransactionSummary, 0, len(items))
	for _, it := range items {
		if s.Matches(it) {
			out = append(out, it)
		}
	}
	return out
}
