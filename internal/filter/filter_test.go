package filter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mywallet/internal/core"
)

func ptrDate(y, m, d int) *core.Date {
	v := core.NewDate(y, m, d)
	return &v
}

func ptrDec(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func ptrInt(v int64) *int64 { return &v }

func fixtures() []core.TransactionSummary {
	return []core.TransactionSummary{
		{ID: 1, OwnerEmail: "a@b.com", CategoryID: 1, Amount: decimal.NewFromInt(10), Date: core.NewDate(2024, 6, 1)},
		{ID: 2, OwnerEmail: "a@b.com", CategoryID: 2, Amount: decimal.NewFromInt(50), Date: core.NewDate(2024, 6, 15)},
		{ID: 3, OwnerEmail: "c@d.com", CategoryID: 1, Amount: decimal.NewFromInt(75), Date: core.NewDate(2024, 7, 2)},
		{ID: 4, OwnerEmail: "a@b.com", CategoryID: 1, Amount: decimal.RequireFromString("99.99"), Date: core.NewDate(2024, 6, 30)},
		{ID: 5, OwnerEmail: "a@b.com", CategoryID: 3, Amount: decimal.NewFromInt(5)},
	}
}

func ids(items []core.TransactionSummary) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestBuildEmitsOnlyPresentClauses(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []Clause
	}{
		{
			name:     "nothing",
			criteria: Criteria{},
			want:     nil,
		},
		{
			name:     "blank owner is absent",
			criteria: Criteria{OwnerEmail: "  "},
			want:     nil,
		},
		{
			name:     "owner only",
			criteria: Criteria{OwnerEmail: "a@b.com"},
			want:     []Clause{OwnerEquals{Email: "a@b.com"}},
		},
		{
			name:     "lower date bound only",
			criteria: Criteria{From: ptrDate(2024, 6, 1)},
			want:     []Clause{DateBetween{From: ptrDate(2024, 6, 1)}},
		},
		{
			name:     "category and max amount",
			criteria: Criteria{CategoryID: ptrInt(2), MaxAmount: ptrDec("10")},
			want:     []Clause{CategoryEquals{CategoryID: 2}, AmountBetween{Max: ptrDec("10")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := Build(tt.criteria)
			assert.Equal(t, tt.want, spec.Clauses)
			assert.Equal(t, len(tt.want) == 0, spec.Empty())
		})
	}
}

func TestSpecApply(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []int64
	}{
		{"empty matches all", Criteria{}, []int64{1, 2, 3, 4, 5}},
		{"owner", Criteria{OwnerEmail: "a@b.com"}, []int64{1, 2, 4, 5}},
		{"owner is case insensitive", Criteria{OwnerEmail: "A@B.com"}, []int64{1, 2, 4, 5}},
		{"june inclusive", Criteria{From: ptrDate(2024, 6, 1), To: ptrDate(2024, 6, 30)}, []int64{1, 2, 4}},
		{"from only", Criteria{From: ptrDate(2024, 6, 15)}, []int64{2, 3, 4}},
		{"category", Criteria{CategoryID: ptrInt(1)}, []int64{1, 3, 4}},
		{"amount range inclusive", Criteria{MinAmount: ptrDec("10"), MaxAmount: ptrDec("75")}, []int64{1, 2, 3}},
		{"inverted amount range", Criteria{MinAmount: ptrDec("80"), MaxAmount: ptrDec("20")}, []int64{}},
		{"inverted date range", Criteria{From: ptrDate(2024, 7, 1), To: ptrDate(2024, 6, 1)}, []int64{}},
		{
			"everything",
			Criteria{
				OwnerEmail: "a@b.com",
				From:       ptrDate(2024, 6, 1),
				To:         ptrDate(2024, 6, 30),
				CategoryID: ptrInt(1),
				MinAmount:  ptrDec("20"),
			},
			[]int64{4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.criteria).Apply(fixtures())
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

// Removing a criterion never shrinks the result.
func TestDroppingCriteriaIsMonotonic(t *testing.T) {
	full := Criteria{
		OwnerEmail: "a@b.com",
		From:       ptrDate(2024, 6, 1),
		To:         ptrDate(2024, 6, 30),
		CategoryID: ptrInt(1),
		MinAmount:  ptrDec("5"),
		MaxAmount:  ptrDec("60"),
	}
	drops := map[string]func(c *Criteria){
		"owner":    func(c *Criteria) { c.OwnerEmail = "" },
		"from":     func(c *Criteria) { c.From = nil },
		"to":       func(c *Criteria) { c.To = nil },
		"category": func(c *Criteria) { c.CategoryID = nil },
		"min":      func(c *Criteria) { c.MinAmount = nil },
		"max":      func(c *Criteria) { c.MaxAmount = nil },
	}

	base := ids(Build(full).Apply(fixtures()))
	for name, drop := range drops {
		t.Run(name, func(t *testing.T) {
			relaxed := full
			drop(&relaxed)
			got := ids(Build(relaxed).Apply(fixtures()))
			require.Subset(t, got, base)
		})
	}
}

func TestDateBetweenSkipsUndated(t *testing.T) {
	undated := core.TransactionSummary{ID: 9}
	assert.False(t, DateBetween{To: ptrDate(2030, 1, 1)}.Matches(undated))
	assert.True(t, DateBetween{}.Matches(undated))
}
