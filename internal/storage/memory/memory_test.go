package memory

import (
	"context"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mywallet/internal/core"
	"mywallet/internal/filter"
)

func seeded(t *testing.T) (*Store, core.Identity) {
	t.Helper()
	s := New(core.DefaultCategories)
	owner := s.AddUser("a@b.com", "alice")
	other := s.AddUser("c@d.com", "carol")

	add := func(o core.Identity, catID int64, desc, amount string, d core.Date) {
		cat, ok, err := s.Categories().FindByID(context.Background(), catID)
		require.NoError(t, err)
		require.True(t, ok)
		_, err = s.Save(context.Background(), core.Transaction{
			Owner:       o,
			Category:    cat,
			Description: desc,
			Amount:      decimal.RequireFromString(amount),
			Date:        d,
		})
		require.NoError(t, err)
	}

	add(owner, 1, "groceries", "40", core.NewDate(2024, 6, 1))      // 1
	add(owner, 7, "bus pass", "40", core.NewDate(2024, 6, 3))       // 2
	add(owner, 11, "june salary", "2000", core.NewDate(2024, 6, 5)) // 3
	add(owner, 1, "dinner", "25.50", core.NewDate(2024, 5, 30))     // 4
	add(other, 1, "lunch", "12", core.NewDate(2024, 6, 2))          // 5
	return s, owner
}

func pageIDs(p core.Page[core.TransactionSummary]) []int64 {
	out := make([]int64, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, it.ID)
	}
	return out
}

func TestAddUserIsIdempotent(t *testing.T) {
	s := New(nil)
	a := s.AddUser("a@b.com", "alice")
	b := s.AddUser(" A@B.com ", "other")
	assert.Equal(t, a, b)

	got, ok, err := s.FindByEmail(context.Background(), "A@b.COM")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, a.ID, got.ID)
}

func TestQueryPage(t *testing.T) {
	s, _ := seeded(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		q         core.OwnerQuery
		want      []int64
		wantTotal int64
		wantPages int
	}{
		{
			name:      "amount ascending ties by id",
			q:         core.OwnerQuery{OwnerEmail: "a@b.com", Page: core.PageRequest{Size: 10, Sort: core.Sort{Field: "amount", Direction: core.Asc}}},
			want:      []int64{4, 1, 2, 3},
			wantTotal: 4,
			wantPages: 1,
		},
		{
			name:      "amount descending ties by id descending",
			q:         core.OwnerQuery{OwnerEmail: "a@b.com", Page: core.PageRequest{Size: 10, Sort: core.Sort{Field: "amount", Direction: core.Desc}}},
			want:      []int64{3, 2, 1, 4},
			wantTotal: 4,
			wantPages: 1,
		},
		{
			name:      "second page",
			q:         core.OwnerQuery{OwnerEmail: "a@b.com", Page: core.PageRequest{Number: 1, Size: 3, Sort: core.Sort{Field: "date", Direction: core.Desc}}},
			want:      []int64{4},
			wantTotal: 4,
			wantPages: 2,
		},
		{
			name:      "page past the end",
			q:         core.OwnerQuery{OwnerEmail: "a@b.com", Page: core.PageRequest{Number: 2, Size: 3, Sort: core.Sort{Field: "date", Direction: core.Desc}}},
			want:      []int64{},
			wantTotal: 4,
			wantPages: 2,
		},
		{
			name:      "max size first page",
			q:         core.OwnerQuery{OwnerEmail: "a@b.com", Page: core.PageRequest{Size: math.MaxInt, Sort: core.Sort{Field: "date", Direction: core.Desc}}},
			want:      []int64{3, 2, 1, 4},
			wantTotal: 4,
			wantPages: 1,
		},
		{
			name:      "max size second page",
			q:         core.OwnerQuery{OwnerEmail: "a@b.com", Page: core.PageRequest{Number: 1, Size: math.MaxInt}},
			want:      []int64{},
			wantTotal: 4,
			wantPages: 1,
		},
		{
			name:      "offset beyond int range",
			q:         core.OwnerQuery{OwnerEmail: "a@b.com", Page: core.PageRequest{Number: 1 << 62, Size: 4}},
			want:      []int64{},
			wantTotal: 4,
			wantPages: 1,
		},
		{
			name:      "search matches category name",
			q:         core.OwnerQuery{OwnerEmail: "a@b.com", SearchKey: "FOOD", Page: core.PageRequest{Size: 10, Sort: core.Sort{Field: "id"}}},
			want:      []int64{1, 4},
			wantTotal: 2,
			wantPages: 1,
		},
		{
			name:      "transaction type",
			q:         core.OwnerQuery{OwnerEmail: "a@b.com", TransactionType: core.TransactionTypeIncome, Page: core.PageRequest{Size: 10}},
			want:      []int64{3},
			wantTotal: 1,
			wantPages: 1,
		},
		{
			name: "unknown owner",
			q:    core.OwnerQuery{OwnerEmail: "x@y.com", Page: core.PageRequest{Size: 10}},
			want: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.QueryPage(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pageIDs(page))
			assert.Equal(t, tt.wantTotal, page.TotalElements)
			assert.Equal(t, tt.wantPages, page.TotalPages)
		})
	}
}

func TestQueryPageRejectsUnknownSortField(t *testing.T) {
	s, _ := seeded(t)
	_, err := s.QueryPage(context.Background(), core.OwnerQuery{
		OwnerEmail: "a@b.com",
		Page:       core.PageRequest{Size: 10, Sort: core.Sort{Field: "password"}},
	})
	assert.ErrorIs(t, err, core.ErrInvalidSortField)
}

func TestQueryAllNewestFirst(t *testing.T) {
	s, _ := seeded(t)
	page, err := s.QueryAll(context.Background(), core.PageQuery{Page: core.PageRequest{Size: 2}})
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 4}, pageIDs(page))
	assert.Equal(t, int64(5), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
}

func TestQueryFiltered(t *testing.T) {
	s, _ := seeded(t)
	from := core.NewDate(2024, 6, 1)
	minAmount := decimal.NewFromInt(20)

	got, err := s.QueryFiltered(context.Background(), filter.Build(filter.Criteria{
		OwnerEmail: "a@b.com",
		From:       &from,
		MinAmount:  &minAmount,
	}))
	require.NoError(t, err)

	ids := make([]int64, 0, len(got))
	for _, it := range got {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []int64{3, 2, 1}, ids)
}

func TestSumAmount(t *testing.T) {
	s, owner := seeded(t)
	ctx := context.Background()

	june, err := s.SumAmount(ctx, owner.ID, core.TransactionTypeExpense, 6, 2024)
	require.NoError(t, err)
	assert.True(t, june.Equal(decimal.NewFromInt(80)), "got %s", june)

	may, err := s.SumAmount(ctx, owner.ID, core.TransactionTypeExpense, 5, 2024)
	require.NoError(t, err)
	assert.True(t, may.Equal(decimal.RequireFromString("25.5")), "got %s", may)

	none, err := s.SumAmount(ctx, owner.ID, core.TransactionTypeExpense, 1, 2023)
	require.NoError(t, err)
	assert.True(t, none.IsZero())
}

func TestSaveUpdateDelete(t *testing.T) {
	s, owner := seeded(t)
	ctx := context.Background()

	tx, ok, err := s.FindByID(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)

	tx.Description = "monthly bus pass"
	_, err = s.Save(ctx, tx)
	require.NoError(t, err)

	got, _, _ := s.FindByID(ctx, 2)
	assert.Equal(t, "monthly bus pass", got.Description)
	assert.Equal(t, owner.ID, got.Owner.ID)

	_, err = s.Save(ctx, core.Transaction{ID: 99})
	assert.ErrorIs(t, err, core.ErrTransactionNotFound)

	require.NoError(t, s.DeleteByID(ctx, 2))
	exists, err := s.ExistsByID(ctx, 2)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBudgets(t *testing.T) {
	s := New(nil)
	s.SetBudget(core.BudgetThreshold{OwnerID: 1, Month: 6, Year: 2024, Limit: decimal.NewFromInt(100)})

	b, ok, err := s.FindByOwnerMonthYear(context.Background(), 1, 6, 2024)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, b.Limit.Equal(decimal.NewFromInt(100)))

	_, ok, _ = s.FindByOwnerMonthYear(context.Background(), 1, 7, 2024)
	assert.False(t, ok)
}
