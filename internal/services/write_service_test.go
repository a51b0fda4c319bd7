package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mywallet/internal/core"
	"mywallet/internal/log"
	"mywallet/internal/storage/memory"
)

func newWriteFixture(t *testing.T) (*memory.Store, *recordingHook, *WriteService) {
	t.Helper()
	store := memory.New(core.DefaultCategories)
	store.AddUser("a@b.com", "alice")
	hook := &recordingHook{}
	return store, hook, NewWriteService(store, store, store.Categories(), hook, log.Discard())
}

func request(amount, date string) core.TransactionRequest {
	d, _ := core.ParseDate(date)
	return core.TransactionRequest{
		OwnerEmail:  "a@b.com",
		CategoryID:  1,
		Description: "groceries",
		Amount:      decimal.RequireFromString(amount),
		Date:        d,
	}
}

func TestAdd(t *testing.T) {
	store, hook, svc := newWriteFixture(t)

	res, err := svc.Add(context.Background(), request("12.50", "2024-06-15"))
	require.NoError(t, err)

	assert.Equal(t, core.StatusSuccess, res.Status)
	assert.Equal(t, http.StatusCreated, res.Code)
	assert.Equal(t, MsgRecorded, res.Message)
	require.Len(t, hook.calls, 1)
	assert.Equal(t, res.Data.ID, hook.calls[0].ID)

	saved, found, err := store.FindByID(context.Background(), res.Data.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Food", saved.Category.Name)
	assert.Equal(t, "a@b.com", saved.Owner.Email)
}

func TestAddRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *core.TransactionRequest)
		wantErr error
		code    int
	}{
		{"unknown owner", func(r *core.TransactionRequest) { r.OwnerEmail = "ghost@b.com" }, core.ErrOwnerNotFound, http.StatusNotFound},
		{"unknown category", func(r *core.TransactionRequest) { r.CategoryID = 999 }, core.ErrCategoryNotFound, http.StatusNotFound},
		{"long description", func(r *core.TransactionRequest) { r.Description = strings.Repeat("a", 256) }, core.ErrDescriptionTooLong, http.StatusBadRequest},
		{"sub-cent amount", func(r *core.TransactionRequest) { r.Amount = decimal.RequireFromString("10.005") }, core.ErrInvalidAmount, http.StatusBadRequest},
		{"negative amount", func(r *core.TransactionRequest) { r.Amount = decimal.NewFromInt(-5) }, core.ErrInvalidAmount, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, hook, svc := newWriteFixture(t)
			req := request("10", "2024-06-15")
			tt.mutate(&req)

			_, err := svc.Add(context.Background(), req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.code, core.StatusCode(err))
			assert.Empty(t, hook.calls)

			exists, _ := store.ExistsByID(context.Background(), 1)
			assert.False(t, exists)
		})
	}
}

func TestAddStoreFailure(t *testing.T) {
	store, hook, _ := newWriteFixture(t)
	svc := NewWriteService(&failingStore{Store: store, failSave: true}, store, store.Categories(), hook, nil)

	_, err := svc.Add(context.Background(), request("10", "2024-06-15"))
	require.ErrorIs(t, err, core.ErrWriteFailed)
	assert.NotErrorIs(t, err, errStoreDown)
	assert.Empty(t, hook.calls)
}

func TestUpdateAndDeleteDoNotAlert(t *testing.T) {
	store, hook, svc := newWriteFixture(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, request("10", "2024-06-15"))
	require.NoError(t, err)
	require.Len(t, hook.calls, 1)

	upd := request("99", "2024-06-16")
	upd.Description = "changed"
	res, err := svc.Update(ctx, added.Data.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Code)

	saved, _, _ := store.FindByID(ctx, added.Data.ID)
	assert.Equal(t, "changed", saved.Description)
	assert.True(t, saved.Amount.Equal(decimal.NewFromInt(99)))

	_, err = svc.Delete(ctx, added.Data.ID)
	require.NoError(t, err)
	exists, _ := store.ExistsByID(ctx, added.Data.ID)
	assert.False(t, exists)

	assert.Len(t, hook.calls, 1)
}

func TestUpdateAndDeleteMissing(t *testing.T) {
	_, _, svc := newWriteFixture(t)

	_, err := svc.Update(context.Background(), 77, request("1", "2024-06-15"))
	assert.ErrorIs(t, err, core.ErrTransactionNotFound)

	_, err = svc.Delete(context.Background(), 77)
	assert.ErrorIs(t, err, core.ErrTransactionNotFound)
}

// Owner with a 100 budget for June 2024 and 80 already spent records 25 more.
func TestAddPublishesBudgetAlertEndToEnd(t *testing.T) {
	store := memory.New(core.DefaultCategories)
	owner := store.AddUser("a@b.com", "alice")
	store.SetBudget(core.BudgetThreshold{
		OwnerID:         owner.ID,
		Month:           6,
		Year:            2024,
		TransactionType: core.TransactionTypeExpense,
		Limit:           decimal.NewFromInt(100),
	})

	pub := &recordingPublisher{}
	trigger := NewBudgetAlertTrigger(store, store, pub, DefaultAlertConfig(), fixedClock(core.NewDate(2024, 6, 15)), log.Discard())
	svc := NewWriteService(store, store, store.Categories(), trigger, log.Discard())
	ctx := context.Background()

	_, err := svc.Add(ctx, request("80", "2024-06-01"))
	require.NoError(t, err)
	require.Empty(t, pub.Events())

	res, err := svc.Add(ctx, request("25", "2024-06-15"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.Code)

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, core.AlertTypeBudget, events[0].Type)
	assert.True(t, events[0].Payload[core.AlertKeySpent].(decimal.Decimal).Equal(decimal.NewFromInt(105)))
	assert.True(t, events[0].Payload[core.AlertKeyBudget].(decimal.Decimal).Equal(decimal.NewFromInt(100)))

	// Each further qualifying create alerts again.
	_, err = svc.Add(ctx, request("1", "2024-06-20"))
	require.NoError(t, err)
	assert.Len(t, pub.Events(), 2)
}

func TestAddSucceedsWhenAlertDeliveryFails(t *testing.T) {
	store := memory.New(core.DefaultCategories)
	owner := store.AddUser("a@b.com", "alice")
	store.SetBudget(core.BudgetThreshold{OwnerID: owner.ID, Month: 6, Year: 2024, Limit: decimal.NewFromInt(1)})

	trigger := NewBudgetAlertTrigger(store, store, panickingPublisher{}, DefaultAlertConfig(), nil, nil)
	svc := NewWriteService(store, store, store.Categories(), trigger, nil)

	res, err := svc.Add(context.Background(), request("50", "2024-06-15"))
	require.NoError(t, err)
	assert.Equal(t, core.StatusSuccess, res.Status)
}
