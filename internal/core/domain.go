package core

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Transaction type ids as seeded by the initial migration.
const (
	TransactionTypeExpense = 1
	TransactionTypeIncome  = 2
)

// MaxDescriptionLength mirrors the width of the description column.
const MaxDescriptionLength = 255

type (
	// Identity is the stable handle of a transaction owner.
	Identity struct {
		ID       int64
		Email    string
		Username string
	}

	CategoryRef struct {
		ID              int64
		Name            string
		TransactionType int
	}

	// Transaction is the persisted record. Date may be zero for records
	// written by older clients.
	Transaction struct {
		ID          int64
		Owner       Identity
		Category    CategoryRef
		Description string
		Amount      decimal.Decimal
		Date        Date
	}

	// TransactionSummary is the read-side projection returned by queries.
	TransactionSummary struct {
		ID              int64           `json:"transactionId"`
		CategoryID      int64           `json:"categoryId"`
		CategoryName    string          `json:"categoryName"`
		TransactionType int             `json:"transactionType"`
		Description     string          `json:"description"`
		Amount          decimal.Decimal `json:"amount"`
		Date            Date            `json:"date"`
		OwnerEmail      string          `json:"userEmail"`
	}

	// TransactionRequest carries the fields of a create or update call.
	TransactionRequest struct {
		OwnerEmail  string          `json:"userEmail"`
		CategoryID  int64           `json:"categoryId"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Date        Date            `json:"date"`
	}

	BudgetThreshold struct {
		OwnerID         int64
		Month           int
		Year            int
		TransactionType int
		Limit           decimal.Decimal
	}
)

// Summary projects the record onto its read-side shape.
func (t Transaction) Summary() TransactionSummary {
	return TransactionSummary{
		ID:              t.ID,
		CategoryID:      t.Category.ID,
		CategoryName:    t.Category.Name,
		TransactionType: t.Category.TransactionType,
		Description:     t.Description,
		Amount:          t.Amount,
		Date:            t.Date,
		OwnerEmail:      t.Owner.Email,
	}
}

func (r TransactionRequest) Validate() error {
	if utf8.RuneCountInString(r.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if strings.TrimSpace(r.OwnerEmail) == "" {
		return ErrEmptyOwner
	}
	return ValidateAmount(r.Amount)
}

// DefaultCategories is the category set every backend starts with. IDs are
// assigned in this order.
var DefaultCategories = []CategoryRef{
	{ID: 1, Name: "Food", TransactionType: TransactionTypeExpense},
	{ID: 2, Name: "Leisure", TransactionType: TransactionTypeExpense},
	{ID: 3, Name: "Household", TransactionType: TransactionTypeExpense},
	{ID: 4, Name: "Clothing", TransactionType: TransactionTypeExpense},
	{ID: 5, Name: "Education", TransactionType: TransactionTypeExpense},
	{ID: 6, Name: "Healthcare", TransactionType: TransactionTypeExpense},
	{ID: 7, Name: "Transport", TransactionType: TransactionTypeExpense},
	{ID: 8, Name: "Utilities", TransactionType: TransactionTypeExpense},
	{ID: 9, Name: "Entertainment", TransactionType: TransactionTypeExpense},
	{ID: 10, Name: "Other", TransactionType: TransactionTypeExpense},
	{ID: 11, Name: "Salary", TransactionType: TransactionTypeIncome},
	{ID: 12, Name: "Sales", TransactionType: TransactionTypeIncome},
	{ID: 13, Name: "Awards", TransactionType: TransactionTypeIncome},
	{ID: 14, Name: "Interest", TransactionType: TransactionTypeIncome},
	{ID: 15, Name: "Freelance", TransactionType: TransactionTypeIncome},
	{ID: 16, Name: "Investment", TransactionType: TransactionTypeIncome},
	{ID: 17, Name: "Other", TransactionType: TransactionTypeIncome},
}
