// Package ports declares the capabilities the transaction services depend on.
// Storage, identity lookups and alert delivery are supplied by adapters.
package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"mywallet/internal/core"
	"mywallet/internal/filter"
)

type (
	// TransactionStore persists transactions and answers read queries.
	TransactionStore interface {
		// Save inserts tx when its ID is zero and overwrites it otherwise.
		// The returned record carries the assigned ID.
		Save(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		FindByID(ctx context.Context, id int64) (core.Transaction, bool, error)
		ExistsByID(ctx context.Context, id int64) (bool, error)
		DeleteByID(ctx context.Context, id int64) error

		// QueryPage lists one owner's transactions. Unknown sort fields fail
		// with core.ErrInvalidSortField.
		QueryPage(ctx context.Context, q core.OwnerQuery) (core.Page[core.TransactionSummary], error)
		// QueryAll lists every owner's transactions ordered by id descending.
		QueryAll(ctx context.Context, q core.PageQuery) (core.Page[core.TransactionSummary], error)
		// QueryFiltered returns every match, newest date first.
		QueryFiltered(ctx context.Context, spec filter.Spec) ([]core.TransactionSummary, error)

		// SumAmount totals the owner's transactions of txType dated within
		// month/year. No match sums to zero.
		SumAmount(ctx context.Context, ownerID int64, txType, month, year int) (decimal.Decimal, error)
	}

	UserLookup interface {
		FindByEmail(ctx context.Context, email string) (core.Identity, bool, error)
	}

	CategoryLookup interface {
		FindByID(ctx context.Context, id int64) (core.CategoryRef, bool, error)
	}

	BudgetLookup interface {
		FindByOwnerMonthYear(ctx context.Context, ownerID int64, month, year int) (core.BudgetThreshold, bool, error)
	}

	// AlertPublisher delivers an alert at most once. Implementations must
	// honour ctx cancellation.
	AlertPublisher interface {
		Publish(ctx context.Context, ev core.AlertEvent) error
	}

	// PostWriteHook runs after a successful create.
	PostWriteHook interface {
		AfterWrite(ctx context.Context, tx core.Transaction)
	}

	// Clock supplies the current time.
	Clock func() time.Time
)
