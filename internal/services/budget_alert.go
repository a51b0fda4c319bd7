package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"mywallet/internal/core"
	"mywallet/internal/log"
	"mywallet/internal/ports"
)

const DefaultPublishTimeout = 2 * time.Second

// AlertConfig tunes the budget check.
type AlertConfig struct {
	// ExpenseTransactionTypeID selects the transactions summed against the budget.
	ExpenseTransactionTypeID int
	// PublishTimeout bounds a single publish. Zero means DefaultPublishTimeout.
	PublishTimeout time.Duration
}

func DefaultAlertConfig() AlertConfig {
	return AlertConfig{
		ExpenseTransactionTypeID: core.TransactionTypeExpense,
		PublishTimeout:           DefaultPublishTimeout,
	}
}

// BudgetAlertTrigger recomputes the month's expense total after a write and
// publishes a BUDGET_ALERT once the owner's budget is reached. It never
// reports failure to its caller.
type BudgetAlertTrigger struct {
	store     ports.TransactionStore
	budgets   ports.BudgetLookup
	publisher ports.AlertPublisher
	cfg       AlertConfig
	now       ports.Clock
	logger    *log.Logger
}

func NewBudgetAlertTrigger(store ports.TransactionStore, budgets ports.BudgetLookup, publisher ports.AlertPublisher, cfg AlertConfig, now ports.Clock, logger *log.Logger) *BudgetAlertTrigger {
	if cfg.ExpenseTransactionTypeID == 0 {
		cfg.ExpenseTransactionTypeID = core.TransactionTypeExpense
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = DefaultPublishTimeout
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &BudgetAlertTrigger{
		store:     store,
		budgets:   budgets,
		publisher: publisher,
		cfg:       cfg,
		now:       now,
		logger:    logger.WithComponent(log.ComponentAlert),
	}
}

// AfterWrite evaluates the owner's budget for the month of tx.
func (t *BudgetAlertTrigger) AfterWrite(ctx context.Context, tx core.Transaction) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.ErrorContext(ctx, "Budget alert check panicked",
				log.FieldTransactionID, tx.ID,
				log.FieldError, fmt.Sprint(r))
		}
	}()

	ev, err := t.evaluate(ctx, tx)
	if err != nil {
		t.logger.WarnContext(ctx, "Budget alert check failed",
			log.FieldTransactionID, tx.ID,
			log.FieldError, fmt.Errorf("%w: %w", core.ErrAlertDelivery, err))
		return
	}
	if ev == nil {
		return
	}

	if err := t.publish(ctx, *ev); err != nil {
		t.logger.WarnContext(ctx, "Budget alert not delivered",
			log.FieldTransactionID, tx.ID,
			log.FieldAlertType, ev.Type,
			log.FieldError, fmt.Errorf("%w: %w", core.ErrAlertDelivery, err))
		return
	}
	t.logger.InfoContext(ctx, "Budget alert published",
		log.FieldTransactionID, tx.ID,
		log.FieldAlertType, ev.Type)
}

// evaluate returns the alert to publish for tx, or nil when the budget
// has not been reached.
func (t *BudgetAlertTrigger) evaluate(ctx context.Context, tx core.Transaction) (*core.AlertEvent, error) {
	if t.publisher == nil {
		return nil, nil
	}

	date := tx.Date
	if date.IsZero() {
		date = core.DateOf(t.now())
	}
	ownerID, month, year := tx.Owner.ID, date.Month(), date.Year()

	spent, err := t.store.SumAmount(ctx, ownerID, t.cfg.ExpenseTransactionTypeID, month, year)
	if err != nil {
		return nil, fmt.Errorf("sum month expenses: %w", err)
	}

	limit := decimal.Zero
	if t.budgets != nil {
		budget, found, err := t.budgets.FindByOwnerMonthYear(ctx, ownerID, month, year)
		if err != nil {
			return nil, fmt.Errorf("find budget: %w", err)
		}
		if found {
			limit = budget.Limit
		}
	}

	t.logger.DebugContext(ctx, "Budget evaluated",
		log.NewFields().WithBudget(ownerID, month, year, spent, limit).ToSlice()...)

	if !limit.IsPositive() || spent.LessThan(limit) {
		return nil, nil
	}
	ev := core.NewBudgetAlert(ownerID, month, year, spent, limit)
	return &ev, nil
}

// publish waits for the publisher at most PublishTimeout. A publisher that
// ignores its context is left running.
func (t *BudgetAlertTrigger) publish(ctx context.Context, ev core.AlertEvent) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.cfg.PublishTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("publisher panicked: %v", r)
			}
		}()
		done <- t.publisher.Publish(ctx, ev)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("publish: %w", ctx.Err())
	}
}
