package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"mywallet/internal/core"
	"mywallet/internal/filter"
	"mywallet/internal/storage/memory"
)

var errStoreDown = errors.New("database is locked")

// recordingPublisher keeps every event it is asked to publish.
type recordingPublisher struct {
	mu     sync.Mutex
	events []core.AlertEvent
	err    error
	block  bool
}

func (p *recordingPublisher) Publish(ctx context.Context, ev core.AlertEvent) error {
	if p.block {
		<-ctx.Done()
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Events() []core.AlertEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]core.AlertEvent(nil), p.events...)
}

// stuckPublisher ignores its context and never returns until released.
type stuckPublisher struct {
	release chan struct{}
}

func (p *stuckPublisher) Publish(context.Context, core.AlertEvent) error {
	<-p.release
	return nil
}

type panickingPublisher struct{}

func (panickingPublisher) Publish(context.Context, core.AlertEvent) error {
	panic("publisher exploded")
}

// failingStore wraps a memory store and fails the selected operations.
type failingStore struct {
	*memory.Store
	failSave  bool
	failQuery bool
	failSum   bool
}

func (s *failingStore) Save(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if s.failSave {
		return core.Transaction{}, errStoreDown
	}
	return s.Store.Save(ctx, tx)
}

func (s *failingStore) QueryPage(ctx context.Context, q core.OwnerQuery) (core.Page[core.TransactionSummary], error) {
	if s.failQuery {
		return core.Page[core.TransactionSummary]{}, errStoreDown
	}
	return s.Store.QueryPage(ctx, q)
}

func (s *failingStore) QueryFiltered(ctx context.Context, spec filter.Spec) ([]core.TransactionSummary, error) {
	if s.failQuery {
		return nil, errStoreDown
	}
	return s.Store.QueryFiltered(ctx, spec)
}

func (s *failingStore) SumAmount(ctx context.Context, ownerID int64, txType, month, year int) (decimal.Decimal, error) {
	if s.failSum {
		return decimal.Zero, errStoreDown
	}
	return s.Store.SumAmount(ctx, ownerID, txType, month, year)
}

// recordingHook counts AfterWrite calls.
type recordingHook struct {
	calls []core.Transaction
}

func (h *recordingHook) AfterWrite(_ context.Context, tx core.Transaction) {
	h.calls = append(h.calls, tx)
}

func fixedClock(d core.Date) func() time.Time {
	return func() time.Time { return d.Add(10 * time.Hour) }
}
