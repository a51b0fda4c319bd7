package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mywallet/internal/bucket"
	"mywallet/internal/core"
	"mywallet/internal/filter"
	"mywallet/internal/log"
	"mywallet/internal/ports"
)

// QueryService answers paginated, bucketed and filtered transaction reads.
type QueryService struct {
	store  ports.TransactionStore
	now    ports.Clock
	logger *log.Logger
}

func NewQueryService(store ports.TransactionStore, now ports.Clock, logger *log.Logger) *QueryService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &QueryService{
		store:  store,
		now:    now,
		logger: logger.WithComponent(log.ComponentQuery),
	}
}

// ListByOwner returns one page of the owner's transactions grouped under
// Today, Yesterday and ISO date labels. Page counts describe the ungrouped
// result.
func (s *QueryService) ListByOwner(ctx context.Context, q core.OwnerQuery) (*core.Result[bucket.Page], error) {
	if err := q.Page.Validate(); err != nil {
		return nil, err
	}

	page, err := s.store.QueryPage(ctx, q)
	if err != nil {
		return nil, s.queryFailed(ctx, "list transactions", err)
	}
	if page.TotalElements == 0 {
		return core.OK(bucket.EmptyPage()), nil
	}

	return core.OK(bucket.FromPage(page, core.DateOf(s.now()))), nil
}

// ListAll returns every owner's transactions, newest id first.
func (s *QueryService) ListAll(ctx context.Context, q core.PageQuery) (*core.Result[core.Page[core.TransactionSummary]], error) {
	if err := q.Page.Validate(); err != nil {
		return nil, err
	}
	q.Page.Sort = core.Sort{Field: core.SortByID, Direction: core.Desc}

	page, err := s.store.QueryAll(ctx, q)
	if err != nil {
		return nil, s.queryFailed(ctx, "list all transactions", err)
	}
	if page.TotalElements == 0 {
		return core.OK(core.EmptyPage[core.TransactionSummary]()), nil
	}
	return core.OK(page), nil
}

func (s *QueryService) GetByID(ctx context.Context, id int64) (*core.Result[core.TransactionSummary], error) {
	tx, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.queryFailed(ctx, "fetch transaction", err)
	}
	if !found {
		return nil, fmt.Errorf("%w with id: %d", core.ErrTransactionNotFound, id)
	}
	return core.OK(tx.Summary()), nil
}

// ExportFiltered returns every transaction matching c, unpaginated, ordered
// by date then id, newest first.
func (s *QueryService) ExportFiltered(ctx context.Context, c filter.Criteria) ([]core.TransactionSummary, error) {
	items, err := s.store.QueryFiltered(ctx, filter.Build(c))
	if err != nil {
		return nil, s.queryFailed(ctx, "export transactions", err)
	}
	if items == nil {
		items = []core.TransactionSummary{}
	}
	return items, nil
}

// queryFailed logs the store error and returns a caller-facing error that
// does not carry it. Validation errors pass through.
func (s *QueryService) queryFailed(ctx context.Context, action string, err error) error {
	if errors.Is(err, core.ErrValidation) {
		return err
	}
	s.logger.ErrorContext(ctx, "Query failed",
		log.FieldOperation, action,
		log.FieldError, err)
	return fmt.Errorf("%w: failed to %s, try again later", core.ErrQueryFailed, action)
}
