package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"mywallet/internal/core"
	"mywallet/internal/log"
	"mywallet/internal/ports"
)

const (
	MsgRecorded = "Transaction has been successfully recorded!"
	MsgUpdated  = "Transaction has been successfully updated!"
	MsgDeleted  = "Transaction has been successfully deleted!"
)

// WriteService records transactions and runs the post-write hook after a
// successful create. Hook outcomes never affect the result.
type WriteService struct {
	store      ports.TransactionStore
	users      ports.UserLookup
	categories ports.CategoryLookup
	hook       ports.PostWriteHook
	logger     *log.Logger
	events     *log.StructuredLogger
}

func NewWriteService(store ports.TransactionStore, users ports.UserLookup, categories ports.CategoryLookup, hook ports.PostWriteHook, logger *log.Logger) *WriteService {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentWrite)
	return &WriteService{
		store:      store,
		users:      users,
		categories: categories,
		hook:       hook,
		logger:     logger,
		events:     log.NewStructuredLogger(logger),
	}
}

// Add records a new transaction for the request's owner.
func (s *WriteService) Add(ctx context.Context, req core.TransactionRequest) (*core.Result[core.Confirmation], error) {
	tx, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.Save(ctx, tx)
	if err != nil {
		return nil, s.writeFailed(ctx, "record transaction", err)
	}
	s.events.LogTransactionRecorded(ctx, log.OpCreate, saved)

	if s.hook != nil {
		s.hook.AfterWrite(ctx, saved)
	}

	return core.Confirm(http.StatusCreated, saved.ID, MsgRecorded), nil
}

// Update overwrites an existing transaction. No alert is evaluated.
func (s *WriteService) Update(ctx context.Context, id int64, req core.TransactionRequest) (*core.Result[core.Confirmation], error) {
	_, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.writeFailed(ctx, "update transaction", err)
	}
	if !found {
		return nil, fmt.Errorf("%w with id: %d", core.ErrTransactionNotFound, id)
	}

	tx, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	tx.ID = id

	saved, err := s.store.Save(ctx, tx)
	if err != nil {
		return nil, s.writeFailed(ctx, "update transaction", err)
	}
	s.events.LogTransactionRecorded(ctx, log.OpUpdate, saved)

	return core.Confirm(http.StatusOK, saved.ID, MsgUpdated), nil
}

func (s *WriteService) Delete(ctx context.Context, id int64) (*core.Result[core.Confirmation], error) {
	exists, err := s.store.ExistsByID(ctx, id)
	if err != nil {
		return nil, s.writeFailed(ctx, "delete transaction", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w with id: %d", core.ErrTransactionNotFound, id)
	}
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return nil, s.writeFailed(ctx, "delete transaction", err)
	}

	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id)
	return core.Confirm(http.StatusOK, id, MsgDeleted), nil
}

// resolve validates req and looks up its owner and category.
func (s *WriteService) resolve(ctx context.Context, req core.TransactionRequest) (core.Transaction, error) {
	if err := req.Validate(); err != nil {
		return core.Transaction{}, err
	}

	owner, found, err := s.users.FindByEmail(ctx, req.OwnerEmail)
	if err != nil {
		return core.Transaction{}, s.writeFailed(ctx, "resolve owner", err)
	}
	if !found {
		return core.Transaction{}, fmt.Errorf("%w with email: %s", core.ErrOwnerNotFound, req.OwnerEmail)
	}

	category, found, err := s.categories.FindByID(ctx, req.CategoryID)
	if err != nil {
		return core.Transaction{}, s.writeFailed(ctx, "resolve category", err)
	}
	if !found {
		return core.Transaction{}, fmt.Errorf("%w with id: %d", core.ErrCategoryNotFound, req.CategoryID)
	}

	return core.Transaction{
		Owner:       owner,
		Category:    category,
		Description: req.Description,
		Amount:      req.Amount,
		Date:        req.Date,
	}, nil
}

func (s *WriteService) writeFailed(ctx context.Context, action string, err error) error {
	if errors.Is(err, core.ErrValidation) || errors.Is(err, core.ErrNotFound) {
		return err
	}
	s.logger.ErrorContext(ctx, "Write failed",
		log.FieldOperation, action,
		log.FieldError, err)
	return fmt.Errorf("%w: failed to %s, try again later", core.ErrWriteFailed, action)
}
