package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"moneyboard/internal/amqp"
	"moneyboard/internal/core"
	"moneyboard/internal/log"
	"moneyboard/internal/storage"
)

// Publisher announces committed changes. *amqp.Client implements it.
type Publisher interface {
	PublishTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error
}

// Invalidator drops derived data touched by a change. *DashboardService implements it.
type Invalidator interface {
	Invalidate(ctx context.Context, ev *amqp.TransactionEvent)
}

// LedgerService orchestrates writes across the store, the summary caches and
// the event bus. The store is authoritative: a failed publish or
// invalidation never fails the request.
type LedgerService struct {
	store       storage.Store
	publisher   Publisher
	invalidator Invalidator
	logger      *log.Logger
	audit       *log.StructuredLogger
}

func NewLedgerService(store storage.Store, publisher Publisher, invalidator Invalidator, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentService)
	return &LedgerService{
		store:       store,
		publisher:   publisher,
		invalidator: invalidator,
		logger:      logger,
		audit:       log.NewStructuredLogger(logger),
	}
}

func (s *LedgerService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *LedgerService) CreateCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	c, err := s.store.CreateCategory(ctx, in)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.audit.LogCategoryChanged(ctx, log.OpCreate, c.ID, c.Name)
	return c, nil
}

func (s *LedgerService) UpdateCategory(ctx context.Context, id int64, patch core.CategoryPatch) (core.Category, error) {
	c, err := s.store.UpdateCategory(ctx, id, patch)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category %d: %w", id, err)
	}
	s.audit.LogCategoryChanged(ctx, log.OpUpdate, c.ID, c.Name)
	s.announce(ctx, amqp.NewCategoryEvent(id))
	return c, nil
}

func (s *LedgerService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		s.audit.LogError(ctx, "Failed to delete category", err, log.ComponentStorage, log.OpDelete,
			log.NewFields().With(log.FieldCategoryID, id))
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	s.audit.LogCategoryChanged(ctx, log.OpDelete, id, "")
	s.announce(ctx, amqp.NewCategoryEvent(id))
	return nil
}

func (s *LedgerService) ListTransactions(ctx context.Context, kind core.Kind, f storage.Filter) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, kind, f)
}

func (s *LedgerService) GetTransaction(ctx context.Context, kind core.Kind, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, kind, id)
}

// CreateTransaction validates in against the stored categories, saves it
// and announces the affected month.
func (s *LedgerService) CreateTransaction(ctx context.Context, kind core.Kind, in core.TransactionInput) (core.Transaction, error) {
	if err := storage.CheckTransactionInput(ctx, s.store, in); err != nil {
		return core.Transaction{}, err
	}
	tx, err := s.store.CreateTransaction(ctx, kind, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save %s: %w", kind, err)
	}

	s.logger.Fields(ctx, slog.LevelInfo, "Transaction created", log.NewFields().
		WithOperation(log.OpCreate).
		WithTransaction(kind.String(), tx.ID, tx.Amount.String(), tx.CategoryID))

	s.announce(ctx, amqp.NewTransactionEvent(amqp.ActionCreated, kind, tx.ID, tx.Date))
	return tx, nil
}

// UpdateTransaction applies patch. When the date moves across months both
// months are announced.
func (s *LedgerService) UpdateTransaction(ctx context.Context, kind core.Kind, id int64, patch core.TransactionPatch) (core.Transaction, error) {
	before, err := s.store.GetTransaction(ctx, kind, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := storage.CheckTransactionInput(ctx, s.store, patch.Apply(before.Input())); err != nil {
		return core.Transaction{}, err
	}

	tx, err := s.store.UpdateTransaction(ctx, kind, id, patch)
	if err != nil {
		s.audit.LogError(ctx, "Failed to update transaction", err, log.ComponentStorage, log.OpUpdate,
			log.NewFields().With(log.FieldKind, kind.String()).With(log.FieldTransactionID, id))
		return core.Transaction{}, fmt.Errorf("update %s %d: %w", kind, id, err)
	}
	s.audit.LogTransactionChanged(ctx, log.OpUpdate, kind.String(), tx.ID, tx.Amount.String(), tx.CategoryID)
	s.announce(ctx, amqp.NewTransactionEvent(amqp.ActionUpdated, kind, id, before.Date, tx.Date))
	return tx, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, kind core.Kind, id int64) error {
	before, err := s.store.GetTransaction(ctx, kind, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, kind, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	s.audit.LogTransactionChanged(ctx, log.OpDelete, kind.String(), id, before.Amount.String(), before.CategoryID)
	s.announce(ctx, amqp.NewTransactionEvent(amqp.ActionDeleted, kind, id, before.Date))
	return nil
}

func (s *LedgerService) announce(ctx context.Context, ev *amqp.TransactionEvent) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, ev)
	}
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, ev); err != nil {
		// The change is committed; consumers catch up on the next event.
		s.logger.WarnContext(ctx, "Failed to publish transaction event",
			"action", ev.Action, "id", ev.ID, log.FieldError, err)
	}
}

// Ping checks the store.
func (s *LedgerService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close closes the store.
func (s *LedgerService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
