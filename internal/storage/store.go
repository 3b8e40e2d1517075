package storage

import (
	"context"
	"errors"
	"fmt"

	"moneyboard/internal/core"
)

var (
	// ErrCategoryInUse is returned when deleting a category that still has transactions.
	ErrCategoryInUse = errors.New("category has associated transactions")
	// ErrDuplicateCategory is returned when a category name is already taken.
	ErrDuplicateCategory = errors.New("category name already exists")
)

// DefaultColor is assigned to categories created without a color.
const DefaultColor = "#007bff"

// Filter narrows a transaction listing to an inclusive date range.
type Filter struct {
	Start core.Date
	End   core.Date
}

// Match reports whether d falls inside the filter.
func (f Filter) Match(d core.Date) bool {
	if !f.Start.IsZero() && d.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && d.After(f.End) {
		return false
	}
	return true
}

// MonthFilter covers every day of p.
func MonthFilter(p core.Period) Filter {
	start := core.NewDate(p.Year, p.Month, 1)
	return Filter{Start: start, End: core.DateOf(start.AddDate(0, 1, -1))}
}

type CategoryStore interface {
	// ListCategories returns every category ordered by name.
	ListCategories(ctx context.Context) ([]core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	CreateCategory(ctx context.Context, in core.CategoryInput) (core.Category, error)
	UpdateCategory(ctx context.Context, id int64, patch core.CategoryPatch) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type TransactionStore interface {
	// ListTransactions returns kind's transactions in f, newest date first,
	// with the category join populated.
	ListTransactions(ctx context.Context, kind core.Kind, f Filter) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, kind core.Kind, id int64) (core.Transaction, error)
	CreateTransaction(ctx context.Context, kind core.Kind, in core.TransactionInput) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, kind core.Kind, id int64, patch core.TransactionPatch) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, kind core.Kind, id int64) error
	// MonthlyTotals returns per-month sums for the latest limit months that
	// have data, in chronological order.
	MonthlyTotals(ctx context.Context, kind core.Kind, limit int) ([]core.MonthlyPoint, error)
}

// Store is the persistence boundary of the server.
type Store interface {
	CategoryStore
	TransactionStore
	Ping(ctx context.Context) error
	Close() error
}

// CheckTransactionInput validates in and the existence of its category.
func CheckTransactionInput(ctx context.Context, s CategoryStore, in core.TransactionInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if _, err := s.GetCategory(ctx, in.CategoryID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("%w: %d", core.ErrUnknownCategory, in.CategoryID)
		}
		return err
	}
	return nil
}
