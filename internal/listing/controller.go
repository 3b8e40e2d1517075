// Package listing holds the state of one transaction list view: the loaded
// collection, its categories, the add form and transient notices.
package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"moneyboard/internal/core"
	"moneyboard/internal/gateway"
	"moneyboard/internal/i18n"
	"moneyboard/internal/log"
	"moneyboard/internal/validate"
)

// State is the data state of a list view.
type State int

const (
	Loading State = iota
	Ready
	LoadError
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case LoadError:
		return "load_error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrLoad wraps the failure of the initial transaction/category fetch.
	ErrLoad = errors.New("load failed")
	// ErrNotReady is returned by mutations attempted before a successful Mount.
	ErrNotReady = errors.New("list is not ready")
	// ErrUnmounted is returned when the view was torn down; the result was dropped.
	ErrUnmounted = errors.New("list is unmounted")
)

// TransactionSource is the part of the gateway a list needs.
type TransactionSource interface {
	Kind() core.Kind
	List(ctx context.Context, f gateway.Filter) ([]core.Transaction, error)
	Create(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error)
	Delete(ctx context.Context, id int64) error
}

type CategorySource interface {
	List(ctx context.Context) ([]core.Category, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt i18n.Key) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt i18n.Key) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt i18n.Key) bool { return f(ctx, prompt) }

// Notice is a transient, non-fatal message for the user.
type Notice struct {
	Key i18n.Key
	Err error
}

// Controller owns one list view. It is safe for concurrent use; gateway
// calls run without holding the lock.
type Controller struct {
	kind         core.Kind
	transactions TransactionSource
	categories   CategorySource
	confirm      Confirmer
	filter       gateway.Filter
	logger       *log.Logger

	mu        sync.Mutex
	state     State
	mounted   bool
	unmounted bool
	formOpen  bool
	items     []core.Transaction
	cats      []core.Category
	malformed []error
	notice    *Notice
	loadErr   error
}

type Option func(*Controller)

// WithFilter restricts the initial fetch to a date range.
func WithFilter(f gateway.Filter) Option {
	return func(c *Controller) { c.filter = f }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l.WithComponent(log.ComponentListing) }
}

// New builds a controller in the Loading state.
func New(txs TransactionSource, cats CategorySource, confirm Confirmer, opts ...Option) *Controller {
	c := &Controller{
		kind:         txs.Kind(),
		transactions: txs,
		categories:   cats,
		confirm:      confirm,
		logger:       log.Discard(),
		state:        Loading,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Kind() core.Kind { return c.kind }

// Mount fetches the collection and the categories concurrently. Both must
// succeed; otherwise the controller ends in LoadError and stays there.
// Calling Mount again is a no-op.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return ErrUnmounted
	}
	if c.mounted {
		c.mu.Unlock()
		return nil
	}
	c.mounted = true
	c.mu.Unlock()

	var (
		txs  []core.Transaction
		cats []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = c.transactions.List(gctx, c.filter)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = c.categories.List(gctx)
		return err
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unmounted {
		return ErrUnmounted
	}
	if err != nil {
		c.state = LoadError
		c.loadErr = fmt.Errorf("%w: %w", ErrLoad, err)
		c.logger.Fields(ctx, slog.LevelError, "Failed to load list", log.NewFields().
			WithOperation(log.OpMount).
			WithError(err).
			With(log.FieldKind, c.kind.String()))
		return c.loadErr
	}

	c.cats = cats
	c.items = make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if err := core.CheckTransaction(tx, cats); err != nil {
			c.malformed = append(c.malformed, err)
			continue
		}
		c.items = append(c.items, tx)
	}
	if len(c.malformed) > 0 {
		c.notice = &Notice{Key: i18n.MalformedRecords, Err: errors.Join(c.malformed...)}
		c.logger.Fields(ctx, slog.LevelWarn, "Skipped malformed records", log.NewFields().
			WithOperation(log.OpMount).
			WithErrorType(log.ErrorTypeMalformed).
			With(log.FieldKind, c.kind.String()).
			With(log.FieldCount, len(c.malformed)))
	}
	c.state = Ready
	c.logger.Debug("List ready", log.FieldKind, c.kind.String(), log.FieldCount, len(c.items))
	return nil
}

// Unmount detaches the view. Results of requests still in flight are dropped.
func (c *Controller) Unmount() {
	c.mu.Lock()
	c.unmounted = true
	c.mu.Unlock()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the load failure, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

// LoadErrorKey is the generic message shown in the LoadError state.
func (c *Controller) LoadErrorKey() i18n.Key { return i18n.FailedToLoadKey(c.kind) }

// Transactions returns a copy of the collection, most recent first.
func (c *Controller) Transactions() []core.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Categories returns the categories resolved by Mount, or nil before that.
func (c *Controller) Categories() []core.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Ready {
		return nil
	}
	return slices.Clone(c.cats)
}

// Malformed lists the records Mount excluded.
func (c *Controller) Malformed() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.malformed)
}

func (c *Controller) Notice() (Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notice == nil {
		return Notice{}, false
	}
	return *c.notice, true
}

func (c *Controller) DismissNotice() {
	c.mu.Lock()
	c.notice = nil
	c.mu.Unlock()
}

func (c *Controller) FormOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.formOpen
}

func (c *Controller) OpenForm()  { c.setForm(true) }
func (c *Controller) CloseForm() { c.setForm(false) }

func (c *Controller) ToggleForm() {
	c.mu.Lock()
	c.formOpen = !c.formOpen
	c.mu.Unlock()
}

func (c *Controller) setForm(open bool) {
	c.mu.Lock()
	c.formOpen = open
	c.mu.Unlock()
}

// Submit validates draft against the loaded categories and, when valid,
// creates it. Validation failures come back as Errors and never reach the
// gateway. A gateway failure sets a notice and leaves the form and the
// collection untouched.
func (c *Controller) Submit(ctx context.Context, draft core.TransactionDraft) (validate.Errors, error) {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return nil, ErrUnmounted
	}
	if c.state != Ready {
		c.mu.Unlock()
		return nil, ErrNotReady
	}
	errs := validate.Draft(draft, c.cats)
	c.mu.Unlock()
	if !errs.Valid() {
		return errs, nil
	}

	created, err := c.transactions.Create(ctx, draft)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unmounted {
		return nil, ErrUnmounted
	}
	if err != nil {
		c.notice = &Notice{Key: i18n.AddErrorKey(c.kind), Err: err}
		c.logger.Fields(ctx, slog.LevelWarn, "Failed to create transaction", log.NewFields().
			WithOperation(log.OpCreate).
			WithError(err).
			With(log.FieldKind, c.kind.String()))
		return nil, err
	}
	c.items = slices.Insert(c.items, 0, created)
	c.formOpen = false
	c.notice = nil
	return nil, nil
}

// Remove deletes id after the user confirms. Declining is a no-op. The
// collection only changes once the delete succeeded.
func (c *Controller) Remove(ctx context.Context, id int64) (bool, error) {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return false, ErrUnmounted
	}
	if c.state != Ready {
		c.mu.Unlock()
		return false, ErrNotReady
	}
	c.mu.Unlock()

	if c.confirm == nil || !c.confirm.Confirm(ctx, i18n.DeleteConfirmKey(c.kind)) {
		return false, nil
	}

	err := c.transactions.Delete(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unmounted {
		return false, ErrUnmounted
	}
	if err != nil {
		c.notice = &Notice{Key: i18n.DeleteErrorKey(c.kind), Err: err}
		c.logger.Fields(ctx, slog.LevelWarn, "Failed to delete transaction", log.NewFields().
			WithOperation(log.OpDelete).
			WithError(err).
			With(log.FieldKind, c.kind.String()).
			With(log.FieldTransactionID, id))
		return false, err
	}
	c.items = slices.DeleteFunc(c.items, func(tx core.Transaction) bool { return tx.ID == id })
	c.notice = nil
	return true, nil
}
