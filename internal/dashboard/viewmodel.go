// Package dashboard projects a monthly summary into chart series and rows.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"moneyboard/internal/core"
	"moneyboard/internal/i18n"
	"moneyboard/internal/log"
)

type State int

const (
	Loading State = iota
	Ready
	LoadError
	// Empty means the server returned no summary at all, which differs from
	// a summary whose breakdowns are empty.
	Empty
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case LoadError:
		return "load_error"
	case Empty:
		return "empty"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrLoad wraps the failure of the summary fetch.
	ErrLoad = errors.New("dashboard load failed")
	// ErrUnmounted is returned by Mount after Unmount.
	ErrUnmounted = errors.New("dashboard is unmounted")
)

type SummarySource interface {
	Summary(ctx context.Context, p core.Period) (*core.DashboardSummary, error)
}

// ViewModel fetches one summary, once. There is no polling.
type ViewModel struct {
	source SummarySource
	period core.Period
	logger *log.Logger

	mu        sync.Mutex
	once      sync.Once
	unmounted bool
	state     State
	summary *core.DashboardSummary
	err     error
}

// New builds a view-model for period; the zero period is the current month.
func New(source SummarySource, period core.Period, logger *log.Logger) *ViewModel {
	if logger == nil {
		logger = log.Discard()
	}
	return &ViewModel{
		source: source,
		period: period,
		logger: logger.WithComponent(log.ComponentDashboard),
		state:  Loading,
	}
}

// Mount performs the single fetch. Later calls return the first outcome
// without touching the source. A result that arrives after Unmount is
// dropped.
func (vm *ViewModel) Mount(ctx context.Context) error {
	vm.mu.Lock()
	gone := vm.unmounted
	vm.mu.Unlock()
	if gone {
		return ErrUnmounted
	}

	vm.once.Do(func() {
		summary, err := vm.source.Summary(ctx, vm.period)

		vm.mu.Lock()
		defer vm.mu.Unlock()
		if vm.unmounted {
			vm.logger.DebugContext(ctx, "Dropped dashboard result after unmount")
			return
		}
		switch {
		case err != nil:
			vm.state = LoadError
			vm.err = fmt.Errorf("%w: %w", ErrLoad, err)
			vm.logger.Fields(ctx, slog.LevelError, "Failed to load dashboard", log.NewFields().
				WithOperation(log.OpSummary).
				WithError(err).
				WithPeriod(vm.period.Year, vm.period.Month))
		case summary == nil:
			vm.state = Empty
		default:
			vm.state = Ready
			vm.summary = summary
		}
	})
	return vm.Err()
}

// Unmount detaches the view-model; state stops changing from then on.
func (vm *ViewModel) Unmount() {
	vm.mu.Lock()
	vm.unmounted = true
	vm.mu.Unlock()
}

func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

func (vm *ViewModel) Err() error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.err
}

// Summary returns the fetched summary, or nil unless Ready.
func (vm *ViewModel) Summary() *core.DashboardSummary {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.summary
}

// View projects the summary for display. It reports false unless Ready.
func (vm *ViewModel) View(f *i18n.Formatter) (View, bool) {
	s := vm.Summary()
	if s == nil {
		return View{}, false
	}
	return Project(*s, f), true
}
