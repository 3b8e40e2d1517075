// Package worker keeps the shared dashboard cache warm by reacting to
// transaction change events.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"moneyboard/internal/amqp"
	"moneyboard/internal/log"
)

// Refresher recomputes the derived data an event touched.
type Refresher interface {
	Refresh(ctx context.Context, ev *amqp.TransactionEvent) error
}

// Config holds configuration for the refresh worker
type Config struct {
	// WarmInterval is how often the current month is recomputed even
	// without events, covering messages lost while the broker was down.
	WarmInterval time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{WarmInterval: 10 * time.Minute}
}

// RefreshWorker consumes transaction events and refreshes the dashboard.
type RefreshWorker struct {
	refresher Refresher
	config    Config
	logger    *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewRefreshWorker(refresher Refresher, config Config, logger *log.Logger) *RefreshWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &RefreshWorker{
		refresher: refresher,
		config:    config,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent processes a single event from AMQP. Returning an error
// requeues the message.
func (w *RefreshWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	w.logger.InfoContext(ctx, "Processing transaction event",
		"action", ev.Action,
		log.FieldKind, ev.Kind,
		"id", ev.ID,
		"periods", len(ev.Periods))

	if err := w.refresher.Refresh(ctx, ev); err != nil {
		return fmt.Errorf("refresh after %s %d: %w", ev.Action, ev.ID, err)
	}
	return nil
}

// Warm recomputes the current month and the trend.
func (w *RefreshWorker) Warm(ctx context.Context) error {
	ev := &amqp.TransactionEvent{Action: amqp.ActionUpdated, Timestamp: time.Now().UTC()}
	if err := w.refresher.Refresh(ctx, ev); err != nil {
		return fmt.Errorf("warm dashboard cache: %w", err)
	}
	return nil
}

// Start begins the periodic warm loop. Returns an error if already running.
func (w *RefreshWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("refresh worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	if err := w.Warm(ctx); err != nil {
		w.logger.WarnContext(ctx, "Startup warm failed", log.FieldError, err)
	}

	go w.runLoop(ctx)

	w.logger.InfoContext(ctx, "Refresh worker started", "warm_interval", w.config.WarmInterval.String())
	return nil
}

func (w *RefreshWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.WarmInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if err := w.Warm(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic warm failed", log.FieldError, err)
			}
		}
	}
}

// Stop gracefully stops the loop and waits for completion.
func (w *RefreshWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		w.logger.InfoContext(ctx, "Refresh worker stopped gracefully")
		return nil
	case <-ctx.Done():
		w.logger.WarnContext(ctx, "Refresh worker stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the warm loop is active.
func (w *RefreshWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
