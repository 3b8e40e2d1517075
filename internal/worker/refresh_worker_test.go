package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"moneyboard/internal/amqp"
	"moneyboard/internal/core"
)

type fakeRefresher struct {
	mu     sync.Mutex
	events []*amqp.TransactionEvent
	err    error
}

func (f *fakeRefresher) Refresh(_ context.Context, ev *amqp.TransactionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakeRefresher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func TestDefaultConfig(t *testing.T) {
	if DefaultConfig().WarmInterval != 10*time.Minute {
		t.Errorf("unexpected default warm interval %v", DefaultConfig().WarmInterval)
	}
}

func TestHandleEvent(t *testing.T) {
	r := &fakeRefresher{}
	w := NewRefreshWorker(r, DefaultConfig(), nil)

	ev := amqp.NewTransactionEvent(amqp.ActionCreated, core.Expense, 1, core.NewDate(2024, 3, 5))
	if err := w.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.count() != 1 || r.events[0] != ev {
		t.Fatalf("event not forwarded")
	}

	r.err = errors.New("store down")
	if err := w.HandleEvent(context.Background(), ev); !errors.Is(err, r.err) {
		t.Errorf("expected wrapped refresh error, got %v", err)
	}
}

func TestStartStop(t *testing.T) {
	r := &fakeRefresher{}
	w := NewRefreshWorker(r, Config{WarmInterval: time.Millisecond}, nil)

	if w.IsRunning() {
		t.Fatal("worker should not be running initially")
	}
	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("Stop should not error when not running: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(ctx); err == nil {
		t.Error("expected error when starting a running worker")
	}

	deadline := time.Now().Add(time.Second)
	for r.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if r.count() < 3 {
		t.Errorf("expected startup warm plus periodic warms, got %d", r.count())
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := w.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if w.IsRunning() {
		t.Error("worker should not be running after Stop")
	}
}
