package listing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"moneyboard/internal/core"
	"moneyboard/internal/gateway"
	"moneyboard/internal/i18n"
)

var food = core.Category{ID: 3, Name: "Food", Color: "#ff0000"}

type fakeTransactions struct {
	mu        sync.Mutex
	kind      core.Kind
	items     []core.Transaction
	listErr   error
	createErr error
	nextID    int64
	created   []core.TransactionDraft
	deleted   []int64
	listGate  chan struct{}
}

func (f *fakeTransactions) Kind() core.Kind { return f.kind }

func (f *fakeTransactions) List(ctx context.Context, _ gateway.Filter) ([]core.Transaction, error) {
	if f.listGate != nil {
		<-f.listGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]core.Transaction(nil), f.items...), nil
}

func (f *fakeTransactions) Create(ctx context.Context, d core.TransactionDraft) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, d)
	if f.createErr != nil {
		return core.Transaction{}, f.createErr
	}
	f.nextID++
	in := d.Input()
	tx := core.Transaction{ID: f.nextID, Amount: in.Amount, Description: in.Description, Date: in.Date, CategoryID: in.CategoryID}
	f.items = append([]core.Transaction{tx}, f.items...)
	return tx, nil
}

func (f *fakeTransactions) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	for i, tx := range f.items {
		if tx.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return &gateway.RequestFailedError{Op: "delete expense", Status: 404, Err: errors.New("Expense not found")}
}

type fakeCategories struct {
	cats []core.Category
	err  error
	gate chan struct{}
}

func (f *fakeCategories) List(ctx context.Context) ([]core.Category, error) {
	if f.gate != nil {
		<-f.gate
	}
	return f.cats, f.err
}

func always(answer bool) (Confirmer, *int) {
	asked := 0
	return ConfirmFunc(func(ctx context.Context, prompt i18n.Key) bool {
		asked++
		return answer
	}), &asked
}

func tx(id int64, amount, desc string, day int, cat int64) core.Transaction {
	return core.Transaction{ID: id, Amount: core.MustMoney(amount), Description: desc, Date: core.NewDate(2024, 3, day), CategoryID: cat}
}

func mounted(t *testing.T, txs *fakeTransactions, confirm Confirmer) *Controller {
	t.Helper()
	c := New(txs, &fakeCategories{cats: []core.Category{food}}, confirm)
	if err := c.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if c.State() != Ready {
		t.Fatalf("state = %v, want ready", c.State())
	}
	return c
}

func lunchDraft() core.TransactionDraft {
	d := core.TransactionDraft{Description: "Lunch", Date: core.NewDate(2024, 3, 15)}
	d.SetAmount(core.MustMoney("100.50"))
	d.SetCategory(3)
	return d
}

func TestSubmitLunchScenario(t *testing.T) {
	txs := &fakeTransactions{kind: core.Expense, items: []core.Transaction{tx(1, "20", "Bus", 10, 3)}, nextID: 1}
	c := mounted(t, txs, nil)
	c.OpenForm()

	errs, err := c.Submit(context.Background(), lunchDraft())
	if err != nil || errs != nil {
		t.Fatalf("Submit: errs=%v err=%v", errs, err)
	}
	if len(txs.created) != 1 {
		t.Fatalf("create called %d times, want 1", len(txs.created))
	}
	sent := txs.created[0]
	if !sent.Amount.Equal(core.MustMoney("100.50")) || sent.Description != "Lunch" || *sent.CategoryID != 3 || sent.Date != core.NewDate(2024, 3, 15) {
		t.Errorf("unexpected draft sent: %+v", sent)
	}

	items := c.Transactions()
	if len(items) != 2 || items[0].ID != 2 || items[0].Description != "Lunch" {
		t.Fatalf("created entity should be prepended, got %+v", items)
	}
	if c.FormOpen() {
		t.Errorf("form should close after success")
	}
	if _, ok := c.Notice(); ok {
		t.Errorf("unexpected notice")
	}
}

func TestSubmitInvalidDraftNeverCallsGateway(t *testing.T) {
	txs := &fakeTransactions{kind: core.Expense}
	c := mounted(t, txs, nil)
	c.OpenForm()

	draft := lunchDraft()
	draft.Description = "  "
	draft.SetCategory(99)

	errs, err := c.Submit(context.Background(), draft)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if errs[core.FieldDescription] != i18n.DescriptionRequired || errs[core.FieldCategory] != i18n.CategoryUnknown {
		t.Errorf("unexpected errors %v", errs)
	}
	if len(txs.created) != 0 {
		t.Errorf("gateway must not be called for an invalid draft")
	}
	if !c.FormOpen() {
		t.Errorf("form should stay open")
	}
}

func TestSubmitFailureKeepsStateAndSetsNotice(t *testing.T) {
	failure := &gateway.RequestFailedError{Op: "create expense", Status: 500, Err: errors.New("boom")}
	txs := &fakeTransactions{kind: core.Expense, items: []core.Transaction{tx(1, "20", "Bus", 10, 3)}, createErr: failure}
	c := mounted(t, txs, nil)
	c.OpenForm()

	_, err := c.Submit(context.Background(), lunchDraft())
	if !errors.Is(err, gateway.ErrRequestFailed) {
		t.Fatalf("expected RequestFailed, got %v", err)
	}
	if !c.FormOpen() {
		t.Errorf("form should stay open on failure")
	}
	if got := c.Transactions(); len(got) != 1 || got[0].ID != 1 {
		t.Errorf("collection should be unchanged, got %+v", got)
	}
	n, ok := c.Notice()
	if !ok || n.Key != i18n.ExpenseAddError {
		t.Errorf("notice = %+v %v", n, ok)
	}
}

func TestRemove(t *testing.T) {
	t.Run("declined is a no-op", func(t *testing.T) {
		txs := &fakeTransactions{kind: core.Income, items: []core.Transaction{tx(1, "10", "Gift", 1, 3)}}
		confirm, asked := always(false)
		c := mounted(t, txs, confirm)

		removed, err := c.Remove(context.Background(), 1)
		if removed || err != nil {
			t.Fatalf("Remove = %v %v", removed, err)
		}
		if *asked != 1 || len(txs.deleted) != 0 || len(c.Transactions()) != 1 {
			t.Errorf("decline must not touch the gateway or the list")
		}
	})

	t.Run("confirmed removes only the matching id", func(t *testing.T) {
		txs := &fakeTransactions{kind: core.Expense, items: []core.Transaction{tx(2, "5", "Tea", 2, 3), tx(1, "10", "Bus", 1, 3)}}
		confirm, _ := always(true)
		c := mounted(t, txs, confirm)

		removed, err := c.Remove(context.Background(), 2)
		if !removed || err != nil {
			t.Fatalf("Remove = %v %v", removed, err)
		}
		if got := c.Transactions(); len(got) != 1 || got[0].ID != 1 {
			t.Errorf("unexpected collection %+v", got)
		}
	})

	t.Run("deleting twice reports not found and keeps the rest", func(t *testing.T) {
		txs := &fakeTransactions{kind: core.Expense, items: []core.Transaction{tx(2, "5", "Tea", 2, 3), tx(1, "10", "Bus", 1, 3)}}
		confirm, _ := always(true)
		c := mounted(t, txs, confirm)

		if _, err := c.Remove(context.Background(), 2); err != nil {
			t.Fatalf("first Remove: %v", err)
		}
		removed, err := c.Remove(context.Background(), 2)
		if removed || !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("second Remove = %v %v, want NotFound", removed, err)
		}
		if got := c.Transactions(); len(got) != 1 || got[0].ID != 1 {
			t.Errorf("other entities must survive, got %+v", got)
		}
		if n, ok := c.Notice(); !ok || n.Key != i18n.DeleteExpenseError {
			t.Errorf("notice = %+v %v", n, ok)
		}
	})
}

func TestMountFailure(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		txs  *fakeTransactions
		cats *fakeCategories
	}{
		{"transactions fail", &fakeTransactions{kind: core.Expense, listErr: boom}, &fakeCategories{cats: []core.Category{food}}},
		{"categories fail", &fakeTransactions{kind: core.Expense}, &fakeCategories{err: boom}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.txs, tt.cats, nil)
			err := c.Mount(context.Background())
			if !errors.Is(err, ErrLoad) || !errors.Is(err, boom) {
				t.Fatalf("Mount = %v", err)
			}
			if c.State() != LoadError || c.Categories() != nil {
				t.Errorf("state = %v categories = %v", c.State(), c.Categories())
			}
			if c.LoadErrorKey() != i18n.FailedToLoadExpenses {
				t.Errorf("load key = %v", c.LoadErrorKey())
			}
			if _, err := c.Submit(context.Background(), lunchDraft()); !errors.Is(err, ErrNotReady) {
				t.Errorf("Submit in LoadError = %v", err)
			}
		})
	}
}

func TestCategoriesNotExposedWhileFetchPending(t *testing.T) {
	gate := make(chan struct{})
	cats := &fakeCategories{cats: []core.Category{food}, gate: gate}
	c := New(&fakeTransactions{kind: core.Expense}, cats, nil)

	done := make(chan error)
	go func() { done <- c.Mount(context.Background()) }()

	if got := c.Categories(); got != nil {
		t.Fatalf("selector populated before fetch resolved: %v", got)
	}
	if c.State() != Loading {
		t.Fatalf("state = %v, want loading", c.State())
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if got := c.Categories(); len(got) != 1 || got[0] != food {
		t.Fatalf("categories = %v", got)
	}
}

func TestMalformedRecordsAreExcluded(t *testing.T) {
	bad := tx(9, "10", "Orphan", 3, 42)
	txs := &fakeTransactions{kind: core.Expense, items: []core.Transaction{tx(1, "10", "Bus", 1, 3), bad}}
	c := mounted(t, txs, nil)

	if got := c.Transactions(); len(got) != 1 || got[0].ID != 1 {
		t.Errorf("malformed record should be excluded, got %+v", got)
	}
	malformed := c.Malformed()
	var me *core.MalformedError
	if len(malformed) != 1 || !errors.As(malformed[0], &me) || me.ID != 9 {
		t.Errorf("malformed = %v", malformed)
	}
	if n, ok := c.Notice(); !ok || n.Key != i18n.MalformedRecords {
		t.Errorf("notice = %+v %v", n, ok)
	}
}

func TestUnmountDropsLateResults(t *testing.T) {
	gate := make(chan struct{})
	txs := &fakeTransactions{kind: core.Expense, listGate: gate}
	c := New(txs, &fakeCategories{cats: []core.Category{food}}, nil)

	done := make(chan error)
	go func() { done <- c.Mount(context.Background()) }()
	c.Unmount()
	close(gate)

	if err := <-done; !errors.Is(err, ErrUnmounted) {
		t.Fatalf("Mount = %v, want ErrUnmounted", err)
	}
	if c.State() != Loading {
		t.Errorf("late result must not change state, got %v", c.State())
	}
}

func TestFormToggle(t *testing.T) {
	c := New(&fakeTransactions{kind: core.Income}, &fakeCategories{}, nil)
	c.ToggleForm()
	if !c.FormOpen() {
		t.Fatal("toggle should open")
	}
	c.CloseForm()
	if c.FormOpen() {
		t.Fatal("close should close")
	}
}

func TestRowsUseAuthoritativeCategory(t *testing.T) {
	stale := tx(1, "1234.5", "Groceries", 5, 3)
	stale.Category = &core.Category{ID: 3, Name: "Old name", Color: "#000000"}
	txs := &fakeTransactions{kind: core.Expense, items: []core.Transaction{stale}}
	c := mounted(t, txs, nil)

	rows := c.Rows(i18n.MustFormatter("es-AR", "ARS"))
	if len(rows) != 1 {
		t.Fatalf("rows = %v", rows)
	}
	r := rows[0]
	if r.Category != "Food" || r.Color != "#ff0000" {
		t.Errorf("row category = %q %q", r.Category, r.Color)
	}
	if r.Date != "5/3/2024" {
		t.Errorf("row date = %q", r.Date)
	}
	if r.Amount == "" || r.Amount == stale.Amount.String() {
		t.Errorf("amount should be locale formatted, got %q", r.Amount)
	}
	if !c.Transactions()[0].Amount.Equal(core.MustMoney("1234.5")) {
		t.Errorf("formatting must not mutate stored amount")
	}
}
