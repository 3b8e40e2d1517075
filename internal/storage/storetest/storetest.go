// Package storetest holds the behaviour every storage.Store must share.
package storetest

import (
	"context"
	"errors"
	"testing"

	"moneyboard/internal/core"
	"moneyboard/internal/storage"
)

// Run exercises a fresh store returned by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Store)
	}{
		{"categories are listed by name", testCategoryOrder},
		{"duplicate category names are rejected", testDuplicateCategory},
		{"category update is partial", testCategoryUpdate},
		{"category in use cannot be deleted", testCategoryInUse},
		{"create then list round trip", testRoundTrip},
		{"transactions are listed newest first within the filter", testListOrderAndFilter},
		{"unknown category is rejected", testUnknownCategory},
		{"update applies a partial patch", testTransactionUpdate},
		{"delete twice reports not found", testDeleteIdempotence},
		{"kinds are stored separately", testKindsSeparate},
		{"monthly totals are chronological and limited", testMonthlyTotals},
		{"seeding only fills an empty store", testSeed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { s.Close() })
			tt.fn(t, s)
		})
	}
}

func mustCategory(t *testing.T, s storage.Store, name, color string) core.Category {
	t.Helper()
	c, err := s.CreateCategory(context.Background(), core.CategoryInput{Name: name, Color: color})
	if err != nil {
		t.Fatalf("CreateCategory(%q): %v", name, err)
	}
	return c
}

func mustTransaction(t *testing.T, s storage.Store, kind core.Kind, amount, desc string, date core.Date, cat int64) core.Transaction {
	t.Helper()
	tx, err := s.CreateTransaction(context.Background(), kind, core.TransactionInput{
		Amount: core.MustMoney(amount), Description: desc, Date: date, CategoryID: cat,
	})
	if err != nil {
		t.Fatalf("CreateTransaction(%q): %v", desc, err)
	}
	return tx
}

func testCategoryOrder(t *testing.T, s storage.Store) {
	mustCategory(t, s, "Shopping", "#45B7D1")
	mustCategory(t, s, "Food", "")
	mustCategory(t, s, "Rent", "#4ECDC4")

	cats, err := s.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	want := []string{"Food", "Rent", "Shopping"}
	if len(cats) != len(want) {
		t.Fatalf("got %d categories", len(cats))
	}
	for i, name := range want {
		if cats[i].Name != name || cats[i].ID < 1 {
			t.Errorf("category %d = %+v, want %s", i, cats[i], name)
		}
	}
	if cats[0].Color != storage.DefaultColor {
		t.Errorf("missing color should default, got %q", cats[0].Color)
	}
}

func testDuplicateCategory(t *testing.T, s storage.Store) {
	mustCategory(t, s, "Food", "#ff0000")
	_, err := s.CreateCategory(context.Background(), core.CategoryInput{Name: "Food"})
	if !errors.Is(err, storage.ErrDuplicateCategory) {
		t.Fatalf("expected ErrDuplicateCategory, got %v", err)
	}
	_, err = s.CreateCategory(context.Background(), core.CategoryInput{Name: "  "})
	if !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func testCategoryUpdate(t *testing.T, s storage.Store) {
	c := mustCategory(t, s, "Food", "#ff0000")
	color := "#00ff00"
	got, err := s.UpdateCategory(context.Background(), c.ID, core.CategoryPatch{Color: &color})
	if err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if got.Name != "Food" || got.Color != "#00ff00" {
		t.Errorf("unexpected category %+v", got)
	}
	if _, err := s.UpdateCategory(context.Background(), 999, core.CategoryPatch{Color: &color}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func testCategoryInUse(t *testing.T, s storage.Store) {
	ctx := context.Background()
	used := mustCategory(t, s, "Salary", "#58D68D")
	free := mustCategory(t, s, "Other", "#D5DBDB")
	tx := mustTransaction(t, s, core.Income, "1000", "March pay", core.NewDate(2024, 3, 1), used.ID)

	if err := s.DeleteCategory(ctx, used.ID); !errors.Is(err, storage.ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}
	if err := s.DeleteCategory(ctx, free.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if err := s.DeleteCategory(ctx, free.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, core.Income, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := s.DeleteCategory(ctx, used.ID); err != nil {
		t.Fatalf("category should be deletable once unused: %v", err)
	}
}

func testRoundTrip(t *testing.T, s storage.Store) {
	ctx := context.Background()
	food := mustCategory(t, s, "Food", "#ff0000")
	before, _ := s.ListTransactions(ctx, core.Expense, storage.Filter{})

	created := mustTransaction(t, s, core.Expense, "100.50", "Lunch", core.NewDate(2024, 3, 15), food.ID)
	if created.ID < 1 || created.Category == nil || created.Category.Name != "Food" {
		t.Fatalf("created = %+v", created)
	}
	for _, tx := range before {
		if tx.ID == created.ID {
			t.Fatalf("id %d was already in use", created.ID)
		}
	}

	all, err := s.ListTransactions(ctx, core.Expense, storage.Filter{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	found := false
	for _, tx := range all {
		if tx.ID == created.ID {
			found = true
			if !tx.Amount.Equal(core.MustMoney("100.50")) || tx.Description != "Lunch" ||
				tx.Date != core.NewDate(2024, 3, 15) || tx.CategoryID != food.ID {
				t.Errorf("stored transaction differs: %+v", tx)
			}
		}
	}
	if !found {
		t.Fatalf("created transaction not listed")
	}
}

func testListOrderAndFilter(t *testing.T, s storage.Store) {
	ctx := context.Background()
	c := mustCategory(t, s, "Food", "#ff0000")
	mustTransaction(t, s, core.Expense, "1", "feb", core.NewDate(2024, 2, 29), c.ID)
	mustTransaction(t, s, core.Expense, "2", "mar-1", core.NewDate(2024, 3, 1), c.ID)
	mustTransaction(t, s, core.Expense, "3", "mar-31", core.NewDate(2024, 3, 31), c.ID)
	mustTransaction(t, s, core.Expense, "4", "apr", core.NewDate(2024, 4, 1), c.ID)

	got, err := s.ListTransactions(ctx, core.Expense, storage.MonthFilter(core.Period{Year: 2024, Month: 3}))
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != 2 || got[0].Description != "mar-31" || got[1].Description != "mar-1" {
		t.Fatalf("unexpected listing %+v", got)
	}

	all, _ := s.ListTransactions(ctx, core.Expense, storage.Filter{})
	if len(all) != 4 || all[0].Description != "apr" || all[3].Description != "feb" {
		t.Fatalf("unexpected full listing %+v", all)
	}
}

func testUnknownCategory(t *testing.T, s storage.Store) {
	_, err := s.CreateTransaction(context.Background(), core.Expense, core.TransactionInput{
		Amount: core.MustMoney("5"), Description: "x", Date: core.NewDate(2024, 1, 1), CategoryID: 42,
	})
	if !errors.Is(err, core.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	_, err = s.CreateTransaction(context.Background(), core.Expense, core.TransactionInput{
		Amount: core.MustMoney("0"), Description: "x", Date: core.NewDate(2024, 1, 1), CategoryID: 42,
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func testTransactionUpdate(t *testing.T, s storage.Store) {
	ctx := context.Background()
	c := mustCategory(t, s, "Food", "#ff0000")
	other := mustCategory(t, s, "Rent", "#00ff00")
	tx := mustTransaction(t, s, core.Expense, "10", "Lunch", core.NewDate(2024, 3, 2), c.ID)

	amount := core.MustMoney("12.34")
	got, err := s.UpdateTransaction(ctx, core.Expense, tx.ID, core.TransactionPatch{Amount: &amount, CategoryID: &other.ID})
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if !got.Amount.Equal(amount) || got.Description != "Lunch" || got.CategoryID != other.ID || got.Category.Name != "Rent" {
		t.Errorf("unexpected update %+v", got)
	}
	if got.UpdatedAt.Before(tx.UpdatedAt.Time) {
		t.Errorf("updated_at went backwards")
	}

	missing := int64(999)
	if _, err := s.UpdateTransaction(ctx, core.Expense, tx.ID, core.TransactionPatch{CategoryID: &missing}); !errors.Is(err, core.ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
	if _, err := s.UpdateTransaction(ctx, core.Expense, 999, core.TransactionPatch{Amount: &amount}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func testDeleteIdempotence(t *testing.T, s storage.Store) {
	ctx := context.Background()
	c := mustCategory(t, s, "Food", "#ff0000")
	a := mustTransaction(t, s, core.Expense, "1", "a", core.NewDate(2024, 3, 1), c.ID)
	b := mustTransaction(t, s, core.Expense, "2", "b", core.NewDate(2024, 3, 2), c.ID)

	if err := s.DeleteTransaction(ctx, core.Expense, a.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := s.DeleteTransaction(ctx, core.Expense, a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
	left, _ := s.ListTransactions(ctx, core.Expense, storage.Filter{})
	if len(left) != 1 || left[0].ID != b.ID {
		t.Fatalf("other transactions must survive, got %+v", left)
	}
	if _, err := s.GetTransaction(ctx, core.Expense, a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("GetTransaction = %v, want ErrNotFound", err)
	}
}

func testKindsSeparate(t *testing.T, s storage.Store) {
	ctx := context.Background()
	c := mustCategory(t, s, "Misc", "#ff0000")
	mustTransaction(t, s, core.Expense, "1", "spent", core.NewDate(2024, 3, 1), c.ID)
	mustTransaction(t, s, core.Income, "2", "earned", core.NewDate(2024, 3, 1), c.ID)

	exp, _ := s.ListTransactions(ctx, core.Expense, storage.Filter{})
	inc, _ := s.ListTransactions(ctx, core.Income, storage.Filter{})
	if len(exp) != 1 || exp[0].Description != "spent" || len(inc) != 1 || inc[0].Description != "earned" {
		t.Fatalf("kinds leaked: expenses=%+v income=%+v", exp, inc)
	}
}

func testMonthlyTotals(t *testing.T, s storage.Store) {
	ctx := context.Background()
	c := mustCategory(t, s, "Food", "#ff0000")
	mustTransaction(t, s, core.Expense, "0.10", "a", core.NewDate(2023, 12, 31), c.ID)
	mustTransaction(t, s, core.Expense, "0.20", "b", core.NewDate(2024, 1, 1), c.ID)
	mustTransaction(t, s, core.Expense, "0.10", "c", core.NewDate(2024, 1, 31), c.ID)
	mustTransaction(t, s, core.Expense, "5", "d", core.NewDate(2024, 3, 15), c.ID)

	got, err := s.MonthlyTotals(ctx, core.Expense, 2)
	if err != nil {
		t.Fatalf("MonthlyTotals: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d points, want 2", len(got))
	}
	if got[0].Month != "January" || got[0].Year != 2024 || !got[0].Amount.Equal(core.MustMoney("0.30")) {
		t.Errorf("first point = %+v", got[0])
	}
	if got[1].Month != "March" || !got[1].Amount.Equal(core.MustMoney("5")) {
		t.Errorf("second point = %+v", got[1])
	}
}

func testSeed(t *testing.T, s storage.Store) {
	ctx := context.Background()
	n, err := storage.Seed(ctx, s, nil)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n != len(storage.DefaultCategories()) {
		t.Fatalf("seeded %d, want %d", n, len(storage.DefaultCategories()))
	}
	n, err = storage.Seed(ctx, s, nil)
	if err != nil || n != 0 {
		t.Fatalf("second Seed = %d %v, want 0", n, err)
	}
}
