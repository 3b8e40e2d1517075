// Package memory is a process-local Store used for development and tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"moneyboard/internal/core"
	"moneyboard/internal/storage"
)

type Store struct {
	mu     sync.Mutex
	cats   []core.Category
	items  map[core.Kind][]core.Transaction
	nextID map[string]int64
	now    func() time.Time
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		items:  map[core.Kind][]core.Transaction{},
		nextID: map[string]int64{},
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) id(seq string) int64 {
	s.nextID[seq]++
	return s.nextID[seq]
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.cats)
	slices.SortFunc(out, func(a, b core.Category) int { return cmp.Compare(a.Name, b.Name) })
	if out == nil {
		out = []core.Category{}
	}
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.category(id)
}

func (s *Store) category(id int64) (core.Category, error) {
	if c, ok := core.FindCategory(s.cats, id); ok {
		return c, nil
	}
	return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
}

func (s *Store) nameTaken(name string, except int64) bool {
	for _, c := range s.cats {
		if c.Name == name && c.ID != except {
			return true
		}
	}
	return false
}

func (s *Store) CreateCategory(_ context.Context, in core.CategoryInput) (core.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}
	if in.Color == "" {
		in.Color = storage.DefaultColor
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTaken(in.Name, 0) {
		return core.Category{}, fmt.Errorf("%w: %q", storage.ErrDuplicateCategory, in.Name)
	}
	c := core.Category{ID: s.id("categories"), Name: in.Name, Color: in.Color, CreatedAt: core.Timestamp{Time: s.now()}}
	s.cats = append(s.cats, c)
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, id int64, patch core.CategoryPatch) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.IndexFunc(s.cats, func(c core.Category) bool { return c.ID == id })
	if idx < 0 {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	c := s.cats[idx]
	if patch.Name != nil {
		c.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Color != nil {
		c.Color = *patch.Color
	}
	if err := (core.CategoryInput{Name: c.Name, Color: c.Color}).Validate(); err != nil {
		return core.Category{}, err
	}
	if s.nameTaken(c.Name, id) {
		return core.Category{}, fmt.Errorf("%w: %q", storage.ErrDuplicateCategory, c.Name)
	}
	s.cats[idx] = c
	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.category(id); err != nil {
		return err
	}
	for _, txs := range s.items {
		if slices.ContainsFunc(txs, func(tx core.Transaction) bool { return tx.CategoryID == id }) {
			return fmt.Errorf("category %d: %w", id, storage.ErrCategoryInUse)
		}
	}
	s.cats = slices.DeleteFunc(s.cats, func(c core.Category) bool { return c.ID == id })
	return nil
}

// joined returns tx with the current category attached.
func (s *Store) joined(tx core.Transaction) core.Transaction {
	if c, ok := core.FindCategory(s.cats, tx.CategoryID); ok {
		tx.Category = &c
	}
	return tx
}

func (s *Store) ListTransactions(_ context.Context, kind core.Kind, f storage.Filter) ([]core.Transaction, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid transaction kind %q", kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []core.Transaction{}
	for _, tx := range s.items[kind] {
		if f.Match(tx.Date) {
			out = append(out, s.joined(tx))
		}
	}
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, kind core.Kind, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.index(kind, id)
	if idx < 0 {
		return core.Transaction{}, fmt.Errorf("%s %d: %w", kind, id, core.ErrNotFound)
	}
	return s.joined(s.items[kind][idx]), nil
}

func (s *Store) index(kind core.Kind, id int64) int {
	return slices.IndexFunc(s.items[kind], func(tx core.Transaction) bool { return tx.ID == id })
}

func (s *Store) CreateTransaction(ctx context.Context, kind core.Kind, in core.TransactionInput) (core.Transaction, error) {
	if !kind.IsValid() {
		return core.Transaction{}, fmt.Errorf("invalid transaction kind %q", kind)
	}
	in.Description = strings.TrimSpace(in.Description)
	if err := storage.CheckTransactionInput(ctx, s, in); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := core.Timestamp{Time: s.now()}
	tx := core.Transaction{
		ID:          s.id(kind.Collection()),
		Amount:      core.MoneyFromCents(in.Amount.Cents()),
		Description: in.Description,
		Date:        in.Date,
		CategoryID:  in.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.items[kind] = append(s.items[kind], tx)
	return s.joined(tx), nil
}

func (s *Store) UpdateTransaction(ctx context.Context, kind core.Kind, id int64, patch core.TransactionPatch) (core.Transaction, error) {
	current, err := s.GetTransaction(ctx, kind, id)
	if err != nil {
		return core.Transaction{}, err
	}
	in := patch.Apply(current.Input())
	in.Description = strings.TrimSpace(in.Description)
	if err := storage.CheckTransactionInput(ctx, s, in); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.index(kind, id)
	if idx < 0 {
		return core.Transaction{}, fmt.Errorf("%s %d: %w", kind, id, core.ErrNotFound)
	}
	tx := s.items[kind][idx]
	tx.Amount = core.MoneyFromCents(in.Amount.Cents())
	tx.Description = in.Description
	tx.Date = in.Date
	tx.CategoryID = in.CategoryID
	tx.UpdatedAt = core.Timestamp{Time: s.now()}
	s.items[kind][idx] = tx
	return s.joined(tx), nil
}

func (s *Store) DeleteTransaction(_ context.Context, kind core.Kind, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.index(kind, id)
	if idx < 0 {
		return fmt.Errorf("%s %d: %w", kind, id, core.ErrNotFound)
	}
	s.items[kind] = slices.Delete(s.items[kind], idx, idx+1)
	return nil
}

func (s *Store) MonthlyTotals(_ context.Context, kind core.Kind, limit int) ([]core.MonthlyPoint, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid transaction kind %q", kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sums := map[core.Period]int64{}
	for _, tx := range s.items[kind] {
		sums[core.Period{Year: tx.Date.Year(), Month: tx.Date.Month()}] += tx.Amount.Cents()
	}
	periods := make([]core.Period, 0, len(sums))
	for p := range sums {
		periods = append(periods, p)
	}
	slices.SortFunc(periods, func(a, b core.Period) int {
		return cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(a.Month, b.Month))
	})
	if limit > 0 && len(periods) > limit {
		periods = periods[len(periods)-limit:]
	}

	points := make([]core.MonthlyPoint, 0, len(periods))
	for _, p := range periods {
		points = append(points, core.MonthlyPoint{Month: core.MonthName(p.Month), Year: p.Year, Amount: core.MoneyFromCents(sums[p])})
	}
	return points, nil
}
