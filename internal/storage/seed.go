package storage

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"moneyboard/internal/core"
)

// DefaultCategories is the set seeded into an empty store.
func DefaultCategories() []core.CategoryInput {
	return []core.CategoryInput{
		{Name: "Food & Dining", Color: "#FF6B6B"},
		{Name: "Transportation", Color: "#4ECDC4"},
		{Name: "Shopping", Color: "#45B7D1"},
		{Name: "Entertainment", Color: "#FFA07A"},
		{Name: "Bills & Utilities", Color: "#98D8C8"},
		{Name: "Healthcare", Color: "#F7DC6F"},
		{Name: "Education", Color: "#BB8FCE"},
		{Name: "Salary", Color: "#58D68D"},
		{Name: "Freelance", Color: "#85C1E9"},
		{Name: "Investments", Color: "#F8C471"},
		{Name: "Other", Color: "#D5DBDB"},
	}
}

// ReadSeedFile reads categories from a text file, one per line as
// "Name" or "Name,#RRGGBB". Blank lines and lines starting with # are
// skipped; repeated names keep their first occurrence.
func ReadSeedFile(path string) ([]core.CategoryInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	var out []core.CategoryInput
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, color, _ := strings.Cut(line, ",")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, core.CategoryInput{Name: name, Color: strings.TrimSpace(color)})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return out, nil
}

// Seed inserts cats when the store has no category yet and returns how many
// were created. A nil cats seeds DefaultCategories.
func Seed(ctx context.Context, s CategoryStore, cats []core.CategoryInput) (int, error) {
	existing, err := s.ListCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("list categories: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	if cats == nil {
		cats = DefaultCategories()
	}
	n := 0
	for _, in := range cats {
		if _, err := s.CreateCategory(ctx, in); err != nil {
			return n, fmt.Errorf("seed category %q: %w", in.Name, err)
		}
		n++
	}
	return n, nil
}
