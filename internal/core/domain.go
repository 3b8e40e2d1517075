package core

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	Expense Kind = "expense"
	Income  Kind = "income"
)

// MaxDescriptionLength mirrors the width of the description column.
const MaxDescriptionLength = 200

type (
	// Kind selects which collection a transaction lives in. It is never sent on the wire.
	Kind string

	Category struct {
		ID        int64     `json:"id"`
		Name      string    `json:"name"`
		Color     string    `json:"color"`
		CreatedAt Timestamp `json:"created_at,omitzero"`
	}

	// CategoryInput is a category without its store-assigned id.
	CategoryInput struct {
		Name  string `json:"name"`
		Color string `json:"color,omitempty"`
	}

	// CategoryPatch carries a partial category update; nil fields are left untouched.
	CategoryPatch struct {
		Name  *string `json:"name,omitempty"`
		Color *string `json:"color,omitempty"`
	}

	// Transaction is an expense or an income entry. Category is a read-only join
	// populated by the server; CategoryID is the authority.
	Transaction struct {
		ID          int64     `json:"id"`
		Amount      Money     `json:"amount"`
		Description string    `json:"description"`
		Date        Date      `json:"date"`
		CategoryID  int64     `json:"category_id"`
		Category    *Category `json:"category,omitempty"`
		CreatedAt   Timestamp `json:"created_at,omitzero"`
		UpdatedAt   Timestamp `json:"updated_at,omitzero"`
	}

	// TransactionInput is the validated payload a store persists.
	TransactionInput struct {
		Amount      Money
		Description string
		Date        Date
		CategoryID  int64
	}

	// TransactionPatch carries a partial transaction update.
	TransactionPatch struct {
		Amount      *Money  `json:"amount,omitempty"`
		Description *string `json:"description,omitempty"`
		Date        *Date   `json:"date,omitempty"`
		CategoryID  *int64  `json:"category_id,omitempty"`
	}

	// Period selects a calendar month. The zero value means "current month".
	Period struct {
		Year  int `json:"year"`
		Month int `json:"month"` // 1-12
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrDescriptionLong  = errors.New("description too long (max 200 characters)")
	ErrEmptyCategory    = errors.New("empty category")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrEmptyName        = errors.New("empty category name")
	ErrNotFound         = errors.New("not found")
)

// Kinds lists every transaction collection.
func Kinds() []Kind {
	return []Kind{Expense, Income}
}

// IsValid returns true if the kind names a known collection.
func (k Kind) IsValid() bool {
	switch k {
	case Expense, Income:
		return true
	default:
		return false
	}
}

// Collection returns the REST collection segment for the kind.
func (k Kind) Collection() string {
	if k == Income {
		return "income"
	}
	return "expenses"
}

func (k Kind) String() string {
	return string(k)
}

// IsZero reports whether the period defers to the current month.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// Validate checks the month range when a period is given.
func (p Period) Validate() error {
	if p.IsZero() {
		return nil
	}
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidMonth
	}
	if p.Year < 1 {
		return fmt.Errorf("invalid year %d", p.Year)
	}
	return nil
}

// Contains reports whether d falls in the period.
func (p Period) Contains(d Date) bool {
	return d.Year() == p.Year && d.Month() == p.Month
}

func (c CategoryInput) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (in TransactionInput) Validate() error {
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return ErrDescriptionLong
	}
	if in.Date.IsZero() {
		return ErrInvalidDate
	}
	if in.CategoryID < 1 {
		return ErrEmptyCategory
	}
	return nil
}

// Apply returns a copy of in with the patch applied.
func (p TransactionPatch) Apply(in TransactionInput) TransactionInput {
	if p.Amount != nil {
		in.Amount = *p.Amount
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Date != nil {
		in.Date = *p.Date
	}
	if p.CategoryID != nil {
		in.CategoryID = *p.CategoryID
	}
	return in
}

// Input strips server-assigned fields from tx.
func (tx Transaction) Input() TransactionInput {
	return TransactionInput{
		Amount:      tx.Amount,
		Description: tx.Description,
		Date:        tx.Date,
		CategoryID:  tx.CategoryID,
	}
}

// FindCategory looks up id in cats.
func FindCategory(cats []Category, id int64) (Category, bool) {
	for _, c := range cats {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
