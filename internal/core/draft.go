package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Field identifies an editable draft field. Field identity never depends on
// display labels.
type Field string

const (
	FieldAmount      Field = "amount"
	FieldDescription Field = "description"
	FieldDate        Field = "date"
	FieldCategory    Field = "category_id"
)

// Fields lists draft fields in form order.
func Fields() []Field {
	return []Field{FieldAmount, FieldCategory, FieldDate, FieldDescription}
}

// TransactionDraft is the mutable form state used while creating a transaction.
// Amount and CategoryID are nil until the user sets them.
type TransactionDraft struct {
	Amount      *Money
	Description string
	Date        Date
	CategoryID  *int64
}

// NewDraft returns an empty draft dated today.
func NewDraft() TransactionDraft {
	return TransactionDraft{Date: Today()}
}

// Set parses raw according to the field's type and stores it. An empty raw
// value clears the field.
func (d *TransactionDraft) Set(field Field, raw string) error {
	raw = strings.TrimSpace(raw)
	switch field {
	case FieldAmount:
		if raw == "" {
			d.Amount = nil
			return nil
		}
		m, err := ParseMoney(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		d.Amount = &m
	case FieldDescription:
		d.Description = raw
	case FieldDate:
		if raw == "" {
			d.Date = Date{}
			return nil
		}
		v, err := ParseDate(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		d.Date = v
	case FieldCategory:
		if raw == "" {
			d.CategoryID = nil
			return nil
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			return fmt.Errorf("%s: invalid id %q", field, raw)
		}
		d.CategoryID = &id
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// SetAmount stores a typed amount.
func (d *TransactionDraft) SetAmount(m Money) {
	d.Amount = &m
}

// SetCategory stores a typed category id.
func (d *TransactionDraft) SetCategory(id int64) {
	d.CategoryID = &id
}

// Input converts a complete draft into a store payload. Callers validate first.
func (d TransactionDraft) Input() TransactionInput {
	in := TransactionInput{Description: strings.TrimSpace(d.Description), Date: d.Date}
	if d.Amount != nil {
		in.Amount = *d.Amount
	}
	if d.CategoryID != nil {
		in.CategoryID = *d.CategoryID
	}
	return in
}

type draftWire struct {
	Amount      *Money `json:"amount"`
	Description string `json:"description"`
	Date        Date   `json:"date"`
	CategoryID  *int64 `json:"category_id"`
}

// MarshalJSON emits the form payload expected by the create endpoints.
func (d TransactionDraft) MarshalJSON() ([]byte, error) {
	return json.Marshal(draftWire{
		Amount:      d.Amount,
		Description: strings.TrimSpace(d.Description),
		Date:        d.Date,
		CategoryID:  d.CategoryID,
	})
}

func (d *TransactionDraft) UnmarshalJSON(data []byte) error {
	var w draftWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*d = TransactionDraft{Amount: w.Amount, Description: w.Description, Date: w.Date, CategoryID: w.CategoryID}
	return nil
}
