// Package validate checks transaction drafts before they are submitted.
package validate

import (
	"sort"
	"strings"
	"unicode/utf8"

	"moneyboard/internal/core"
	"moneyboard/internal/i18n"
)

// Errors maps each failing field to its message key. An empty map means valid.
type Errors map[core.Field]i18n.Key

// Valid reports whether no field failed.
func (e Errors) Valid() bool {
	return len(e) == 0
}

// Fields returns the failing fields in a stable order.
func (e Errors) Fields() []core.Field {
	out := make([]core.Field, 0, len(e))
	for f := range e {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Messages renders every error through t.
func (e Errors) Messages(t *i18n.Translator) map[core.Field]string {
	out := make(map[core.Field]string, len(e))
	for f, key := range e {
		out[f] = t.T(key)
	}
	return out
}

// Error makes Errors usable as an error value; keys are joined in field order.
func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, string(f)+": "+string(e[f]))
	}
	return "invalid draft: " + strings.Join(parts, ", ")
}

// Draft checks every field of d independently. Category existence is checked
// against categories, the caller's current set.
func Draft(d core.TransactionDraft, categories []core.Category) Errors {
	errs := Errors{}

	if d.Amount == nil || d.Amount.Validate() != nil {
		errs[core.FieldAmount] = i18n.AmountInvalid
	}

	desc := strings.TrimSpace(d.Description)
	switch {
	case desc == "":
		errs[core.FieldDescription] = i18n.DescriptionRequired
	case utf8.RuneCountInString(desc) > core.MaxDescriptionLength:
		errs[core.FieldDescription] = i18n.DescriptionTooLong
	}

	switch {
	case d.CategoryID == nil:
		errs[core.FieldCategory] = i18n.CategoryRequired
	default:
		if _, ok := core.FindCategory(categories, *d.CategoryID); !ok {
			errs[core.FieldCategory] = i18n.CategoryUnknown
		}
	}

	if d.Date.IsZero() {
		errs[core.FieldDate] = i18n.DateRequired
	}

	return errs
}
