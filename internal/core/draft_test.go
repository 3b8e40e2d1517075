package core

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDraftSetIsTypedPerField(t *testing.T) {
	d := TransactionDraft{}
	steps := []struct {
		field Field
		raw   string
		ok    bool
	}{
		{FieldAmount, "100,50", true},
		{FieldAmount, "ten", false},
		{FieldCategory, "3", true},
		{FieldCategory, "0", false},
		{FieldCategory, "food", false},
		{FieldDate, "2024-03-15", true},
		{FieldDate, "15/03/2024", false},
		{FieldDescription, "  Lunch ", true},
		{Field("Monto"), "1", false},
	}
	for _, s := range steps {
		err := d.Set(s.field, s.raw)
		if s.ok && err != nil {
			t.Fatalf("Set(%s, %q): unexpected error %v", s.field, s.raw, err)
		}
		if !s.ok && err == nil {
			t.Fatalf("Set(%s, %q): expected error", s.field, s.raw)
		}
	}

	if d.Amount == nil || d.Amount.Cents() != 10050 {
		t.Fatalf("amount not kept after failed update: %v", d.Amount)
	}
	if d.CategoryID == nil || *d.CategoryID != 3 {
		t.Fatalf("category not kept after failed update: %v", d.CategoryID)
	}
	if d.Description != "Lunch" || d.Date.String() != "2024-03-15" {
		t.Fatalf("unexpected draft %+v", d)
	}

	if err := d.Set(FieldAmount, ""); err != nil || d.Amount != nil {
		t.Fatalf("empty amount should clear the field")
	}
}

func TestNewDraftDefaultsToToday(t *testing.T) {
	d := NewDraft()
	if d.Date != Today() || d.Amount != nil || d.CategoryID != nil || d.Description != "" {
		t.Fatalf("unexpected defaults %+v", d)
	}
}

func TestDraftWireFormat(t *testing.T) {
	d := TransactionDraft{Description: "Lunch", Date: NewDate(2024, 3, 15)}
	d.SetAmount(MustMoney("100.50"))
	d.SetCategory(3)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"amount":100.5,"description":"Lunch","date":"2024-03-15","category_id":3}`
	if string(b) != want {
		t.Fatalf("expected %s, got %s", want, b)
	}

	var back TransactionDraft
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got, wantIn := back.Input(), d.Input()
	if !got.Amount.Equal(wantIn.Amount) || got.Description != wantIn.Description || got.Date != wantIn.Date || got.CategoryID != wantIn.CategoryID {
		t.Fatalf("unexpected decoded draft %+v", back)
	}

	b, _ = json.Marshal(TransactionDraft{})
	if !strings.Contains(string(b), `"amount":null`) || !strings.Contains(string(b), `"category_id":null`) {
		t.Fatalf("unset fields must stay explicit: %s", b)
	}
}
