package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"moneyboard/internal/core"
	"moneyboard/internal/dashboard"
	"moneyboard/internal/i18n"
	"moneyboard/internal/listing"
)

func TestTableAlignsByDisplayWidth(t *testing.T) {
	out := Table([]Column{{Title: "Name"}, {Title: "Amount", Align: Right}}, [][]string{
		{"Café", "$ 1.00"},
		{"Rent", "$ 100.00"},
	})
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, rule and two rows, got %d lines", len(lines))
	}
	if lipgloss.Width(lines[2]) != lipgloss.Width(lines[3]) {
		t.Errorf("rows differ in width:\n%s", out)
	}
	if !strings.Contains(lines[2], "  $ 1.00") {
		t.Errorf("amounts should be right aligned:\n%s", out)
	}
}

func TestTransactionsShowsPlaceholderWhenEmpty(t *testing.T) {
	tr := i18n.NewTranslator("en")
	out := Transactions("Expenses", nil, tr, i18n.NoExpenses)
	if !strings.Contains(out, "No expenses recorded yet") {
		t.Errorf("unexpected output %q", out)
	}

	out = Transactions("Expenses", []listing.Row{{ID: 3, Date: "3/5/2024", Description: "Lunch", Category: "Food", Color: "#ff0000", Amount: "$ 12.50"}}, tr, i18n.NoExpenses)
	for _, want := range []string{"Lunch", "Food", "$ 12.50", "3/5/2024"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}

func TestDashboardRendersTotalsAndPlaceholders(t *testing.T) {
	f := i18n.MustFormatter("en-US", "USD")
	s := core.NewSummary(core.Period{Year: 2024, Month: 3})
	s.TotalExpenses = core.MustMoney("30")
	s.Balance = core.MustMoney("-30")
	s.ExpensesByCategory = []core.CategoryAmount{{Name: "Food", Color: "#00ff00", Amount: core.MustMoney("30")}}

	out := Dashboard(dashboard.Project(s, f), i18n.NewTranslator("en"))
	for _, want := range []string{"March 2024", "Total Expenses", "-$ 30.00", "Food", "No data for this month"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}

func TestTrendEmpty(t *testing.T) {
	out := Trend(dashboard.TrendView{}, i18n.NewTranslator("es"))
	if !strings.Contains(out, "No hay datos disponibles") {
		t.Errorf("unexpected output %q", out)
	}
}
