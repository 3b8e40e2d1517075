package dashboard

import (
	"moneyboard/internal/core"
	"moneyboard/internal/i18n"
)

// Polarity is the presentational sign of the balance.
type Polarity int

const (
	NonNegative Polarity = iota
	Negative
)

func (p Polarity) String() string {
	if p == Negative {
		return "negative"
	}
	return "non-negative"
}

// Series is the data of one pie/doughnut chart.
type Series struct {
	Labels []string
	Values []core.Money
	Colors []string
}

// Row is one line of the category list next to a chart.
type Row struct {
	Name   string
	Color  string
	Value  core.Money
	Amount string
}

// Breakdown pairs a chart with its category list. Chart is nil when there is
// nothing to draw; Placeholder is set instead.
type Breakdown struct {
	Chart       *Series
	Rows        []Row
	Placeholder i18n.Key
}

// IsEmpty reports whether the breakdown shows the placeholder.
func (b Breakdown) IsEmpty() bool { return b.Chart == nil }

type View struct {
	Month         string
	Year          int
	TotalExpenses string
	TotalIncome   string
	Balance       string
	BalanceValue  core.Money
	Polarity      Polarity
	Expenses      Breakdown
	Income        Breakdown
}

// Project builds the view of s. Breakdown order is kept exactly as given.
func Project(s core.DashboardSummary, f *i18n.Formatter) View {
	v := View{
		Month:         s.Month,
		Year:          s.Year,
		TotalExpenses: f.Money(s.TotalExpenses),
		TotalIncome:   f.Money(s.TotalIncome),
		Balance:       f.Money(s.Balance),
		BalanceValue:  s.Balance,
		Polarity:      PolarityOf(s.Balance),
		Expenses:      breakdown(s.ExpensesByCategory, f),
		Income:        breakdown(s.IncomeByCategory, f),
	}
	return v
}

// PolarityOf classifies a balance; zero is non-negative.
func PolarityOf(balance core.Money) Polarity {
	if balance.IsNegative() {
		return Negative
	}
	return NonNegative
}

func breakdown(items []core.CategoryAmount, f *i18n.Formatter) Breakdown {
	if len(items) == 0 {
		return Breakdown{Rows: []Row{}, Placeholder: i18n.NoCategoryData}
	}

	chart := &Series{
		Labels: make([]string, len(items)),
		Values: make([]core.Money, len(items)),
		Colors: make([]string, len(items)),
	}
	rows := make([]Row, len(items))
	for i, item := range items {
		chart.Labels[i] = item.Name
		chart.Values[i] = item.Amount
		chart.Colors[i] = item.Color
		rows[i] = Row{Name: item.Name, Color: item.Color, Value: item.Amount, Amount: f.Money(item.Amount)}
	}
	return Breakdown{Chart: chart, Rows: rows}
}
