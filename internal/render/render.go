// Package render draws client views as styled terminal text.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"moneyboard/internal/core"
	"moneyboard/internal/dashboard"
	"moneyboard/internal/i18n"
	"moneyboard/internal/listing"
)

const (
	colorText    lipgloss.Color = "#cdd6f4"
	colorSubtext lipgloss.Color = "#a6adc8"
	colorOverlay lipgloss.Color = "#6c7086"
	colorGreen   lipgloss.Color = "#a6e3a1"
	colorRed     lipgloss.Color = "#f38ba8"
	colorAccent  lipgloss.Color = "#cba6f7"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSubtext)
	cellStyle   = lipgloss.NewStyle().Foreground(colorText)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorOverlay).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorOverlay).Padding(0, 1)
)

// Align selects a column's alignment.
type Align int

const (
	Left Align = iota
	Right
)

// Column describes one table column.
type Column struct {
	Title string
	Align Align
}

// Table renders rows under headers, padding by display width so accented
// text and currency symbols line up.
func Table(cols []Column, rows [][]string) string {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = lipgloss.Width(c.Title)
	}
	for _, row := range rows {
		for i := range cols {
			if i < len(row) {
				widths[i] = max(widths[i], lipgloss.Width(row[i]))
			}
		}
	}

	var b strings.Builder
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = headerStyle.Render(pad(c.Title, widths[i], c.Align))
	}
	b.WriteString(strings.Join(header, "  "))
	b.WriteString("\n")

	rule := make([]string, len(cols))
	for i := range cols {
		rule[i] = strings.Repeat("─", widths[i])
	}
	b.WriteString(mutedStyle.UnsetItalic().Render(strings.Join(rule, "  ")))

	for _, row := range rows {
		b.WriteString("\n")
		cells := make([]string, len(cols))
		for i, c := range cols {
			var v string
			if i < len(row) {
				v = row[i]
			}
			cells[i] = cellStyle.Render(pad(v, widths[i], c.Align))
		}
		b.WriteString(strings.Join(cells, "  "))
	}
	return b.String()
}

func pad(s string, width int, align Align) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if align == Right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

// swatch renders a colored bullet for a category color; unparseable colors
// fall back to the muted color.
func swatch(color string) string {
	c := lipgloss.Color(colorOverlay)
	if strings.HasPrefix(color, "#") && (len(color) == 4 || len(color) == 7) {
		c = lipgloss.Color(color)
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}

// Transactions renders a listing as a table.
func Transactions(title string, rows []listing.Row, t *i18n.Translator, empty i18n.Key) string {
	if len(rows) == 0 {
		return titleStyle.Render(title) + "\n" + mutedStyle.Render(t.T(empty))
	}
	cols := []Column{
		{Title: "#", Align: Right},
		{Title: t.T(i18n.Date)},
		{Title: t.T(i18n.Description)},
		{Title: t.T(i18n.Category)},
		{Title: t.T(i18n.Amount), Align: Right},
	}
	data := make([][]string, len(rows))
	for i, r := range rows {
		category := r.Category
		if category != "" {
			category = swatch(r.Color) + " " + category
		}
		data[i] = []string{fmt.Sprint(r.ID), r.Date, r.Description, category, r.Amount}
	}
	return titleStyle.Render(title) + "\n" + Table(cols, data)
}

// Categories renders the category list.
func Categories(cats []core.Category, t *i18n.Translator) string {
	cols := []Column{{Title: "#", Align: Right}, {Title: t.T(i18n.Category)}, {Title: "Color"}}
	data := make([][]string, len(cats))
	for i, c := range cats {
		data[i] = []string{fmt.Sprint(c.ID), swatch(c.Color) + " " + c.Name, c.Color}
	}
	return titleStyle.Render(t.T(i18n.Categories)) + "\n" + Table(cols, data)
}

// Dashboard renders the month totals boxed above both breakdowns.
func Dashboard(v dashboard.View, t *i18n.Translator) string {
	balance := lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	if v.Polarity == dashboard.Negative {
		balance = balance.Foreground(colorRed)
	}

	totals := Table([]Column{{Title: fmt.Sprintf("%s %d", v.Month, v.Year)}, {Title: "", Align: Right}}, [][]string{
		{t.T(i18n.TotalIncome), v.TotalIncome},
		{t.T(i18n.TotalExpenses), v.TotalExpenses},
	})
	totals += "\n" + headerStyle.Render(t.T(i18n.Balance)+": ") + balance.Render(v.Balance)

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(t.T(i18n.Dashboard)),
		boxStyle.Render(totals),
		breakdown(t.T(i18n.ExpensesByCategory), v.Expenses, t),
		breakdown(t.T(i18n.IncomeByCategory), v.Income, t),
	)
}

func breakdown(title string, b dashboard.Breakdown, t *i18n.Translator) string {
	if b.IsEmpty() {
		return "\n" + headerStyle.Render(title) + "\n" + mutedStyle.Render(t.T(b.Placeholder))
	}
	data := make([][]string, len(b.Rows))
	for i, r := range b.Rows {
		data[i] = []string{swatch(r.Color) + " " + r.Name, r.Amount}
	}
	return "\n" + Table([]Column{{Title: title}, {Title: t.T(i18n.Amount), Align: Right}}, data)
}

// Trend renders the monthly series side by side.
func Trend(v dashboard.TrendView, t *i18n.Translator) string {
	if len(v.Labels) == 0 {
		return titleStyle.Render(t.T(i18n.MonthlyTrend)) + "\n" + mutedStyle.Render(t.T(i18n.NoData))
	}
	data := make([][]string, len(v.Labels))
	for i := range v.Labels {
		data[i] = []string{v.Labels[i], v.ExpenseAmounts[i], v.IncomeAmounts[i]}
	}
	return titleStyle.Render(t.T(i18n.MonthlyTrend)) + "\n" + Table([]Column{
		{Title: ""},
		{Title: t.T(i18n.Expenses), Align: Right},
		{Title: t.T(i18n.Incomes), Align: Right},
	}, data)
}

// Error renders a one-line failure message.
func Error(msg string) string {
	return errorStyle.Render("✗ " + msg)
}

// Muted renders secondary text.
func Muted(msg string) string {
	return mutedStyle.Render(msg)
}
