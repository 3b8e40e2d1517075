package listing

import (
	"moneyboard/internal/core"
	"moneyboard/internal/i18n"
)

// Row is one display line of the list.
type Row struct {
	ID          int64
	Date        string
	Description string
	Category    string
	Color       string
	Amount      string
}

// Rows derives display rows from the current collection. Category name and
// color come from the loaded categories, not from the embedded join.
func (c *Controller) Rows(f *i18n.Formatter) []Row {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows := make([]Row, 0, len(c.items))
	for _, tx := range c.items {
		row := Row{
			ID:          tx.ID,
			Date:        f.Date(tx.Date),
			Description: tx.Description,
			Amount:      f.Money(tx.Amount),
		}
		if cat, ok := core.FindCategory(c.cats, tx.CategoryID); ok {
			row.Category = cat.Name
			row.Color = cat.Color
		}
		rows = append(rows, row)
	}
	return rows
}
