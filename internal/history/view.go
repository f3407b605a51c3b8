package history

import (
	"strconv"

	"github.com/noah-isme/profitpro/internal/calculator"
)

// DateLayout renders entry timestamps in list views.
const DateLayout = "2006-01-02 15:04:05"

// Row is one line of the history list view.
type Row struct {
	ID       int64  `json:"id"`
	Date     string `json:"date"`
	Currency string `json:"currency"`
	Quantity int    `json:"quantity"`
	Cost     string `json:"cost"`
	Selling  string `json:"selling"`
	Profit   string `json:"profit"`
	Margin   string `json:"margin"`
	Positive bool   `json:"positive"`
}

// Rows renders entries for the history list, preserving their order.
func Rows(entries []calculator.Calculation) []Row {
	rows := make([]Row, 0, len(entries))
	for _, c := range entries {
		sym := c.CurrencySymbol
		rows = append(rows, Row{
			ID:       c.ID,
			Date:     c.Timestamp.UTC().Format(DateLayout),
			Currency: c.CurrencyCode,
			Quantity: c.Quantity,
			Cost:     calculator.Money(sym, c.CostPrice),
			Selling:  calculator.Money(sym, c.SellingPrice),
			Profit:   calculator.Money(sym, c.TotalProfit),
			Margin:   calculator.Percent(c.ProfitMargin),
			Positive: c.Profitable(),
		})
	}
	return rows
}

// String renders a row as a single terminal line.
func (r Row) String() string {
	return strconv.FormatInt(r.ID, 10) + "  " + r.Date + "  " + r.Currency +
		"  qty " + strconv.Itoa(r.Quantity) +
		"  cost " + r.Cost + "  sell " + r.Selling +
		"  profit " + r.Profit + " (" + r.Margin + ")"
}
