package calculator

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// exactDigits is enough fractional digits that a float64 expansion never
// lands on a false .xx5 tie before rounding to cents.
const exactDigits = 40

// Round2 renders v with exactly two decimals. Rounding only happens here,
// at presentation time, on the exact binary value and half away from zero,
// so 2.675 (stored as 2.67499...) renders as "2.67". A negative value that
// rounds to zero keeps its sign ("-0.00"); negative zero itself renders "0.00".
func Round2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	d, err := decimal.NewFromString(strconv.FormatFloat(v, 'f', exactDigits, 64))
	if err != nil {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	out := d.StringFixed(2)
	if v < 0 && !strings.HasPrefix(out, "-") {
		out = "-" + out
	}
	return out
}

// Money prefixes the two-decimal rendering of v with a currency symbol.
func Money(symbol string, v float64) string {
	return symbol + Round2(v)
}

// Percent renders v as a two-decimal percentage.
func Percent(v float64) string {
	return Round2(v) + "%"
}

// Display holds the presentation strings for a calculation summary.
type Display struct {
	TotalCost          string `json:"totalCost"`
	TotalRevenue       string `json:"totalRevenue"`
	TotalProfit        string `json:"totalProfit"`
	ProfitMargin       string `json:"profitMargin"`
	FinalPrice         string `json:"finalPrice"`
	PriceAfterDiscount string `json:"priceAfterDiscount"`
	Positive           bool   `json:"positive"`
}

// Summarize formats a calculation for display.
func Summarize(c Calculation) Display {
	sym := c.CurrencySymbol
	return Display{
		TotalCost:          Money(sym, c.TotalCost),
		TotalRevenue:       Money(sym, c.TotalRevenue),
		TotalProfit:        Money(sym, c.TotalProfit),
		ProfitMargin:       Percent(c.ProfitMargin),
		FinalPrice:         Money(sym, c.FinalPrice),
		PriceAfterDiscount: Money(sym, c.PriceAfterDiscount),
		Positive:           c.Profitable(),
	}
}
