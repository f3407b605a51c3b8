package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/noah-isme/profitpro/internal/calculator"
)

const (
	// Title heads every calculation report.
	Title = "ProfitPro - Calculation Report"
	// Footer closes every calculation report.
	Footer = "Generated by ProfitPro - Professional Profit Calculator"

	dateLayout = "2006-01-02 15:04:05 MST"
)

// Line is one label/value pair in a report section.
type Line struct {
	Label string
	Value string
}

// Content is the text of a calculation report, independent of its rendering.
type Content struct {
	Generated string
	Inputs    []Line
	Results   []Line
	Profit    []Line
	Positive  bool
}

// Build lays out the report text for calc.
func Build(calc calculator.Calculation) Content {
	sym := calc.CurrencySymbol
	return Content{
		Generated: "Generated: " + calc.Timestamp.Format(dateLayout),
		Inputs: []Line{
			{"Currency", calc.CurrencyCode},
			{"Cost Price", calculator.Money(sym, calc.CostPrice)},
			{"Selling Price", calculator.Money(sym, calc.SellingPrice)},
			{"Quantity", strconv.Itoa(calc.Quantity)},
			{"VAT/Tax", plain(calc.VATPercent) + "%"},
			{"Discount", plain(calc.DiscountPercent) + "%"},
			{"Shipping/Fees", calculator.Money(sym, calc.Shipping)},
		},
		Results: []Line{
			{"Total Cost", calculator.Money(sym, calc.TotalCost)},
			{"Total Revenue", calculator.Money(sym, calc.TotalRevenue)},
			{"Price After Discount", calculator.Money(sym, calc.PriceAfterDiscount)},
			{"Final Price (After Tax)", calculator.Money(sym, calc.FinalPrice)},
		},
		Profit: []Line{
			{"Total Profit", calculator.Money(sym, calc.TotalProfit)},
			{"Profit Margin", calculator.Percent(calc.ProfitMargin)},
		},
		Positive: calc.Profitable(),
	}
}

// FileName names a downloaded report after the moment it was produced.
func FileName(at time.Time) string {
	return fmt.Sprintf("ProfitPro_Report_%d.pdf", at.UnixMilli())
}

// String renders a line as "Label: Value".
func (l Line) String() string {
	return l.Label + ": " + l.Value
}

func plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
