package report

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/profitpro/internal/calculator"
)

// HistorySheet is the sheet name of the exported history workbook.
const HistorySheet = "History"

var workbookHeader = []any{
	"ID", "Timestamp", "Currency", "Symbol",
	"Cost Price", "Selling Price", "Quantity", "VAT %", "Discount %", "Shipping",
	"Total Cost", "Total Revenue", "Discount Amount", "Price After Discount",
	"Tax Amount", "Final Price", "Total Profit", "Profit Margin %",
}

// Workbook exports ledger entries, in the order given, as an xlsx document.
// Ids are written as text; spreadsheet apps render 13-digit numbers in
// scientific notation.
func Workbook(entries []calculator.Calculation) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", HistorySheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(HistorySheet, "A1", &workbookHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, c := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			strconv.FormatInt(c.ID, 10), c.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"), c.CurrencyCode, c.CurrencySymbol,
			c.CostPrice, c.SellingPrice, c.Quantity, c.VATPercent, c.DiscountPercent, c.Shipping,
			c.TotalCost, c.TotalRevenue, c.DiscountAmount, c.PriceAfterDiscount,
			c.TaxAmount, c.FinalPrice, c.TotalProfit, c.ProfitMargin,
		}
		if err := f.SetSheetRow(HistorySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(HistorySheet, "A", "B", 24); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
