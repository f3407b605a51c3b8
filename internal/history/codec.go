package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/noah-isme/profitpro/internal/calculator"
)

// record accepts both current field names and the short names older
// ledgers were written with (vat, discount, currency).
type record struct {
	calculator.Calculation
	LegacyVAT      *float64 `json:"vat,omitempty"`
	LegacyDiscount *float64 `json:"discount,omitempty"`
	LegacyCurrency *string  `json:"currency,omitempty"`
}

// Encode serializes the ledger as a JSON array, newest first. NaN and
// infinite numbers, which JSON cannot carry, are written as null and read
// back as zero.
func Encode(entries []calculator.Calculation) ([]byte, error) {
	out := make([]json.RawMessage, 0, len(entries))
	for i, calc := range entries {
		raw, err := encodeEntry(calc)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

func encodeEntry(calc calculator.Calculation) (json.RawMessage, error) {
	var nulls []string
	for name, v := range numericFields(&calc) {
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			*v = 0
			nulls = append(nulls, name)
		}
	}
	raw, err := json.Marshal(calc)
	if err != nil || len(nulls) == 0 {
		return raw, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for _, name := range nulls {
		fields[name] = json.RawMessage("null")
	}
	return json.Marshal(fields)
}

func numericFields(c *calculator.Calculation) map[string]*float64 {
	return map[string]*float64{
		"costPrice":          &c.CostPrice,
		"sellingPrice":       &c.SellingPrice,
		"vatPercent":         &c.VATPercent,
		"discountPercent":    &c.DiscountPercent,
		"shipping":           &c.Shipping,
		"totalCost":          &c.TotalCost,
		"totalRevenue":       &c.TotalRevenue,
		"discountAmount":     &c.DiscountAmount,
		"priceAfterDiscount": &c.PriceAfterDiscount,
		"taxAmount":          &c.TaxAmount,
		"finalPrice":         &c.FinalPrice,
		"totalProfit":        &c.TotalProfit,
		"profitMargin":       &c.ProfitMargin,
	}
}

// Decode parses a persisted ledger. Unknown fields are ignored and missing
// fields take their zero value. Empty input and JSON null decode to an empty
// ledger; anything else unparseable wraps ErrMalformed.
func Decode(data []byte) ([]calculator.Calculation, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	out := make([]calculator.Calculation, 0, len(raw))
	for i, item := range raw {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			continue
		}
		var rec record
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformed, i, err)
		}
		out = append(out, rec.upgrade(item))
	}
	return out, nil
}

func (r record) upgrade(raw json.RawMessage) calculator.Calculation {
	calc := r.Calculation
	var present map[string]json.RawMessage
	_ = json.Unmarshal(raw, &present)
	if _, ok := present["vatPercent"]; !ok && r.LegacyVAT != nil {
		calc.VATPercent = *r.LegacyVAT
	}
	if _, ok := present["discountPercent"]; !ok && r.LegacyDiscount != nil {
		calc.DiscountPercent = *r.LegacyDiscount
	}
	if _, ok := present["currencyCode"]; !ok && r.LegacyCurrency != nil {
		calc.CurrencyCode = *r.LegacyCurrency
	}
	return calc
}
