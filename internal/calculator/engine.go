package calculator

import "time"

// Inputs describes the caller-supplied values a calculation is derived from.
type Inputs struct {
	CostPrice       float64 `json:"costPrice" validate:"gt=0"`
	SellingPrice    float64 `json:"sellingPrice" validate:"gt=0"`
	Quantity        int     `json:"quantity" validate:"gte=1"`
	VATPercent      float64 `json:"vatPercent"`
	DiscountPercent float64 `json:"discountPercent"`
	Shipping        float64 `json:"shipping"`
	CurrencyCode    string  `json:"currencyCode"`
	CurrencySymbol  string  `json:"currencySymbol"`
}

// Calculation is the immutable record of one profit computation.
type Calculation struct {
	ID int64 `json:"id"`
	Inputs

	TotalCost          float64   `json:"totalCost"`
	TotalRevenue       float64   `json:"totalRevenue"`
	DiscountAmount     float64   `json:"discountAmount"`
	PriceAfterDiscount float64   `json:"priceAfterDiscount"`
	TaxAmount          float64   `json:"taxAmount"`
	FinalPrice         float64   `json:"finalPrice"`
	TotalProfit        float64   `json:"totalProfit"`
	ProfitMargin       float64   `json:"profitMargin"`
	Timestamp          time.Time `json:"timestamp"`
}

// Profitable reports whether the calculation broke even or better.
func (c Calculation) Profitable() bool {
	return c.TotalProfit >= 0
}

// Compute derives the financial metrics for in, stamping the result with at.
// No rounding happens here; every intermediate keeps full float64 precision.
// The explicit float64 conversions stop the compiler from fusing a multiply
// and add into one FMA instruction, which would change the low bits.
func Compute(in Inputs, at time.Time) Calculation {
	qty := float64(in.Quantity)

	totalCost := float64(in.CostPrice*qty) + in.Shipping
	totalRevenue := float64(in.SellingPrice * qty)

	discountAmount := float64(totalRevenue*in.DiscountPercent) / 100
	priceAfterDiscount := totalRevenue - discountAmount

	taxAmount := float64(priceAfterDiscount*in.VATPercent) / 100
	finalPrice := priceAfterDiscount + taxAmount

	totalProfit := finalPrice - totalCost

	var profitMargin float64
	if finalPrice > 0 {
		profitMargin = float64(totalProfit/finalPrice) * 100
	}

	return Calculation{
		Inputs:             in,
		TotalCost:          totalCost,
		TotalRevenue:       totalRevenue,
		DiscountAmount:     discountAmount,
		PriceAfterDiscount: priceAfterDiscount,
		TaxAmount:          taxAmount,
		FinalPrice:         finalPrice,
		TotalProfit:        totalProfit,
		ProfitMargin:       profitMargin,
		Timestamp:          at.UTC().Truncate(time.Millisecond),
	}
}

// Calculator computes calculations against an injectable clock.
type Calculator struct {
	Now func() time.Time
}

// Compute derives a calculation for in using the calculator clock.
func (c Calculator) Compute(in Inputs) Calculation {
	return Compute(in, c.now())
}

func (c Calculator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
