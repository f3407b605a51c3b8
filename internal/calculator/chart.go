package calculator

import "math"

// Series is a labelled set of values for a single chart.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Chart bundles the datasets a front end needs to draw a calculation.
type Chart struct {
	CostRevenue  Series `json:"costRevenue"`
	Distribution Series `json:"distribution"`
	AxisPrefix   string `json:"axisPrefix"`
}

// ChartFor derives chart datasets from c. Losses show as zero profit in the
// distribution so the slices never go negative.
func ChartFor(c Calculation) Chart {
	return Chart{
		CostRevenue: Series{
			Labels: []string{"Total Cost", "Total Revenue", "Final Price"},
			Values: []float64{c.TotalCost, c.TotalRevenue, c.FinalPrice},
		},
		Distribution: Series{
			Labels: []string{"Cost", "Profit"},
			Values: []float64{c.TotalCost, math.Max(0, c.TotalProfit)},
		},
		AxisPrefix: c.CurrencySymbol,
	}
}
