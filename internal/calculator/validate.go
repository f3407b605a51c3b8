package calculator

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	validator "github.com/go-playground/validator/v10"
)

var fieldMessages = map[string]string{
	"costPrice":    "Invalid cost price",
	"sellingPrice": "Invalid selling price",
	"quantity":     "Quantity must be at least 1",
}

// ValidationError lists the input fields that failed validation, keyed by JSON name.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "invalid inputs"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "invalid inputs: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the inputs Compute expects its caller to guarantee.
// Only cost price, selling price and quantity are checked; VAT, discount
// and shipping pass through untouched, negative values included.
func Validate(in Inputs) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = fmt.Sprintf("failed %s", fe.Tag())
		}
		out.Fields[fe.Field()] = msg
	}
	return out
}

// CheckFinite rejects a calculation whose derived values overflowed to an
// infinity or NaN, keyed by the derived field names.
func CheckFinite(c Calculation) error {
	derived := map[string]float64{
		"totalCost":          c.TotalCost,
		"totalRevenue":       c.TotalRevenue,
		"discountAmount":     c.DiscountAmount,
		"priceAfterDiscount": c.PriceAfterDiscount,
		"taxAmount":          c.TaxAmount,
		"finalPrice":         c.FinalPrice,
		"totalProfit":        c.TotalProfit,
		"profitMargin":       c.ProfitMargin,
	}
	var out *ValidationError
	for name, v := range derived {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			continue
		}
		if out == nil {
			out = &ValidationError{Fields: map[string]string{}}
		}
		out.Fields[name] = "Result is out of range"
	}
	if out == nil {
		return nil
	}
	return out
}
