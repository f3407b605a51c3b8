package profit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/noah-isme/profitpro/internal/calculator"
	"github.com/noah-isme/profitpro/internal/history"
	"github.com/noah-isme/profitpro/internal/obs"
)

// SymbolLookup resolves a currency code to its display symbol.
type SymbolLookup interface {
	Symbol(code string) (string, bool)
}

// Service runs the calculate, record and replay flows shared by the HTTP
// handlers and the command-line tool.
type Service struct {
	Calc            calculator.Calculator
	History         *history.Store
	Currencies      SymbolLookup
	DefaultCurrency string
}

// Now returns the service clock, shared with the calculator.
func (s *Service) Now() time.Time {
	if s.Calc.Now != nil {
		return s.Calc.Now()
	}
	return time.Now()
}

// ResolveCurrency fills in the currency code and symbol. A known code always
// takes the configured symbol; an unknown code keeps the caller's symbol and
// falls back to the code itself.
func (s *Service) ResolveCurrency(in calculator.Inputs) calculator.Inputs {
	code := strings.ToUpper(strings.TrimSpace(in.CurrencyCode))
	if code == "" {
		code = s.DefaultCurrency
	}
	in.CurrencyCode = code
	if s.Currencies != nil {
		if symbol, ok := s.Currencies.Symbol(code); ok {
			in.CurrencySymbol = symbol
			return in
		}
	}
	if strings.TrimSpace(in.CurrencySymbol) == "" {
		in.CurrencySymbol = code
	}
	return in
}

// Calculate validates in, derives the calculation and records it. When the
// ledger write fails the recorded calculation is still returned together
// with the *history.StorageError.
func (s *Service) Calculate(ctx context.Context, in calculator.Inputs) (calculator.Calculation, error) {
	if err := calculator.Validate(in); err != nil {
		obs.RecordCalculation("invalid")
		return calculator.Calculation{}, err
	}
	calc := s.Calc.Compute(s.ResolveCurrency(in))
	if err := calculator.CheckFinite(calc); err != nil {
		obs.RecordCalculation("invalid")
		return calculator.Calculation{}, err
	}
	recordOutcome(calc)
	return s.History.Record(ctx, calc)
}

// Replay re-derives a stored calculation and records the fresh result.
// Entries whose inputs no longer derive finite values are not re-recorded.
func (s *Service) Replay(ctx context.Context, id int64) (calculator.Calculation, error) {
	fresh, err := s.History.Recompute(id)
	if err != nil {
		return calculator.Calculation{}, err
	}
	if err := calculator.CheckFinite(fresh); err != nil {
		return calculator.Calculation{}, err
	}
	calc, err := s.History.Replay(ctx, id, s.Calc)
	if err != nil && errors.Is(err, history.ErrNotFound) {
		return calc, err
	}
	recordOutcome(calc)
	return calc, err
}

func recordOutcome(calc calculator.Calculation) {
	if calc.Profitable() {
		obs.RecordCalculation("profit")
		return
	}
	obs.RecordCalculation("loss")
}

// PersistWarning reports whether err is a ledger write failure that left the
// in-memory mutation in place, returning a message for the caller.
func PersistWarning(err error) (string, bool) {
	var storageErr *history.StorageError
	if errors.As(err, &storageErr) && storageErr.Op == "save" {
		return "history could not be saved and may not survive a restart", true
	}
	return "", false
}
