package config

import (
	"fmt"
	"strings"
)

// Currencies maps an upper-case currency code to its display symbol. The
// symbol is only a label; no exchange rates are involved.
type Currencies map[string]string

// ParseCurrencies reads a CSV of CODE:SYMBOL pairs.
func ParseCurrencies(csv string) (Currencies, error) {
	out := Currencies{}
	for _, pair := range splitAndTrim(csv) {
		code, symbol, ok := strings.Cut(pair, ":")
		code = strings.ToUpper(strings.TrimSpace(code))
		symbol = strings.TrimSpace(symbol)
		if !ok || code == "" || symbol == "" {
			return nil, fmt.Errorf("invalid currency pair %q", pair)
		}
		out[code] = symbol
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no currencies configured")
	}
	return out, nil
}

// Symbol looks up the display symbol for code.
func (c Currencies) Symbol(code string) (string, bool) {
	symbol, ok := c[strings.ToUpper(strings.TrimSpace(code))]
	return symbol, ok
}
