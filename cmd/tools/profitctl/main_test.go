package main

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/profitpro/internal/calculator"
	"github.com/noah-isme/profitpro/internal/config"
	"github.com/noah-isme/profitpro/internal/history"
	"github.com/noah-isme/profitpro/internal/profit"
	"github.com/noah-isme/profitpro/internal/storage"
)

func newService(t *testing.T) *profit.Service {
	t.Helper()
	clock := func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }
	ledger, err := history.NewStore(history.Config{Storage: storage.NewMemoryStore(), IDs: history.NewIDSequence(clock)})
	require.NoError(t, err)
	currencies, err := config.ParseCurrencies("USD:$,GBP:£")
	require.NoError(t, err)
	return &profit.Service{
		Calc:            calculator.Calculator{Now: clock},
		History:         ledger,
		Currencies:      currencies,
		DefaultCurrency: "USD",
	}
}

func TestCalcHistoryReplayClear(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	var out bytes.Buffer

	require.NoError(t, run(ctx, []string{"calc", "-cost", "5", "-sell", "3", "-qty", "10", "-currency", "gbp"}, &out, svc))
	require.Contains(t, out.String(), "total profit          £-20.00 (LOSS)")
	require.Contains(t, out.String(), "profit margin         -66.67%")

	id := svc.History.Entries()[0].ID
	out.Reset()
	require.NoError(t, run(ctx, []string{"replay", "-id", strconv.FormatInt(id, 10)}, &out, svc))
	require.Equal(t, 2, svc.History.Len())

	out.Reset()
	require.NoError(t, run(ctx, []string{"history"}, &out, svc))
	require.Equal(t, 2, strings.Count(out.String(), "\n"))

	err := run(ctx, []string{"clear"}, &out, svc)
	require.Error(t, err)
	require.Equal(t, 2, svc.History.Len())

	out.Reset()
	require.NoError(t, run(ctx, []string{"clear", "-yes"}, &out, svc))
	require.Equal(t, "cleared 2 calculations\n", out.String())

	out.Reset()
	require.NoError(t, run(ctx, []string{"history"}, &out, svc))
	require.Equal(t, "No calculations yet.\n", out.String())
}

func TestCalcValidationAndUnknownReplay(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	var out bytes.Buffer

	err := run(ctx, []string{"calc", "-cost", "0", "-sell", "3"}, &out, svc)
	require.ErrorContains(t, err, "Invalid cost price")
	require.Zero(t, svc.History.Len())

	err = run(ctx, []string{"replay", "-id", "99"}, &out, svc)
	require.ErrorContains(t, err, "no calculation with id 99")

	require.Error(t, run(ctx, []string{"bogus"}, &out, svc))
	require.Error(t, run(ctx, nil, &out, svc))
}
