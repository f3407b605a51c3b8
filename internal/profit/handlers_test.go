package profit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/profitpro/internal/calculator"
	"github.com/noah-isme/profitpro/internal/config"
	"github.com/noah-isme/profitpro/internal/history"
	"github.com/noah-isme/profitpro/internal/preferences"
	"github.com/noah-isme/profitpro/internal/storage"
)

var testNow = time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

type failingSet struct {
	*storage.MemoryStore
	fail bool
}

func (f *failingSet) Set(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

type fixture struct {
	router  http.Handler
	store   *failingSet
	history *history.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mem := &failingSet{MemoryStore: storage.NewMemoryStore()}
	clock := func() time.Time { return testNow }
	ledger, err := history.NewStore(history.Config{Storage: mem, IDs: history.NewIDSequence(clock)})
	require.NoError(t, err)
	ledger.Load(context.Background())

	currencies, err := config.ParseCurrencies("USD:$,EUR:€")
	require.NoError(t, err)
	h := &Handler{
		Svc: &Service{
			Calc:            calculator.Calculator{Now: clock},
			History:         ledger,
			Currencies:      currencies,
			DefaultCurrency: "USD",
		},
		Themes: preferences.Themes{Storage: mem},
		Logger: zerolog.Nop(),
	}
	r := chi.NewRouter()
	r.Route("/api/v1", h.Routes)
	return fixture{router: r, store: mem, history: ledger}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

const scenarioA = `{"costPrice":10,"sellingPrice":20,"quantity":5,"vatPercent":10,"discountPercent":5,"shipping":2,"currencyCode":"usd"}`

func decodeView(t *testing.T, rr *httptest.ResponseRecorder) CalculationView {
	t.Helper()
	var view CalculationView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	return view
}

func TestCalculateRecordsAndResponds(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/api/v1/calculations", scenarioA)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	view := decodeView(t, rr)
	require.Equal(t, 104.5, view.Data.FinalPrice)
	require.Equal(t, 52.5, view.Data.TotalProfit)
	require.Equal(t, "USD", view.Data.CurrencyCode)
	require.Equal(t, "$", view.Data.CurrencySymbol)
	require.Equal(t, "$104.50", view.Display.FinalPrice)
	require.Equal(t, "50.24%", view.Display.ProfitMargin)
	require.Equal(t, []float64{52, 100, 104.5}, view.Chart.CostRevenue.Values)
	require.Empty(t, view.Warnings)
	require.NotZero(t, view.Data.ID)

	require.Equal(t, 1, f.history.Len())
	raw, ok, err := f.store.Get(context.Background(), storage.SlotHistory)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, string(raw), strconv.FormatInt(view.Data.ID, 10))
}

func TestCalculateCurrencyResolution(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/api/v1/calculations", `{"costPrice":1,"sellingPrice":2,"quantity":1,"currencyCode":"EUR","currencySymbol":"E"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "€", decodeView(t, rr).Data.CurrencySymbol)

	rr = f.do(t, http.MethodPost, "/api/v1/calculations", `{"costPrice":1,"sellingPrice":2,"quantity":1,"currencyCode":"CHF","currencySymbol":"Fr"}`)
	require.Equal(t, "Fr", decodeView(t, rr).Data.CurrencySymbol)

	rr = f.do(t, http.MethodPost, "/api/v1/calculations", `{"costPrice":1,"sellingPrice":2,"quantity":1}`)
	view := decodeView(t, rr)
	require.Equal(t, "USD", view.Data.CurrencyCode)
	require.Equal(t, "$", view.Data.CurrencySymbol)
}

func TestCalculateValidation(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/api/v1/calculations", `{"costPrice":0,"sellingPrice":-1,"quantity":0,"discountPercent":-5}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var body struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "VALIDATION_FAILED", body.Error.Code)
	require.Equal(t, "Invalid cost price", body.Error.Details["costPrice"])
	require.Equal(t, "Invalid selling price", body.Error.Details["sellingPrice"])
	require.Equal(t, "Quantity must be at least 1", body.Error.Details["quantity"])
	require.NotContains(t, body.Error.Details, "discountPercent")
	require.Zero(t, f.history.Len())

	rr = f.do(t, http.MethodPost, "/api/v1/calculations", `{"costPrice":"ten"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCalculateRejectsOverflow(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/api/v1/calculations", `{"costPrice":1e308,"sellingPrice":1e308,"quantity":10}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
	require.Contains(t, rr.Body.String(), "Result is out of range")
	require.Zero(t, f.history.Len())

	rr = f.do(t, http.MethodPost, "/api/v1/calculations", scenarioA)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, 1, f.history.Len())
}

func TestNegativeAdjustmentsPassThrough(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodPost, "/api/v1/calculations", `{"costPrice":10,"sellingPrice":20,"quantity":1,"discountPercent":-10}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, 22.0, decodeView(t, rr).Data.PriceAfterDiscount)
}

func TestCalculatePersistFailureWarns(t *testing.T) {
	f := newFixture(t)
	f.store.fail = true

	rr := f.do(t, http.MethodPost, "/api/v1/calculations", scenarioA)
	require.Equal(t, http.StatusCreated, rr.Code)
	view := decodeView(t, rr)
	require.Len(t, view.Warnings, 1)
	require.Contains(t, view.Warnings[0], "HISTORY_PERSIST_FAILED")
	require.Equal(t, 1, f.history.Len(), "in-memory mutation is kept")
}

func TestHistoryListGetAndNotFound(t *testing.T) {
	f := newFixture(t)
	first := decodeView(t, f.do(t, http.MethodPost, "/api/v1/calculations", scenarioA)).Data
	second := decodeView(t, f.do(t, http.MethodPost, "/api/v1/calculations", `{"costPrice":5,"sellingPrice":3,"quantity":10}`)).Data

	rr := f.do(t, http.MethodGet, "/api/v1/history", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Data []calculator.Calculation `json:"data"`
		Rows []history.Row            `json:"rows"`
		Meta map[string]int           `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Data, 2)
	require.Equal(t, second.ID, list.Data[0].ID)
	require.Equal(t, first.ID, list.Data[1].ID)
	require.Equal(t, "$-20.00", list.Rows[0].Profit)
	require.Equal(t, 20, list.Meta["capacity"])

	rr = f.do(t, http.MethodGet, "/api/v1/history/"+strconv.FormatInt(first.ID, 10), "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/v1/history/123", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Contains(t, rr.Body.String(), "NOT_FOUND")

	rr = f.do(t, http.MethodGet, "/api/v1/history/abc", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReplayRecordsFreshCalculation(t *testing.T) {
	f := newFixture(t)
	first := decodeView(t, f.do(t, http.MethodPost, "/api/v1/calculations", scenarioA)).Data

	rr := f.do(t, http.MethodPost, "/api/v1/history/"+strconv.FormatInt(first.ID, 10)+"/replay", "")
	require.Equal(t, http.StatusCreated, rr.Code)
	replayed := decodeView(t, rr).Data
	require.Greater(t, replayed.ID, first.ID)
	require.Equal(t, first.Inputs, replayed.Inputs)
	require.Equal(t, first.ProfitMargin, replayed.ProfitMargin)
	require.Equal(t, 2, f.history.Len())

	rr = f.do(t, http.MethodPost, "/api/v1/history/42/replay", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, 2, f.history.Len())
}

func TestClearRequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/v1/calculations", scenarioA)

	rr := f.do(t, http.MethodDelete, "/api/v1/history", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "CONFIRMATION_REQUIRED")
	require.Equal(t, 1, f.history.Len())

	rr = f.do(t, http.MethodDelete, "/api/v1/history?confirm=true", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"removed":1`)
	require.Zero(t, f.history.Len())
}

func TestReportAndExport(t *testing.T) {
	f := newFixture(t)
	first := decodeView(t, f.do(t, http.MethodPost, "/api/v1/calculations", scenarioA)).Data

	rr := f.do(t, http.MethodGet, "/api/v1/history/"+strconv.FormatInt(first.ID, 10)+"/report", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Header().Get("Content-Disposition"), "ProfitPro_Report_"+strconv.FormatInt(testNow.UnixMilli(), 10)+".pdf")
	require.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")))

	rr = f.do(t, http.MethodGet, "/api/v1/history/7/report", "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/v1/history/export", "")
	require.Equal(t, http.StatusOK, rr.Code)
	book, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = book.Close() }()
	rows, err := book.GetRows("History")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, strconv.FormatInt(first.ID, 10), rows[1][0])
}

func TestThemeEndpoints(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/api/v1/preferences/theme", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"data":{"theme":"light"}}`, rr.Body.String())

	rr = f.do(t, http.MethodPost, "/api/v1/preferences/theme/toggle", "")
	require.JSONEq(t, `{"data":{"theme":"dark"}}`, rr.Body.String())

	rr = f.do(t, http.MethodPut, "/api/v1/preferences/theme", `{"theme":" LIGHT "}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"data":{"theme":"light"}}`, rr.Body.String())

	rr = f.do(t, http.MethodPut, "/api/v1/preferences/theme", `{"theme":"sepia"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	f.store.fail = true
	rr = f.do(t, http.MethodPost, "/api/v1/preferences/theme/toggle", "")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
