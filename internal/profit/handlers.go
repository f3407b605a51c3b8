package profit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/profitpro/internal/calculator"
	"github.com/noah-isme/profitpro/internal/common"
	"github.com/noah-isme/profitpro/internal/history"
	"github.com/noah-isme/profitpro/internal/obs"
	"github.com/noah-isme/profitpro/internal/preferences"
	"github.com/noah-isme/profitpro/internal/report"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// CalculationView is the response body for a freshly derived calculation.
type CalculationView struct {
	Data     calculator.Calculation `json:"data"`
	Display  calculator.Display     `json:"display"`
	Chart    calculator.Chart       `json:"chart"`
	Warnings []string               `json:"warnings,omitempty"`
}

func viewOf(calc calculator.Calculation) CalculationView {
	return CalculationView{Data: calc, Display: calculator.Summarize(calc), Chart: calculator.ChartFor(calc)}
}

// Handler exposes the calculator, history and preference endpoints.
type Handler struct {
	Svc    *Service
	Themes preferences.Themes
	Logger zerolog.Logger
}

// Routes registers the handler under r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/calculations", h.Calculate)
	r.Route("/history", func(hr chi.Router) {
		hr.Get("/", h.ListHistory)
		hr.Delete("/", h.ClearHistory)
		hr.Get("/export", h.ExportHistory)
		hr.Get("/{id}", h.GetHistory)
		hr.Post("/{id}/replay", h.Replay)
		hr.Get("/{id}/report", h.Report)
	})
	r.Route("/preferences/theme", func(pr chi.Router) {
		pr.Get("/", h.GetTheme)
		pr.Put("/", h.SetTheme)
		pr.Post("/toggle", h.ToggleTheme)
	})
}

// Calculate handles POST /calculations.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var in calculator.Inputs
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid request body", err.Error())
		return
	}
	calc, err := h.Svc.Calculate(r.Context(), in)
	h.writeRecorded(w, r, calc, err)
}

// Replay handles POST /history/{id}/replay.
func (h *Handler) Replay(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	calc, err := h.Svc.Replay(r.Context(), id)
	h.writeRecorded(w, r, calc, err)
}

func (h *Handler) writeRecorded(w http.ResponseWriter, r *http.Request, calc calculator.Calculation, err error) {
	view := viewOf(calc)
	if err != nil {
		warning, kept := PersistWarning(err)
		if !kept {
			writeDomainError(w, err)
			return
		}
		obs.Ctx(r.Context(), h.Logger).Warn().Err(err).Int64("id", calc.ID).Msg("calculation recorded without persistence")
		view.Warnings = append(view.Warnings, common.CodeHistoryPersisted+": "+warning)
	}
	common.JSON(w, http.StatusCreated, view)
}

// ListHistory handles GET /history.
func (h *Handler) ListHistory(w http.ResponseWriter, _ *http.Request) {
	entries := h.Svc.History.Entries()
	common.JSON(w, http.StatusOK, map[string]any{
		"data": entries,
		"rows": history.Rows(entries),
		"meta": map[string]int{"count": len(entries), "capacity": h.Svc.History.Capacity()},
	})
}

// GetHistory handles GET /history/{id}.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	calc, err := h.Svc.History.FindByID(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": calc})
}

// ClearHistory handles DELETE /history. The confirm flag stands in for the
// user confirmation the ledger itself never asks for.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if !common.ParseBool(r.URL.Query().Get("confirm")) {
		common.JSONError(w, http.StatusBadRequest, common.CodeConfirmRequired, "clearing history requires confirm=true", nil)
		return
	}
	removed := h.Svc.History.Len()
	body := map[string]any{"data": map[string]int{"removed": removed}}
	if err := h.Svc.History.Clear(r.Context()); err != nil {
		warning, kept := PersistWarning(err)
		if !kept {
			writeDomainError(w, err)
			return
		}
		body["warnings"] = []string{common.CodeHistoryPersisted + ": " + warning}
	}
	common.JSON(w, http.StatusOK, body)
}

// Report handles GET /history/{id}/report.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	calc, err := h.Svc.History.Recompute(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	doc, err := report.PDF(calc)
	if err != nil {
		obs.Ctx(r.Context(), h.Logger).Error().Err(err).Int64("id", id).Msg("render report")
		common.WriteError(w, err)
		return
	}
	common.Attachment(w, contentTypePDF, report.FileName(h.Svc.Now()), doc)
}

// ExportHistory handles GET /history/export.
func (h *Handler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	book, err := report.Workbook(h.Svc.History.Entries())
	if err != nil {
		obs.Ctx(r.Context(), h.Logger).Error().Err(err).Msg("render history workbook")
		common.WriteError(w, err)
		return
	}
	name := fmt.Sprintf("ProfitPro_History_%d.xlsx", h.Svc.Now().UnixMilli())
	common.Attachment(w, contentTypeXLSX, name, book)
}

// GetTheme handles GET /preferences/theme.
func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.Themes.Get(r.Context())
	if err != nil {
		obs.Ctx(r.Context(), h.Logger).Warn().Err(err).Msg("read theme")
	}
	common.JSON(w, http.StatusOK, themeBody(theme))
}

// SetTheme handles PUT /preferences/theme.
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid request body", err.Error())
		return
	}
	theme, err := h.Themes.Set(r.Context(), req.Theme)
	if err != nil {
		writeThemeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, themeBody(theme))
}

// ToggleTheme handles POST /preferences/theme/toggle.
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.Themes.Toggle(r.Context())
	if err != nil {
		writeThemeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, themeBody(theme))
}

func themeBody(theme string) map[string]any {
	return map[string]any{"data": map[string]string{"theme": theme}}
}

func writeThemeError(w http.ResponseWriter, err error) {
	if errors.Is(err, preferences.ErrInvalidTheme) {
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeValidation, err.Error(), nil)
		return
	}
	common.JSONError(w, http.StatusServiceUnavailable, common.CodeStorage, "theme storage unavailable", nil)
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid calculation id", nil)
	}
	return id, ok
}

func writeDomainError(w http.ResponseWriter, err error) {
	var validation *calculator.ValidationError
	var storageErr *history.StorageError
	switch {
	case errors.As(err, &validation):
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeValidation, "invalid calculation inputs", validation.Fields)
	case errors.Is(err, history.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "calculation not found", nil)
	case errors.As(err, &storageErr):
		common.JSONError(w, http.StatusServiceUnavailable, common.CodeStorage, "history storage unavailable", nil)
	default:
		common.WriteError(w, err)
	}
}
