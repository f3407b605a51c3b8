package contact

import (
	"encoding/json"
	"net/http"

	"github.com/noah-isme/profitpro/internal/common"
)

type Handler struct {
	Svc *Service
}

// Submit handles POST /contact.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req Submission
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid request body", err.Error())
		return
	}
	receipt, err := h.Svc.Submit(r.Context(), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusAccepted, map[string]any{"data": receipt})
}
