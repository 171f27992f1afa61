package handler

import (
	"net/http"

	"github.com/cloudly/miniapp/internal/ctxkeys"
	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/service"
	"github.com/cloudly/miniapp/internal/web"
)

type CBTHandler struct {
	cbtService *service.CBTService
}

func NewCBTHandler(cbtService *service.CBTService) *CBTHandler {
	return &CBTHandler{
		cbtService: cbtService,
	}
}

func (h *CBTHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	analyses, err := h.cbtService.List(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, map[string]any{"success": true, "analyses": analyses})
}

func (h *CBTHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var input model.CBTAnalysis
	err := decodeJSON(w, r, &input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	analysis, err := h.cbtService.Create(r.Context(), user.ID, input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	web.RespondJSON(w, http.StatusCreated, map[string]any{"success": true, "analysis": analysis})
}
