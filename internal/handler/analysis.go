package handler

import (
	"net/http"

	"github.com/cloudly/miniapp/internal/service"
	"github.com/cloudly/miniapp/internal/validation"
	"github.com/cloudly/miniapp/internal/web"
)

type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}

type analyzeResponseRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Type     string `json:"type"`
}

// AnalyzeResponse scores how complete a diary answer is and may suggest a
// follow-up question.
func (h *AnalysisHandler) AnalyzeResponse(w http.ResponseWriter, r *http.Request) {
	var req analyzeResponseRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	err = validation.First(
		validation.Required("answer", req.Answer),
		validation.MaxLength("question", req.Question, validation.MaxTextLength),
	)
	if err != nil {
		respondError(w, r, err)
		return
	}

	analysis := h.analysisService.AnalyzeResponse(r.Context(), req.Question, req.Answer, req.Type)

	web.RespondJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*service.ResponseAnalysis
	}{true, analysis})
}

type analyzeEmotionsRequest struct {
	Situation string `json:"situation"`
	Thoughts  string `json:"thoughts"`
}

func (h *AnalysisHandler) AnalyzeEmotions(w http.ResponseWriter, r *http.Request) {
	var req analyzeEmotionsRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	err = validation.First(
		validation.Required("situation", req.Situation),
		validation.MaxLength("thoughts", req.Thoughts, validation.MaxTextLength),
	)
	if err != nil {
		respondError(w, r, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"emotions": h.analysisService.SuggestEmotions(r.Context(), req.Situation, req.Thoughts),
	})
}
