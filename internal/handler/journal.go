package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cloudly/miniapp/internal/ctxkeys"
	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/repository"
	"github.com/cloudly/miniapp/internal/service"
	"github.com/cloudly/miniapp/internal/validation"
	"github.com/cloudly/miniapp/internal/web"
)

type JournalHandler struct {
	journalService  *service.JournalService
	analysisService *service.AnalysisService
}

func NewJournalHandler(journalService *service.JournalService, analysisService *service.AnalysisService) *JournalHandler {
	return &JournalHandler{
		journalService:  journalService,
		analysisService: analysisService,
	}
}

// parseDate reads a YYYY-MM-DD value, defaulting to today when empty.
func (h *JournalHandler) parseDate(raw string) (model.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return h.journalService.Today(), nil
	}
	date, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, &validation.FieldError{Field: "date", Message: "must be a date in YYYY-MM-DD format"}
	}
	return date, nil
}

// Entry returns the entry for ?date (today by default). A missing entry is
// reported as null so the client can start a blank form.
func (h *JournalHandler) Entry(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	date, err := h.parseDate(r.URL.Query().Get("date"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	entry, err := h.journalService.ByDate(r.Context(), user.ID, date)
	if err != nil && !errors.Is(err, repository.ErrJournalEntryNotFound) {
		respondError(w, r, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"date":    date,
		"entry":   entry,
	})
}

func (h *JournalHandler) Recent(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	limit, err := queryInt(r, "limit", service.DefaultRecentEntries)
	if err != nil {
		respondError(w, r, err)
		return
	}

	entries, err := h.journalService.Recent(r.Context(), user.ID, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, map[string]any{"success": true, "entries": entries})
}

type saveJournalRequest struct {
	Date             string  `json:"date"`
	Situation        *string `json:"situation"`
	Emotions         *string `json:"emotions"`
	RationalResponse *string `json:"rational_response"`
	Result           *string `json:"result"`
}

// Save creates or updates an entry and reports whether the streak moved.
func (h *JournalHandler) Save(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req saveJournalRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	date, err := h.parseDate(req.Date)
	if err != nil {
		respondError(w, r, err)
		return
	}

	saved, err := h.journalService.Save(r.Context(), user, date, model.JournalFields{
		Situation:        req.Situation,
		Emotions:         req.Emotions,
		RationalResponse: req.RationalResponse,
		Result:           req.Result,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"entry":          saved.Entry,
		"streak_changed": saved.StreakChanged,
		"streak":         saved.Streak,
	})
}

type journalAnalysisRequest struct {
	Date string `json:"date"`
}

func (h *JournalHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req journalAnalysisRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	date, err := h.parseDate(req.Date)
	if err != nil {
		respondError(w, r, err)
		return
	}

	entry, err := h.journalService.ByDate(r.Context(), user.ID, date)
	if err != nil {
		respondError(w, r, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"analysis": h.analysisService.AnalyzeJournal(r.Context(), entry),
	})
}
