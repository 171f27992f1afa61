package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cloudly/miniapp/internal/service"
	"github.com/cloudly/miniapp/internal/validation"
	"github.com/cloudly/miniapp/internal/web"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type telegramLoginRequest struct {
	InitData string `json:"initData"`
}

// TelegramLogin exchanges signed mini app init data for a session token.
func (h *AuthHandler) TelegramLogin(w http.ResponseWriter, r *http.Request) {
	var req telegramLoginRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if strings.TrimSpace(req.InitData) == "" {
		respondError(w, r, &validation.FieldError{Field: "initData", Message: "is required"})
		return
	}

	user, token, expiry, err := h.authService.Login(r.Context(), req.InitData)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInitData) || errors.Is(err, service.ErrInitDataExpired) {
			slog.Warn("telegram login rejected", "error", err)
		}
		respondError(w, r, err)
		return
	}

	h.authService.SetJWTCookie(w, token, expiry)

	web.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	web.RespondJSON(w, http.StatusOK, map[string]any{"success": true})
}
