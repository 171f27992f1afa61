package handler

import (
	"net/http"
	"time"

	"github.com/cloudly/miniapp/internal/ctxkeys"
	"github.com/cloudly/miniapp/internal/service"
	"github.com/cloudly/miniapp/internal/web"
)

type UserHandler struct {
	activityService *service.ActivityService
	now             func() time.Time
}

func NewUserHandler(activityService *service.ActivityService) *UserHandler {
	return &UserHandler{
		activityService: activityService,
		now:             time.Now,
	}
}

// Me returns the signed-in user with their visit statistics.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	web.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
		"stats":   user.VisitStats(h.now()),
	})
}

func (h *UserHandler) Progress(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	progress, err := h.activityService.DailyProgress(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, map[string]any{"success": true, "data": progress})
}

// SaveProgress records the daily steps the client reports as done, or
// clears them all when reset is set.
func (h *UserHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var flags service.ProgressFlags
	err := decodeJSON(w, r, &flags)
	if err != nil {
		respondError(w, r, err)
		return
	}

	err = h.activityService.Record(r.Context(), user.ID, flags)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.Progress(w, r)
}
