package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"levelup/internal/goal"
)

type UserGoalHandler struct {
	Svc *goal.Service
	Log *zap.Logger
}

func (h *UserGoalHandler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, goal.ErrNotFound):
		http.Error(w, "user goal not found", http.StatusNotFound)
	case errors.Is(err, goal.ErrTemplateNotFound):
		http.Error(w, "template not found", http.StatusNotFound)
	case errors.Is(err, goal.ErrQuotaMet):
		http.Error(w, "already completed for the current period", http.StatusConflict)
	case errors.Is(err, goal.ErrArchived):
		http.Error(w, "goal is archived, unarchive it first", http.StatusConflict)
	case errors.Is(err, goal.ErrNotArchived):
		http.Error(w, "only archived goals can be deleted", http.StatusConflict)
	case errors.Is(err, goal.ErrInvalidCadence):
		http.Error(w, "cadence must be daily or weekly", http.StatusBadRequest)
	default:
		h.Log.Error(op, zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

// List returns the user's goals with lazily recomputed window state.
func (h *UserGoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	status := strings.ToLower(r.URL.Query().Get("status"))
	if status == "" {
		status = goal.StatusActive
	}

	rows, err := h.Svc.ListUserGoals(r.Context(), userID, status, time.Now())
	if err != nil {
		h.fail(w, "list user goals", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

type addGoalReq struct {
	TemplateID uint64 `json:"template_id" validate:"required"`
	Cadence    string `json:"cadence" validate:"required,oneof=daily weekly"`
}

func (h *UserGoalHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req addGoalReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Cadence = strings.ToLower(strings.TrimSpace(req.Cadence))
	if err := validate.Struct(req); err != nil {
		http.Error(w, "template_id and cadence (daily|weekly) required", http.StatusBadRequest)
		return
	}

	res, err := h.Svc.AddUserGoal(r.Context(), userID, req.TemplateID, req.Cadence)
	if err != nil {
		h.fail(w, "add user goal", err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

func (h *UserGoalHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok1 := pathID(r, "id")
	goalID, ok2 := pathID(r, "userGoalId")
	if !ok1 || !ok2 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	res, err := h.Svc.Complete(r.Context(), userID, goalID, time.Now())
	if err != nil {
		h.fail(w, "complete user goal", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":               true,
		"awarded":          res.Awarded,
		"new_xp":           res.NewXP,
		"new_level":        res.NewLevel,
		"xp_progress":      res.XPProgress,
		"next_eligible_at": res.NextEligibleAt,
	})
}

type scheduleReq struct {
	Cadence string `json:"cadence" validate:"required,oneof=daily weekly"`
}

func (h *UserGoalHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	userID, ok1 := pathID(r, "id")
	goalID, ok2 := pathID(r, "userGoalId")
	if !ok1 || !ok2 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req scheduleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Cadence = strings.ToLower(strings.TrimSpace(req.Cadence))
	if err := validate.Struct(req); err != nil {
		http.Error(w, "cadence (daily|weekly) required", http.StatusBadRequest)
		return
	}

	st, err := h.Svc.UpdateSchedule(r.Context(), userID, goalID, req.Cadence, time.Now())
	if err != nil {
		h.fail(w, "update schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *UserGoalHandler) Archive(w http.ResponseWriter, r *http.Request) {
	userID, ok1 := pathID(r, "id")
	goalID, ok2 := pathID(r, "userGoalId")
	if !ok1 || !ok2 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.Svc.Archive(r.Context(), userID, goalID); err != nil {
		h.fail(w, "archive user goal", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": goalID, "status": goal.StatusArchived})
}

func (h *UserGoalHandler) Unarchive(w http.ResponseWriter, r *http.Request) {
	userID, ok1 := pathID(r, "id")
	goalID, ok2 := pathID(r, "userGoalId")
	if !ok1 || !ok2 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	st, reactivated, err := h.Svc.Unarchive(r.Context(), userID, goalID, time.Now())
	if err != nil {
		h.fail(w, "unarchive user goal", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":                    st.ID,
		"status":                st.Status,
		"reactivated":           reactivated,
		"cadence":               st.Cadence,
		"period_start":          st.PeriodStart,
		"period_end":            st.PeriodEnd,
		"completions_in_period": st.CompletionsInPeriod,
		"can_complete":          st.CanComplete,
	})
}

func (h *UserGoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok1 := pathID(r, "id")
	goalID, ok2 := pathID(r, "userGoalId")
	if !ok1 || !ok2 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.Svc.Delete(r.Context(), userID, goalID); err != nil {
		h.fail(w, "delete user goal", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
