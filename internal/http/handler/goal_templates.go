package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"levelup/internal/auth"
	"levelup/internal/goal"
)

type GoalTemplateHandler struct {
	Svc *goal.Service
	Log *zap.Logger
}

func (h *GoalTemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())
	q := r.URL.Query()

	f := goal.TemplateFilter{
		Query:  q.Get("q"),
		UserID: ident.UserID,
	}
	if v := q.Get("enabled"); v != "" {
		enabled := v == "1" || v == "true"
		f.Enabled = &enabled
	}
	if v := q.Get("category_id"); v != "" {
		f.CategoryID, _ = strconv.ParseUint(v, 10, 64)
	}
	if q.Get("owner") == "me" {
		if ident.UserID == 0 {
			http.Error(w, "authentication required for owner=me", http.StatusUnauthorized)
			return
		}
		f.OwnerOnly = true
	}

	rows, err := h.Svc.ListTemplates(r.Context(), f)
	if err != nil {
		h.Log.Error("list templates", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *GoalTemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	ident, _ := auth.IdentityFromContext(r.Context())

	tpl, err := h.Svc.GetTemplate(r.Context(), id, ident.UserID)
	if err != nil {
		if errors.Is(err, goal.ErrTemplateNotFound) {
			http.Error(w, "template not found", http.StatusNotFound)
			return
		}
		h.Log.Error("get template", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

type createTemplateReq struct {
	Title             string  `json:"title" validate:"required,max=255"`
	Description       *string `json:"description"`
	CategoryID        *uint64 `json:"category_id"`
	BaseXP            *int    `json:"base_xp" validate:"omitempty,min=0"`
	FrequencyType     *string `json:"frequency_type" validate:"omitempty,oneof=once daily weekly monthly custom"`
	FrequencyInterval *int    `json:"frequency_interval" validate:"omitempty,min=1"`
	WeekStart         *int    `json:"week_start" validate:"omitempty,min=1,max=7"`
	MaxPerPeriod      *int    `json:"max_per_period" validate:"omitempty,min=1"`
	Enabled           *bool   `json:"enabled"`
	Visibility        string  `json:"visibility" validate:"omitempty,oneof=global private unlisted"`
}

func (h *GoalTemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req createTemplateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "invalid template", http.StatusBadRequest)
		return
	}

	tpl, err := h.Svc.CreateTemplate(r.Context(), uid, goal.CreateTemplateInput{
		Title:             req.Title,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		BaseXP:            req.BaseXP,
		FrequencyType:     req.FrequencyType,
		FrequencyInterval: req.FrequencyInterval,
		WeekStart:         req.WeekStart,
		MaxPerPeriod:      req.MaxPerPeriod,
		Enabled:           req.Enabled,
		Visibility:        req.Visibility,
	})
	if err != nil {
		if errors.Is(err, goal.ErrInvalidCadence) {
			http.Error(w, "invalid frequency_type", http.StatusBadRequest)
			return
		}
		h.Log.Error("create template", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

type setEnabledReq struct {
	Enabled bool `json:"enabled"`
}

func (h *GoalTemplateHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	ident, _ := auth.IdentityFromContext(r.Context())

	var req setEnabledReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	tpl, err := h.Svc.SetTemplateEnabled(r.Context(), id, ident.UserID, ident.IsAdmin, req.Enabled)
	if err != nil {
		switch {
		case errors.Is(err, goal.ErrTemplateNotFound):
			http.Error(w, "template not found", http.StatusNotFound)
		case errors.Is(err, goal.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			h.Log.Error("toggle template", zap.Error(err))
			http.Error(w, "server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": tpl.ID, "enabled": tpl.Enabled})
}
