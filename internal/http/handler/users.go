package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"levelup/internal/auth"
	"levelup/internal/progression"
	"levelup/internal/user"
)

type UserHandler struct {
	Svc *user.Service
	Log *zap.Logger
}

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

type profileDTO struct {
	ID             uint64                   `json:"id"`
	Email          string                   `json:"email"`
	Username       string                   `json:"username"`
	XP             int                      `json:"xp"`
	Level          int                      `json:"level"`
	OnboardingDone bool                     `json:"onboarding_done"`
	XPProgress     progression.ProgressInfo `json:"xp_progress"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

func profileToDTO(p *user.Profile) profileDTO {
	return profileDTO{
		ID:             p.User.ID,
		Email:          p.User.Email,
		Username:       p.User.Username,
		XP:             p.User.XP,
		Level:          p.User.Level,
		OnboardingDone: p.User.OnboardingDone,
		XPProgress:     p.XPProgress,
		CreatedAt:      p.User.CreatedAt,
		UpdatedAt:      p.User.UpdatedAt,
	}
}

func pathID(r *http.Request, name string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.Log.Error("get user", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, profileToDTO(p))
}

// Me resolves the authenticated user's own profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	p, err := h.Svc.Get(r.Context(), uid)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.Log.Error("get me", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, profileToDTO(p))
}

type patchUserReq struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
}

func (h *UserHandler) Patch(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if uid != id {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req patchUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Email == nil && req.Username == nil {
		http.Error(w, "nothing to update", http.StatusBadRequest)
		return
	}

	in := user.UpdateProfileInput{}
	if req.Email != nil {
		e := strings.TrimSpace(strings.ToLower(*req.Email))
		if !emailRe.MatchString(e) {
			http.Error(w, "invalid email", http.StatusBadRequest)
			return
		}
		in.Email = &e
	}
	if req.Username != nil {
		n := strings.TrimSpace(*req.Username)
		if n == "" || len(n) > 40 || !usernameRe.MatchString(n) {
			http.Error(w, "invalid username", http.StatusBadRequest)
			return
		}
		in.Username = &n
	}

	p, err := h.Svc.UpdateProfile(r.Context(), id, in)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		case errors.Is(err, user.ErrEmailTaken), errors.Is(err, user.ErrUsernameTaken):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.Log.Error("patch user", zap.Error(err))
			http.Error(w, "server error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, profileToDTO(p))
}

func (h *UserHandler) Priorities(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	rows, err := h.Svc.Priorities(r.Context(), id)
	if err != nil {
		h.Log.Error("list priorities", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

type reorderReq struct {
	OrderedCategoryIDs []uint64 `json:"ordered_category_ids" validate:"required,min=1"`
}

func (h *UserHandler) ReorderPriorities(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if uid != id {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req reorderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "ordered_category_ids required", http.StatusBadRequest)
		return
	}

	n, err := h.Svc.ReorderPriorities(r.Context(), id, req.OrderedCategoryIDs)
	if err != nil {
		if errors.Is(err, user.ErrNoCategories) {
			http.Error(w, "no valid category ids", http.StatusBadRequest)
			return
		}
		h.Log.Error("reorder priorities", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "count": n})
}
