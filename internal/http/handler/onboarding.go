package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"levelup/internal/auth"
	"levelup/internal/onboarding"
)

type OnboardingHandler struct {
	Svc         *onboarding.Service
	Log         *zap.Logger
	DefaultLang string
}

func (h *OnboardingHandler) lang(raw string) string {
	l := strings.TrimSpace(strings.ToLower(raw))
	if l == "" {
		return h.DefaultLang
	}
	return l
}

type questionDTO struct {
	ID        uint64 `json:"id"`
	Code      string `json:"code"`
	Question  string `json:"question"`
	SortOrder int    `json:"sort_order"`
}

// Questions lists the active questionnaire. Refused with 409 once the
// resolved user has finished onboarding.
func (h *OnboardingHandler) Questions(w http.ResponseWriter, r *http.Request) {
	lang := h.lang(r.URL.Query().Get("lang"))

	// resolve the user from the token when present, else allow
	// ?user_id= for fronts without the auth middleware
	uid, _ := auth.UserIDFromContext(r.Context())
	if uid == 0 {
		if v := r.URL.Query().Get("user_id"); v != "" {
			uid, _ = strconv.ParseUint(v, 10, 64)
		}
	}

	rows, err := h.Svc.Questions(r.Context(), lang, uid)
	if err != nil {
		if errors.Is(err, onboarding.ErrAlreadyCompleted) {
			http.Error(w, "onboarding already completed", http.StatusConflict)
			return
		}
		h.Log.Error("list questions", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	items := make([]questionDTO, 0, len(rows))
	for _, q := range rows {
		items = append(items, questionDTO{ID: q.ID, Code: q.Code, Question: q.Text, SortOrder: q.SortOrder})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"language": lang,
		"count":    len(items),
		"items":    items,
	})
}

type answerEntry struct {
	QuestionID uint64 `json:"question_id"`
	Value      int    `json:"value"`
}

type submitAnswersReq struct {
	UserID   uint64        `json:"user_id"`
	Language string        `json:"language"`
	Answers  []answerEntry `json:"answers" validate:"required,min=1"`
}

func (h *OnboardingHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req submitAnswersReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "answers required", http.StatusBadRequest)
		return
	}

	uid, _ := auth.UserIDFromContext(r.Context())
	if uid == 0 {
		uid = req.UserID
	}
	if uid == 0 {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}

	answers := make([]onboarding.AnswerInput, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, onboarding.AnswerInput{QuestionID: a.QuestionID, Value: a.Value})
	}

	res, err := h.Svc.SubmitAnswers(r.Context(), uid, h.lang(req.Language), answers, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, onboarding.ErrUserNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		case errors.Is(err, onboarding.ErrAlreadyCompleted):
			http.Error(w, "onboarding already completed", http.StatusConflict)
		case errors.Is(err, onboarding.ErrInsufficientAnswers):
			http.Error(w, "at least 12 valid answers are required", http.StatusBadRequest)
		default:
			h.Log.Error("submit answers", zap.Error(err))
			http.Error(w, "server error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"onboarding_done": true,
		"user_id":         res.UserID,
		"priorities":      res.Priorities,
	})
}
