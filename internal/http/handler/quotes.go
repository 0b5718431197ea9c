package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"levelup/internal/quote"
)

type QuoteHandler struct {
	Svc         *quote.Service
	Log         *zap.Logger
	DefaultLang string
}

func (h *QuoteHandler) Today(w http.ResponseWriter, r *http.Request) {
	lang := strings.TrimSpace(strings.ToLower(r.URL.Query().Get("lang")))
	if lang == "" {
		lang = h.DefaultLang
	}

	q, err := h.Svc.Today(r.Context(), lang, time.Now())
	if err != nil {
		if errors.Is(err, quote.ErrNoQuote) {
			http.Error(w, "no active quote for this language", http.StatusNotFound)
			return
		}
		h.Log.Error("quote of the day", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"text":     q.Text,
		"author":   q.Author,
		"language": q.Language,
	})
}
