package handler

import (
	"net/http"

	"go.uber.org/zap"

	"levelup/internal/category"
)

type CategoryHandler struct {
	Svc *category.Service
	Log *zap.Logger
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Svc.List(r.Context())
	if err != nil {
		h.Log.Error("list categories", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
