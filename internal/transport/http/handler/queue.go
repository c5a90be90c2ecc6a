package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/workstation-tools/internal/application/queue"
	"github.com/workstation-tools/internal/domain"
	"github.com/workstation-tools/internal/pkg/validate"
	"github.com/workstation-tools/internal/transport/http/middleware"
)

// QueueHandler exposes the download queue.
type QueueHandler struct {
	svc queue.Service
}

func NewQueueHandler(svc queue.Service) *QueueHandler { return &QueueHandler{svc: svc} }

func (h *QueueHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), r.URL.Query().Get("errors") == "true")
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if items == nil {
		items = []domain.DownloadItem{}
	}
	writeJSON(w, http.StatusOK, QueueEnvelope{Count: len(items), Data: items})
}

func (h *QueueHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req domain.EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	item, err := h.svc.Add(r.Context(), req.URL, req.Name)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	slog.Info("queued download", "id", item.ID, "url", item.URL, "client", middleware.Client(r.Context()))
	writeJSON(w, http.StatusCreated, item)
}

func (h *QueueHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveByID(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "item removed"})
}
