package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-crm-nosql/internal/application/notification"
)

// NotificationHandler handles the derived notification feed.
type NotificationHandler struct {
	svc notification.Service
	now func() time.Time
}

func NewNotificationHandler(svc notification.Service, now func() time.Time) *NotificationHandler {
	if now == nil {
		now = time.Now
	}
	return &NotificationHandler{svc: svc, now: now}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Active(r.Context(), h.now())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Dismiss(r.Context(), chi.URLParam(r, "id"), h.now()); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "notification dismissed"})
}

func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearAll(r.Context(), h.now()); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "notifications cleared"})
}

// Digest sends the current notifications through the configured channels.
func (h *NotificationHandler) Digest(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Digest(r.Context(), h.now())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountEnvelope{Count: n})
}
