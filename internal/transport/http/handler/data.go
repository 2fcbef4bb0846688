package handler

import (
	"net/http"

	"github.com/go-crm-nosql/internal/application/crm"
	"github.com/go-crm-nosql/internal/domain"
)

// DataHandler handles bulk export, import and wipe.
type DataHandler struct {
	store crm.Service
}

func NewDataHandler(store crm.Service) *DataHandler { return &DataHandler{store: store} }

func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Export(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="crm-export.json"`)
	writeJSON(w, http.StatusOK, snap)
}

func (h *DataHandler) Import(w http.ResponseWriter, r *http.Request) {
	var snap domain.Snapshot
	if !decodeBody(w, r, &snap) {
		return
	}
	if err := h.store.Import(r.Context(), snap); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "data imported"})
}

func (h *DataHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "data cleared"})
}
