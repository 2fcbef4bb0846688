package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-crm-nosql/internal/application/qr"
)

// QRHandler serves QR images and publishes them to object storage.
type QRHandler struct {
	codec     *qr.Codec
	renderer  *qr.Renderer
	publisher *qr.Publisher
}

// NewQRHandler builds the handler. publisher may be nil when no bucket is
// configured; Publish then answers 503.
func NewQRHandler(codec *qr.Codec, renderer *qr.Renderer, publisher *qr.Publisher) *QRHandler {
	return &QRHandler{codec: codec, renderer: renderer, publisher: publisher}
}

// Image returns a handler serving the PNG for kind. A deleted entity is a
// 404; a rendering failure serves a placeholder image.
func (h *QRHandler) Image(kind qr.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := h.codec.Payload(r.Context(), kind, chi.URLParam(r, "id"))
		if err != nil {
			httpError(w, err)
			return
		}
		img, ok := h.renderer.RenderOrPlaceholder(payload)
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(img)))
		if !ok {
			w.Header().Set("X-QR-Placeholder", "true")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(img)
	}
}

func (h *QRHandler) Publish(kind qr.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.publisher == nil {
			writeError(w, http.StatusServiceUnavailable, "qr publishing is not configured")
			return
		}
		url, err := h.publisher.Publish(r.Context(), kind, chi.URLParam(r, "id"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, URLEnvelope{URL: url})
	}
}
