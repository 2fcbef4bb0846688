package qr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// DefaultSize is the rendered edge length in pixels.
const DefaultSize = 256

// Renderer turns payloads into PNG images.
type Renderer struct {
	size   int
	logger *zap.Logger
}

func NewRenderer(size int, logger *zap.Logger) *Renderer {
	if size <= 0 {
		size = DefaultSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{size: size, logger: logger}
}

// Render encodes payload as a QR PNG at medium error correction.
func (r *Renderer) Render(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, r.size)
}

// RenderOrPlaceholder never fails: when encoding does, it logs and returns a
// blank placeholder image of the same size.
func (r *Renderer) RenderOrPlaceholder(payload string) (img []byte, ok bool) {
	b, err := r.Render(payload)
	if err == nil {
		return b, true
	}
	r.logger.Warn("qr: render failed, serving placeholder", zap.Error(err))
	return r.placeholder(), false
}

func (r *Renderer) placeholder() []byte {
	img := image.NewGray(image.Rect(0, 0, r.size, r.size))
	for i := range img.Pix {
		img.Pix[i] = 0xEE
	}
	// Border so the placeholder is visibly not a code.
	for i := 0; i < r.size; i++ {
		img.SetGray(i, 0, color.Gray{Y: 0x99})
		img.SetGray(i, r.size-1, color.Gray{Y: 0x99})
		img.SetGray(0, i, color.Gray{Y: 0x99})
		img.SetGray(r.size-1, i, color.Gray{Y: 0x99})
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
