package qr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Publisher renders an entity's QR code, uploads it and returns a link that
// can be printed or texted to the customer.
type Publisher struct {
	codec    *Codec
	renderer *Renderer
	store    objectStore
	ttl      time.Duration
	logger   *zap.Logger
}

type PublisherDeps struct {
	Codec    *Codec
	Renderer *Renderer
	Store    objectStore
	TTL      time.Duration
	Logger   *zap.Logger
}

func NewPublisher(deps PublisherDeps) *Publisher {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		codec:    deps.Codec,
		renderer: deps.Renderer,
		store:    deps.Store,
		ttl:      deps.TTL,
		logger:   logger,
	}
}

// ObjectKey is where the image for kind/id is stored.
func ObjectKey(kind Kind, id string) string {
	return fmt.Sprintf("qr/%s/%s.png", kind, id)
}

// Publish uploads the current QR image for kind/id and returns a presigned
// URL valid for the configured TTL.
func (p *Publisher) Publish(ctx context.Context, kind Kind, id string) (string, error) {
	payload, err := p.codec.Payload(ctx, kind, id)
	if err != nil {
		return "", err
	}
	img, err := p.renderer.Render(payload)
	if err != nil {
		return "", fmt.Errorf("render qr: %w", err)
	}
	key := ObjectKey(kind, id)
	if _, err := p.store.Upload(ctx, key, bytes.NewReader(img), "image/png"); err != nil {
		return "", err
	}
	url, err := p.store.PresignedURL(ctx, key, p.ttl)
	if err != nil {
		return "", err
	}
	p.logger.Info("qr: published", zap.String("key", key))
	return url, nil
}
