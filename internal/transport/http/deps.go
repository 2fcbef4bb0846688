package http

import (
	"time"

	"github.com/go-crm-nosql/internal/application/auth"
	"github.com/go-crm-nosql/internal/application/crm"
	"github.com/go-crm-nosql/internal/application/notification"
	"github.com/go-crm-nosql/internal/application/qr"
	jwtinfra "github.com/go-crm-nosql/internal/infrastructure/jwt"
	"github.com/go-crm-nosql/internal/infrastructure/observability"
	"go.uber.org/zap"
)

// Deps holds the services the router exposes.
type Deps struct {
	Store         crm.Service
	Notifications notification.Service
	// Auth and JWTProvider are nil when no signing keys are configured; the
	// API is then served without authentication.
	Auth        auth.Service
	JWTProvider *jwtinfra.Provider
	QRCodec     *qr.Codec
	QRRenderer  *qr.Renderer
	// QRPublisher is nil when no S3 bucket is configured.
	QRPublisher *qr.Publisher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}
