package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-crm-nosql/internal/application/qr"
	"github.com/go-crm-nosql/internal/config"
	"github.com/go-crm-nosql/internal/infrastructure/observability"
	"github.com/go-crm-nosql/internal/transport/http/handler"
	appmiddleware "github.com/go-crm-nosql/internal/transport/http/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds the
// lifetime of background helpers such as the rate limiter's sweeper.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(observability.ZapLoggerMiddleware(logger, metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := func(next http.Handler) http.Handler { return next }
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		logger.Warn("router: no JWT provider, API routes are unauthenticated")
	}

	// 5 requests/second, burst of 10, on the credential endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)

	healthH := handler.NewHealthHandler()
	customerH := handler.NewCustomerHandler(deps.Store)
	jobH := handler.NewJobHandler(deps.Store, deps.Now)
	dataH := handler.NewDataHandler(deps.Store)
	notifH := handler.NewNotificationHandler(deps.Notifications, deps.Now)
	renderer := deps.QRRenderer
	if renderer == nil {
		renderer = qr.NewRenderer(qr.DefaultSize, logger)
	}
	codec := deps.QRCodec
	if codec == nil {
		codec = qr.NewCodec(deps.Store)
	}
	qrH := handler.NewQRHandler(codec, renderer, deps.QRPublisher)

	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		if deps.Auth != nil {
			authH := handler.NewAuthHandler(deps.Auth)
			r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
			r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
			r.With(authMw).Get("/auth/me", authH.Me)
		}

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/customers", customerH.List)
			r.Post("/customers", customerH.Create)
			r.Get("/customers/{id}", customerH.Get)
			r.Put("/customers/{id}", customerH.Update)
			r.Delete("/customers/{id}", customerH.Delete)
			r.Get("/customers/{id}/jobs", customerH.Jobs)
			r.Get("/customers/{id}/qr", qrH.Image(qr.KindCustomer))
			r.Post("/customers/{id}/qr/publish", qrH.Publish(qr.KindCustomer))

			r.Get("/jobs", jobH.List)
			r.Post("/jobs", jobH.Create)
			r.Get("/jobs/today", jobH.Today)
			r.Get("/jobs/unpaid", jobH.Unpaid)
			r.Get("/jobs/{id}", jobH.Get)
			r.Put("/jobs/{id}", jobH.Update)
			r.Delete("/jobs/{id}", jobH.Delete)
			r.Get("/jobs/{id}/qr", qrH.Image(qr.KindJob))
			r.Post("/jobs/{id}/qr/publish", qrH.Publish(qr.KindJob))

			r.Get("/dashboard/stats", jobH.Stats)

			r.Get("/notifications", notifH.List)
			r.Post("/notifications/clear", notifH.Clear)
			r.Post("/notifications/digest", notifH.Digest)
			r.Post("/notifications/{id}/dismiss", notifH.Dismiss)

			r.Get("/data/export", dataH.Export)
			r.Post("/data/import", dataH.Import)
			r.Delete("/data", dataH.Clear)
		})
	})

	return r
}
