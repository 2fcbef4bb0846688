package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-crm-nosql/internal/application/auth"
	"github.com/go-crm-nosql/internal/application/notification"
	"github.com/go-crm-nosql/internal/application/qr"
	"github.com/go-crm-nosql/internal/config"
	jwtinfra "github.com/go-crm-nosql/internal/infrastructure/jwt"
	"github.com/go-crm-nosql/internal/infrastructure/observability"
	s3infra "github.com/go-crm-nosql/internal/infrastructure/s3"
	"github.com/go-crm-nosql/internal/infrastructure/smtp"
	"github.com/go-crm-nosql/internal/infrastructure/sns"
	"github.com/go-crm-nosql/internal/provider"
	transporthttp "github.com/go-crm-nosql/internal/transport/http"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := observability.NewLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	if envErr != nil {
		logger.Info("no .env file found, reading from environment")
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prov, err := provider.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s provider: %w", cfg.DataProvider, err)
	}
	defer func() {
		if err := prov.Close(); err != nil {
			logger.Warn("close provider", zap.Error(err))
		}
	}()

	metrics := observability.NewMetrics()
	deps := &transporthttp.Deps{
		Store:      prov.Store,
		QRCodec:    qr.NewCodec(prov.Store),
		QRRenderer: qr.NewRenderer(qr.DefaultSize, logger),
		Metrics:    metrics,
		Logger:     logger,
		Now:        time.Now,
	}

	// JWT provider (optional, the API runs unauthenticated without keys).
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		deps.JWTProvider = p
		if prov.Users != nil {
			deps.Auth = auth.NewService(auth.ServiceDeps{
				UserRepo:    prov.Users,
				JWTProvider: p,
				Logger:      logger,
			})
		}
	} else {
		logger.Warn("JWT provider not available, serving without authentication", zap.Error(err))
	}

	notifications := notification.NewService(notification.ServiceDeps{
		Source:        prov.Store,
		Dismissals:    prov.Dismissals,
		Channels:      digestChannels(ctx, cfg, logger),
		RetentionDays: cfg.NotificationRetentionDays,
		Recorder:      metrics,
		Logger:        logger,
	})
	deps.Notifications = notifications

	scheduler, err := notification.NewScheduler(notifications, cfg.DigestCron, logger)
	if err != nil {
		return fmt.Errorf("digest schedule: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	if cfg.S3BucketName != "" {
		if client, err := s3infra.NewClient(ctx, cfg); err == nil {
			deps.QRPublisher = qr.NewPublisher(qr.PublisherDeps{
				Codec:    deps.QRCodec,
				Renderer: deps.QRRenderer,
				Store:    s3infra.NewStore(client, cfg.S3BucketName),
				TTL:      cfg.QRURLTTL,
				Logger:   logger,
			})
		} else {
			logger.Warn("S3 not available, QR publishing disabled", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.AppEnv),
			zap.String("provider", prov.Kind))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// digestChannels builds a delivery channel for every configured recipient.
func digestChannels(ctx context.Context, cfg *config.Config, logger *zap.Logger) []notification.Channel {
	var channels []notification.Channel
	if cfg.DigestPhone != "" {
		if sender, err := sns.NewSender(ctx, cfg); err == nil {
			channels = append(channels, notification.SMSChannel(sender, cfg.DigestPhone))
		} else {
			logger.Warn("SNS sender not available, SMS digest disabled", zap.Error(err))
		}
	}
	if cfg.DigestEmail != "" {
		channels = append(channels, notification.EmailChannel(smtp.NewMailer(cfg), cfg.DigestEmail))
	}
	if len(channels) == 0 {
		logger.Info("no digest recipients configured")
	}
	return channels
}
