// Package provider selects the entity store backend once per process.
// Everything above it depends on Store only.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-crm-nosql/internal/application/crm"
	"github.com/go-crm-nosql/internal/config"
	"github.com/go-crm-nosql/internal/domain"
	"github.com/go-crm-nosql/internal/infrastructure/dynamo"
	"github.com/go-crm-nosql/internal/infrastructure/local"
	"github.com/go-crm-nosql/internal/infrastructure/remote"
	"go.uber.org/zap"
)

// Store is the entity store contract shared by every backend.
type Store = crm.Service

// DismissalLog persists the notification dismissal log.
type DismissalLog interface {
	ListDismissals(ctx context.Context) ([]domain.Dismissal, error)
	AddDismissals(ctx context.Context, ds []domain.Dismissal) error
	PruneDismissals(ctx context.Context, cutoff domain.Date) error
}

// UserStore holds owner accounts. It is nil for the remote backend, which
// authenticates against the server instead.
type UserStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

var (
	_ Store        = (*remote.Client)(nil)
	_ DismissalLog = (*local.DismissalRepo)(nil)
	_ DismissalLog = (*dynamo.DismissalRepo)(nil)
	_ UserStore    = (*local.UserRepo)(nil)
	_ UserStore    = (*dynamo.UserRepo)(nil)
)

// Provider is the wired backend.
type Provider struct {
	Kind       string
	Store      Store
	Dismissals DismissalLog
	Users      UserStore

	closers []func() error
}

// Close releases backend resources.
func (p *Provider) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// New builds the backend named by cfg.DataProvider.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var (
		p   *Provider
		err error
	)
	switch cfg.DataProvider {
	case config.ProviderLocal:
		p, err = newLocal(ctx, cfg, logger)
	case config.ProviderDynamo:
		p, err = newDynamo(ctx, cfg, logger)
	case config.ProviderRemote:
		p, err = newRemote(ctx, cfg, logger)
	}
	if err != nil {
		return nil, fmt.Errorf("%s provider: %w", cfg.DataProvider, err)
	}
	p.Kind = cfg.DataProvider
	logger.Info("provider: ready", zap.String("kind", p.Kind))
	return p, nil
}

func newLocal(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Provider, error) {
	db, err := local.Open(ctx, cfg.LocalDBPath)
	if err != nil {
		return nil, err
	}
	return &Provider{
		Store: crm.NewService(crm.ServiceDeps{
			CustomerRepo: local.NewCustomerRepo(db),
			JobRepo:      local.NewJobRepo(db),
			SnapshotRepo: local.NewSnapshotRepo(db),
			Logger:       logger,
		}),
		Dismissals: local.NewDismissalRepo(db),
		Users:      local.NewUserRepo(db),
		closers:    []func() error{db.Close},
	}, nil
}

func newDynamo(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Provider, error) {
	client, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	dynamo.Bootstrap(ctx, client, cfg.DynamoTables, logger)

	customers := dynamo.NewCustomerRepo(client, cfg.DynamoTables.Customers)
	jobs := dynamo.NewJobRepo(client, cfg.DynamoTables.Jobs, cfg.DynamoTables.Customers)
	return &Provider{
		Store: crm.NewService(crm.ServiceDeps{
			CustomerRepo: customers,
			JobRepo:      jobs,
			SnapshotRepo: dynamo.NewSnapshotRepo(customers, jobs),
			Logger:       logger,
		}),
		Dismissals: dynamo.NewDismissalRepo(client, cfg.DynamoTables.Dismissals, cfg.NotificationRetentionDays),
		Users:      dynamo.NewUserRepo(client, cfg.DynamoTables.Users),
	}, nil
}

// newRemote talks to the API for entities and keeps the dismissal log in
// the local database, since dismissals are per device.
func newRemote(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Provider, error) {
	client := remote.NewClient(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.RemoteAPIURL, cfg.RemoteAPIToken, logger)
	if cfg.RemoteAPIToken == "" && cfg.RemoteAPIEmail != "" {
		if _, err := client.Login(ctx, cfg.RemoteAPIEmail, cfg.RemoteAPIPassword); err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
	}
	db, err := local.Open(ctx, cfg.LocalDBPath)
	if err != nil {
		return nil, err
	}
	return &Provider{
		Store:      client,
		Dismissals: local.NewDismissalRepo(db),
		closers:    []func() error{db.Close},
	}, nil
}
