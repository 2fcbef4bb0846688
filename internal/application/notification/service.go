package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-crm-nosql/internal/domain"
	"go.uber.org/zap"
)

// DefaultRetentionDays bounds the dismissal log.
const DefaultRetentionDays = 30

type Service interface {
	// Active returns the notifications for now minus the kinds dismissed today.
	Active(ctx context.Context, now time.Time) ([]domain.NotificationItem, error)
	// Dismiss suppresses kind id for the rest of now's calendar day.
	Dismiss(ctx context.Context, id string, now time.Time) error
	// ClearAll dismisses every currently active notification.
	ClearAll(ctx context.Context, now time.Time) error
	// Digest sends the active notifications through every channel and
	// returns how many were included.
	Digest(ctx context.Context, now time.Time) (int, error)
}

type entitySource interface {
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	ListJobs(ctx context.Context) ([]domain.Job, error)
}

type dismissalRepo interface {
	ListDismissals(ctx context.Context) ([]domain.Dismissal, error)
	AddDismissals(ctx context.Context, ds []domain.Dismissal) error
	// PruneDismissals drops entries dated strictly before cutoff.
	PruneDismissals(ctx context.Context, cutoff domain.Date) error
}

// digestRecorder counts digest runs by outcome: sent, empty or failed.
type digestRecorder interface {
	IncrDigest(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) IncrDigest(string) {}

type service struct {
	source        entitySource
	dismissals    dismissalRepo
	channels      []Channel
	retentionDays int
	recorder      digestRecorder
	logger        *zap.Logger
}

type ServiceDeps struct {
	Source        entitySource
	Dismissals    dismissalRepo
	Channels      []Channel
	RetentionDays int
	// Recorder is optional.
	Recorder digestRecorder
	Logger   *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	retention := deps.RetentionDays
	if retention < 1 {
		retention = DefaultRetentionDays
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var recorder digestRecorder = nopRecorder{}
	if deps.Recorder != nil {
		recorder = deps.Recorder
	}
	return &service{
		source:        deps.Source,
		dismissals:    deps.Dismissals,
		channels:      deps.Channels,
		retentionDays: retention,
		recorder:      recorder,
		logger:        logger,
	}
}

func (s *service) Active(ctx context.Context, now time.Time) ([]domain.NotificationItem, error) {
	customers, err := s.source.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := s.source.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	all := Generate(customers, jobs, now)

	dismissed, err := s.dismissals.ListDismissals(ctx)
	if err != nil {
		// An unreadable log shows everything rather than nothing.
		s.logger.Warn("notifications: dismissal log unavailable", zap.Error(err))
		return all, nil
	}
	return Suppress(all, dismissed, domain.DateOf(now)), nil
}

func (s *service) Dismiss(ctx context.Context, id string, now time.Time) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("notification id is required: %w", domain.ErrValidation)
	}
	return s.record(ctx, []string{id}, domain.DateOf(now))
}

func (s *service) ClearAll(ctx context.Context, now time.Time) error {
	active, err := s.Active(ctx, now)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(active))
	for _, n := range active {
		if n.Dismissible {
			ids = append(ids, n.ID)
		}
	}
	return s.record(ctx, ids, domain.DateOf(now))
}

func (s *service) record(ctx context.Context, ids []string, today domain.Date) error {
	if len(ids) > 0 {
		ds := make([]domain.Dismissal, len(ids))
		for i, id := range ids {
			ds[i] = domain.Dismissal{ID: id, Date: today}
		}
		if err := s.dismissals.AddDismissals(ctx, ds); err != nil {
			return fmt.Errorf("record dismissal: %w", err)
		}
	}
	if err := s.dismissals.PruneDismissals(ctx, today.AddDays(-s.retentionDays)); err != nil {
		s.logger.Warn("notifications: prune dismissal log failed", zap.Error(err))
	}
	return nil
}

func (s *service) Digest(ctx context.Context, now time.Time) (int, error) {
	active, err := s.Active(ctx, now)
	if err != nil {
		s.recorder.IncrDigest("failed")
		return 0, err
	}
	if len(active) == 0 || len(s.channels) == 0 {
		s.recorder.IncrDigest("empty")
		return len(active), nil
	}
	subject, body := RenderDigest(active, domain.DateOf(now))
	var errs []error
	for _, ch := range s.channels {
		if err := ch.Deliver(ctx, subject, body); err != nil {
			s.logger.Error("notifications: digest delivery failed", zap.String("channel", ch.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
		}
	}
	if len(errs) > 0 {
		s.recorder.IncrDigest("failed")
	} else {
		s.recorder.IncrDigest("sent")
	}
	return len(active), errors.Join(errs...)
}

// Suppress removes the notifications whose kind was dismissed on today.
func Suppress(items []domain.NotificationItem, dismissed []domain.Dismissal, today domain.Date) []domain.NotificationItem {
	hidden := make(map[string]bool, len(dismissed))
	for _, d := range dismissed {
		if d.Date.Equal(today) {
			hidden[d.ID] = true
		}
	}
	out := make([]domain.NotificationItem, 0, len(items))
	for _, n := range items {
		if !hidden[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

// RenderDigest formats notifications as a plain-text summary.
func RenderDigest(items []domain.NotificationItem, day domain.Date) (subject, body string) {
	subject = fmt.Sprintf("CRM digest for %s", day)
	var b strings.Builder
	for _, n := range items {
		fmt.Fprintf(&b, "- %s: %s\n", n.Title, n.Message)
	}
	return subject, b.String()
}
