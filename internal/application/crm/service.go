// Package crm implements the customer/job store contract over pluggable
// repositories. It owns the write rules: id generation, denormalised job
// fields and keeping every customer's TotalUnpaid in step with its jobs.
package crm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-crm-nosql/internal/application/aggregate"
	"github.com/go-crm-nosql/internal/domain"
	"github.com/go-crm-nosql/internal/pkg/id"
	"github.com/go-crm-nosql/internal/pkg/validate"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, in domain.CustomerInput) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, id string, p domain.CustomerPatch) (*domain.Customer, error)
	// DeleteCustomer removes the customer and every job that references it.
	DeleteCustomer(ctx context.Context, id string) error
	SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error)

	ListJobs(ctx context.Context) ([]domain.Job, error)
	GetJob(ctx context.Context, id string) (*domain.Job, error)
	CreateJob(ctx context.Context, in domain.JobInput) (*domain.Job, error)
	UpdateJob(ctx context.Context, id string, p domain.JobPatch) (*domain.Job, error)
	DeleteJob(ctx context.Context, id string) error
	JobsByCustomer(ctx context.Context, customerID string) ([]domain.Job, error)
	JobsByDate(ctx context.Context, d domain.Date) ([]domain.Job, error)
	// JobsByDateRange returns jobs scheduled between start and end inclusive.
	JobsByDateRange(ctx context.Context, start, end domain.Date) ([]domain.Job, error)
	UnpaidJobs(ctx context.Context) ([]domain.Job, error)
	DashboardStats(ctx context.Context, ref domain.Date) (*domain.DashboardStats, error)

	Export(ctx context.Context) (*domain.Snapshot, error)
	// Import replaces all data with snap. Invalid snapshots are rejected
	// with domain.ErrValidation and leave the store untouched.
	Import(ctx context.Context, snap domain.Snapshot) error
	Clear(ctx context.Context) error
}

type customerRepo interface {
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	PutCustomer(ctx context.Context, c *domain.Customer) error
	DeleteCustomer(ctx context.Context, id string) error
}

type jobRepo interface {
	ListJobs(ctx context.Context) ([]domain.Job, error)
	GetJob(ctx context.Context, id string) (*domain.Job, error)
	JobsByCustomer(ctx context.Context, customerID string) ([]domain.Job, error)
	JobsByDate(ctx context.Context, d domain.Date) ([]domain.Job, error)
	JobsByDateRange(ctx context.Context, start, end domain.Date) ([]domain.Job, error)
	// WriteJob applies a job put or delete and the resulting customer
	// totals atomically.
	WriteJob(ctx context.Context, w domain.JobWrite) error
	DeleteJobsByCustomer(ctx context.Context, customerID string) error
}

type snapshotRepo interface {
	Replace(ctx context.Context, customers []domain.Customer, jobs []domain.Job) error
	Clear(ctx context.Context) error
}

type service struct {
	customers customerRepo
	jobs      jobRepo
	snapshots snapshotRepo
	now       func() time.Time
	logger    *zap.Logger
}

type ServiceDeps struct {
	CustomerRepo customerRepo
	JobRepo      jobRepo
	SnapshotRepo snapshotRepo
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		customers: deps.CustomerRepo,
		jobs:      deps.JobRepo,
		snapshots: deps.SnapshotRepo,
		now:       now,
		logger:    logger,
	}
}

// --- customers ---

func (s *service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.customers.ListCustomers(ctx)
}

func (s *service) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return s.customers.GetCustomer(ctx, id)
}

func (s *service) CreateCustomer(ctx context.Context, in domain.CustomerInput) (*domain.Customer, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	cid := id.New()
	c := &domain.Customer{
		ID:          cid,
		Name:        in.Name,
		Phone:       in.Phone,
		Address:     in.Address,
		ServiceType: in.ServiceType,
		TotalUnpaid: decimal.Zero,
		CreatedDate: s.now().UTC(),
		QRCodeURL:   domain.CustomerQRCodeURL(cid),
	}
	if err := s.customers.PutCustomer(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) UpdateCustomer(ctx context.Context, id string, p domain.CustomerPatch) (*domain.Customer, error) {
	if err := validate.Struct(p); err != nil {
		return nil, err
	}
	c, err := s.customers.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Apply(c)
	if err := s.customers.PutCustomer(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) DeleteCustomer(ctx context.Context, id string) error {
	if _, err := s.customers.GetCustomer(ctx, id); err != nil {
		return err
	}
	if err := s.jobs.DeleteJobsByCustomer(ctx, id); err != nil {
		return fmt.Errorf("delete jobs of customer %s: %w", id, err)
	}
	return s.customers.DeleteCustomer(ctx, id)
}

func (s *service) SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error) {
	all, err := s.customers.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return all, nil
	}
	lower := strings.ToLower(q)
	out := []domain.Customer{}
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Name), lower) ||
			strings.Contains(c.Phone, q) ||
			strings.Contains(strings.ToLower(c.Address), lower) {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- jobs ---

func (s *service) ListJobs(ctx context.Context) ([]domain.Job, error) {
	return s.jobs.ListJobs(ctx)
}

func (s *service) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	return s.jobs.GetJob(ctx, id)
}

func (s *service) CreateJob(ctx context.Context, in domain.JobInput) (*domain.Job, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative: %w", domain.ErrValidation)
	}
	cust, err := s.ownerOf(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	jid := id.New()
	j := &domain.Job{
		ID:            jid,
		CustomerID:    cust.ID,
		CustomerName:  cust.Name,
		ServiceType:   in.ServiceType,
		ScheduledDate: in.ScheduledDate,
		Price:         in.Price,
		Status:        in.Status,
		PaymentStatus: in.PaymentStatus,
		Notes:         in.Notes,
		CompletedDate: in.CompletedDate,
		QRCodeURL:     domain.JobQRCodeURL(jid),
	}
	if j.ServiceType == "" {
		j.ServiceType = cust.ServiceType
	}
	if j.ScheduledDate.IsZero() {
		j.ScheduledDate = domain.DateOf(now)
	}
	if j.Status == "" {
		j.Status = domain.JobScheduled
	}
	if j.PaymentStatus == "" {
		j.PaymentStatus = domain.PaymentUnpaid
	}
	stampCompletion(j, now)

	if err := s.commit(ctx, domain.JobWrite{Put: j}, j.CustomerID); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *service) UpdateJob(ctx context.Context, id string, p domain.JobPatch) (*domain.Job, error) {
	if err := validate.Struct(p); err != nil {
		return nil, err
	}
	if p.Price != nil && p.Price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative: %w", domain.ErrValidation)
	}
	if p.ScheduledDate != nil && p.ScheduledDate.IsZero() {
		return nil, fmt.Errorf("scheduledDate must not be empty: %w", domain.ErrValidation)
	}
	j, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	prevCustomer := j.CustomerID
	if p.CustomerID != nil && *p.CustomerID != j.CustomerID {
		cust, err := s.ownerOf(ctx, *p.CustomerID)
		if err != nil {
			return nil, err
		}
		j.CustomerID = cust.ID
		j.CustomerName = cust.Name
	}
	p.Apply(j)
	stampCompletion(j, s.now())

	if err := s.commit(ctx, domain.JobWrite{Put: j}, prevCustomer, j.CustomerID); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *service) DeleteJob(ctx context.Context, id string) error {
	j, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		return err
	}
	return s.commit(ctx, domain.JobWrite{DeleteID: id}, j.CustomerID)
}

func (s *service) JobsByCustomer(ctx context.Context, customerID string) ([]domain.Job, error) {
	return s.jobs.JobsByCustomer(ctx, customerID)
}

func (s *service) JobsByDate(ctx context.Context, d domain.Date) ([]domain.Job, error) {
	return s.jobs.JobsByDate(ctx, d)
}

func (s *service) JobsByDateRange(ctx context.Context, start, end domain.Date) ([]domain.Job, error) {
	if end.Before(start) {
		return []domain.Job{}, nil
	}
	return s.jobs.JobsByDateRange(ctx, start, end)
}

func (s *service) UnpaidJobs(ctx context.Context) ([]domain.Job, error) {
	all, err := s.jobs.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Job{}
	for _, j := range all {
		if j.IsUnpaid() {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *service) DashboardStats(ctx context.Context, ref domain.Date) (*domain.DashboardStats, error) {
	if ref.IsZero() {
		ref = domain.DateOf(s.now())
	}
	all, err := s.jobs.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	stats := aggregate.DashboardStats(all, ref)
	return &stats, nil
}

// --- snapshot ---

func (s *service) Export(ctx context.Context) (*domain.Snapshot, error) {
	customers, err := s.customers.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := s.jobs.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Snapshot{Customers: customers, Jobs: jobs}, nil
}

func (s *service) Import(ctx context.Context, snap domain.Snapshot) error {
	customers, jobs, err := normalizeSnapshot(snap, s.now())
	if err != nil {
		return err
	}
	customers = aggregate.RecomputeCustomerTotals(customers, jobs)
	if err := s.snapshots.Replace(ctx, customers, jobs); err != nil {
		return fmt.Errorf("replace data: %w", err)
	}
	s.logger.Info("data imported", zap.Int("customers", len(customers)), zap.Int("jobs", len(jobs)))
	return nil
}

func (s *service) Clear(ctx context.Context) error {
	if err := s.snapshots.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("all data cleared")
	return nil
}

// --- helpers ---

// ownerOf loads the customer a job is written against. A missing customer
// is a validation failure of the job, not a lookup miss.
func (s *service) ownerOf(ctx context.Context, customerID string) (*domain.Customer, error) {
	c, err := s.customers.GetCustomer(ctx, customerID)
	if err == nil {
		return c, nil
	}
	if domain.IsNotFound(err) {
		return nil, fmt.Errorf("customer %s does not exist: %w", customerID, domain.ErrValidation)
	}
	return nil, err
}

// commit fills w.Totals with the TotalUnpaid each listed customer will have
// once w is applied, then hands the whole change to the job repository.
// Customers that no longer exist are left out.
func (s *service) commit(ctx context.Context, w domain.JobWrite, customerIDs ...string) error {
	w.Totals = make(map[string]decimal.Decimal, len(customerIDs))
	for _, cid := range customerIDs {
		if cid == "" {
			continue
		}
		if _, done := w.Totals[cid]; done {
			continue
		}
		if _, err := s.customers.GetCustomer(ctx, cid); err != nil {
			if domain.IsNotFound(err) {
				continue
			}
			return err
		}
		jobs, err := s.jobs.JobsByCustomer(ctx, cid)
		if err != nil {
			return err
		}
		w.Totals[cid] = aggregate.UnpaidTotal(cid, applyWrite(jobs, w))
	}
	if err := s.jobs.WriteJob(ctx, w); err != nil {
		return fmt.Errorf("write job: %w", err)
	}
	return nil
}

// applyWrite returns jobs as they will be after w.
func applyWrite(jobs []domain.Job, w domain.JobWrite) []domain.Job {
	out := make([]domain.Job, 0, len(jobs)+1)
	for _, j := range jobs {
		if j.ID == w.DeleteID || (w.Put != nil && j.ID == w.Put.ID) {
			continue
		}
		out = append(out, j)
	}
	if w.Put != nil {
		out = append(out, *w.Put)
	}
	return out
}

// stampCompletion records when a job reached completed if the caller did
// not say.
func stampCompletion(j *domain.Job, now time.Time) {
	if j.Status == domain.JobCompleted && j.CompletedDate == nil {
		t := now.UTC()
		j.CompletedDate = &t
	}
}
