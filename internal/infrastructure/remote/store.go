package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-crm-nosql/internal/domain"
)

func (c *Client) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	out := []domain.Customer{}
	if err := c.call(ctx, "ListCustomers", http.MethodGet, "/customers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	var out domain.Customer
	if err := c.call(ctx, "GetCustomer", http.MethodGet, "/customers/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCustomer(ctx context.Context, in domain.CustomerInput) (*domain.Customer, error) {
	var out domain.Customer
	if err := c.call(ctx, "CreateCustomer", http.MethodPost, "/customers", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, id string, p domain.CustomerPatch) (*domain.Customer, error) {
	var out domain.Customer
	if err := c.call(ctx, "UpdateCustomer", http.MethodPut, "/customers/"+url.PathEscape(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCustomer(ctx context.Context, id string) error {
	return c.call(ctx, "DeleteCustomer", http.MethodDelete, "/customers/"+url.PathEscape(id), nil, nil)
}

func (c *Client) SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error) {
	out := []domain.Customer{}
	path := "/customers?" + url.Values{"q": {query}}.Encode()
	if err := c.call(ctx, "SearchCustomers", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListJobs(ctx context.Context) ([]domain.Job, error) {
	return c.jobs(ctx, "ListJobs", "/jobs")
}

func (c *Client) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	var out domain.Job
	if err := c.call(ctx, "GetJob", http.MethodGet, "/jobs/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateJob(ctx context.Context, in domain.JobInput) (*domain.Job, error) {
	var out domain.Job
	if err := c.call(ctx, "CreateJob", http.MethodPost, "/jobs", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateJob(ctx context.Context, id string, p domain.JobPatch) (*domain.Job, error) {
	var out domain.Job
	if err := c.call(ctx, "UpdateJob", http.MethodPut, "/jobs/"+url.PathEscape(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteJob(ctx context.Context, id string) error {
	return c.call(ctx, "DeleteJob", http.MethodDelete, "/jobs/"+url.PathEscape(id), nil, nil)
}

func (c *Client) JobsByCustomer(ctx context.Context, customerID string) ([]domain.Job, error) {
	return c.jobs(ctx, "JobsByCustomer", "/customers/"+url.PathEscape(customerID)+"/jobs")
}

func (c *Client) JobsByDate(ctx context.Context, d domain.Date) ([]domain.Job, error) {
	return c.jobs(ctx, "JobsByDate", "/jobs?"+url.Values{"date": {d.String()}}.Encode())
}

func (c *Client) JobsByDateRange(ctx context.Context, start, end domain.Date) ([]domain.Job, error) {
	q := url.Values{"start": {start.String()}, "end": {end.String()}}
	return c.jobs(ctx, "JobsByDateRange", "/jobs?"+q.Encode())
}

func (c *Client) UnpaidJobs(ctx context.Context) ([]domain.Job, error) {
	return c.jobs(ctx, "UnpaidJobs", "/jobs/unpaid")
}

func (c *Client) DashboardStats(ctx context.Context, ref domain.Date) (*domain.DashboardStats, error) {
	path := "/dashboard/stats"
	if !ref.IsZero() {
		path += "?" + url.Values{"date": {ref.String()}}.Encode()
	}
	var out domain.DashboardStats
	if err := c.call(ctx, "DashboardStats", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Export(ctx context.Context) (*domain.Snapshot, error) {
	var out domain.Snapshot
	if err := c.call(ctx, "Export", http.MethodGet, "/data/export", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Import(ctx context.Context, snap domain.Snapshot) error {
	return c.call(ctx, "Import", http.MethodPost, "/data/import", snap, nil)
}

func (c *Client) Clear(ctx context.Context) error {
	return c.call(ctx, "Clear", http.MethodDelete, "/data", nil, nil)
}

func (c *Client) jobs(ctx context.Context, op, path string) ([]domain.Job, error) {
	out := []domain.Job{}
	if err := c.call(ctx, op, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
