package dynamo

import (
	"context"
	"testing"
	"time"

	"github.com/go-crm-nosql/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepo(newFakeAPI(), "customers")
	created := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.PutCustomer(ctx, &domain.Customer{
		ID: "c1", Name: "Jane", Phone: "555-0100", TotalUnpaid: dec("42.75"), CreatedDate: created,
	}))

	got, err := repo.GetCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Name)
	assert.Equal(t, "42.75", got.TotalUnpaid.String())
	assert.Equal(t, "/customer/c1", got.QRCodeURL)
	assert.True(t, created.Equal(got.CreatedDate))

	_, err = repo.GetCustomer(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobRepo_WriteJobUpdatesTotalsInOneTransaction(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	customers, jobs := NewCustomerRepo(api, "customers"), NewJobRepo(api, "jobs", "customers")
	require.NoError(t, customers.PutCustomer(ctx, &domain.Customer{ID: "c1", Name: "Jane"}))

	j := domain.Job{ID: "j1", CustomerID: "c1", ScheduledDate: domain.NewDate(2026, 10, 15), Price: dec("100")}
	require.NoError(t, jobs.WriteJob(ctx, domain.JobWrite{
		Put:    &j,
		Totals: map[string]decimal.Decimal{"c1": dec("100")},
	}))
	assert.Equal(t, 1, api.transactCalls)

	got, _ := customers.GetCustomer(ctx, "c1")
	assert.Equal(t, "100", got.TotalUnpaid.String())
	assert.Equal(t, "Jane", got.Name)

	require.NoError(t, jobs.WriteJob(ctx, domain.JobWrite{
		DeleteID: "j1",
		Totals:   map[string]decimal.Decimal{"c1": decimal.Zero},
	}))
	_, err := jobs.GetJob(ctx, "j1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	got, _ = customers.GetCustomer(ctx, "c1")
	assert.True(t, got.TotalUnpaid.IsZero())
}

func TestJobRepo_WriteJobMissingCustomerWritesNothing(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	customers, jobs := NewCustomerRepo(api, "customers"), NewJobRepo(api, "jobs", "customers")
	require.NoError(t, customers.PutCustomer(ctx, &domain.Customer{ID: "c1", Name: "Jane"}))

	j := domain.Job{ID: "j1", CustomerID: "c1", ScheduledDate: domain.NewDate(2026, 10, 15), Price: dec("40")}
	err := jobs.WriteJob(ctx, domain.JobWrite{
		Put:    &j,
		Totals: map[string]decimal.Decimal{"c1": dec("40"), "ghost": decimal.Zero},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = jobs.GetJob(ctx, "j1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	got, _ := customers.GetCustomer(ctx, "c1")
	assert.True(t, got.TotalUnpaid.IsZero())
}

func TestJobRepo_Indexes(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepo(newFakeAPI(), "jobs", "customers")
	d := domain.NewDate(2026, 10, 15)
	done := time.Date(2026, 10, 15, 16, 0, 0, 0, time.UTC)
	for _, j := range []domain.Job{
		{ID: "j1", CustomerID: "c1", ScheduledDate: d, Price: dec("50"), Status: domain.JobCompleted, PaymentStatus: domain.PaymentUnpaid, CompletedDate: &done},
		{ID: "j2", CustomerID: "c1", ScheduledDate: d.AddDays(2), Price: dec("20")},
		{ID: "j3", CustomerID: "c2", ScheduledDate: d.AddDays(10), Price: dec("5")},
	} {
		j := j
		require.NoError(t, repo.WriteJob(ctx, domain.JobWrite{Put: &j}))
	}

	got, err := repo.GetJob(ctx, "j1")
	require.NoError(t, err)
	assert.True(t, got.ScheduledDate.Equal(d))
	assert.Equal(t, "50", got.Price.String())
	require.NotNil(t, got.CompletedDate)
	assert.Equal(t, "/job/j1/complete", got.QRCodeURL)

	byCustomer, _ := repo.JobsByCustomer(ctx, "c1")
	assert.Len(t, byCustomer, 2)
	byDate, _ := repo.JobsByDate(ctx, d)
	assert.Len(t, byDate, 1)
	inRange, _ := repo.JobsByDateRange(ctx, d, d.AddDays(2))
	assert.Len(t, inRange, 2)

	require.NoError(t, repo.DeleteJobsByCustomer(ctx, "c1"))
	all, _ := repo.ListJobs(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "j3", all[0].ID)
}

func TestSnapshotRepo_Replace(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	customers, jobs := NewCustomerRepo(api, "customers"), NewJobRepo(api, "jobs", "customers")
	snaps := NewSnapshotRepo(customers, jobs)
	require.NoError(t, customers.PutCustomer(ctx, &domain.Customer{ID: "old"}))
	require.NoError(t, jobs.WriteJob(ctx, domain.JobWrite{Put: &domain.Job{ID: "old-job", CustomerID: "old"}}))

	require.NoError(t, snaps.Replace(ctx,
		[]domain.Customer{{ID: "c1", Name: "A"}, {ID: "c2", Name: "B"}},
		[]domain.Job{{ID: "j1", CustomerID: "c1", Price: dec("9.99")}}))

	cs, _ := customers.ListCustomers(ctx)
	require.Len(t, cs, 2)
	assert.Equal(t, "c1", cs[0].ID)
	js, _ := jobs.ListJobs(ctx)
	require.Len(t, js, 1)
	assert.Equal(t, "9.99", js[0].Price.String())

	require.NoError(t, snaps.Clear(ctx))
	cs, _ = customers.ListCustomers(ctx)
	assert.Empty(t, cs)
}

func TestDismissalRepo_AddAndPrune(t *testing.T) {
	ctx := context.Background()
	repo := NewDismissalRepo(newFakeAPI(), "dismissals", 30)
	today := domain.NewDate(2026, 10, 15)

	require.NoError(t, repo.AddDismissals(ctx, []domain.Dismissal{
		{ID: "todays-jobs", Date: today.AddDays(-45)},
		{ID: "todays-jobs", Date: today},
		{ID: "large-unpaid", Date: today},
	}))
	log, err := repo.ListDismissals(ctx)
	require.NoError(t, err)
	assert.Len(t, log, 3)

	require.NoError(t, repo.PruneDismissals(ctx, today.AddDays(-30)))
	log, _ = repo.ListDismissals(ctx)
	assert.Len(t, log, 2)
}

func TestUserRepo_EmailUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(newFakeAPI(), "users")
	require.NoError(t, repo.Put(ctx, &domain.User{UserID: "u1", Email: "Owner@Example.com", PasswordHash: "h"}))

	got, err := repo.GetByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "h", got.PasswordHash)

	assert.ErrorIs(t, repo.Put(ctx, &domain.User{UserID: "u2", Email: "owner@example.com"}), domain.ErrConflict)
	_, err = repo.Get(ctx, "u2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
