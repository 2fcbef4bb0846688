package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/go-crm-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockSource struct{ mock.Mock }

func (m *mockSource) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]domain.Customer)
	return cs, args.Error(1)
}
func (m *mockSource) ListJobs(ctx context.Context) ([]domain.Job, error) {
	args := m.Called(ctx)
	js, _ := args.Get(0).([]domain.Job)
	return js, args.Error(1)
}

type mockDismissals struct{ mock.Mock }

func (m *mockDismissals) ListDismissals(ctx context.Context) ([]domain.Dismissal, error) {
	args := m.Called(ctx)
	ds, _ := args.Get(0).([]domain.Dismissal)
	return ds, args.Error(1)
}
func (m *mockDismissals) AddDismissals(ctx context.Context, ds []domain.Dismissal) error {
	return m.Called(ctx, ds).Error(0)
}
func (m *mockDismissals) PruneDismissals(ctx context.Context, cutoff domain.Date) error {
	return m.Called(ctx, cutoff).Error(0)
}

type mockChannel struct{ mock.Mock }

func (m *mockChannel) Name() string { return "mock" }
func (m *mockChannel) Deliver(ctx context.Context, subject, body string) error {
	return m.Called(ctx, subject, body).Error(0)
}

// --- helpers ---

func overdueSource() *mockSource {
	src := &mockSource{}
	src.On("ListCustomers", mock.Anything).Return([]domain.Customer{{ID: "c1"}}, nil)
	src.On("ListJobs", mock.Anything).Return([]domain.Job{completedUnpaid("c1", 10, 50)}, nil)
	return src
}

// --- tests ---

func TestActive_SuppressesKindsDismissedToday(t *testing.T) {
	dis := &mockDismissals{}
	dis.On("ListDismissals", mock.Anything).Return([]domain.Dismissal{
		{ID: KindOverduePayments, Date: today()},
	}, nil)
	svc := NewService(ServiceDeps{Source: overdueSource(), Dismissals: dis})

	got, err := svc.Active(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestActive_DismissalFromYesterdayDoesNotApply(t *testing.T) {
	dis := &mockDismissals{}
	dis.On("ListDismissals", mock.Anything).Return([]domain.Dismissal{
		{ID: KindOverduePayments, Date: today().AddDays(-1)},
	}, nil)
	svc := NewService(ServiceDeps{Source: overdueSource(), Dismissals: dis})

	got, err := svc.Active(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, KindOverduePayments, got[0].ID)
}

func TestActive_UnreadableLogShowsEverything(t *testing.T) {
	dis := &mockDismissals{}
	dis.On("ListDismissals", mock.Anything).Return(nil, errors.New("corrupt"))
	svc := NewService(ServiceDeps{Source: overdueSource(), Dismissals: dis})

	got, err := svc.Active(context.Background(), now)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestActive_SourceErrorPropagates(t *testing.T) {
	src := &mockSource{}
	src.On("ListCustomers", mock.Anything).Return(nil, domain.ErrUnavailable)
	svc := NewService(ServiceDeps{Source: src, Dismissals: &mockDismissals{}})

	_, err := svc.Active(context.Background(), now)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestDismiss_RecordsTodayAndPrunes(t *testing.T) {
	dis := &mockDismissals{}
	dis.On("AddDismissals", mock.Anything, []domain.Dismissal{{ID: KindTodaysJobs, Date: today()}}).Return(nil)
	dis.On("PruneDismissals", mock.Anything, today().AddDays(-DefaultRetentionDays)).Return(nil)
	svc := NewService(ServiceDeps{Source: &mockSource{}, Dismissals: dis})

	require.NoError(t, svc.Dismiss(context.Background(), KindTodaysJobs, now))
	dis.AssertExpectations(t)
}

func TestDismiss_EmptyID(t *testing.T) {
	svc := NewService(ServiceDeps{Source: &mockSource{}, Dismissals: &mockDismissals{}})
	err := svc.Dismiss(context.Background(), "  ", now)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDismiss_PruneFailureIsNotFatal(t *testing.T) {
	dis := &mockDismissals{}
	dis.On("AddDismissals", mock.Anything, mock.Anything).Return(nil)
	dis.On("PruneDismissals", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	svc := NewService(ServiceDeps{Source: &mockSource{}, Dismissals: dis, RetentionDays: 7})

	assert.NoError(t, svc.Dismiss(context.Background(), KindTodaysJobs, now))
}

func TestClearAll_DismissesEveryActiveKind(t *testing.T) {
	src := &mockSource{}
	src.On("ListCustomers", mock.Anything).Return([]domain.Customer{}, nil)
	src.On("ListJobs", mock.Anything).Return([]domain.Job{
		completedUnpaid("c1", 10, 50),
		{CustomerID: "c1", ScheduledDate: today(), Status: domain.JobScheduled},
	}, nil)
	dis := &mockDismissals{}
	dis.On("ListDismissals", mock.Anything).Return([]domain.Dismissal{}, nil)
	dis.On("AddDismissals", mock.Anything, []domain.Dismissal{
		{ID: KindOverduePayments, Date: today()},
		{ID: KindTodaysJobs, Date: today()},
	}).Return(nil)
	dis.On("PruneDismissals", mock.Anything, mock.Anything).Return(nil)
	svc := NewService(ServiceDeps{Source: src, Dismissals: dis})

	require.NoError(t, svc.ClearAll(context.Background(), now))
	dis.AssertExpectations(t)
}

func TestDigest_DeliversToEveryChannel(t *testing.T) {
	dis := &mockDismissals{}
	dis.On("ListDismissals", mock.Anything).Return([]domain.Dismissal{}, nil)
	sms, email := &mockChannel{}, &mockChannel{}
	sms.On("Deliver", mock.Anything, "CRM digest for 2026-10-15",
		"- Overdue Payments: 1 job completed more than 7 days ago is still unpaid ($50.00 outstanding)\n").Return(nil)
	email.On("Deliver", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	rec := &fakeRecorder{}
	svc := NewService(ServiceDeps{Source: overdueSource(), Dismissals: dis, Channels: []Channel{sms, email}, Recorder: rec})

	n, err := svc.Digest(context.Background(), now)
	assert.Equal(t, 1, n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
	assert.Equal(t, []string{"failed"}, rec.outcomes)
	sms.AssertExpectations(t)
	email.AssertExpectations(t)
}

func TestDigest_NothingActiveSendsNothing(t *testing.T) {
	src := &mockSource{}
	src.On("ListCustomers", mock.Anything).Return([]domain.Customer{}, nil)
	src.On("ListJobs", mock.Anything).Return([]domain.Job{}, nil)
	dis := &mockDismissals{}
	dis.On("ListDismissals", mock.Anything).Return([]domain.Dismissal{}, nil)
	ch := &mockChannel{}
	rec := &fakeRecorder{}
	svc := NewService(ServiceDeps{Source: src, Dismissals: dis, Channels: []Channel{ch}, Recorder: rec})

	n, err := svc.Digest(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{"empty"}, rec.outcomes)
	ch.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything)
}

type fakeRecorder struct{ outcomes []string }

func (f *fakeRecorder) IncrDigest(outcome string) { f.outcomes = append(f.outcomes, outcome) }

type fakeSMS struct{ to, msg string }

func (f *fakeSMS) SendSMS(_ context.Context, to, msg string) error {
	f.to, f.msg = to, msg
	return nil
}

func TestSMSChannel_PrependsSubject(t *testing.T) {
	f := &fakeSMS{}
	require.NoError(t, SMSChannel(f, "+15550100").Deliver(context.Background(), "subj", "body"))
	assert.Equal(t, "+15550100", f.to)
	assert.Equal(t, "subj\nbody", f.msg)
}

func TestNewScheduler_RejectsBadSpec(t *testing.T) {
	_, err := NewScheduler(NewService(ServiceDeps{}), "not a cron", nil)
	assert.Error(t, err)
}

func TestNewScheduler_Valid(t *testing.T) {
	s, err := NewScheduler(NewService(ServiceDeps{}), "0 8 * * *", nil)
	require.NoError(t, err)
	assert.NotNil(t, s)
}
