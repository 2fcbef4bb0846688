package qr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/go-crm-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	customers map[string]domain.Customer
	jobs      map[string]domain.Job
	err       error
}

func (f *fakeLookup) GetCustomer(_ context.Context, id string) (*domain.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (f *fakeLookup) GetJob(_ context.Context, id string) (*domain.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	j, ok := f.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &j, nil
}

func newLookup() *fakeLookup {
	return &fakeLookup{
		customers: map[string]domain.Customer{"c1": {ID: "c1", Name: "Jane", Phone: "555-0100"}},
		jobs:      map[string]domain.Job{"j1": {ID: "j1", CustomerID: "c1", ServiceType: "Lawn Care"}},
	}
}

func TestEncodeCustomer(t *testing.T) {
	got := EncodeCustomer(domain.Customer{ID: "c1", Name: "Jane", Phone: ""})

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(got), &m))
	assert.Equal(t, map[string]interface{}{
		"type": "customer", "id": "c1", "url": "/customer/c1", "name": "Jane", "phone": "",
	}, m)
}

func TestEncodeJob(t *testing.T) {
	got := EncodeJob(domain.Job{ID: "j1", CustomerID: "c1", ServiceType: "Lawn Care", Notes: "ignored"})

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(got), &m))
	assert.Equal(t, map[string]interface{}{
		"type": "job", "id": "j1", "url": "/job/j1/complete", "customerId": "c1", "serviceType": "Lawn Care",
	}, m)
}

func TestDecode(t *testing.T) {
	p, err := Decode(EncodeJob(domain.Job{ID: "j1", CustomerID: "c1"}))
	require.NoError(t, err)
	assert.Equal(t, KindJob, p.Type)
	assert.Equal(t, "c1", p.CustomerID)

	for _, bad := range []string{"not json", `{"type":"invoice","id":"x"}`, `{"type":"customer"}`} {
		_, err := Decode(bad)
		assert.ErrorIs(t, err, domain.ErrValidation, bad)
	}
}

func TestCodec_EntityNotFound(t *testing.T) {
	c := NewCodec(newLookup())
	ctx := context.Background()

	_, err := c.CustomerPayload(ctx, "gone")
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
	_, err = c.JobPayload(ctx, "gone")
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)

	got, err := c.Payload(ctx, KindCustomer, "c1")
	require.NoError(t, err)
	assert.Contains(t, got, `"name":"Jane"`)

	_, err = c.Payload(ctx, Kind("invoice"), "c1")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCodec_BackendErrorPassesThrough(t *testing.T) {
	boom := errors.New("offline")
	_, err := NewCodec(&fakeLookup{err: boom}).JobPayload(context.Background(), "j1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrEntityNotFound)
}

func TestRenderer(t *testing.T) {
	r := NewRenderer(128, nil)

	b, err := r.Render(EncodeCustomer(domain.Customer{ID: "c1"}))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}

func TestRenderer_PlaceholderOnFailure(t *testing.T) {
	r := NewRenderer(64, nil)

	// Exceeds the capacity of any QR version.
	b, ok := r.RenderOrPlaceholder(strings.Repeat("x", 8000))
	assert.False(t, ok)
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
}

type fakeObjects struct {
	key, contentType string
	body             []byte
	ttl              time.Duration
}

func (f *fakeObjects) Upload(_ context.Context, key string, r io.Reader, contentType string) (string, error) {
	f.key, f.contentType = key, contentType
	f.body, _ = io.ReadAll(r)
	return "s3://bucket/" + key, nil
}

func (f *fakeObjects) PresignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	f.ttl = ttl
	return "https://bucket.example/" + key + "?sig", nil
}

func TestPublisher(t *testing.T) {
	objs := &fakeObjects{}
	p := NewPublisher(PublisherDeps{
		Codec:    NewCodec(newLookup()),
		Renderer: NewRenderer(0, nil),
		Store:    objs,
		TTL:      time.Hour,
	})

	url, err := p.Publish(context.Background(), KindJob, "j1")
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example/qr/job/j1.png?sig", url)
	assert.Equal(t, "qr/job/j1.png", objs.key)
	assert.Equal(t, "image/png", objs.contentType)
	assert.Equal(t, time.Hour, objs.ttl)
	_, err = png.Decode(bytes.NewReader(objs.body))
	assert.NoError(t, err)

	_, err = p.Publish(context.Background(), KindCustomer, "gone")
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
}
