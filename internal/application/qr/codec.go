// Package qr defines the payloads encoded into customer and job QR codes and
// renders or publishes them as images.
package qr

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-crm-nosql/internal/domain"
)

// Kind is the entity a payload points at.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindJob      Kind = "job"
)

type customerPayload struct {
	Type  Kind   `json:"type"`
	ID    string `json:"id"`
	URL   string `json:"url"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type jobPayload struct {
	Type        Kind   `json:"type"`
	ID          string `json:"id"`
	URL         string `json:"url"`
	CustomerID  string `json:"customerId"`
	ServiceType string `json:"serviceType"`
}

// Payload is a decoded QR payload of either kind.
type Payload struct {
	Type        Kind   `json:"type"`
	ID          string `json:"id"`
	URL         string `json:"url"`
	Name        string `json:"name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CustomerID  string `json:"customerId,omitempty"`
	ServiceType string `json:"serviceType,omitempty"`
}

// EncodeCustomer serialises the canonical customer payload.
func EncodeCustomer(c domain.Customer) string {
	b, _ := json.Marshal(customerPayload{
		Type:  KindCustomer,
		ID:    c.ID,
		URL:   domain.CustomerQRCodeURL(c.ID),
		Name:  c.Name,
		Phone: c.Phone,
	})
	return string(b)
}

// EncodeJob serialises the canonical job payload.
func EncodeJob(j domain.Job) string {
	b, _ := json.Marshal(jobPayload{
		Type:        KindJob,
		ID:          j.ID,
		URL:         domain.JobQRCodeURL(j.ID),
		CustomerID:  j.CustomerID,
		ServiceType: j.ServiceType,
	})
	return string(b)
}

// Decode parses a payload produced by EncodeCustomer or EncodeJob.
func Decode(payload string) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, fmt.Errorf("qr payload: %v: %w", err, domain.ErrValidation)
	}
	if p.Type != KindCustomer && p.Type != KindJob {
		return nil, fmt.Errorf("qr payload: unknown type %q: %w", p.Type, domain.ErrValidation)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("qr payload: missing id: %w", domain.ErrValidation)
	}
	return &p, nil
}

type lookup interface {
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	GetJob(ctx context.Context, id string) (*domain.Job, error)
}

// Codec encodes payloads for entities that must still exist in the store.
type Codec struct {
	store lookup
}

func NewCodec(store lookup) *Codec {
	return &Codec{store: store}
}

// CustomerPayload returns domain.ErrEntityNotFound when the customer is gone.
func (c *Codec) CustomerPayload(ctx context.Context, id string) (string, error) {
	cust, err := c.store.GetCustomer(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return "", fmt.Errorf("customer %s: %w", id, domain.ErrEntityNotFound)
		}
		return "", err
	}
	return EncodeCustomer(*cust), nil
}

// JobPayload returns domain.ErrEntityNotFound when the job is gone.
func (c *Codec) JobPayload(ctx context.Context, id string) (string, error) {
	job, err := c.store.GetJob(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return "", fmt.Errorf("job %s: %w", id, domain.ErrEntityNotFound)
		}
		return "", err
	}
	return EncodeJob(*job), nil
}

// Payload dispatches on kind.
func (c *Codec) Payload(ctx context.Context, kind Kind, id string) (string, error) {
	switch kind {
	case KindCustomer:
		return c.CustomerPayload(ctx, id)
	case KindJob:
		return c.JobPayload(ctx, id)
	}
	return "", fmt.Errorf("unknown qr kind %q: %w", kind, domain.ErrValidation)
}
