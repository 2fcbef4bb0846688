package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a client of the business. TotalUnpaid is derived from the
// customer's jobs and is never written by callers.
type Customer struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
	ServiceType string          `json:"serviceType"`
	TotalUnpaid decimal.Decimal `json:"totalUnpaid"`
	CreatedDate time.Time       `json:"createdDate"`
	QRCodeURL   string          `json:"qrCodeUrl"`
}

// CustomerQRCodeURL is the in-app deep link encoded into a customer's QR code.
func CustomerQRCodeURL(id string) string { return "/customer/" + id }

type CustomerInput struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	ServiceType string `json:"serviceType"`
}

// CustomerPatch carries the fields to shallow-merge into a customer; nil
// fields are left untouched.
type CustomerPatch struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	ServiceType *string `json:"serviceType"`
}

// Apply merges the present fields of p into c.
func (p CustomerPatch) Apply(c *Customer) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.ServiceType != nil {
		c.ServiceType = *p.ServiceType
	}
}
