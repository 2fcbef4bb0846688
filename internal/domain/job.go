package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type JobStatus string

const (
	JobScheduled  JobStatus = "scheduled"
	JobInProgress JobStatus = "in-progress"
	JobCompleted  JobStatus = "completed"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobScheduled, JobInProgress, JobCompleted:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentUnpaid || s == PaymentPaid
}

// Job is a unit of scheduled work for a customer. CustomerName and
// ServiceType are copies taken when the job is written, not a live join.
type Job struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customerId"`
	CustomerName  string          `json:"customerName"`
	ServiceType   string          `json:"serviceType"`
	ScheduledDate Date            `json:"scheduledDate"`
	Price         decimal.Decimal `json:"price"`
	Status        JobStatus       `json:"status"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	Notes         string          `json:"notes"`
	CompletedDate *time.Time      `json:"completedDate,omitempty"`
	QRCodeURL     string          `json:"qrCodeUrl"`
}

// JobQRCodeURL is the in-app deep link encoded into a job's QR code.
func JobQRCodeURL(id string) string { return "/job/" + id + "/complete" }

// IsUnpaid reports whether the job counts towards a customer's balance.
func (j Job) IsUnpaid() bool { return j.PaymentStatus == PaymentUnpaid }

type JobInput struct {
	CustomerID    string          `json:"customerId" validate:"required"`
	ServiceType   string          `json:"serviceType"`
	ScheduledDate Date            `json:"scheduledDate"`
	Price         decimal.Decimal `json:"price"`
	Status        JobStatus       `json:"status" validate:"omitempty,oneof=scheduled in-progress completed"`
	PaymentStatus PaymentStatus   `json:"paymentStatus" validate:"omitempty,oneof=unpaid paid"`
	Notes         string          `json:"notes"`
	CompletedDate *time.Time      `json:"completedDate,omitempty"`
}

// JobPatch carries the fields to shallow-merge into a job; nil fields are
// left untouched.
type JobPatch struct {
	CustomerID    *string          `json:"customerId" validate:"omitempty,min=1"`
	ServiceType   *string          `json:"serviceType"`
	ScheduledDate *Date            `json:"scheduledDate"`
	Price         *decimal.Decimal `json:"price"`
	Status        *JobStatus       `json:"status" validate:"omitempty,oneof=scheduled in-progress completed"`
	PaymentStatus *PaymentStatus   `json:"paymentStatus" validate:"omitempty,oneof=unpaid paid"`
	Notes         *string          `json:"notes"`
	CompletedDate *time.Time       `json:"completedDate,omitempty"`
}

// Apply merges the present fields of p into j. CustomerID is applied by the
// caller because it also refreshes the denormalised customer fields.
func (p JobPatch) Apply(j *Job) {
	if p.ServiceType != nil {
		j.ServiceType = *p.ServiceType
	}
	if p.ScheduledDate != nil {
		j.ScheduledDate = *p.ScheduledDate
	}
	if p.Price != nil {
		j.Price = *p.Price
	}
	if p.Status != nil {
		j.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		j.PaymentStatus = *p.PaymentStatus
	}
	if p.Notes != nil {
		j.Notes = *p.Notes
	}
	if p.CompletedDate != nil {
		t := *p.CompletedDate
		j.CompletedDate = &t
	}
}

// JobWrite is one job mutation together with the TotalUnpaid it leaves on
// each affected customer. Stores apply it all or nothing.
type JobWrite struct {
	// Put is stored when set.
	Put *Job
	// DeleteID names a job to remove.
	DeleteID string
	// Totals maps customer id to its new TotalUnpaid. Every customer named
	// must exist, otherwise nothing is written.
	Totals map[string]decimal.Decimal
}
