package dynamo

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-crm-nosql/internal/domain"
	"github.com/shopspring/decimal"
)

// Attribute names referenced in keys, indexes and expressions.
const (
	attrCustomerID    = "customer_id"
	attrJobID         = "job_id"
	attrUserID        = "user_id"
	attrEmail         = "email"
	attrScheduledDate = "scheduled_date"
	attrTotalUnpaid   = "total_unpaid"
	attrDismissalID   = "id"
	attrDismissalDate = "date"
	attrExpiresAt     = "expires_at"
)

const (
	indexJobsByCustomer = "customer_id-index"
	indexJobsByDate     = "scheduled_date-index"
	indexUsersByEmail   = "email-index"
)

// money stores a decimal as a DynamoDB number without float rounding.
type money decimal.Decimal

func (m money) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: decimal.Decimal(m).String()}, nil
}

func (m *money) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	var raw string
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		raw = v.Value
	case *types.AttributeValueMemberS:
		raw = v.Value
	case *types.AttributeValueMemberNULL:
		*m = money(decimal.Zero)
		return nil
	default:
		return fmt.Errorf("money: unexpected attribute type %T", av)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = money(d)
	return nil
}

type customerItem struct {
	CustomerID  string    `dynamodbav:"customer_id"`
	Name        string    `dynamodbav:"name"`
	Phone       string    `dynamodbav:"phone"`
	Address     string    `dynamodbav:"address"`
	ServiceType string    `dynamodbav:"service_type"`
	TotalUnpaid money     `dynamodbav:"total_unpaid"`
	CreatedDate time.Time `dynamodbav:"created_date"`
}

func toCustomerItem(c *domain.Customer) customerItem {
	return customerItem{
		CustomerID:  c.ID,
		Name:        c.Name,
		Phone:       c.Phone,
		Address:     c.Address,
		ServiceType: c.ServiceType,
		TotalUnpaid: money(c.TotalUnpaid),
		CreatedDate: c.CreatedDate,
	}
}

func (it customerItem) toDomain() domain.Customer {
	return domain.Customer{
		ID:          it.CustomerID,
		Name:        it.Name,
		Phone:       it.Phone,
		Address:     it.Address,
		ServiceType: it.ServiceType,
		TotalUnpaid: decimal.Decimal(it.TotalUnpaid),
		CreatedDate: it.CreatedDate,
		QRCodeURL:   domain.CustomerQRCodeURL(it.CustomerID),
	}
}

// jobItem keeps scheduled_date as a YYYY-MM-DD string so the date index
// sorts and compares calendar days lexically.
type jobItem struct {
	JobID         string     `dynamodbav:"job_id"`
	CustomerID    string     `dynamodbav:"customer_id"`
	CustomerName  string     `dynamodbav:"customer_name"`
	ServiceType   string     `dynamodbav:"service_type"`
	ScheduledDate string     `dynamodbav:"scheduled_date"`
	Price         money      `dynamodbav:"price"`
	Status        string     `dynamodbav:"status"`
	PaymentStatus string     `dynamodbav:"payment_status"`
	Notes         string     `dynamodbav:"notes"`
	CompletedDate *time.Time `dynamodbav:"completed_date,omitempty"`
}

func toJobItem(j *domain.Job) jobItem {
	return jobItem{
		JobID:         j.ID,
		CustomerID:    j.CustomerID,
		CustomerName:  j.CustomerName,
		ServiceType:   j.ServiceType,
		ScheduledDate: j.ScheduledDate.String(),
		Price:         money(j.Price),
		Status:        string(j.Status),
		PaymentStatus: string(j.PaymentStatus),
		Notes:         j.Notes,
		CompletedDate: j.CompletedDate,
	}
}

func (it jobItem) toDomain() (domain.Job, error) {
	var d domain.Date
	if it.ScheduledDate != "" {
		parsed, err := domain.ParseDate(it.ScheduledDate)
		if err != nil {
			return domain.Job{}, fmt.Errorf("job %s: %w", it.JobID, err)
		}
		d = parsed
	}
	return domain.Job{
		ID:            it.JobID,
		CustomerID:    it.CustomerID,
		CustomerName:  it.CustomerName,
		ServiceType:   it.ServiceType,
		ScheduledDate: d,
		Price:         decimal.Decimal(it.Price),
		Status:        domain.JobStatus(it.Status),
		PaymentStatus: domain.PaymentStatus(it.PaymentStatus),
		Notes:         it.Notes,
		CompletedDate: it.CompletedDate,
		QRCodeURL:     domain.JobQRCodeURL(it.JobID),
	}, nil
}

type userItem struct {
	UserID       string    `dynamodbav:"user_id"`
	Email        string    `dynamodbav:"email"`
	Name         string    `dynamodbav:"name"`
	PasswordHash string    `dynamodbav:"password_hash"`
	CreatedAt    time.Time `dynamodbav:"created_at"`
}

type dismissalItem struct {
	ID        string `dynamodbav:"id"`
	Date      string `dynamodbav:"date"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
}
