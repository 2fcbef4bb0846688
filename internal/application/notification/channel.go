package notification

import "context"

// Channel delivers a rendered digest to the business owner.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsChannel struct {
	sender smsSender
	to     string
}

// SMSChannel sends digests as a text message to phone number to.
func SMSChannel(sender smsSender, to string) Channel {
	return &smsChannel{sender: sender, to: to}
}

func (c *smsChannel) Name() string { return "sms" }

func (c *smsChannel) Deliver(ctx context.Context, subject, body string) error {
	return c.sender.SendSMS(ctx, c.to, subject+"\n"+body)
}

type emailChannel struct {
	mailer mailer
	to     string
}

// EmailChannel sends digests by e-mail to address to.
func EmailChannel(m mailer, to string) Channel {
	return &emailChannel{mailer: m, to: to}
}

func (c *emailChannel) Name() string { return "email" }

func (c *emailChannel) Deliver(_ context.Context, subject, body string) error {
	return c.mailer.SendEmail(c.to, subject, body)
}
