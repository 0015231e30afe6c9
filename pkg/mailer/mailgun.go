package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"

	"github.com/oksasatya/edugrant/pkg/mailer/templates"
)

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Mailgun wraps a Mailgun client bound to one sending domain.
type Mailgun struct {
	client *mg.MailgunImpl
	Sender string
	// Timeout bounds a single send call.
	Timeout time.Duration
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{client: mg.NewMailgun(domain, apiKey), Sender: sender, Timeout: 10 * time.Second}
}

// Send sends an email via Mailgun. html is optional; if provided it will be used as HTML body.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}

// Deliver renders job (when it names a template) and hands it to s.
func Deliver(ctx context.Context, s Sender, job EmailJob) error {
	if err := job.Validate(); err != nil {
		return err
	}
	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		var err error
		subject, text, html, err = templates.Render(job.Template, job.Data)
		if err != nil {
			return err
		}
	}
	return s.Send(ctx, job.To, subject, text, html)
}
