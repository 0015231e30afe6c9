package mailqueue

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/edugrant/pkg/mailer"
	mailtpl "github.com/oksasatya/edugrant/pkg/mailer/templates"
)

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// CodeSender puts verification-code emails on the email queue for cmd/email_worker.
type CodeSender struct {
	pub   Publisher
	brand mailtpl.Brand
}

func NewCodeSender(pub Publisher, brand mailtpl.Brand) *CodeSender {
	return &CodeSender{pub: pub, brand: brand}
}

func (s *CodeSender) SendCode(ctx context.Context, email, code string, issuedAt time.Time, ttl time.Duration) error {
	job := mailer.EmailJob{
		To:       email,
		Template: mailtpl.VerificationCode,
		Data:     mailtpl.NewVerificationCodeData(s.brand, email, code, mailtpl.WithExpiresIn(issuedAt, ttl)),
	}
	if err := job.Validate(); err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.pub.PublishJSON(c, job)
}

// LogSender only logs that a code was issued. It is used when MAIL_SEND_ENABLED=false.
type LogSender struct {
	Logger *logrus.Logger
	// Reveal also logs the code itself; only for local development.
	Reveal bool
}

func (s *LogSender) SendCode(_ context.Context, email, code string, _ time.Time, ttl time.Duration) error {
	if s.Logger == nil {
		return nil
	}
	fields := logrus.Fields{"email": email, "ttl": ttl.String()}
	if s.Reveal {
		fields["code"] = code
	}
	s.Logger.WithFields(fields).Info("mail disabled; verification code not sent")
	return nil
}
