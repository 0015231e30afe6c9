package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/edugrant/pkg/mailer/templates"
)

type recordingSender struct {
	to, subject, text, html string
	err                     error
}

func (r *recordingSender) Send(_ context.Context, to, subject, text, html string) error {
	r.to, r.subject, r.text, r.html = to, subject, text, html
	return r.err
}

func TestDeliver_RendersTemplate(t *testing.T) {
	s := &recordingSender{}
	job := EmailJob{
		To:       "a@b.io",
		Template: templates.VerificationCode,
		Data:     templates.NewVerificationCodeData(templates.Brand{AppName: "EduGrant"}, "a@b.io", "123456"),
	}
	require.NoError(t, Deliver(context.Background(), s, job))
	assert.Equal(t, "a@b.io", s.to)
	assert.Equal(t, "Your EduGrant verification code", s.subject)
	assert.Contains(t, s.text, "123456")
	assert.Contains(t, s.html, "123456")
}

func TestDeliver_PlainBodyAndErrors(t *testing.T) {
	s := &recordingSender{}
	require.NoError(t, Deliver(context.Background(), s, EmailJob{To: "a@b.io", Subject: "Hi", Text: "body"}))
	assert.Equal(t, "Hi", s.subject)
	assert.Empty(t, s.html)

	assert.ErrorIs(t, Deliver(context.Background(), s, EmailJob{Subject: "Hi", Text: "x"}), ErrInvalidJob)
	assert.ErrorIs(t, Deliver(context.Background(), s, EmailJob{To: "a@b.io", Subject: "Hi"}), ErrInvalidJob)

	boom := errors.New("mailgun down")
	s.err = boom
	assert.ErrorIs(t, Deliver(context.Background(), s, EmailJob{To: "a@b.io", Subject: "Hi", HTML: "<p>x</p>"}), boom)
}
