package mailqueue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/edugrant/pkg/mailer"
	mailtpl "github.com/oksasatya/edugrant/pkg/mailer/templates"
)

type capturePublisher struct{ jobs []any }

func (p *capturePublisher) PublishJSON(_ context.Context, body any) error {
	p.jobs = append(p.jobs, body)
	return nil
}

func TestCodeSenderPublishesTemplatedJob(t *testing.T) {
	pub := &capturePublisher{}
	s := NewCodeSender(pub, mailtpl.Brand{AppName: "EduGrant"})

	issued := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.SendCode(context.Background(), "a@x.io", "123456", issued, 5*time.Minute))

	require.Len(t, pub.jobs, 1)
	job, ok := pub.jobs[0].(mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, "a@x.io", job.To)
	assert.Equal(t, mailtpl.VerificationCode, job.Template)
	assert.Equal(t, "123456", job.Data["Code"])
	assert.EqualValues(t, 5, job.Data["ExpiresInMinutes"])
}
