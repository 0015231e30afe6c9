package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/edugrant/internal/application"
	"github.com/oksasatya/edugrant/pkg/helpers"
)

type fakeSweeper struct {
	calls  int
	report application.SweepReport
	err    error
	ctxOK  bool
}

func (f *fakeSweeper) RunDeadlineSweep(ctx context.Context) (application.SweepReport, error) {
	f.calls++
	_, f.ctxOK = ctx.Deadline()
	return f.report, f.err
}

func TestDeadlineJob_RunCountsOutcome(t *testing.T) {
	okBefore := testutil.ToFloat64(sweepRuns.WithLabelValues("ok"))
	notesBefore := testutil.ToFloat64(sweepNotifications)

	sw := &fakeSweeper{report: application.SweepReport{Scholarships: 1, Notifications: 3}}
	job := &DeadlineJob{Sweeper: sw, Logger: helpers.NewNopLogger()}
	job.Run()

	assert.Equal(t, 1, sw.calls)
	assert.True(t, sw.ctxOK, "sweep must run with a deadline")
	assert.Equal(t, okBefore+1, testutil.ToFloat64(sweepRuns.WithLabelValues("ok")))
	assert.Equal(t, notesBefore+3, testutil.ToFloat64(sweepNotifications))
}

func TestDeadlineJob_RunErrorAndPartial(t *testing.T) {
	errBefore := testutil.ToFloat64(sweepRuns.WithLabelValues("error"))
	partialBefore := testutil.ToFloat64(sweepRuns.WithLabelValues("partial"))

	(&DeadlineJob{Sweeper: &fakeSweeper{err: errors.New("db down")}, Logger: helpers.NewNopLogger()}).Run()
	(&DeadlineJob{Sweeper: &fakeSweeper{report: application.SweepReport{Failed: 2}}, Logger: helpers.NewNopLogger()}).Run()

	assert.Equal(t, errBefore+1, testutil.ToFloat64(sweepRuns.WithLabelValues("error")))
	assert.Equal(t, partialBefore+1, testutil.ToFloat64(sweepRuns.WithLabelValues("partial")))
}

func TestNew_SchedulesInLocation(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	c, err := New("0 0 * * *", ist, &DeadlineJob{Sweeper: &fakeSweeper{}, Logger: helpers.NewNopLogger()}, helpers.NewNopLogger())
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)
	assert.Equal(t, ist, c.Location())

	// 20:00 UTC is already 01:30 the next day in IST
	now := time.Date(2030, time.March, 10, 20, 0, 0, 0, time.UTC).In(ist)
	next := c.Entries()[0].Schedule.Next(now)
	want := time.Date(2030, time.March, 12, 0, 0, 0, 0, ist)
	assert.True(t, want.Equal(next), "next run %s, want %s", next, want)
}

func TestNew_RejectsBadSpec(t *testing.T) {
	_, err := New("not a cron", time.UTC, &DeadlineJob{}, helpers.NewNopLogger())
	require.Error(t, err)
}
