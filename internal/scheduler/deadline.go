package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/edugrant/internal/application"
)

var (
	sweepRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "edugrant_deadline_sweep_runs_total",
		Help: "Deadline sweeps by outcome.",
	}, []string{"outcome"})
	sweepNotifications = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "edugrant_deadline_sweep_notifications_total",
		Help: "Deadline reminders created by the sweep.",
	})
)

// Collectors returns the scheduler metrics for registration on the app registry.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{sweepRuns, sweepNotifications}
}

// Sweeper runs the deadline reminder sweep.
type Sweeper interface {
	RunDeadlineSweep(ctx context.Context) (application.SweepReport, error)
}

// DeadlineJob runs one sweep with its own timeout. Errors are logged; the next tick retries.
type DeadlineJob struct {
	Sweeper Sweeper
	Timeout time.Duration
	Logger  *logrus.Logger
}

func (j *DeadlineJob) Run() {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	report, err := j.Sweeper.RunDeadlineSweep(ctx)
	fields := logrus.Fields{
		"window_from":   report.Window[0].Format(time.DateOnly),
		"window_to":     report.Window[1].Format(time.DateOnly),
		"scholarships":  report.Scholarships,
		"notifications": report.Notifications,
		"failed":        report.Failed,
		"took":          time.Since(start).String(),
	}
	sweepNotifications.Add(float64(report.Notifications))
	switch {
	case err != nil:
		sweepRuns.WithLabelValues("error").Inc()
		j.Logger.WithFields(fields).WithError(err).Error("deadline sweep failed")
	case report.Failed > 0:
		sweepRuns.WithLabelValues("partial").Inc()
		j.Logger.WithFields(fields).Warn("deadline sweep finished with failures")
	default:
		sweepRuns.WithLabelValues("ok").Inc()
		j.Logger.WithFields(fields).Info("deadline sweep finished")
	}
}

// New schedules job on spec, evaluated in loc. Overlapping runs are skipped.
func New(spec string, loc *time.Location, job cron.Job, logger *logrus.Logger) (*cron.Cron, error) {
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{logger}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return c, nil
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct{ l *logrus.Logger }

func (c cronLogger) fields(kv []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.WithFields(c.fields(keysAndValues)).Debug("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.WithFields(c.fields(keysAndValues)).WithError(err).Error("cron: " + msg)
}
