// Package reaper periodically deletes expired OTP records from stores that
// cannot expire them on their own.
package reaper

import (
	"context"
	"fmt"
	"time"

	"github.com/campus-otp/internal/application/otp"
	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

const sweepTimeout = 30 * time.Second

type Reaper struct {
	scheduler gocron.Scheduler
	purger    otp.Purger
	log       *logrus.Logger
	now       func() time.Time
}

func New(purger otp.Purger, interval time.Duration, log *logrus.Logger) (*Reaper, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("reaper interval must be positive, got %s", interval)
	}
	scheduler, err := gocron.NewScheduler(gocron.WithLogger(&gocronLogger{log: log}))
	if err != nil {
		return nil, err
	}
	r := &Reaper{scheduler: scheduler, purger: purger, log: log, now: time.Now}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(r.sweep),
		gocron.WithName("otp-reaper"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("schedule reaper: %w", err)
	}
	return r, nil
}

func (r *Reaper) Start() {
	r.log.WithField("jobs", len(r.scheduler.Jobs())).Info("otp reaper starting")
	r.scheduler.Start()
}

func (r *Reaper) Shutdown() error {
	r.log.Info("otp reaper shutting down")
	return r.scheduler.Shutdown()
}

func (r *Reaper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	n, err := r.purger.PurgeExpired(ctx, r.now())
	if err != nil {
		r.log.WithError(err).WithField("purged", n).Error("otp sweep failed")
		return
	}
	if n > 0 {
		r.log.WithField("purged", n).Info("purged expired otps")
	}
}

// gocronLogger routes scheduler logs through logrus. args are key/value pairs.
type gocronLogger struct {
	log *logrus.Logger
}

func (l *gocronLogger) entry(args []any) *logrus.Entry {
	fields := logrus.Fields{"component": "gocron"}
	for i := 0; i+1 < len(args); i += 2 {
		fields[fmt.Sprint(args[i])] = args[i+1]
	}
	return l.log.WithFields(fields)
}

func (l *gocronLogger) Debug(msg string, args ...any) { l.entry(args).Debug(msg) }
func (l *gocronLogger) Info(msg string, args ...any)  { l.entry(args).Info(msg) }
func (l *gocronLogger) Warn(msg string, args ...any)  { l.entry(args).Warn(msg) }
func (l *gocronLogger) Error(msg string, args ...any) { l.entry(args).Error(msg) }
