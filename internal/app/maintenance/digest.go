package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/wedding-rsvp/internal/models"
	"github.com/charlesng35/wedding-rsvp/internal/monitoring"
	"github.com/charlesng35/wedding-rsvp/internal/services"
	"github.com/charlesng35/wedding-rsvp/pkg/logger"
	"github.com/charlesng35/wedding-rsvp/pkg/mail"
	"github.com/charlesng35/wedding-rsvp/pkg/metrics"
)

// Job names reported to the JobTracker.
const (
	JobStatsRefresh = "stats_refresh"
	JobDigest       = "rsvp_digest"
)

const (
	defaultStatsSpec  = "@every 5m"
	defaultDigestSpec = "0 8 * * *"
	digestWindow      = 24 * time.Hour
)

// Lister is the slice of the RSVP service the scheduler reads from.
type Lister interface {
	List(ctx context.Context) (*services.Listing, error)
}

// Scheduler runs the periodic RSVP jobs: refreshing the headcount gauges and
// mailing a summary to the couple.
type Scheduler struct {
	rsvps      Lister
	mailer     mail.Mailer
	recipients []string
	eventName  string
	tracker    *monitoring.JobTracker
	cron       *cron.Cron
	now        func() time.Time
	log        *zap.Logger

	statsSchedule  string
	digestSchedule string
}

// Option customises the Scheduler.
type Option func(*Scheduler)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used for the digest window.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTracker records job outcomes for the maintenance health probe.
func WithTracker(tracker *monitoring.JobTracker) Option {
	return func(s *Scheduler) {
		s.tracker = tracker
	}
}

// WithDigest enables the summary mail. It stays off without a mailer or recipients.
func WithDigest(mailer mail.Mailer, recipients []string, eventName string) Option {
	return func(s *Scheduler) {
		s.mailer = mailer
		s.recipients = recipients
		s.eventName = eventName
	}
}

// WithStatsSchedule overrides the cron expression for the gauge refresh.
func WithStatsSchedule(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.statsSchedule = spec
		}
	}
}

// WithDigestSchedule overrides the cron expression for the summary mail.
func WithDigestSchedule(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.digestSchedule = spec
		}
	}
}

// NewScheduler constructs a Scheduler reading from rsvps.
func NewScheduler(rsvps Lister, opts ...Option) (*Scheduler, error) {
	if rsvps == nil {
		return nil, errors.New("maintenance: rsvp lister is required")
	}

	s := &Scheduler{
		rsvps:          rsvps,
		now:            time.Now,
		log:            logger.WithModule("maintenance"),
		statsSchedule:  defaultStatsSpec,
		digestSchedule: defaultDigestSpec,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return s, nil
}

// DigestEnabled reports whether the summary mail will be scheduled.
func (s *Scheduler) DigestEnabled() bool {
	return s.mailer != nil && len(s.recipients) > 0
}

// Start registers the jobs with the cron scheduler and launches it.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.statsSchedule, func() {
		s.track(context.Background(), JobStatsRefresh, func(ctx context.Context) error {
			_, err := s.RefreshStats(ctx)
			return err
		})
	}); err != nil {
		return fmt.Errorf("maintenance: schedule %s: %w", JobStatsRefresh, err)
	}
	s.register(JobStatsRefresh)

	if s.DigestEnabled() {
		if _, err := s.cron.AddFunc(s.digestSchedule, func() {
			s.track(context.Background(), JobDigest, s.SendDigest)
		}); err != nil {
			return fmt.Errorf("maintenance: schedule %s: %w", JobDigest, err)
		}
		s.register(JobDigest)
	}

	s.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (s *Scheduler) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes every enabled job sequentially. Used at start-up and in tests.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	errs = multierr.Append(errs, s.track(ctx, JobStatsRefresh, func(ctx context.Context) error {
		_, err := s.RefreshStats(ctx)
		return err
	}))
	if s.DigestEnabled() {
		errs = multierr.Append(errs, s.track(ctx, JobDigest, s.SendDigest))
	}
	return errs
}

// RefreshStats recomputes the RSVP gauges from the store.
func (s *Scheduler) RefreshStats(ctx context.Context) (models.Stats, error) {
	listing, err := s.rsvps.List(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("refresh stats: %w", err)
	}

	metrics.RSVPParties.WithLabelValues(models.AttendingYes).Set(float64(listing.Stats.Attending))
	metrics.RSVPParties.WithLabelValues(models.AttendingNo).Set(float64(listing.Stats.NotAttending))
	metrics.RSVPGuests.Set(float64(listing.Stats.TotalGuests))
	return listing.Stats, nil
}

// SendDigest mails the current RSVP summary to the configured recipients.
func (s *Scheduler) SendDigest(ctx context.Context) error {
	if !s.DigestEnabled() {
		return nil
	}

	listing, err := s.rsvps.List(ctx)
	if err != nil {
		return fmt.Errorf("digest: %w", err)
	}

	now := s.now()
	msg := mail.Message{
		To:      s.recipients,
		Subject: digestSubject(s.eventName, now),
		Body:    digestBody(listing, now),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		if errors.Is(err, mail.ErrSMTPDisabled) {
			return nil
		}
		return fmt.Errorf("digest: send: %w", err)
	}

	s.log.Info("rsvp digest sent",
		zap.Int("recipients", len(s.recipients)),
		zap.Int("total", listing.Stats.Total),
	)
	return nil
}

func (s *Scheduler) register(job string) {
	if s.tracker != nil {
		s.tracker.Register(job)
	}
}

func (s *Scheduler) track(ctx context.Context, job string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	if s.tracker != nil {
		s.tracker.Record(job, err, time.Since(start))
	}
	if err != nil {
		s.log.Warn("maintenance job failed", zap.String("job", job), zap.Error(err))
	}
	return err
}

func digestSubject(event string, now time.Time) string {
	date := now.Format("Jan 2")
	if event == "" {
		return "RSVP summary for " + date
	}
	return fmt.Sprintf("%s: RSVP summary for %s", event, date)
}

func digestBody(listing *services.Listing, now time.Time) string {
	stats := listing.Stats

	var recent []models.RSVP
	cutoff := now.Add(-digestWindow)
	for _, r := range listing.RSVPs {
		if r.SubmittedAt.After(cutoff) {
			recent = append(recent, r)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Responses: %d\n", stats.Total)
	fmt.Fprintf(&b, "Attending: %d (%d guests)\n", stats.Attending, stats.TotalGuests)
	fmt.Fprintf(&b, "Not attending: %d\n", stats.NotAttending)

	fmt.Fprintf(&b, "\nNew in the last 24 hours: %d\n", len(recent))
	for _, r := range recent {
		if r.IsAttending() {
			fmt.Fprintf(&b, "  - %s <%s>: yes, %d\n", r.Name, r.Email, r.GuestCount)
		} else {
			fmt.Fprintf(&b, "  - %s <%s>: no\n", r.Name, r.Email)
		}
	}
	return b.String()
}
