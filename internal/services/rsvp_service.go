package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/wedding-rsvp/internal/guests"
	"github.com/charlesng35/wedding-rsvp/internal/models"
	"github.com/charlesng35/wedding-rsvp/internal/store"
	"github.com/charlesng35/wedding-rsvp/pkg/logger"
	"github.com/charlesng35/wedding-rsvp/pkg/mail"
	"github.com/charlesng35/wedding-rsvp/pkg/metrics"
)

const defaultMailTimeout = 10 * time.Second

var (
	// ErrRSVPMissingFields indicates name, email or attending was blank.
	ErrRSVPMissingFields = errors.New("rsvp: missing required fields")
	// ErrRSVPInvalidAttending indicates attending was neither "yes" nor "no".
	ErrRSVPInvalidAttending = errors.New("rsvp: attending must be yes or no")
	// ErrRSVPIDRequired indicates a delete without an id.
	ErrRSVPIDRequired = errors.New("rsvp: id is required")
)

// StoreError reports a failed persistence call. Its message is the store's own.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// SubmitRSVPInput carries a raw RSVP submission.
type SubmitRSVPInput struct {
	Name                string
	Email               string
	Phone               string
	Attending           string
	GuestCount          guests.Number
	GuestDetails        guests.Entries
	PrimaryGuestAge     guests.Number
	AdditionalGuests    guests.Entries
	DietaryRestrictions string
	Message             string
}

// Listing is the admin view of every stored RSVP.
type Listing struct {
	RSVPs []models.RSVP
	Stats models.Stats
}

// ConfirmationSettings control the email sent to guests after they respond.
type ConfirmationSettings struct {
	EventName string
	ReplyTo   string
	Timeout   time.Duration
}

// RSVPOption customises RSVPService behaviour.
type RSVPOption func(*RSVPService)

// WithConfirmationMailer sends a confirmation email after each stored RSVP.
func WithConfirmationMailer(mailer mail.Mailer, settings ConfirmationSettings) RSVPOption {
	return func(s *RSVPService) {
		s.mailer = mailer
		s.confirmation = settings
		if s.confirmation.Timeout <= 0 {
			s.confirmation.Timeout = defaultMailTimeout
		}
	}
}

// WithRSVPLogger overrides the service logger.
func WithRSVPLogger(log *zap.Logger) RSVPOption {
	return func(s *RSVPService) {
		if log != nil {
			s.log = log
		}
	}
}

// RSVPService accepts, lists and removes RSVPs.
type RSVPService struct {
	store        store.Store
	mailer       mail.Mailer
	confirmation ConfirmationSettings
	log          *zap.Logger
}

// NewRSVPService constructs an RSVPService backed by st.
func NewRSVPService(st store.Store, opts ...RSVPOption) (*RSVPService, error) {
	if st == nil {
		return nil, errors.New("rsvp service: store is required")
	}

	service := &RSVPService{
		store: st,
		log:   logger.WithModule("rsvp"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Submit normalises and stores one RSVP. Exactly one record is written on success
// and none on failure.
func (s *RSVPService) Submit(ctx context.Context, input SubmitRSVPInput) (*models.RSVP, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	attending := strings.TrimSpace(input.Attending)
	if name == "" || email == "" || attending == "" {
		return nil, ErrRSVPMissingFields
	}
	if attending != models.AttendingYes && attending != models.AttendingNo {
		return nil, ErrRSVPInvalidAttending
	}

	party := guests.Normalize(guests.Submission{
		Name:             name,
		Attending:        attending,
		GuestCount:       input.GuestCount,
		GuestDetails:     input.GuestDetails,
		PrimaryGuestAge:  input.PrimaryGuestAge,
		AdditionalGuests: input.AdditionalGuests,
	})

	rsvp := &models.RSVP{
		Name:                name,
		Email:               email,
		Phone:               strings.TrimSpace(input.Phone),
		Attending:           attending,
		GuestCount:          party.GuestCount,
		GuestDetails:        party.GuestDetails,
		DietaryRestrictions: strings.TrimSpace(input.DietaryRestrictions),
		Message:             strings.TrimSpace(input.Message),
	}

	id, err := s.store.Insert(ctx, rsvp)
	if err != nil {
		return nil, s.storeFailure("insert", err)
	}

	metrics.RSVPSubmissions.WithLabelValues(attending).Inc()
	s.log.Info("rsvp stored",
		zap.String("id", id),
		zap.String("attending", attending),
		zap.Int("guest_count", rsvp.GuestCount),
	)

	s.sendConfirmation(ctx, rsvp)
	return rsvp, nil
}

// List returns every RSVP, newest first, with aggregate statistics.
func (s *RSVPService) List(ctx context.Context) (*Listing, error) {
	rsvps, err := s.store.List(ctx)
	if err != nil {
		return nil, s.storeFailure("list", err)
	}
	if rsvps == nil {
		rsvps = []models.RSVP{}
	}

	return &Listing{
		RSVPs: rsvps,
		Stats: models.Summarize(rsvps),
	}, nil
}

// Delete removes the RSVP with id. Deleting an unknown id succeeds.
func (s *RSVPService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrRSVPIDRequired
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return s.storeFailure("delete", err)
	}

	metrics.RSVPDeletions.Inc()
	s.log.Info("rsvp deleted", zap.String("id", id))
	return nil
}

// Stats summarises the stored RSVPs.
func (s *RSVPService) Stats(ctx context.Context) (models.Stats, error) {
	listing, err := s.List(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	return listing.Stats, nil
}

// Ping checks that the store is reachable.
func (s *RSVPService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *RSVPService) storeFailure(op string, err error) error {
	kind := store.Classify(err)
	metrics.StoreErrors.WithLabelValues(op, kind).Inc()
	s.log.Error("rsvp store failure",
		zap.String("op", op),
		zap.String("kind", kind),
		zap.Error(err),
	)
	return &StoreError{Op: op, Err: err}
}

func (s *RSVPService) sendConfirmation(ctx context.Context, rsvp *models.RSVP) {
	if s.mailer == nil {
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.confirmation.Timeout)
	defer cancel()

	err := s.mailer.Send(sendCtx, mail.Message{
		To:      []string{rsvp.Email},
		ReplyTo: s.confirmation.ReplyTo,
		Subject: confirmationSubject(s.confirmation.EventName),
		Body:    confirmationBody(rsvp, s.confirmation.EventName),
	})
	switch {
	case err == nil:
		s.log.Debug("rsvp confirmation sent", zap.String("id", rsvp.ID))
	case errors.Is(err, mail.ErrSMTPDisabled):
	default:
		s.log.Warn("rsvp confirmation failed", zap.String("id", rsvp.ID), zap.Error(err))
	}
}

func confirmationSubject(event string) string {
	if event == "" {
		return "We received your RSVP"
	}
	return "We received your RSVP for " + event
}

func confirmationBody(rsvp *models.RSVP, event string) string {
	if event == "" {
		event = "our wedding"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", rsvp.Name)
	if rsvp.IsAttending() {
		fmt.Fprintf(&b, "Thank you for letting us know you will join us for %s.\n", event)
		fmt.Fprintf(&b, "We have you down for %d %s:\n", rsvp.GuestCount, plural(rsvp.GuestCount, "guest", "guests"))
		for _, g := range rsvp.GuestDetails {
			name := g.Name
			if name == "" {
				name = "(name to follow)"
			}
			fmt.Fprintf(&b, "  - %s: %s\n", g.Label, name)
		}
	} else {
		fmt.Fprintf(&b, "We are sorry you can't make it to %s, and thank you for letting us know.\n", event)
	}
	if rsvp.DietaryRestrictions != "" {
		fmt.Fprintf(&b, "\nDietary notes: %s\n", rsvp.DietaryRestrictions)
	}
	b.WriteString("\nIf anything changes, just reply to this email.\n")
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
