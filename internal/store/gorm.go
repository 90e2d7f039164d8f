package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/wedding-rsvp/internal/models"
)

// GormStore keeps RSVPs in a SQL database through gorm.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// GormOption configures a GormStore.
type GormOption func(*GormStore)

// WithClock overrides the clock used to stamp submissions.
func WithClock(now func() time.Time) GormOption {
	return func(s *GormStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewGormStore constructs a GormStore. The caller owns db and its schema.
func NewGormStore(db *gorm.DB, opts ...GormOption) (*GormStore, error) {
	if db == nil {
		return nil, errors.New("gorm store: db is required")
	}

	s := &GormStore{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *GormStore) Insert(ctx context.Context, r *models.RSVP) (string, error) {
	if r == nil {
		return "", errors.New("gorm store: rsvp is required")
	}

	record := *r
	record.Seq = 0
	record.ID = ""
	record.SubmittedAt = s.now().UTC()
	record.GuestDetails = guestDetailsOrEmpty(record.GuestDetails)

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("insert rsvp: %w", err)
	}

	r.ID = record.ID
	r.SubmittedAt = record.SubmittedAt
	r.GuestDetails = record.GuestDetails
	return record.ID, nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.RSVP{}).Error; err != nil {
		return fmt.Errorf("delete rsvp %s: %w", id, err)
	}
	return nil
}

func (s *GormStore) List(ctx context.Context) ([]models.RSVP, error) {
	var rsvps []models.RSVP
	err := s.db.WithContext(ctx).
		Order("submitted_at DESC").
		Order("seq DESC").
		Find(&rsvps).Error
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}

	for i := range rsvps {
		rsvps[i].GuestDetails = guestDetailsOrEmpty(rsvps[i].GuestDetails)
	}
	return rsvps, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close is a no-op; the database handle belongs to the caller.
func (s *GormStore) Close() error {
	return nil
}
