// Package store persists RSVPs. Implementations assign identifiers and submission
// timestamps on insert, delete by id idempotently, and list newest first.
package store

import (
	"context"
	"errors"

	"github.com/charlesng35/wedding-rsvp/internal/models"
)

// ErrNotConfigured is returned when a store is used without a backing client.
var ErrNotConfigured = errors.New("store: not configured")

// Store is the persistence collaborator for RSVPs.
type Store interface {
	// Insert writes r, filling in its ID and SubmittedAt, and returns the new ID.
	Insert(ctx context.Context, r *models.RSVP) (string, error)
	// Delete removes the record with id. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error
	// List returns every record ordered by SubmittedAt, newest first.
	List(ctx context.Context) ([]models.RSVP, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// DefaultCollection is the collection (or table) RSVPs are stored in.
const DefaultCollection = "rsvps"

func guestDetailsOrEmpty(details []models.GuestDetail) []models.GuestDetail {
	if details == nil {
		return []models.GuestDetail{}
	}
	return details
}
