package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Attendance answers accepted on an RSVP.
const (
	AttendingYes = "yes"
	AttendingNo  = "no"
)

// MaxPartySize bounds the number of guests a single RSVP may bring.
const MaxPartySize = 10

// RSVP is one guest party's response to the invitation.
type RSVP struct {
	// Seq preserves insertion order for records sharing a submission timestamp.
	Seq uint64 `gorm:"primaryKey;autoIncrement" json:"-"`

	ID                  string                           `gorm:"uniqueIndex;size:36;not null" json:"id"`
	Name                string                           `gorm:"not null" json:"name"`
	Email               string                           `gorm:"not null;index" json:"email"`
	Phone               string                           `gorm:"not null;default:''" json:"phone"`
	Attending           string                           `gorm:"size:3;not null;index" json:"attending"`
	GuestCount          int                              `gorm:"not null;default:0" json:"guestCount"`
	GuestDetails        datatypes.JSONSlice[GuestDetail] `json:"guestDetails"`
	DietaryRestrictions string                           `gorm:"not null;default:''" json:"dietaryRestrictions"`
	Message             string                           `gorm:"type:text;not null;default:''" json:"message"`
	SubmittedAt         time.Time                        `gorm:"not null;index" json:"submittedAt"`
}

// TableName pins the collection name shared with the document store.
func (RSVP) TableName() string {
	return "rsvps"
}

// BeforeCreate ensures UUID identifiers are generated automatically.
func (r *RSVP) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// IsAttending reports whether the party accepted the invitation.
func (r RSVP) IsAttending() bool {
	return r.Attending == AttendingYes
}

// GuestDetail describes one attendee within a party.
type GuestDetail struct {
	Label     string `json:"label" firestore:"label"`
	Name      string `json:"name" firestore:"name"`
	Age       int    `json:"age" firestore:"age"`
	IsPrimary bool   `json:"isPrimary" firestore:"isPrimary"`
}

// Stats aggregates a set of RSVPs.
type Stats struct {
	Total        int `json:"total"`
	Attending    int `json:"attending"`
	NotAttending int `json:"notAttending"`
	TotalGuests  int `json:"totalGuests"`
}

// Summarize computes aggregate statistics over rsvps.
func Summarize(rsvps []RSVP) Stats {
	stats := Stats{Total: len(rsvps)}
	for _, r := range rsvps {
		switch r.Attending {
		case AttendingYes:
			stats.Attending++
			stats.TotalGuests += r.GuestCount
		case AttendingNo:
			stats.NotAttending++
		}
	}
	return stats
}
