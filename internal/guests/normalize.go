// Package guests derives the canonical guest list of an RSVP from loosely shaped
// client input.
package guests

import (
	"strconv"

	"github.com/charlesng35/wedding-rsvp/internal/models"
)

// Submission carries the raw fields that shape a party.
type Submission struct {
	Name             string
	Attending        string
	GuestCount       Number
	GuestDetails     Entries
	PrimaryGuestAge  Number
	AdditionalGuests Entries
}

// Result is the canonical party shape stored on an RSVP.
type Result struct {
	GuestCount   int
	GuestDetails []models.GuestDetail
}

// source produces up to count guest entries from one of the accepted input shapes.
type source interface {
	details(count int) []models.GuestDetail
}

// explicitList is a client supplied guestDetails array.
type explicitList Entries

// fallbackList is built from the submitter plus additionalGuests.
type fallbackList struct {
	name       string
	age        Number
	additional Entries
}

// Normalize maps s to its canonical guest count and guest list. It never fails and
// has no side effects.
func Normalize(s Submission) Result {
	if s.Attending != models.AttendingYes {
		return Result{GuestDetails: []models.GuestDetail{}}
	}

	count := clamp(s.GuestCount.Int(1), 1, models.MaxPartySize)
	details := resolve(s).details(count)
	for i := len(details); i < count; i++ {
		details = append(details, models.GuestDetail{Label: label(i)})
	}

	return Result{GuestCount: count, GuestDetails: details}
}

func resolve(s Submission) source {
	if len(s.GuestDetails) > 0 {
		return explicitList(s.GuestDetails)
	}
	return fallbackList{name: s.Name, age: s.PrimaryGuestAge, additional: s.AdditionalGuests}
}

func (l explicitList) details(count int) []models.GuestDetail {
	n := min(len(l), count)
	out := make([]models.GuestDetail, 0, count)
	for i, entry := range l[:n] {
		lbl := entry.Label
		if lbl == "" {
			lbl = label(i)
		}
		out = append(out, models.GuestDetail{
			Label:     lbl,
			Name:      entry.Name,
			Age:       age(entry.Age),
			IsPrimary: i == 0,
		})
	}
	return out
}

func (l fallbackList) details(count int) []models.GuestDetail {
	out := make([]models.GuestDetail, 0, count)
	out = append(out, models.GuestDetail{
		Label:     label(0),
		Name:      l.name,
		Age:       age(l.age),
		IsPrimary: true,
	})
	for i, entry := range l.additional {
		if len(out) == count {
			break
		}
		out = append(out, models.GuestDetail{
			Label: label(i + 1),
			Name:  entry.Name,
			Age:   age(entry.Age),
		})
	}
	return out
}

func label(index int) string {
	return "Guest " + strconv.Itoa(index+1)
}

func age(n Number) int {
	return max(n.Int(0), 0)
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
