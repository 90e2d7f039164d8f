package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/wedding-rsvp/internal/guests"
	"github.com/charlesng35/wedding-rsvp/internal/models"
	"github.com/charlesng35/wedding-rsvp/internal/services"
	appErrors "github.com/charlesng35/wedding-rsvp/pkg/errors"
	"github.com/charlesng35/wedding-rsvp/pkg/response"
)

// RSVPHandler exposes RSVP intake and the admin list/delete/export endpoints.
type RSVPHandler struct {
	svc *services.RSVPService
	now func() time.Time
}

// NewRSVPHandler constructs an RSVPHandler.
func NewRSVPHandler(svc *services.RSVPService) (*RSVPHandler, error) {
	if svc == nil {
		return nil, errors.New("rsvp handler: service is required")
	}
	return &RSVPHandler{svc: svc, now: time.Now}, nil
}

type createRSVPRequest struct {
	Name                string         `json:"name" validate:"notblank"`
	Email               string         `json:"email" validate:"notblank"`
	Phone               string         `json:"phone"`
	Attending           string         `json:"attending" validate:"notblank,oneof=yes no"`
	GuestCount          guests.Number  `json:"guestCount"`
	GuestDetails        guests.Entries `json:"guestDetails"`
	PrimaryGuestAge     guests.Number  `json:"primaryGuestAge"`
	AdditionalGuests    guests.Entries `json:"additionalGuests"`
	DietaryRestrictions string         `json:"dietaryRestrictions"`
	Message             string         `json:"message"`
}

func (r *createRSVPRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Attending = strings.TrimSpace(r.Attending)
}

type deleteRSVPRequest struct {
	ID string `json:"id"`
}

// POST /api/rsvp
func (h *RSVPHandler) Create(c *gin.Context) {
	var req createRSVPRequest
	if !bindAndValidate(c, &req) {
		return
	}

	rsvp, err := h.svc.Submit(requestContext(c), services.SubmitRSVPInput{
		Name:                req.Name,
		Email:               req.Email,
		Phone:               req.Phone,
		Attending:           req.Attending,
		GuestCount:          req.GuestCount,
		GuestDetails:        req.GuestDetails,
		PrimaryGuestAge:     req.PrimaryGuestAge,
		AdditionalGuests:    req.AdditionalGuests,
		DietaryRestrictions: req.DietaryRestrictions,
		Message:             req.Message,
	})
	if err != nil {
		response.Error(c, rsvpError(err, "Failed to submit RSVP"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "RSVP submitted successfully",
		"id":      rsvp.ID,
	})
}

// GET /api/rsvps
func (h *RSVPHandler) List(c *gin.Context) {
	listing, err := h.svc.List(requestContext(c))
	if err != nil {
		response.Error(c, rsvpError(err, "Failed to fetch RSVPs"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"rsvps": listing.RSVPs,
		"stats": listing.Stats,
	})
}

// DELETE /api/rsvp?id=...
// The id may also be sent as a JSON body {"id": "..."}.
func (h *RSVPHandler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		var req deleteRSVPRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			id = strings.TrimSpace(req.ID)
		}
	}
	if id == "" {
		response.Error(c, appErrors.ErrMissingID)
		return
	}

	if err := h.svc.Delete(requestContext(c), id); err != nil {
		response.Error(c, rsvpError(err, "Failed to delete RSVP"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "RSVP deleted",
		"id":      id,
	})
}

var exportHeader = []string{
	"id", "submittedAt", "name", "email", "phone", "attending",
	"guestCount", "guests", "dietaryRestrictions", "message",
}

// GET /api/rsvps/export
func (h *RSVPHandler) Export(c *gin.Context) {
	listing, err := h.svc.List(requestContext(c))
	if err != nil {
		response.Error(c, rsvpError(err, "Failed to export RSVPs"))
		return
	}

	filename := fmt.Sprintf("rsvps-%s.csv", h.now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeader)
	for _, rsvp := range listing.RSVPs {
		_ = w.Write(exportRow(rsvp))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = c.Error(err)
	}
}

func exportRow(r models.RSVP) []string {
	return []string{
		r.ID,
		r.SubmittedAt.UTC().Format(time.RFC3339),
		r.Name,
		r.Email,
		r.Phone,
		r.Attending,
		strconv.Itoa(r.GuestCount),
		formatGuests(r.GuestDetails),
		r.DietaryRestrictions,
		r.Message,
	}
}

func formatGuests(details []models.GuestDetail) string {
	parts := make([]string, 0, len(details))
	for _, g := range details {
		name := g.Name
		if name == "" {
			name = "-"
		}
		parts = append(parts, fmt.Sprintf("%s: %s (%d)", g.Label, name, g.Age))
	}
	return strings.Join(parts, "; ")
}

// rsvpError maps service errors onto API errors. storeMessage is the public text
// used when the store itself failed.
func rsvpError(err error, storeMessage string) error {
	switch {
	case errors.Is(err, services.ErrRSVPMissingFields):
		return appErrors.ErrMissingFields
	case errors.Is(err, services.ErrRSVPInvalidAttending):
		return appErrors.NewBadRequest("attending must be one of: yes, no")
	case errors.Is(err, services.ErrRSVPIDRequired):
		return appErrors.ErrMissingID
	}

	var storeErr *services.StoreError
	if errors.As(err, &storeErr) {
		return appErrors.StoreFailure(storeErr.Err, storeMessage)
	}
	return appErrors.ErrInternalServer.WithInternal(err)
}
