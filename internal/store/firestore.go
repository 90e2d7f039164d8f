package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/charlesng35/wedding-rsvp/internal/models"
)

// FirestoreConfig identifies the Firestore project and service account.
type FirestoreConfig struct {
	ProjectID   string
	ClientEmail string
	// PrivateKey may contain literal `\n` sequences, as environment variables often do.
	PrivateKey string
	Collection string
}

// FirestoreStore keeps RSVPs as documents in one Firestore collection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

type firestoreRSVP struct {
	Name                string               `firestore:"name"`
	Email               string               `firestore:"email"`
	Phone               string               `firestore:"phone"`
	Attending           string               `firestore:"attending"`
	GuestCount          int                  `firestore:"guestCount"`
	GuestDetails        []models.GuestDetail `firestore:"guestDetails"`
	DietaryRestrictions string               `firestore:"dietaryRestrictions"`
	Message             string               `firestore:"message"`
	SubmittedAt         time.Time            `firestore:"submittedAt,serverTimestamp"`
}

// NewFirestoreStore connects to Firestore. Without client email and private key the
// client falls back to application default credentials (or FIRESTORE_EMULATOR_HOST).
func NewFirestoreStore(ctx context.Context, cfg FirestoreConfig) (*FirestoreStore, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, fmt.Errorf("firestore store: project id is required: %w", ErrNotConfigured)
	}

	var opts []option.ClientOption
	if cfg.ClientEmail != "" || cfg.PrivateKey != "" {
		creds, err := CredentialsJSON(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithCredentialsJSON(creds))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore store: new client: %w", err)
	}
	return NewFirestoreStoreWithClient(client, cfg.Collection)
}

// NewFirestoreStoreWithClient wraps an existing client.
func NewFirestoreStoreWithClient(client *firestore.Client, collection string) (*FirestoreStore, error) {
	if client == nil {
		return nil, errors.New("firestore store: client is required")
	}
	if strings.TrimSpace(collection) == "" {
		collection = DefaultCollection
	}
	return &FirestoreStore{client: client, collection: collection}, nil
}

// CredentialsJSON renders a service account key document from cfg.
func CredentialsJSON(cfg FirestoreConfig) ([]byte, error) {
	email := strings.TrimSpace(cfg.ClientEmail)
	key := ExpandPrivateKey(cfg.PrivateKey)
	if email == "" || strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("firestore store: client email and private key are required together: %w", ErrNotConfigured)
	}

	return json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   cfg.ProjectID,
		"client_email": email,
		"private_key":  key,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
}

// ExpandPrivateKey turns literal `\n` sequences into newlines.
func ExpandPrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

func (s *FirestoreStore) Insert(ctx context.Context, r *models.RSVP) (string, error) {
	if r == nil {
		return "", errors.New("firestore store: rsvp is required")
	}

	ref := s.client.Collection(s.collection).NewDoc()
	result, err := ref.Create(ctx, toFirestore(r))
	if err != nil {
		return "", fmt.Errorf("insert rsvp: %w", err)
	}

	r.ID = ref.ID
	r.SubmittedAt = result.UpdateTime.UTC()
	r.GuestDetails = guestDetailsOrEmpty(r.GuestDetails)
	return ref.ID, nil
}

func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	if _, err := s.client.Collection(s.collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete rsvp %s: %w", id, err)
	}
	return nil
}

func (s *FirestoreStore) List(ctx context.Context) ([]models.RSVP, error) {
	iter := s.client.Collection(s.collection).
		OrderBy("submittedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var rsvps []models.RSVP
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list rsvps: %w", err)
		}

		var doc firestoreRSVP
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode rsvp %s: %w", snap.Ref.ID, err)
		}
		rsvps = append(rsvps, fromFirestore(snap.Ref.ID, doc))
	}
	return rsvps, nil
}

func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.client.Collection(s.collection).Limit(1).Documents(ctx)
	defer iter.Stop()

	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func toFirestore(r *models.RSVP) firestoreRSVP {
	return firestoreRSVP{
		Name:                r.Name,
		Email:               r.Email,
		Phone:               r.Phone,
		Attending:           r.Attending,
		GuestCount:          r.GuestCount,
		GuestDetails:        guestDetailsOrEmpty(r.GuestDetails),
		DietaryRestrictions: r.DietaryRestrictions,
		Message:             r.Message,
	}
}

func fromFirestore(id string, doc firestoreRSVP) models.RSVP {
	return models.RSVP{
		ID:                  id,
		Name:                doc.Name,
		Email:               doc.Email,
		Phone:               doc.Phone,
		Attending:           doc.Attending,
		GuestCount:          doc.GuestCount,
		GuestDetails:        guestDetailsOrEmpty(doc.GuestDetails),
		DietaryRestrictions: doc.DietaryRestrictions,
		Message:             doc.Message,
		SubmittedAt:         doc.SubmittedAt.UTC(),
	}
}
