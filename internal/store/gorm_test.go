package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/wedding-rsvp/internal/database/testutil"
	"github.com/charlesng35/wedding-rsvp/internal/models"
)

func newTestGormStore(t *testing.T, opts ...GormOption) *GormStore {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	s, err := NewGormStore(db, opts...)
	require.NoError(t, err)
	return s
}

func TestNewGormStoreRequiresDB(t *testing.T) {
	_, err := NewGormStore(nil)
	require.Error(t, err)
}

func TestGormStoreInsertAssignsIDAndTimestamp(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s := newTestGormStore(t, WithClock(func() time.Time { return fixed }))

	r := &models.RSVP{
		ID:          "client-supplied",
		Name:        "Ana",
		Email:       "a@x.com",
		Attending:   models.AttendingYes,
		GuestCount:  1,
		SubmittedAt: time.Unix(0, 0),
		GuestDetails: []models.GuestDetail{
			{Label: "Guest 1", Name: "Ana", Age: 28, IsPrimary: true},
		},
	}

	id, err := s.Insert(context.Background(), r)
	require.NoError(t, err)
	require.Len(t, id, 36)
	require.NotEqual(t, "client-supplied", id)
	require.Equal(t, id, r.ID)
	require.True(t, fixed.Equal(r.SubmittedAt))

	listed, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, id, listed[0].ID)
	require.True(t, fixed.Equal(listed[0].SubmittedAt))
	require.Equal(t, []models.GuestDetail{{Label: "Guest 1", Name: "Ana", Age: 28, IsPrimary: true}}, []models.GuestDetail(listed[0].GuestDetails))
}

func TestGormStoreListNewestFirstWithInsertionTieBreak(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(time.Minute), base.Add(time.Minute), base.Add(-time.Hour)}
	var i int
	s := newTestGormStore(t, WithClock(func() time.Time {
		ts := times[i]
		i++
		return ts
	}))

	for _, name := range []string{"first", "second", "third", "oldest"} {
		_, err := s.Insert(context.Background(), &models.RSVP{Name: name, Email: name + "@x.com", Attending: models.AttendingNo})
		require.NoError(t, err)
	}

	listed, err := s.List(context.Background())
	require.NoError(t, err)

	names := make([]string, len(listed))
	for i, r := range listed {
		names[i] = r.Name
		require.NotNil(t, r.GuestDetails)
	}
	require.Equal(t, []string{"third", "second", "first", "oldest"}, names)
}

func TestGormStoreDeleteIsIdempotent(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()

	keep, err := s.Insert(ctx, &models.RSVP{Name: "Keep", Email: "k@x.com", Attending: models.AttendingNo})
	require.NoError(t, err)
	drop, err := s.Insert(ctx, &models.RSVP{Name: "Drop", Email: "d@x.com", Attending: models.AttendingNo})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, drop))
	require.NoError(t, s.Delete(ctx, drop))
	require.NoError(t, s.Delete(ctx, "does-not-exist"))

	listed, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, keep, listed[0].ID)
}

func TestGormStoreConcurrentInsertsGetUniqueIDs(t *testing.T) {
	s := newTestGormStore(t)

	const n = 20
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.Insert(context.Background(), &models.RSVP{Name: "Guest", Email: "g@x.com", Attending: models.AttendingNo})
			if err == nil {
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]struct{}{}
	for id := range ids {
		seen[id] = struct{}{}
	}
	require.Len(t, seen, n)
}

func TestGormStorePing(t *testing.T) {
	s := newTestGormStore(t)
	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close())
}

func TestGormStoreSurfacesErrors(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	s, err := NewGormStore(db)
	require.NoError(t, err)

	_, err = s.List(context.Background())
	require.ErrorContains(t, err, "list rsvps")
	require.Equal(t, KindOther, Classify(err))
}
