package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"icetea/internal/shared/errs"
	"icetea/internal/shared/testutil"
	"icetea/internal/waitlist"
	"icetea/pkg/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPrefs struct {
	optedOut map[string]bool
	failFor  map[string]bool
	err      error
}

func (s stubPrefs) NotificationsEnabled(_ context.Context, userID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.failFor[userID] {
		return false, errors.New("preferences unavailable")
	}
	return !s.optedOut[userID], nil
}

type stubEntrants []waitlist.Entry

func (s stubEntrants) ListByStatus(_ context.Context, _ uuid.UUID, statuses ...waitlist.Status) ([]waitlist.Entry, error) {
	var out []waitlist.Entry
	for _, e := range s {
		for _, st := range statuses {
			if e.Status == st {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

type recordingPublisher struct {
	published []*Notification
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, n *Notification) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, n)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func newDispatcher(t *testing.T, prefs PreferenceReader, entrants EntrantLister, pub Publisher) (Dispatcher, *clock.Manual) {
	t.Helper()
	db := testutil.NewDB(t, &Notification{}, &NotificationLog{})
	clk := clock.NewManual(time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC))
	return NewDispatcher(NewRepository(db), prefs, entrants, pub, clk, nil), clk
}

func TestSendIfEnabled(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()

	t.Run("stores and publishes", func(t *testing.T) {
		pub := &recordingPublisher{}
		d, clk := newDispatcher(t, stubPrefs{}, nil, pub)

		require.NoError(t, d.SendIfEnabled(ctx, "dev-a", eventID, TypeWon, "You're a winner!", "You have been selected"))

		list, err := d.ListForUser(ctx, "dev-a", 0)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, TypeWon, list[0].Type)
		assert.Equal(t, eventID, list[0].EventID)
		assert.Equal(t, clk.Now(), list[0].CreatedAt.UTC())
		require.Len(t, pub.published, 1)
		assert.Equal(t, list[0].ID, pub.published[0].ID)
	})

	t.Run("opted out user gets nothing", func(t *testing.T) {
		pub := &recordingPublisher{}
		d, _ := newDispatcher(t, stubPrefs{optedOut: map[string]bool{"dev-a": true}}, nil, pub)

		require.NoError(t, d.SendIfEnabled(ctx, "dev-a", eventID, TypeWon, "t", "m"))

		list, err := d.ListForUser(ctx, "dev-a", 0)
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.Empty(t, pub.published)
	})

	t.Run("not idempotent", func(t *testing.T) {
		d, _ := newDispatcher(t, stubPrefs{}, nil, nil)
		require.NoError(t, d.SendIfEnabled(ctx, "dev-a", eventID, TypeWon, "t", "m"))
		require.NoError(t, d.SendIfEnabled(ctx, "dev-a", eventID, TypeWon, "t", "m"))

		list, err := d.ListForUser(ctx, "dev-a", 0)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("publish failure is not returned", func(t *testing.T) {
		d, _ := newDispatcher(t, stubPrefs{}, nil, &recordingPublisher{err: errors.New("broker down")})
		require.NoError(t, d.SendIfEnabled(ctx, "dev-a", eventID, TypeRevoked, "t", "m"))

		list, err := d.ListForUser(ctx, "dev-a", 0)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("preference lookup failure", func(t *testing.T) {
		storeErr := errs.Store("read preference", errors.New("connection reset"))
		d, _ := newDispatcher(t, stubPrefs{err: storeErr}, nil, nil)
		err := d.SendIfEnabled(ctx, "dev-a", eventID, TypeWon, "t", "m")
		assert.ErrorIs(t, err, errs.ErrStoreFailure)
	})
}

func TestListForUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	d, clk := newDispatcher(t, stubPrefs{}, nil, nil)
	eventID := uuid.New()

	for _, title := range []string{"first", "second", "third"} {
		clk.Advance(time.Minute)
		require.NoError(t, d.SendIfEnabled(ctx, "dev-a", eventID, TypeBroadcast, title, "m"))
	}

	list, err := d.ListForUser(ctx, "dev-a", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "third", list[0].Title)
	assert.Equal(t, "second", list[1].Title)
}

func TestBroadcast(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()
	entrants := stubEntrants{
		{EventID: eventID, UserID: "a", Status: waitlist.StatusWaiting},
		{EventID: eventID, UserID: "b", Status: waitlist.StatusWaiting},
		{EventID: eventID, UserID: "c", Status: waitlist.StatusSelected},
		{EventID: eventID, UserID: "d", Status: waitlist.StatusCancelled},
	}
	d, _ := newDispatcher(t, stubPrefs{optedOut: map[string]bool{"b": true}}, entrants, nil)

	entry, err := d.Broadcast(ctx, eventID, "org", []waitlist.Status{waitlist.StatusWaiting, waitlist.StatusSelected}, "Reminder", "Doors open at 6pm")
	require.NoError(t, err)
	assert.Equal(t, 3, entry.Recipients)
	assert.Equal(t, 2, entry.Delivered)
	assert.Equal(t, []string{"WAITING", "SELECTED"}, entry.StatusList())

	for user, want := range map[string]int{"a": 1, "b": 0, "c": 1, "d": 0} {
		list, err := d.ListForUser(ctx, user, 0)
		require.NoError(t, err)
		assert.Len(t, list, want, user)
	}

	logs, err := d.ListLogs(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "org", logs[0].SenderID)
}

func TestBroadcastContinuesPastFailedRecipient(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()
	entrants := stubEntrants{
		{EventID: eventID, UserID: "a", Status: waitlist.StatusWaiting},
		{EventID: eventID, UserID: "b", Status: waitlist.StatusWaiting},
		{EventID: eventID, UserID: "c", Status: waitlist.StatusWaiting},
	}
	d, _ := newDispatcher(t, stubPrefs{failFor: map[string]bool{"b": true}}, entrants, nil)

	entry, err := d.Broadcast(ctx, eventID, "org", []waitlist.Status{waitlist.StatusWaiting}, "Reminder", "Bring a towel")
	require.NoError(t, err)
	assert.Equal(t, 3, entry.Recipients)
	assert.Equal(t, 2, entry.Delivered)
	assert.Equal(t, 1, entry.Failed)

	for user, want := range map[string]int{"a": 1, "b": 0, "c": 1} {
		list, err := d.ListForUser(ctx, user, 0)
		require.NoError(t, err)
		assert.Len(t, list, want, user)
	}

	logs, err := d.ListLogs(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 1, logs[0].Failed)
}

func TestBroadcastValidation(t *testing.T) {
	d, _ := newDispatcher(t, stubPrefs{}, stubEntrants{}, nil)
	ctx := context.Background()

	_, err := d.Broadcast(ctx, uuid.New(), "org", nil, "t", "m")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = d.Broadcast(ctx, uuid.New(), "org", []waitlist.Status{waitlist.StatusWaiting}, "  ", "m")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}
