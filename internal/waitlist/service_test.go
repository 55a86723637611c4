package waitlist

import (
	"context"
	"testing"

	"icetea/internal/shared/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReplacer struct {
	calls []string
	err   error
}

func (f *fakeReplacer) Replace(_ context.Context, _ uuid.UUID, vacatingUserID string) (string, error) {
	f.calls = append(f.calls, vacatingUserID)
	if f.err != nil {
		return "", f.err
	}
	return "next", nil
}

func newServiceFixture(t *testing.T, autoReplace bool) (*fixture, Service, *fakeReplacer) {
	t.Helper()
	f := newFixture(t)
	svc := NewService(f.repo, nil, &ServiceConfig{AutoReplace: autoReplace})
	rep := &fakeReplacer{}
	svc.SetReplacer(rep)
	return f, svc, rep
}

func TestRespondAcceptDoesNotReplace(t *testing.T) {
	f, svc, rep := newServiceFixture(t, true)
	ctx := context.Background()
	eventID := f.event(t, 5, false)
	f.join(t, eventID, "A", "B")
	_, err := f.repo.SetStatus(ctx, eventID, "A", StatusSelected)
	require.NoError(t, err)

	entry, err := svc.Respond(ctx, eventID, "A", true)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, entry.Status)
	assert.Empty(t, rep.calls)
}

func TestRespondDeclineTriggersReplacement(t *testing.T) {
	f, svc, rep := newServiceFixture(t, true)
	ctx := context.Background()
	eventID := f.event(t, 5, false)
	f.join(t, eventID, "A", "B")
	_, err := f.repo.SetStatus(ctx, eventID, "A", StatusSelected)
	require.NoError(t, err)

	entry, err := svc.Respond(ctx, eventID, "A", false)
	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, entry.Status)
	assert.Equal(t, []string{"A"}, rep.calls)
}

func TestRespondWhileWaitingIsRejected(t *testing.T) {
	f, svc, rep := newServiceFixture(t, true)
	eventID := f.event(t, 5, false)
	f.join(t, eventID, "A")

	_, err := svc.Respond(context.Background(), eventID, "A", true)
	assert.ErrorIs(t, err, errs.ErrInvalidStatusTransition)
	assert.Empty(t, rep.calls)
}

func TestReplacementFailureDoesNotFailDecline(t *testing.T) {
	f, svc, rep := newServiceFixture(t, true)
	rep.err = errs.ErrNoWaitingEntrants
	ctx := context.Background()
	eventID := f.event(t, 5, false)
	f.join(t, eventID, "A")
	_, err := f.repo.SetStatus(ctx, eventID, "A", StatusSelected)
	require.NoError(t, err)

	entry, err := svc.Respond(ctx, eventID, "A", false)
	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, entry.Status)
	assert.Len(t, rep.calls, 1)
}

func TestCancel(t *testing.T) {
	t.Run("waiting entrant cancels without replacement", func(t *testing.T) {
		f, svc, rep := newServiceFixture(t, true)
		eventID := f.event(t, 5, false)
		f.join(t, eventID, "A", "B")

		entry, err := svc.Cancel(context.Background(), eventID, "A")
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, entry.Status)
		assert.Empty(t, rep.calls)
		assert.Equal(t, 1, f.reload(t, eventID).CurrentEntrants)
	})

	t.Run("selected entrant cancels and is replaced", func(t *testing.T) {
		f, svc, rep := newServiceFixture(t, true)
		ctx := context.Background()
		eventID := f.event(t, 5, false)
		f.join(t, eventID, "A", "B")
		_, err := f.repo.SetStatus(ctx, eventID, "A", StatusSelected)
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, eventID, "A")
		require.NoError(t, err)
		assert.Equal(t, []string{"A"}, rep.calls)
	})

	t.Run("auto replace disabled", func(t *testing.T) {
		f, svc, rep := newServiceFixture(t, false)
		ctx := context.Background()
		eventID := f.event(t, 5, false)
		f.join(t, eventID, "A", "B")
		_, err := f.repo.SetStatus(ctx, eventID, "A", StatusSelected)
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, eventID, "A")
		require.NoError(t, err)
		assert.Empty(t, rep.calls)
	})
}

func TestListEntrantsCounts(t *testing.T) {
	f, svc, _ := newServiceFixture(t, true)
	ctx := context.Background()
	eventID := f.event(t, 5, false)
	f.join(t, eventID, "A", "B", "C")
	_, err := f.repo.SetStatus(ctx, eventID, "B", StatusSelected)
	require.NoError(t, err)

	all, err := svc.ListEntrants(ctx, eventID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
	assert.Equal(t, 2, all.Counts[StatusWaiting])
	assert.Equal(t, 1, all.Counts[StatusSelected])

	selected := StatusSelected
	only, err := svc.ListEntrants(ctx, eventID, &selected)
	require.NoError(t, err)
	require.Len(t, only.Entries, 1)
	assert.Equal(t, "B", only.Entries[0].UserID)
}

func TestJobProcessorReconcileOnce(t *testing.T) {
	f := newFixture(t)
	eventID := f.event(t, 5, false)
	f.join(t, eventID, "A")
	require.NoError(t, f.db.Exec("UPDATE events SET current_entrants = 3 WHERE id = ?", eventID).Error)

	jp := NewJobProcessor(f.repo, nil, nil)
	assert.Equal(t, 1, jp.ReconcileOnce(context.Background()))
	assert.Equal(t, 1, f.reload(t, eventID).CurrentEntrants)
}
