package events

import (
	"context"
	"testing"
	"time"

	"icetea/internal/shared/errs"
	"icetea/internal/shared/testutil"
	"icetea/pkg/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, Repository, *clock.Manual) {
	t.Helper()
	db := testutil.NewDB(t, &Event{})
	clk := clock.NewManual(time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC))
	repo := NewRepository(db)
	return NewService(repo, clk), repo, clk
}

func intPtr(v int) *int { return &v }

func TestCreateEvent(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	opens := clk.Now().Add(-time.Hour)
	closes := clk.Now().Add(48 * time.Hour)
	ev, err := svc.CreateEvent(ctx, "org-1", CreateEventRequest{
		Name:                 "Swim lessons",
		Criteria:             "Ages 6-10",
		Capacity:             intPtr(20),
		RegistrationOpensAt:  &opens,
		RegistrationClosesAt: &closes,
	})
	require.NoError(t, err)

	assert.Equal(t, "org-1", ev.OrganizerID)
	assert.Equal(t, 0, ev.CurrentEntrants)
	assert.False(t, ev.AlreadyDrew)
	require.NotNil(t, ev.SpotsLeft)
	assert.Equal(t, 20, *ev.SpotsLeft)
	assert.Equal(t, PhaseOpen, ev.RegistrationPhase)

	got, err := svc.GetEvent(ctx, uuid.MustParse(ev.ID))
	require.NoError(t, err)
	assert.Equal(t, "Swim lessons", got.Name)
}

func TestCreateEventZeroCapacityIsUnlimited(t *testing.T) {
	svc, _, _ := newTestService(t)

	ev, err := svc.CreateEvent(context.Background(), "org-1", CreateEventRequest{Name: "Open house", Capacity: intPtr(0)})
	require.NoError(t, err)
	assert.Nil(t, ev.Capacity)
	assert.Nil(t, ev.SpotsLeft)
}

func TestCreateEventRejectsInvertedWindow(t *testing.T) {
	svc, _, clk := newTestService(t)
	opens := clk.Now()
	closes := opens.Add(-time.Minute)

	_, err := svc.CreateEvent(context.Background(), "org-1", CreateEventRequest{
		Name: "Bad window", RegistrationOpensAt: &opens, RegistrationClosesAt: &closes,
	})
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestUpdateEventCapacityBelowEntrants(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	ev, err := svc.CreateEvent(ctx, "org-1", CreateEventRequest{Name: "Pottery", Capacity: intPtr(5)})
	require.NoError(t, err)
	id := uuid.MustParse(ev.ID)

	// simulate three entrants already on the list
	db := repo.(*repository).db
	require.NoError(t, db.Model(&Event{}).Where("id = ?", id).Update("current_entrants", 3).Error)

	_, err = svc.UpdateEvent(ctx, id, UpdateEventRequest{Capacity: intPtr(2)})
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	name := "Pottery II"
	updated, err := svc.UpdateEvent(ctx, id, UpdateEventRequest{Capacity: intPtr(3), Name: &name})
	require.NoError(t, err)
	assert.Equal(t, 3, *updated.Capacity)
	assert.Equal(t, "Pottery II", updated.Name)
	assert.Equal(t, 3, updated.CurrentEntrants, "update must not touch the counter")
}

func TestAuthorize(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	ev, err := svc.CreateEvent(ctx, "org-1", CreateEventRequest{Name: "Yoga"})
	require.NoError(t, err)
	id := uuid.MustParse(ev.ID)

	assert.NoError(t, svc.Authorize(ctx, id, "org-1", false))
	assert.NoError(t, svc.Authorize(ctx, id, "someone", true))
	assert.ErrorIs(t, svc.Authorize(ctx, id, "someone", false), ErrNotOrganizer)
	assert.ErrorIs(t, svc.Authorize(ctx, uuid.New(), "org-1", false), errs.ErrNotFound)
}

func TestGetAllEventsPaging(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Dance A", "Dance B", "Chess"} {
		_, err := svc.CreateEvent(ctx, "org-1", CreateEventRequest{Name: name})
		require.NoError(t, err)
	}
	_, err := svc.CreateEvent(ctx, "org-2", CreateEventRequest{Name: "Dance C"})
	require.NoError(t, err)

	page, err := svc.GetAllEvents(ctx, EventListQuery{Search: "dance", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalCount)
	assert.Len(t, page.Events, 2)
	assert.Equal(t, 2, page.TotalPages)

	mine, err := svc.GetAllEvents(ctx, EventListQuery{OrganizerID: "org-2"})
	require.NoError(t, err)
	require.Len(t, mine.Events, 1)
	assert.Equal(t, "Dance C", mine.Events[0].Name)
}

func TestRegistrationPhase(t *testing.T) {
	now := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	before, after := now.Add(-time.Hour), now.Add(time.Hour)

	assert.Equal(t, PhaseOpen, (&Event{}).RegistrationPhase(now))
	assert.Equal(t, PhaseUpcoming, (&Event{RegistrationOpensAt: &after}).RegistrationPhase(now))
	assert.Equal(t, PhaseClosed, (&Event{RegistrationClosesAt: &before}).RegistrationPhase(now))
	assert.Equal(t, PhaseClosed, (&Event{RegistrationClosesAt: &now}).RegistrationPhase(now))
}
