package main

import (
	"bytes"
	"testing"

	"icetea/internal/events"
	"icetea/internal/shared/config"
	"icetea/internal/shared/database"
	"icetea/internal/shared/testutil"
	"icetea/internal/waitlist"
	"icetea/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type cli struct {
	db  *gorm.DB
	out *bytes.Buffer
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	return &cli{db: testutil.NewDB(t, database.Models()...), out: &bytes.Buffer{}}
}

func (c *cli) run(args ...string) error {
	c.out.Reset()
	cmd := newRootCommand(&rootOptions{
		out:    c.out,
		clock:  clock.NewSystem(),
		openDB: func(*config.Config) (*gorm.DB, error) { return c.db, nil },
	})
	cmd.SetArgs(args)
	return cmd.Execute()
}

func (c *cli) seededEvent(t *testing.T) events.Event {
	t.Helper()
	var ev events.Event
	require.NoError(t, c.db.First(&ev).Error)
	return ev
}

func TestSeedAndDraw(t *testing.T) {
	c := newCLI(t)

	require.NoError(t, c.run("seed", "--entrants", "5", "--capacity", "10"))
	assert.Contains(t, c.out.String(), "Added 5 entrant(s)")

	ev := c.seededEvent(t)
	assert.Equal(t, 5, ev.CurrentEntrants)

	require.NoError(t, c.run("draw", "--event", ev.ID.String(), "--count", "2", "--seed", "42"))
	assert.Contains(t, c.out.String(), "Drew 2 winner(s)")

	var selected int64
	require.NoError(t, c.db.Model(&waitlist.Entry{}).
		Where("event_id = ? AND status = ?", ev.ID, waitlist.StatusSelected).
		Count(&selected).Error)
	assert.Equal(t, int64(2), selected)

	err := c.run("draw", "--event", ev.ID.String(), "--count", "1")
	assert.Error(t, err)
}

func TestSeedRejectsOverfullList(t *testing.T) {
	c := newCLI(t)
	err := c.run("seed", "--entrants", "4", "--capacity", "3")
	assert.Error(t, err)
}

func TestReplaceCommand(t *testing.T) {
	c := newCLI(t)
	require.NoError(t, c.run("seed", "--entrants", "3"))
	ev := c.seededEvent(t)

	require.NoError(t, c.run("draw", "--event", ev.ID.String(), "--count", "1", "--seed", "7"))

	var winner waitlist.Entry
	require.NoError(t, c.db.Where("event_id = ? AND status = ?", ev.ID, waitlist.StatusSelected).First(&winner).Error)

	// still holding the spot
	err := c.run("replace", "--event", ev.ID.String(), "--user", winner.UserID)
	assert.Error(t, err)

	require.NoError(t, c.db.Model(&waitlist.Entry{}).
		Where("event_id = ? AND user_id = ?", ev.ID, winner.UserID).
		Update("status", waitlist.StatusDeclined).Error)

	require.NoError(t, c.run("replace", "--event", ev.ID.String(), "--user", winner.UserID))
	assert.Contains(t, c.out.String(), "in place of "+winner.UserID)
}

func TestReconcileCommand(t *testing.T) {
	c := newCLI(t)
	require.NoError(t, c.run("seed", "--entrants", "2"))
	ev := c.seededEvent(t)

	require.NoError(t, c.db.Model(&events.Event{}).Where("id = ?", ev.ID).Update("current_entrants", 9).Error)

	require.NoError(t, c.run("reconcile"))
	assert.Contains(t, c.out.String(), "Repaired 1 event counter(s)")
	assert.Equal(t, 2, c.seededEvent(t).CurrentEntrants)
}

func TestDrawRequiresFlags(t *testing.T) {
	c := newCLI(t)
	assert.Error(t, c.run("draw", "--count", "1"))
	assert.Error(t, c.run("draw", "--event", "not-a-uuid", "--count", "1"))
}
