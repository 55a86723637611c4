package database

import (
	"testing"

	"icetea/internal/shared/testutil"
	"icetea/internal/waitlist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCreatesSchema(t *testing.T) {
	db := testutil.NewDB(t)

	require.NoError(t, Migrate(db))
	// reruns are harmless
	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "events", "waitlist_entries", "notifications", "notification_logs", "draw_logs"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&waitlist.Entry{}, "idx_waitlist_entries_waiting"))
}
