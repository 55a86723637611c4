package database

import (
	"fmt"
	"strings"

	"icetea/internal/waitlist"

	"gorm.io/gorm"
)

const entryStatusConstraint = "chk_waitlist_entries_status"

// MigrateConstraints adds what AutoMigrate cannot express: the status domain of
// waitlist entries and a partial index over the WAITING pool that draws and
// replacements scan.
func MigrateConstraints(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" && !db.Migrator().HasConstraint(&waitlist.Entry{}, entryStatusConstraint) {
		quoted := make([]string, len(waitlist.AllStatuses))
		for i, s := range waitlist.AllStatuses {
			quoted[i] = "'" + string(s) + "'"
		}
		err := db.Exec(fmt.Sprintf(
			"ALTER TABLE waitlist_entries ADD CONSTRAINT %s CHECK (status IN (%s))",
			entryStatusConstraint, strings.Join(quoted, ", "),
		)).Error
		if err != nil {
			return fmt.Errorf("add %s: %w", entryStatusConstraint, err)
		}
	}

	err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_waitlist_entries_waiting
		ON waitlist_entries (event_id, joined_at, user_id)
		WHERE status = 'WAITING'
	`).Error
	if err != nil {
		return fmt.Errorf("create waiting pool index: %w", err)
	}
	return nil
}
