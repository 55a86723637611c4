package database

import (
	"icetea/internal/events"
	"icetea/internal/lottery"
	"icetea/internal/notifications"
	"icetea/internal/users"
	"icetea/internal/waitlist"

	"gorm.io/gorm"
)

// Models lists every table the service owns, in creation order.
func Models() []interface{} {
	return []interface{}{
		&users.User{},
		&events.Event{},
		&waitlist.Entry{},
		&notifications.Notification{},
		&notifications.NotificationLog{},
		&lottery.DrawLog{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
