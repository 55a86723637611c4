package main

import (
	"context"
	"fmt"
	"io"

	"icetea/internal/events"
	"icetea/internal/shared/database"
	"icetea/internal/users"
	"icetea/internal/waitlist"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// demoSecret is the device secret of every seeded account.
const demoSecret = "icetea-demo-device-secret"

type Seeder struct {
	db      *gorm.DB
	out     io.Writer
	entries waitlist.Repository
}

type seedOptions struct {
	clean    bool
	name     string
	capacity int
	entrants int
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	so := &seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo organizer, an event and a waiting list",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Migrate(opts.db); err != nil {
				return err
			}
			s := &Seeder{
				db:      opts.db,
				out:     cmd.OutOrStdout(),
				entries: waitlist.NewRepository(opts.db, opts.clock),
			}
			if so.clean {
				fmt.Fprintln(s.out, "Cleaning database...")
				if err := s.CleanDatabase(); err != nil {
					return err
				}
			}
			eventID, err := s.SeedAll(cmd.Context(), so)
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Seeding completed. Event %s is ready for a draw.\n", eventID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&so.clean, "clean", false, "truncate all tables first (PostgreSQL only)")
	cmd.Flags().StringVar(&so.name, "name", "Community swim lessons", "event name")
	cmd.Flags().IntVar(&so.capacity, "capacity", 0, "waiting list capacity, 0 for unlimited")
	cmd.Flags().IntVar(&so.entrants, "entrants", 25, "number of entrants to put on the waiting list")
	return cmd
}

// CleanDatabase truncates every application table
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"draw_logs",
		"notification_logs",
		"notifications",
		"waitlist_entries",
		"events",
		"users",
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Fprintf(s.out, "  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedAll seeds an organizer, one event and its entrants and returns the
// event id.
func (s *Seeder) SeedAll(ctx context.Context, so *seedOptions) (uuid.UUID, error) {
	if so.capacity > 0 && so.entrants > so.capacity {
		return uuid.Nil, fmt.Errorf("cannot seed %d entrants into a list of %d", so.entrants, so.capacity)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoSecret), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash device secret: %w", err)
	}

	organizer, err := s.SeedUser(ctx, "demo-organizer", "Demo Organizer", users.RoleAdmin, hash)
	if err != nil {
		return uuid.Nil, err
	}

	event := &events.Event{
		OrganizerID: organizer.ID,
		Name:        so.name,
		Description: "Seeded event",
	}
	if so.capacity > 0 {
		c := so.capacity
		event.Capacity = &c
	}
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to create event: %w", err)
	}
	fmt.Fprintf(s.out, "  Created event: %s (%s)\n", event.Name, event.ID)

	for i := 1; i <= so.entrants; i++ {
		id := fmt.Sprintf("demo-entrant-%03d", i)
		if _, err := s.SeedUser(ctx, id, fmt.Sprintf("Entrant %d", i), users.RoleUser, hash); err != nil {
			return uuid.Nil, err
		}
		if _, _, err := s.entries.Join(ctx, event.ID, id, nil); err != nil {
			return uuid.Nil, fmt.Errorf("failed to add %s to the waiting list: %w", id, err)
		}
	}
	fmt.Fprintf(s.out, "  Added %d entrant(s) to the waiting list\n", so.entrants)
	return event.ID, nil
}

// SeedUser creates the user unless a user with that id already exists.
func (s *Seeder) SeedUser(ctx context.Context, id, name string, role users.Role, hash []byte) (*users.User, error) {
	user := &users.User{
		ID:               id,
		DisplayName:      name,
		Role:             role,
		DeviceSecretHash: string(hash),
	}
	res := s.db.WithContext(ctx).Where(users.User{ID: id}).FirstOrCreate(user)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", id, res.Error)
	}
	return user, nil
}
