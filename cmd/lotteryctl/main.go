// Command lotteryctl runs waitlist maintenance and lottery operations against
// the application database without going through the HTTP API.
package main

import (
	"fmt"
	"io"
	"os"

	"icetea/internal/lottery"
	"icetea/internal/notifications"
	"icetea/internal/shared/config"
	"icetea/internal/shared/database"
	"icetea/internal/users"
	"icetea/internal/waitlist"
	"icetea/pkg/clock"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// rootOptions holds global state shared by all subcommands.
type rootOptions struct {
	out    io.Writer
	cfg    *config.Config
	db     *gorm.DB
	clock  clock.Clock
	openDB func(cfg *config.Config) (*gorm.DB, error)
}

func main() {
	cmd := newRootCommand(&rootOptions{
		out:    os.Stdout,
		clock:  clock.NewSystem(),
		openDB: database.OpenPostgres,
	})
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lotteryctl",
		Short:         "Operate event waiting lists and lottery draws",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// a missing .env is fine; the environment may already be set
			_ = godotenv.Load()
			opts.cfg = config.Load()

			db, err := opts.openDB(opts.cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			opts.db = db
			return nil
		},
	}
	cmd.SetOut(opts.out)

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newDrawCommand(opts))
	cmd.AddCommand(newReplaceCommand(opts))
	cmd.AddCommand(newReconcileCommand(opts))
	return cmd
}

// engine wires a lottery engine the same way the server does, minus the
// Kafka hand-off. seed 0 means runtime randomness.
func (o *rootOptions) engine(seed int64) lottery.Engine {
	entries := waitlist.NewRepository(o.db, o.clock)
	dispatcher := notifications.NewDispatcher(
		notifications.NewRepository(o.db),
		users.NewRepository(o.db),
		entries,
		nil,
		o.clock,
		nil,
	)

	rng := lottery.NewRuntimeSource()
	if seed != 0 {
		rng = lottery.NewSeededSource(uint64(seed))
	}
	engine := lottery.NewEngine(o.db, entries, dispatcher, rng, o.clock, nil,
		&lottery.EngineConfig{NotifyNotSelected: o.cfg.Lottery.NotifyNotSelected})
	return engine
}
