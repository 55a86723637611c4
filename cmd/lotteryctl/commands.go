package main

import (
	"fmt"
	"strings"

	"icetea/internal/shared/database"
	"icetea/internal/waitlist"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Migrate(opts.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		},
	}
}

func newDrawCommand(opts *rootOptions) *cobra.Command {
	var (
		eventID string
		count   int
		seed    int64
	)
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Select winners from an event's waiting list",
		Long: `Draw selects exactly --count WAITING entrants uniformly at random and
marks them SELECTED. An event can only be drawn once.

Examples:
  lotteryctl draw --event 6f1c... --count 20
  lotteryctl draw --event 6f1c... --count 20 --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(eventID)
			if err != nil {
				return fmt.Errorf("invalid event id %q: %w", eventID, err)
			}
			if seed == 0 {
				seed = opts.cfg.Lottery.RandomSeed
			}

			engine := opts.engine(seed)
			winners, err := engine.Draw(cmd.Context(), id, count)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Drew %d winner(s) for event %s\n", len(winners), id)
			for _, w := range winners {
				fmt.Fprintf(out, "  %s\n", w)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&eventID, "event", "", "event id (required)")
	cmd.Flags().IntVar(&count, "count", 0, "number of winners (required)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed the random source for a reproducible draw")
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("count")
	return cmd
}

func newReplaceCommand(opts *rootOptions) *cobra.Command {
	var eventID, userID string
	cmd := &cobra.Command{
		Use:   "replace",
		Short: "Fill the spot a declined or cancelled winner left open",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(eventID)
			if err != nil {
				return fmt.Errorf("invalid event id %q: %w", eventID, err)
			}

			engine := opts.engine(opts.cfg.Lottery.RandomSeed)
			promoted, err := engine.Replace(cmd.Context(), id, strings.TrimSpace(userID))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Promoted %s in place of %s\n", promoted, userID)
			return nil
		},
	}

	cmd.Flags().StringVar(&eventID, "event", "", "event id (required)")
	cmd.Flags().StringVar(&userID, "user", "", "user id of the vacating winner (required)")
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newReconcileCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute every event's entrant counter from its entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := waitlist.NewRepository(opts.db, opts.clock)
			repaired, err := entries.ReconcileCounters(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Repaired %d event counter(s)\n", repaired)
			return nil
		},
	}
}
