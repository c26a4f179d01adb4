package main

import (
	"fmt"
	"os"

	"classtime/core/config"
	"classtime/core/database"
	"classtime/core/logger"
	"classtime/core/queue"
	"classtime/modules/booking"
	"classtime/modules/notification"

	"github.com/spf13/cobra"
)

var (
	// Version is set via ldflags during build
	Version = "dev"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "classtime-admin",
		Short:         "Operator tasks for the ClassTime booking service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newSweepCmd())
	return root
}

// connect loads configuration the same way the server does and opens the database.
func connect() (*config.Config, *database.Database, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger.Init(logger.Config{Level: cfg.Log.Level, JSONOutput: cfg.Log.JSON})

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

var migrateCommands = []string{"up", "down", "status", "version", "redo"}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version|redo]",
		Short:     "Apply or inspect the embedded database migrations",
		ValidArgs: migrateCommands,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := connect()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db.SQLx().DB, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", args[0])
			return nil
		},
	}
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Book newly published timeslots for students holding a recurring pattern",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := connect()
			if err != nil {
				return err
			}
			defer db.Close()

			var enqueuer queue.Enqueuer = queue.InlineEnqueuer{Handler: notification.NewService(db)}
			if cfg.Redis.Addr != "" {
				client := queue.NewClient(queue.RedisOpt(cfg.Redis))
				defer client.Close()
				enqueuer = client
			}

			resp, appErr := booking.NewService(db, enqueuer, cfg.Location()).SweepRecurring(cmd.Context())
			if appErr != nil {
				return appErr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d timeslots, booked %d\n", resp.Checked, resp.Booked)
			return nil
		},
	}
}
