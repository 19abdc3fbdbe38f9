package main

import (
	"fmt"
	"net/url"

	"classlink-portal/internal/config"
	"classlink-portal/internal/db"
	"classlink-portal/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type options struct {
	port        string
	databaseURL string
}

func rootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "classlink",
		Short: "student class link portal",
		Example: `classlink serve --port 8000
classlink import roster.csv
classlink reset-links --class JSS1
classlink migrate`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.port, "port", "", "HTTP port (overrides PORT)")
	root.PersistentFlags().StringVar(&opts.databaseURL, "db", "", "database path or postgres URL (overrides DATABASE_URL)")

	root.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	root.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false

	root.AddCommand(serveCmd(opts))
	root.AddCommand(importCmd(opts))
	root.AddCommand(resetLinksCmd(opts))
	root.AddCommand(migrateCmd(opts))
	return root
}

// loadConfig reads the environment and applies the command-line overrides.
func loadConfig(opts *options) *config.Config {
	cfg := config.Load()
	if opts.port != "" {
		cfg.Port = opts.port
	}
	if opts.databaseURL != "" {
		cfg.DatabaseURL = opts.databaseURL
	}
	cfg.ConfigureLogging()
	return cfg
}

// openStore connects and migrates the database. The returned func closes it.
func openStore(cfg *config.Config) (*models.Store, func(), error) {
	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closeDB := func() {
		if err := db.Close(gdb); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}
	if err := db.RunMigrations(gdb); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return models.NewStore(gdb), closeDB, nil
}

func migrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, closeDB, err := openStore(loadConfig(opts))
			if err != nil {
				return err
			}
			closeDB()
			return nil
		},
	}
}

// redactDatabaseURL hides the password of a postgres URL for logging.
func redactDatabaseURL(databaseURL string) string {
	if !db.IsPostgresURL(databaseURL) {
		return databaseURL
	}
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "postgres://..."
	}
	return u.Redacted()
}
