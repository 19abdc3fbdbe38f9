// Seeder command for populating demo students and class links.
//
// SAFETY: This command ONLY runs when:
//   - APP_ENV=development
//   - --confirm flag is provided
//
// Usage:
//
//	APP_ENV=development go run ./cmd/seed --count 25 --confirm
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"classlink-portal/internal/config"
	"classlink-portal/internal/db"
	"classlink-portal/internal/links"
	"classlink-portal/internal/models"
	"classlink-portal/internal/roster"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var classNames = []string{"JSS1", "JSS2", "JSS3", "SS1", "SS2", "SS3"}

var firstNames = []string{"Ada", "Bola", "Chidi", "Dupe", "Emeka", "Funke", "Gbenga", "Halima", "Ike", "Jumoke"}

func main() {
	if err := seedCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func seedCmd() *cobra.Command {
	var count int
	var confirm bool

	command := &cobra.Command{
		Use:          "seed",
		Short:        "seed demo students and links (development only)",
		Example:      "APP_ENV=development seed --count 25 --confirm",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if os.Getenv("APP_ENV") != "development" {
				return errors.New("seeder can only run with APP_ENV=development")
			}
			if !confirm {
				return errors.New("--confirm flag is required to run seeder")
			}
			if count < 1 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}

			cfg := config.Load()
			cfg.ConfigureLogging()

			gdb, err := db.Open(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close(gdb)
			if err := db.RunMigrations(gdb); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			return seed(cmd.Context(), models.NewStore(gdb), count)
		},
	}
	command.Flags().IntVar(&count, "count", 25, "number of students to seed")
	command.Flags().BoolVar(&confirm, "confirm", false, "confirm seeding (required)")
	return command
}

func seed(ctx context.Context, store *models.Store, count int) error {
	students := roster.NewManager(store)
	linkManager := links.NewManager(store)

	inserted, skipped := 0, 0
	for i := 0; i < count; i++ {
		className := classNames[i%len(classNames)]
		name := firstNames[i%len(firstNames)] + " " + strconv.Itoa(i+1)
		admission := fmt.Sprintf("DEMO%04d", i+1)

		res, err := students.AddStudent(ctx, name, admission, className)
		if err != nil {
			return fmt.Errorf("seed student %s: %w", admission, err)
		}
		if res == models.SkippedDuplicate {
			skipped++
		} else {
			inserted++
		}
	}

	for _, className := range classNames {
		if _, err := linkManager.ActiveLink(ctx, className); err == nil {
			continue
		} else if !errors.Is(err, models.ErrNoActiveLink) {
			return err
		}
		link, err := linkManager.CreateLink(ctx, className+" demo form", "https://forms.example/"+className, className)
		if err != nil {
			return err
		}
		if _, err := linkManager.SetActiveLink(ctx, strconv.FormatUint(uint64(link.ID), 10), className); err != nil {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"inserted": inserted,
		"skipped":  skipped,
		"classes":  len(classNames),
	}).Info("Seeding complete")
	return nil
}
