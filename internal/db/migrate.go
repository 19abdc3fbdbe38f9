package db

import (
	"fmt"

	"classlink-portal/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type migration struct {
	version string
	apply   func(tx *gorm.DB) error
}

// Migrations are applied in order and recorded in schema_migrations, so each
// step runs at most once per database.
var migrations = []migration{
	{
		version: "0001_create_students_and_links",
		apply: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&models.Student{}, &models.LinkRecord{})
		},
	},
	{
		version: "0002_one_active_link_per_class",
		apply: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE UNIQUE INDEX IF NOT EXISTS idx_links_one_active_per_class
				ON links (class_name) WHERE is_active
			`).Error
		},
	},
}

func RunMigrations(gdb *gorm.DB) error {
	if gdb == nil {
		return fmt.Errorf("database connection not initialized")
	}

	if err := gdb.AutoMigrate(&models.SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int64
		err := gdb.Model(&models.SchemaMigration{}).Where("version = ?", m.version).Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			logrus.Debugf("Migration %s already applied, skipping", m.version)
			continue
		}

		logrus.Infof("Applying migration: %s", m.version)
		err = gdb.Transaction(func(tx *gorm.DB) error {
			if err := m.apply(tx); err != nil {
				return err
			}
			return tx.Create(&models.SchemaMigration{Version: m.version}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.version, err)
		}
		logrus.Infof("Migration %s applied successfully", m.version)
	}

	return nil
}
