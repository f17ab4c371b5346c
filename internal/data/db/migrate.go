package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/transfermarket-backend/internal/domain/market"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(

		// =========================
		// Identity
		// =========================
		&types.User{},

		// =========================
		// Read models (projector owned)
		// =========================
		&types.Team{},
		&types.Player{},

		// =========================
		// Market
		// =========================
		&types.TransferListing{},

		// =========================
		// Event log
		// =========================
		&types.StoredEvent{},
	); err != nil {
		return err
	}
	return ensureConstraints(db)
}

func ensureConstraints(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}
	if err := db.Exec(`
		DO $$ BEGIN
			ALTER TABLE transfer_listings
				ADD CONSTRAINT chk_transfer_listing_unique_key
				CHECK ((status = 'active') = (unique_key IS NOT NULL));
		EXCEPTION WHEN duplicate_object THEN NULL;
		END $$;
	`).Error; err != nil {
		return fmt.Errorf("transfer_listings unique_key check: %w", err)
	}
	if err := db.Exec(`
		DO $$ BEGIN
			ALTER TABLE teams ADD CONSTRAINT chk_team_balance_non_negative CHECK (balance >= 0);
		EXCEPTION WHEN duplicate_object THEN NULL;
		END $$;
	`).Error; err != nil {
		return fmt.Errorf("teams balance check: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_stored_event_type_position ON stored_events(event_type, position);`).Error; err != nil {
		return fmt.Errorf("stored_events type index: %w", err)
	}
	return nil
}
