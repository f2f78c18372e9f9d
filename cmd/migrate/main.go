package main

import (
	"log"
	"os"

	"givehub-be/internal/model"
	"givehub-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: Extensions & Enums (Things GORM AutoMigrate doesn't do perfectly)
	color.Cyan("Step 1: Setting up Extensions and Enums...")

	setupSQL := []string{
		// Extensions
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,

		// Enums (Idempotent creation)
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'donation_status') THEN CREATE TYPE donation_status AS ENUM ('pending', 'completed', 'failed', 'requires_action', 'cancelled', 'refunded', 'partial_refund'); END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'donation_type') THEN CREATE TYPE donation_type AS ENUM ('one_time', 'subscription'); END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'subscription_status') THEN CREATE TYPE subscription_status AS ENUM ('active', 'paused', 'cancelled'); END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'billing_frequency') THEN CREATE TYPE billing_frequency AS ENUM ('weekly', 'monthly', 'quarterly', 'yearly'); END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'receipt_kind') THEN CREATE TYPE receipt_kind AS ENUM ('donation', 'annual'); END IF; END $$;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			color.Yellow("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models (The Core Task)
	color.Cyan("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.Campaign{},
		&model.Donation{},
		&model.Subscription{},
		&model.SubscriptionLog{},
		&model.GatewayEvent{},
		&model.Receipt{},
		&model.ReceiptCounter{},
	}

	// Migrate strictly
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: Views
	color.Cyan("Step 3: Creating Views...")

	postMigrationSQL := []string{
		// View: campaign_donation_history
		`CREATE OR REPLACE VIEW campaign_donation_history AS
		 SELECT d.campaign_id, d.transaction_id, d.donor_email, d.amount, d.net_amount, d.refunded_amount, d.status, d.completed_at
		 FROM donations d
		 WHERE d.status IN ('completed', 'partial_refund', 'refunded')
		 ORDER BY d.completed_at DESC;`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			color.Yellow("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	color.Green("✅ Success: Database migration completed successfully via GORM.")
}
