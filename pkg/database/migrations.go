package database

import (
	"agroplan/internal/activity"
	"agroplan/internal/auth"
	"agroplan/internal/crop"
	"agroplan/internal/inventory"
	"agroplan/internal/template"

	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&auth.User{},
		// Crop models
		&crop.Field{},
		&crop.Crop{},
		// Template models
		&template.ActivityTemplate{},
		&template.TemplateMaterialLine{},
		// Activity models
		&activity.Activity{},
		// Inventory models
		&inventory.Material{},
		&inventory.MaterialTransaction{},
		&inventory.MaterialReservation{},
	)
	if err != nil {
		return err
	}

	return createIndexes(db)
}

func createIndexes(db *gorm.DB) error {
	// Index for activity lookup by crop and status, used on every
	// reservation settlement
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_activities_crop_status
		ON activities (crop_id, status)
	`).Error; err != nil {
		return err
	}

	// Index for reservation settlement by activity
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reservations_activity_status
		ON material_reservations (activity_id, status)
	`).Error; err != nil {
		return err
	}

	// Index for the reserved-counter recomputation during audit/repair
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reservations_material_status
		ON material_reservations (material_id, status)
	`).Error; err != nil {
		return err
	}

	// Index for ledger listing per material
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transactions_material_created
		ON material_transactions (material_id, created_at)
	`).Error; err != nil {
		return err
	}

	// Index for template resolution: defaults have user_id IS NULL
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_templates_stage_type
		ON activity_templates (stage, activity_type)
	`).Error; err != nil {
		return err
	}

	return nil
}
