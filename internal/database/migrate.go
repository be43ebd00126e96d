package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/nathanael250/travooz-hms-sub004/internal/domain/audit"
	"github.com/nathanael250/travooz-hms-sub004/internal/domain/booking"
	"github.com/nathanael250/travooz-hms-sub004/internal/domain/guest"
	"github.com/nathanael250/travooz-hms-sub004/internal/domain/inventory"
)

const overlapConstraint = "no_overlapping_assignments"

func Models() []any {
	models := []any{
		&inventory.RoomType{},
		&inventory.Unit{},
		&guest.Profile{},
		&guest.BookingGuest{},
		&audit.Log{},
	}
	return append(models, booking.Models()...)
}

// Migrate creates the schema. On PostgreSQL it also installs an exclusion
// constraint so two active assignments can never overlap on one unit.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return migrateOverlapConstraint(db)
}

func migrateOverlapConstraint(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		return fmt.Errorf("btree_gist: %w", err)
	}

	var n int64
	if err := db.Raw("SELECT count(*) FROM pg_constraint WHERE conname = ?", overlapConstraint).Scan(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	stmt := fmt.Sprintf(`ALTER TABLE room_assignments ADD CONSTRAINT %s
		EXCLUDE USING gist (
			room_unit_id WITH =,
			tstzrange(check_in_date, check_out_date, '[)') WITH &&
		) WHERE (status IN ('%s', '%s'))`,
		overlapConstraint, booking.AssignmentAssigned, booking.AssignmentCheckedIn)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("add %s: %w", overlapConstraint, err)
	}
	return nil
}
