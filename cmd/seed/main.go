package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nathanael250/travooz-hms-sub004/internal/config"
	"github.com/nathanael250/travooz-hms-sub004/internal/database"
	"github.com/nathanael250/travooz-hms-sub004/internal/domain/inventory"
	"github.com/nathanael250/travooz-hms-sub004/internal/pkg/jwt"
	"github.com/nathanael250/travooz-hms-sub004/internal/pkg/logger"
)

type roomTypeSeed struct {
	name      string
	price     float64
	occupancy int
	floors    []string
	perFloor  int
}

var catalog = []roomTypeSeed{
	{name: "Standard Double", price: 60, occupancy: 2, floors: []string{"1", "2"}, perFloor: 4},
	{name: "Deluxe King", price: 95, occupancy: 2, floors: []string{"3"}, perFloor: 3},
	{name: "Family Suite", price: 160, occupancy: 4, floors: []string{"4"}, perFloor: 2},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "seed failed:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.IsProdLike() {
		return fmt.Errorf("refusing to seed a %s environment", cfg.AppEnv)
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	ctx := context.Background()
	if err := seedInventory(ctx, db, log); err != nil {
		return err
	}

	// dev tokens for trying the API by hand
	j := jwt.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	for i, role := range []string{"front_desk", "housekeeping", "manager"} {
		token, err := j.GenerateToken(int64(i+1), role)
		if err != nil {
			return err
		}
		fmt.Printf("%-13s staff_id=%d  Bearer %s\n", role, i+1, token)
	}
	return nil
}

func seedInventory(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// clean old data, children first
		for _, table := range []string{
			"room_assignments", "booking_charges", "room_bookings", "booking_guests",
			"bookings", "guest_profiles", "audit_logs", "room_inventory", "room_types",
		} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clean %s: %w", table, err)
			}
		}

		repo := inventory.NewRepository(tx)
		units := 0
		for _, s := range catalog {
			rt := &inventory.RoomType{
				Name:         s.name,
				BasePrice:    s.price,
				MaxOccupancy: s.occupancy,
			}
			if err := repo.CreateRoomType(ctx, rt); err != nil {
				return err
			}
			for _, floor := range s.floors {
				for n := 1; n <= s.perFloor; n++ {
					u := &inventory.Unit{
						RoomTypeID: rt.ID,
						UnitNumber: fmt.Sprintf("%s%02d", floor, n),
						Floor:      floor,
						Status:     inventory.UnitAvailable,
					}
					if err := repo.CreateUnit(ctx, u); err != nil {
						return fmt.Errorf("unit %s: %w", u.UnitNumber, err)
					}
				}
				units += s.perFloor
			}
			log.Info("seeded room type", zap.String("name", rt.Name), zap.Int64("id", rt.ID))
		}
		log.Info("seed complete", zap.Int("units", units))
		return nil
	})
}
