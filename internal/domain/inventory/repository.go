package inventory

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

// NewRepository binds to db, which may be a transaction handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateRoomType(ctx context.Context, rt *RoomType) error {
	return r.db.WithContext(ctx).Create(rt).Error
}

func (r *Repository) CreateUnit(ctx context.Context, u *Unit) error {
	if u.Status == "" {
		u.Status = UnitAvailable
	}
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *Repository) GetUnit(ctx context.Context, id int64) (*Unit, error) {
	var u Unit
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}
	return &u, nil
}

// LockUnit reads the unit with a row lock held until the surrounding
// transaction ends.
func (r *Repository) LockUnit(ctx context.Context, id int64) (*Unit, error) {
	var u Unit
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status UnitStatus) error {
	return r.db.WithContext(ctx).
		Model(&Unit{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *Repository) ListUnits(ctx context.Context, f UnitFilter) ([]Unit, error) {
	q := r.db.WithContext(ctx).Model(&Unit{})
	if f.RoomTypeID != nil {
		q = q.Where("room_inventory.room_type_id = ?", *f.RoomTypeID)
	}
	if f.HomestayID != nil {
		q = q.Joins("JOIN room_types ON room_types.id = room_inventory.room_type_id").
			Where("room_types.homestay_id = ?", *f.HomestayID)
	}
	if f.Status != nil {
		q = q.Where("room_inventory.status = ?", *f.Status)
	}

	var units []Unit
	if err := q.Order("room_inventory.unit_number ASC").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

func (r *Repository) GetRoomType(ctx context.Context, id int64) (*RoomType, error) {
	var rt RoomType
	if err := r.db.WithContext(ctx).First(&rt, id).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}
