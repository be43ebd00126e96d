package inventory

import "time"

type UnitStatus string

const (
	UnitAvailable   UnitStatus = "available"
	UnitOccupied    UnitStatus = "occupied"
	UnitCleaning    UnitStatus = "cleaning"
	UnitMaintenance UnitStatus = "maintenance"
	UnitBlocked     UnitStatus = "blocked"
)

func (s UnitStatus) IsValid() bool {
	switch s {
	case UnitAvailable, UnitOccupied, UnitCleaning, UnitMaintenance, UnitBlocked:
		return true
	}
	return false
}

// Bookable reports whether a unit in this status may receive new assignments.
// Occupied and cleaning units are still bookable for future windows.
func (s UnitStatus) Bookable() bool {
	return s.IsValid() && s != UnitMaintenance && s != UnitBlocked
}

// NonBookableStatuses is the set excluded by availability queries.
var NonBookableStatuses = []UnitStatus{UnitMaintenance, UnitBlocked}

// housekeeping moves; occupied is owned by the booking lifecycle.
var housekeepingTransitions = map[UnitStatus][]UnitStatus{
	UnitAvailable:   {UnitMaintenance, UnitBlocked, UnitCleaning},
	UnitCleaning:    {UnitAvailable, UnitMaintenance},
	UnitMaintenance: {UnitAvailable, UnitCleaning},
	UnitBlocked:     {UnitAvailable, UnitMaintenance},
	UnitOccupied:    {},
}

func (s UnitStatus) CanHousekeepTo(to UnitStatus) bool {
	for _, allowed := range housekeepingTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

type RoomType struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	HomestayID   *int64    `gorm:"index" json:"homestay_id,omitempty"`
	Name         string    `gorm:"size:120;not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	BasePrice    float64   `gorm:"not null;default:0" json:"base_price"`
	MaxOccupancy int       `gorm:"not null;default:2" json:"max_occupancy"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (RoomType) TableName() string { return "room_types" }

// Unit is one physical, bookable room.
type Unit struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	RoomTypeID int64      `gorm:"not null;index" json:"room_type_id"`
	UnitNumber string     `gorm:"size:32;not null;uniqueIndex" json:"unit_number"`
	Floor      string     `gorm:"size:16" json:"floor,omitempty"`
	Status     UnitStatus `gorm:"size:16;not null;default:available;index" json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Unit) TableName() string { return "room_inventory" }

// UnitStatusEvent is published after a committed status change.
type UnitStatusEvent struct {
	UnitID     int64      `json:"unit_id"`
	UnitNumber string     `json:"unit_number"`
	RoomTypeID int64      `json:"room_type_id"`
	From       UnitStatus `json:"from"`
	To         UnitStatus `json:"to"`
	BookingID  *int64     `json:"booking_id,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	At         time.Time  `json:"at"`
}

func NewStatusEvent(u *Unit, from UnitStatus, reason string, at time.Time) UnitStatusEvent {
	return UnitStatusEvent{
		UnitID:     u.ID,
		UnitNumber: u.UnitNumber,
		RoomTypeID: u.RoomTypeID,
		From:       from,
		To:         u.Status,
		Reason:     reason,
		At:         at.UTC(),
	}
}

type UnitFilter struct {
	RoomTypeID *int64
	HomestayID *int64
	Status     *UnitStatus
}
