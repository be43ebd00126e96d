package booking

import (
	"time"
)

type ServiceType string

const (
	ServiceRoom     ServiceType = "room"
	ServiceHomestay ServiceType = "homestay"
	ServiceOther    ServiceType = "other"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Booking is the commercial record. Status changes only through the
// lifecycle operations in this package.
type Booking struct {
	ID              int64         `gorm:"primaryKey" json:"id"`
	ReferenceCode   string        `gorm:"size:16;not null;uniqueIndex" json:"reference_code"`
	ServiceType     ServiceType   `gorm:"size:16;not null" json:"service_type"`
	Status          Status        `gorm:"size:16;not null;index" json:"status"`
	PaymentStatus   PaymentStatus `gorm:"size:16;not null" json:"payment_status"`
	TotalAmount     float64       `gorm:"not null;default:0" json:"total_amount"`
	SpecialRequests string        `gorm:"type:text" json:"special_requests,omitempty"`
	CreatedBy       int64         `gorm:"index" json:"created_by"`
	ConfirmedAt     *time.Time    `json:"confirmed_at,omitempty"`
	CheckedInAt     *time.Time    `json:"checked_in_at,omitempty"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty"`
	CancelReason    string        `gorm:"size:255" json:"cancel_reason,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }

// RoomBooking holds the stay window and the money breakdown.
// FinalAmount = RoomSubtotal + TaxAmount + ServiceCharge - Discount + ExtraCharges.
type RoomBooking struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	BookingID         int64     `gorm:"not null;uniqueIndex" json:"booking_id"`
	RoomTypeID        *int64    `gorm:"index" json:"room_type_id,omitempty"`
	RoomUnitID        int64     `gorm:"not null;index" json:"room_unit_id"`
	CheckInDate       time.Time `gorm:"not null" json:"check_in_date"`
	CheckOutDate      time.Time `gorm:"not null" json:"check_out_date"`
	Nights            int       `gorm:"not null" json:"nights"`
	Adults            int       `gorm:"not null;default:1" json:"adults"`
	Children          int       `gorm:"not null;default:0" json:"children"`
	RatePerNight      float64   `gorm:"not null" json:"rate_per_night"`
	RoomSubtotal      float64   `gorm:"not null" json:"room_subtotal"`
	TaxRate           float64   `gorm:"not null;default:0" json:"tax_rate"`
	TaxAmount         float64   `gorm:"not null;default:0" json:"tax_amount"`
	ServiceChargeRate float64   `gorm:"not null;default:0" json:"service_charge_rate"`
	ServiceCharge     float64   `gorm:"not null;default:0" json:"service_charge"`
	Discount          float64   `gorm:"not null;default:0" json:"discount"`
	ExtraCharges      float64   `gorm:"not null;default:0" json:"extra_charges"`
	DepositAmount     float64   `gorm:"not null;default:0" json:"deposit_amount"`
	FinalAmount       float64   `gorm:"not null" json:"final_amount"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (RoomBooking) TableName() string { return "room_bookings" }

type ChargeType string

const (
	ChargeExtraBed       ChargeType = "extra_bed"
	ChargeLateCheckout   ChargeType = "late_checkout"
	ChargeEarlyCheckin   ChargeType = "early_checkin"
	ChargeServiceRequest ChargeType = "service_request"
	ChargeMinibar        ChargeType = "minibar"
	ChargeRoomService    ChargeType = "room_service"
	ChargeLaundry        ChargeType = "laundry"
	ChargeDamage         ChargeType = "damage"
	ChargeAdjustment     ChargeType = "adjustment"
	ChargeOther          ChargeType = "other"
)

var ChargeTypes = []ChargeType{
	ChargeExtraBed, ChargeLateCheckout, ChargeEarlyCheckin, ChargeServiceRequest,
	ChargeMinibar, ChargeRoomService, ChargeLaundry, ChargeDamage, ChargeAdjustment, ChargeOther,
}

func (t ChargeType) IsValid() bool {
	for _, known := range ChargeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// BookingCharge is an append-only ledger row. Corrections are new rows of
// type adjustment with a negative unit price.
type BookingCharge struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	BookingID   int64      `gorm:"not null;index" json:"booking_id"`
	ChargeType  ChargeType `gorm:"size:32;not null" json:"charge_type"`
	Description string     `gorm:"size:255" json:"description,omitempty"`
	UnitPrice   float64    `gorm:"not null" json:"unit_price"`
	Quantity    int        `gorm:"not null" json:"quantity"`
	TotalAmount float64    `gorm:"not null" json:"total_amount"`
	ChargedBy   int64      `json:"charged_by"`
	ChargedAt   time.Time  `gorm:"not null" json:"charged_at"`
}

func (BookingCharge) TableName() string { return "booking_charges" }

type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "assigned"
	AssignmentCheckedIn  AssignmentStatus = "checked_in"
	AssignmentCheckedOut AssignmentStatus = "checked_out"
	AssignmentReleased   AssignmentStatus = "released"
)

// activeAssignmentStatuses hold a unit for their window.
var activeAssignmentStatuses = []AssignmentStatus{AssignmentAssigned, AssignmentCheckedIn}

func (s AssignmentStatus) IsActive() bool {
	return s == AssignmentAssigned || s == AssignmentCheckedIn
}

// RoomAssignment binds a booking to a unit. The stay window is copied from
// the room booking so overlap checks and the database exclusion constraint
// work on a single table.
type RoomAssignment struct {
	ID                int64            `gorm:"primaryKey" json:"id"`
	BookingID         int64            `gorm:"not null;index" json:"booking_id"`
	RoomUnitID        int64            `gorm:"not null;index:idx_assignment_unit_window" json:"room_unit_id"`
	CheckInDate       time.Time        `gorm:"not null;index:idx_assignment_unit_window" json:"check_in_date"`
	CheckOutDate      time.Time        `gorm:"not null;index:idx_assignment_unit_window" json:"check_out_date"`
	Status            AssignmentStatus `gorm:"size:16;not null;index" json:"status"`
	AssignedBy        int64            `json:"assigned_by"`
	AssignedAt        time.Time        `gorm:"not null" json:"assigned_at"`
	CheckedInAt       *time.Time       `json:"checked_in_at,omitempty"`
	CheckedOutAt      *time.Time       `json:"checked_out_at,omitempty"`
	ReleasedAt        *time.Time       `json:"released_at,omitempty"`
	CheckoutCondition string           `gorm:"size:255" json:"checkout_condition,omitempty"`
	Notes             string           `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func (RoomAssignment) TableName() string { return "room_assignments" }

// Models lists every table owned by this package, in migration order.
func Models() []any {
	return []any{&Booking{}, &RoomBooking{}, &BookingCharge{}, &RoomAssignment{}}
}
