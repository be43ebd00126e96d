package booking

import (
	"time"

	"github.com/nathanael250/travooz-hms-sub004/internal/domain/guest"
)

type GuestContact struct {
	FullName    string `json:"full_name" validate:"notblank,max=120"`
	Email       string `json:"email" validate:"required,email,max=190"`
	Phone       string `json:"phone" validate:"omitempty,max=32"`
	Nationality string `json:"nationality" validate:"omitempty,max=64"`
}

type ChargeInput struct {
	ChargeType  ChargeType `json:"charge_type" validate:"required"`
	Description string     `json:"description" validate:"max=255"`
	UnitPrice   float64    `json:"unit_price"`
	Quantity    int        `json:"quantity" validate:"gte=1,lte=1000"`
}

type CreateBookingRequest struct {
	ServiceType       ServiceType   `json:"service_type" validate:"omitempty,oneof=room homestay other"`
	CheckIn           time.Time     `json:"check_in_date"`
	CheckOut          time.Time     `json:"check_out_date"`
	RoomTypeID        *int64        `json:"room_type_id"`
	HomestayID        *int64        `json:"homestay_id"`
	RoomUnitID        *int64        `json:"room_unit_id"`
	Guest             GuestContact  `json:"guest"`
	Adults            int           `json:"adults" validate:"gte=1,lte=20"`
	Children          int           `json:"children" validate:"gte=0,lte=20"`
	RatePerNight      float64       `json:"rate_per_night" validate:"gte=0"`
	TaxRate           float64       `json:"tax_rate" validate:"gte=0,lte=1"`
	ServiceChargeRate float64       `json:"service_charge_rate" validate:"gte=0,lte=1"`
	Discount          float64       `json:"discount" validate:"gte=0"`
	DepositAmount     float64       `json:"deposit_amount" validate:"gte=0"`
	SpecialRequests   string        `json:"special_requests" validate:"max=1000"`
	ExtraCharges      []ChargeInput `json:"extra_charges" validate:"dive"`
	CreatedBy         int64         `json:"-"`
}

type BookingSummary struct {
	BookingID     int64         `json:"booking_id"`
	RoomBookingID int64         `json:"room_booking_id"`
	GuestID       int64         `json:"guest_id"`
	ReferenceCode string        `json:"reference_code"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	RoomUnitID    int64         `json:"room_unit_id"`
	UnitNumber    string        `json:"unit_number"`
	AssignmentID  int64         `json:"assignment_id"`
	CheckInDate   time.Time     `json:"check_in_date"`
	CheckOutDate  time.Time     `json:"check_out_date"`
	Nights        int           `json:"nights"`
	FinalAmount   float64       `json:"final_amount"`
}

type BookingDetails struct {
	Booking     Booking         `json:"booking"`
	RoomBooking RoomBooking     `json:"room_booking"`
	Assignment  *RoomAssignment `json:"assignment,omitempty"`
	Guests      []guest.Profile `json:"guests"`
	Charges     []BookingCharge `json:"charges"`
}
