package guest

import (
	"strings"
	"time"
)

// Profile is a guest identity, unique by normalized email.
type Profile struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"size:190;not null;uniqueIndex" json:"email"`
	FullName    string    `gorm:"size:120;not null" json:"full_name"`
	Phone       string    `gorm:"size:32" json:"phone,omitempty"`
	Nationality string    `gorm:"size:64" json:"nationality,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "guest_profiles" }

type BookingGuest struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	BookingID int64     `gorm:"not null;uniqueIndex:idx_booking_guest" json:"booking_id"`
	GuestID   int64     `gorm:"not null;uniqueIndex:idx_booking_guest;index" json:"guest_id"`
	IsPrimary bool      `gorm:"not null;default:false" json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}

func (BookingGuest) TableName() string { return "booking_guests" }

type Contact struct {
	FullName    string
	Email       string
	Phone       string
	Nationality string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
