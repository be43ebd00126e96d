package guest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/nathanael250/travooz-hms-sub004/internal/pkg/dberr"
)

var ErrEmailRequired = errors.New("guest email is required")

type Repository struct {
	db *gorm.DB
}

// NewRepository binds to db, which may be a transaction handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindOrCreate returns the profile for c.Email, creating it when missing.
// A concurrent insert of the same email is resolved by re-reading the winner.
// The insert runs in a savepoint so a unique violation does not poison the
// caller's transaction.
func (r *Repository) FindOrCreate(ctx context.Context, c Contact) (*Profile, error) {
	email := NormalizeEmail(c.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	existing, err := r.FindByEmail(ctx, email)
	if err == nil {
		return r.fillMissing(ctx, existing, c)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find guest: %w", err)
	}

	p := &Profile{
		Email:       email,
		FullName:    strings.TrimSpace(c.FullName),
		Phone:       strings.TrimSpace(c.Phone),
		Nationality: strings.TrimSpace(c.Nationality),
	}
	createErr := r.db.WithContext(ctx).Transaction(func(sp *gorm.DB) error {
		return sp.Create(p).Error
	})
	if createErr == nil {
		return p, nil
	}
	if !dberr.IsUniqueViolation(createErr) {
		return nil, fmt.Errorf("create guest: %w", createErr)
	}

	winner, err := r.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("reload guest after conflict: %w", err)
	}
	return winner, nil
}

func (r *Repository) fillMissing(ctx context.Context, p *Profile, c Contact) (*Profile, error) {
	updates := map[string]any{}
	if p.Phone == "" && strings.TrimSpace(c.Phone) != "" {
		updates["phone"] = strings.TrimSpace(c.Phone)
	}
	if p.Nationality == "" && strings.TrimSpace(c.Nationality) != "" {
		updates["nationality"] = strings.TrimSpace(c.Nationality)
	}
	if len(updates) == 0 {
		return p, nil
	}
	if err := r.db.WithContext(ctx).Model(p).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update guest: %w", err)
	}
	return p, nil
}

func (r *Repository) Link(ctx context.Context, bookingID, guestID int64, primary bool) error {
	link := &BookingGuest{BookingID: bookingID, GuestID: guestID, IsPrimary: primary}
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *Repository) ListForBooking(ctx context.Context, bookingID int64) ([]Profile, error) {
	var out []Profile
	err := r.db.WithContext(ctx).
		Joins("JOIN booking_guests ON booking_guests.guest_id = guest_profiles.id").
		Where("booking_guests.booking_id = ?", bookingID).
		Order("booking_guests.is_primary DESC, guest_profiles.id ASC").
		Find(&out).Error
	return out, err
}
