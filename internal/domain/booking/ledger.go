package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nathanael250/travooz-hms-sub004/internal/domain/audit"
	"github.com/nathanael250/travooz-hms-sub004/internal/pkg/validator"
)

func validateCharge(in ChargeInput, prefix string) error {
	if errs := validator.Validate(in); errs != nil {
		field, tag := validator.First(errs)
		return invalid(prefix+field, "failed "+tag+" check")
	}
	if !in.ChargeType.IsValid() {
		return invalid(prefix+"charge_type", "unknown charge type")
	}
	if in.UnitPrice == 0 {
		return invalid(prefix+"unit_price", "must not be zero")
	}
	if in.UnitPrice < 0 && in.ChargeType != ChargeAdjustment {
		return invalid(prefix+"unit_price", "negative amounts are only allowed for adjustments")
	}
	return nil
}

// newCharge builds a ledger row. chargedBy is the authenticated actor.
func newCharge(bookingID int64, in ChargeInput, chargedBy int64, at time.Time) BookingCharge {
	return BookingCharge{
		BookingID:   bookingID,
		ChargeType:  in.ChargeType,
		Description: strings.TrimSpace(in.Description),
		UnitPrice:   in.UnitPrice,
		Quantity:    in.Quantity,
		TotalAmount: chargeTotal(in.UnitPrice, in.Quantity),
		ChargedBy:   chargedBy,
		ChargedAt:   at.UTC(),
	}
}

// refreshTotals recomputes the room booking money fields from the ledger and
// mirrors FinalAmount onto the booking. The caller saves b.
func refreshTotals(ctx context.Context, store *Store, b *Booking) (*RoomBooking, error) {
	rb, err := store.GetRoomBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	extras, err := store.SumCharges(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	rb.ExtraCharges = extras
	rb.recompute()
	if err := store.SaveRoomBooking(ctx, rb); err != nil {
		return nil, err
	}
	b.TotalAmount = rb.FinalAmount
	return rb, nil
}

// AddCharge appends a ledger row recorded under actorID and recomputes
// totals. Cancelled bookings accept no charges.
func (s *Service) AddCharge(ctx context.Context, bookingID int64, in ChargeInput, actorID int64) (*BookingCharge, error) {
	const op = "add_charge"

	if err := validateCharge(in, ""); err != nil {
		return nil, s.fail(op, err)
	}

	var charge BookingCharge
	fx := &effects{}
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		store := NewStore(tx)
		b, err := store.LockBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status == StatusCancelled {
			return fmt.Errorf("%w: booking %d is cancelled", ErrInvalidState, b.ID)
		}

		charge = newCharge(b.ID, in, actorID, s.now())
		if err := store.AppendCharge(ctx, &charge); err != nil {
			return err
		}
		before := b.TotalAmount
		if _, err := refreshTotals(ctx, store, b); err != nil {
			return err
		}
		if err := store.SaveBooking(ctx, b); err != nil {
			return err
		}

		fx.record(audit.Entry{
			ActorID:      actorID,
			Action:       "booking.charge_added",
			ResourceType: "booking",
			ResourceID:   b.ID,
			Before:       map[string]any{"total_amount": before},
			After:        map[string]any{"total_amount": b.TotalAmount, "charge": charge},
		})
		return nil
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.flush(ctx, fx)
	return &charge, nil
}

func (s *Service) ListCharges(ctx context.Context, bookingID int64) ([]BookingCharge, error) {
	store := NewStore(s.db)
	if _, err := store.GetBooking(ctx, bookingID); err != nil {
		return nil, s.readErr("list_charges", err)
	}
	charges, err := store.ListCharges(ctx, bookingID)
	if err != nil {
		return nil, s.readErr("list_charges", err)
	}
	return charges, nil
}
