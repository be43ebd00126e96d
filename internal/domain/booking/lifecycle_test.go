package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathanael250/travooz-hms-sub004/internal/domain/inventory"
)

func TestCheckIn_FromPendingRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, "101", "2024-06-01", "2024-06-03")

	_, err := f.svc.CheckIn(ctx, created.BookingID, 1, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var terr *TransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, StatusPending, terr.From)
	assert.Equal(t, StatusCheckedIn, terr.To)

	details, err := f.svc.GetBooking(ctx, created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, details.Booking.Status)
	require.NotNil(t, details.Assignment)
	assert.Equal(t, AssignmentAssigned, details.Assignment.Status)
	assert.Equal(t, inventory.UnitAvailable, f.unitStatus(t, "101"))
	assert.Empty(t, f.pub.statuses())
}

func TestLifecycle_TerminalStatesAreFinal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cancelled := f.create(t, "101", "2024-06-01", "2024-06-03")
	_, err := f.svc.CancelBooking(ctx, cancelled.BookingID, "guest request", 1)
	require.NoError(t, err)

	_, err = f.svc.ConfirmBooking(ctx, cancelled.BookingID, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.CancelBooking(ctx, cancelled.BookingID, "again", 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	done := f.create(t, "102", "2024-06-01", "2024-06-03")
	_, err = f.svc.ConfirmBooking(ctx, done.BookingID, 1)
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, done.BookingID, 1, "")
	require.NoError(t, err)
	_, err = f.svc.CheckOut(ctx, done.BookingID, 1, nil, "")
	require.NoError(t, err)

	_, err = f.svc.CancelBooking(ctx, done.BookingID, "too late", 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.CheckOut(ctx, done.BookingID, 1, nil, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestLifecycle_CheckedInCannotBeCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, "101", "2024-06-01", "2024-06-03")
	_, err := f.svc.ConfirmBooking(ctx, created.BookingID, 1)
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, created.BookingID, 1, "")
	require.NoError(t, err)

	_, err = f.svc.CancelBooking(ctx, created.BookingID, "changed mind", 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, inventory.UnitOccupied, f.unitStatus(t, "101"))
}

func TestLifecycle_UnknownBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ConfirmBooking(ctx, 404, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.CheckIn(ctx, 404, 1, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.CheckOut(ctx, 404, 1, nil, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.CancelBooking(ctx, 404, "x", 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.AddCharge(ctx, 404, ChargeInput{ChargeType: ChargeMinibar, UnitPrice: 1, Quantity: 1}, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.GetBooking(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.ListCharges(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.AssignmentHistory(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCharges_RollIntoCheckoutTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, "101", "2024-06-01", "2024-06-03")
	_, err := f.svc.ConfirmBooking(ctx, created.BookingID, 1)
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, created.BookingID, 1, "")
	require.NoError(t, err)

	before, err := f.svc.GetBooking(ctx, created.BookingID)
	require.NoError(t, err)

	charge, err := f.svc.AddCharge(ctx, created.BookingID, ChargeInput{ChargeType: ChargeMinibar, Description: "snacks", UnitPrice: 20, Quantity: 1}, 3)
	require.NoError(t, err)
	assert.Equal(t, 20.0, charge.TotalAmount)
	assert.Equal(t, int64(3), charge.ChargedBy)

	mid, err := f.svc.GetBooking(ctx, created.BookingID)
	require.NoError(t, err)
	assert.InDelta(t, before.Booking.TotalAmount+20, mid.Booking.TotalAmount, 0.001)

	out, err := f.svc.CheckOut(ctx, created.BookingID, 1, nil, "")
	require.NoError(t, err)
	assert.InDelta(t, before.Booking.TotalAmount+20, out.TotalAmount, 0.001)

	after, err := f.svc.GetBooking(ctx, created.BookingID)
	require.NoError(t, err)
	assert.InDelta(t, after.Booking.TotalAmount, after.RoomBooking.FinalAmount, 0.001)
	assert.InDelta(t, 20.0, after.RoomBooking.ExtraCharges, 0.001)
}

func TestAddCharge_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, "101", "2024-06-01", "2024-06-03")

	_, err := f.svc.AddCharge(ctx, created.BookingID, ChargeInput{ChargeType: ChargeMinibar, UnitPrice: -5, Quantity: 1}, 1)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.AddCharge(ctx, created.BookingID, ChargeInput{ChargeType: "spa", UnitPrice: 5, Quantity: 1}, 1)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.AddCharge(ctx, created.BookingID, ChargeInput{ChargeType: ChargeMinibar, UnitPrice: 5, Quantity: 0}, 1)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.AddCharge(ctx, created.BookingID, ChargeInput{ChargeType: ChargeLaundry, UnitPrice: 12.5, Quantity: 2}, 1)
	require.NoError(t, err)
	_, err = f.svc.AddCharge(ctx, created.BookingID, ChargeInput{ChargeType: ChargeAdjustment, Description: "laundry refund", UnitPrice: -12.5, Quantity: 1}, 1)
	require.NoError(t, err)

	charges, err := f.svc.ListCharges(ctx, created.BookingID)
	require.NoError(t, err)
	require.Len(t, charges, 2)
	assert.Equal(t, ChargeLaundry, charges[0].ChargeType)
	assert.Equal(t, -12.5, charges[1].TotalAmount)

	details, err := f.svc.GetBooking(ctx, created.BookingID)
	require.NoError(t, err)
	assert.InDelta(t, 12.5, details.RoomBooking.ExtraCharges, 0.001)
	assert.InDelta(t, 212.5, details.Booking.TotalAmount, 0.001)

	_, err = f.svc.CancelBooking(ctx, created.BookingID, "no show", 1)
	require.NoError(t, err)
	_, err = f.svc.AddCharge(ctx, created.BookingID, ChargeInput{ChargeType: ChargeOther, UnitPrice: 1, Quantity: 1}, 1)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestAddCharge_EveryChargeType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, "101", "2024-06-01", "2024-06-03")

	for _, ct := range ChargeTypes {
		t.Run(string(ct), func(t *testing.T) {
			charge, err := f.svc.AddCharge(ctx, created.BookingID, ChargeInput{ChargeType: ct, UnitPrice: 5, Quantity: 1}, 7)
			require.NoError(t, err)
			assert.Equal(t, ct, charge.ChargeType)
			assert.Equal(t, int64(7), charge.ChargedBy)
		})
	}

	for _, ct := range []ChargeType{"extra_bed", "early_checkin", "service_request", "late_checkout"} {
		assert.True(t, ct.IsValid(), ct)
	}

	charges, err := f.svc.ListCharges(ctx, created.BookingID)
	require.NoError(t, err)
	assert.Len(t, charges, len(ChargeTypes))
}

func TestCancel_ReleasesUnitForNewBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.create(t, "101", "2024-06-01", "2024-06-04")
	_, err := f.svc.ConfirmBooking(ctx, first.BookingID, 1)
	require.NoError(t, err)

	cancelled, err := f.svc.CancelBooking(ctx, first.BookingID, "guest request", 7)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, "guest request", cancelled.CancelReason)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, int64(0), f.activeAssignments(t, "101"))

	history, err := f.svc.AssignmentHistory(ctx, first.BookingID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, AssignmentReleased, history[0].Status)
	assert.NotNil(t, history[0].ReleasedAt)

	second := f.create(t, "101", "2024-06-01", "2024-06-04")
	assert.Equal(t, f.units["101"].ID, second.RoomUnitID)
	assert.Equal(t, inventory.UnitAvailable, f.unitStatus(t, "101"))
}

func TestCancel_RequiresReason(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, "101", "2024-06-01", "2024-06-04")

	_, err := f.svc.CancelBooking(context.Background(), created.BookingID, "   ", 1)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "reason", verr.Field)
}

func TestCancel_RestoresOccupiedUnitWithNoGuest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, "101", "2024-06-01", "2024-06-04")
	require.NoError(t, inventory.NewRepository(f.db).UpdateStatus(ctx, f.units["101"].ID, inventory.UnitOccupied))

	_, err := f.svc.CancelBooking(ctx, created.BookingID, "duplicate", 1)
	require.NoError(t, err)
	assert.Equal(t, inventory.UnitAvailable, f.unitStatus(t, "101"))
	assert.Equal(t, []inventory.UnitStatus{inventory.UnitAvailable}, f.pub.statuses())
}

func TestConfirm_RevalidatesHeldUnit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, "101", "2024-06-01", "2024-06-04")
	require.NoError(t, inventory.NewRepository(f.db).UpdateStatus(ctx, f.units["101"].ID, inventory.UnitMaintenance))

	_, err := f.svc.ConfirmBooking(ctx, created.BookingID, 1)
	assert.ErrorIs(t, err, ErrUnitUnavailable)

	details, err := f.svc.GetBooking(ctx, created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, details.Booking.Status)
}

func TestConfirm_AssignsWhenNoActiveAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, "101", "2024-06-01", "2024-06-04")
	require.NoError(t, f.db.Model(&RoomAssignment{}).
		Where("booking_id = ?", created.BookingID).
		Update("status", AssignmentReleased).Error)

	_, err := f.svc.ConfirmBooking(ctx, created.BookingID, 1)
	require.NoError(t, err)

	details, err := f.svc.GetBooking(ctx, created.BookingID)
	require.NoError(t, err)
	require.NotNil(t, details.Assignment)
	assert.Equal(t, details.RoomBooking.RoomUnitID, details.Assignment.RoomUnitID)
	assert.Equal(t, f.deluxe.ID, *details.RoomBooking.RoomTypeID)
}

func TestCheckIn_UnitMustBeReady(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, "101", "2024-06-01", "2024-06-04")
	_, err := f.svc.ConfirmBooking(ctx, created.BookingID, 1)
	require.NoError(t, err)
	require.NoError(t, inventory.NewRepository(f.db).UpdateStatus(ctx, f.units["101"].ID, inventory.UnitCleaning))

	_, err = f.svc.CheckIn(ctx, created.BookingID, 1, "")
	assert.ErrorIs(t, err, ErrUnitUnavailable)

	details, err := f.svc.GetBooking(ctx, created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, details.Booking.Status)
	assert.Equal(t, AssignmentAssigned, details.Assignment.Status)
}

func TestCheckOut_RejectsBadChargesAtomically(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, "101", "2024-06-01", "2024-06-04")
	_, err := f.svc.ConfirmBooking(ctx, created.BookingID, 1)
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, created.BookingID, 1, "")
	require.NoError(t, err)

	_, err = f.svc.CheckOut(ctx, created.BookingID, 1, []ChargeInput{
		{ChargeType: ChargeMinibar, UnitPrice: 4, Quantity: 1},
		{ChargeType: ChargeDamage, UnitPrice: 0, Quantity: 1},
	}, "")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "final_charges[1].unit_price", verr.Field)

	charges, err := f.svc.ListCharges(ctx, created.BookingID)
	require.NoError(t, err)
	assert.Empty(t, charges)
	assert.Equal(t, inventory.UnitOccupied, f.unitStatus(t, "101"))
}
