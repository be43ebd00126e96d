package booking

import (
	"math"
	"time"
)

// calendarDate maps t to midnight UTC of the calendar day it names in its own
// location, so "2024-06-01T00:00:00+03:00" stays June 1st.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func nightsBetween(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func chargeTotal(unitPrice float64, quantity int) float64 {
	return round2(unitPrice * float64(quantity))
}

// recompute refreshes every derived money field from rates, nights and the
// current extras sum.
func (rb *RoomBooking) recompute() {
	rb.RoomSubtotal = round2(float64(rb.Nights) * rb.RatePerNight)
	rb.TaxAmount = round2(rb.RoomSubtotal * rb.TaxRate)
	rb.ServiceCharge = round2(rb.RoomSubtotal * rb.ServiceChargeRate)
	rb.ExtraCharges = round2(rb.ExtraCharges)
	rb.FinalAmount = round2(rb.RoomSubtotal + rb.TaxAmount + rb.ServiceCharge - rb.Discount + rb.ExtraCharges)
}

func paymentStatusFor(deposit float64) PaymentStatus {
	if deposit > 0 {
		return PaymentPartial
	}
	return PaymentUnpaid
}
