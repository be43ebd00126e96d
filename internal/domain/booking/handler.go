package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nathanael250/travooz-hms-sub004/internal/pkg/response"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createBookingBody struct {
	ServiceType       ServiceType   `json:"service_type"`
	CheckInDate       string        `json:"check_in_date" binding:"required"`
	CheckOutDate      string        `json:"check_out_date" binding:"required"`
	RoomTypeID        *int64        `json:"room_type_id"`
	HomestayID        *int64        `json:"homestay_id"`
	RoomUnitID        *int64        `json:"room_unit_id"`
	Guest             GuestContact  `json:"guest"`
	Adults            int           `json:"adults"`
	Children          int           `json:"children"`
	RatePerNight      float64       `json:"rate_per_night"`
	TaxRate           float64       `json:"tax_rate"`
	ServiceChargeRate float64       `json:"service_charge_rate"`
	Discount          float64       `json:"discount"`
	DepositAmount     float64       `json:"deposit_amount"`
	SpecialRequests   string        `json:"special_requests"`
	ExtraCharges      []ChargeInput `json:"extra_charges"`
}

type cancelBody struct {
	Reason string `json:"reason" binding:"required"`
}

type checkInBody struct {
	Notes string `json:"notes"`
}

type checkOutBody struct {
	FinalCharges  []ChargeInput `json:"final_charges"`
	RoomCondition string        `json:"room_condition"`
}

type reassignBody struct {
	RoomUnitID int64 `json:"room_unit_id" binding:"required"`
}

// POST /bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	var body createBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	checkIn, err := time.Parse(dateLayout, body.CheckInDate)
	if err != nil {
		writeError(c, invalid("check_in_date", "must be YYYY-MM-DD"))
		return
	}
	checkOut, err := time.Parse(dateLayout, body.CheckOutDate)
	if err != nil {
		writeError(c, invalid("check_out_date", "must be YYYY-MM-DD"))
		return
	}

	adults := body.Adults
	if adults == 0 {
		adults = 1
	}

	summary, err := h.service.CreateBooking(c.Request.Context(), CreateBookingRequest{
		ServiceType:       body.ServiceType,
		CheckIn:           checkIn,
		CheckOut:          checkOut,
		RoomTypeID:        body.RoomTypeID,
		HomestayID:        body.HomestayID,
		RoomUnitID:        body.RoomUnitID,
		Guest:             body.Guest,
		Adults:            adults,
		Children:          body.Children,
		RatePerNight:      body.RatePerNight,
		TaxRate:           body.TaxRate,
		ServiceChargeRate: body.ServiceChargeRate,
		Discount:          body.Discount,
		DepositAmount:     body.DepositAmount,
		SpecialRequests:   body.SpecialRequests,
		ExtraCharges:      body.ExtraCharges,
		CreatedBy:         c.GetInt64("actor_id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, gin.H{"booking": summary})
}

// GET /availability?check_in=&check_out=&room_type_id=&homestay_id=
func (h *Handler) GetAvailability(c *gin.Context) {
	checkIn, err := time.Parse(dateLayout, c.Query("check_in"))
	if err != nil {
		writeError(c, invalid("check_in", "must be YYYY-MM-DD"))
		return
	}
	checkOut, err := time.Parse(dateLayout, c.Query("check_out"))
	if err != nil {
		writeError(c, invalid("check_out", "must be YYYY-MM-DD"))
		return
	}

	q := AvailabilityQuery{CheckIn: checkIn, CheckOut: checkOut}
	if q.RoomTypeID, err = optionalID(c, "room_type_id"); err != nil {
		writeError(c, err)
		return
	}
	if q.HomestayID, err = optionalID(c, "homestay_id"); err != nil {
		writeError(c, err)
		return
	}

	units, err := h.service.ResolveAvailability(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"units": units, "count": len(units)})
}

// GET /bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	details, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, details)
}

// PATCH /bookings/:id/confirm
func (h *Handler) ConfirmBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.ConfirmBooking(c.Request.Context(), id, c.GetInt64("actor_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

// PATCH /bookings/:id/check-in
func (h *Handler) CheckIn(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var body checkInBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
	}
	b, err := h.service.CheckIn(c.Request.Context(), id, c.GetInt64("actor_id"), body.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

// PATCH /bookings/:id/check-out
func (h *Handler) CheckOut(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var body checkOutBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
	}
	b, err := h.service.CheckOut(c.Request.Context(), id, c.GetInt64("actor_id"), body.FinalCharges, body.RoomCondition)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

// PATCH /bookings/:id/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var body cancelBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, invalid("reason", "is required"))
		return
	}
	b, err := h.service.CancelBooking(c.Request.Context(), id, body.Reason, c.GetInt64("actor_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

// POST /bookings/:id/charges
func (h *Handler) AddCharge(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var in ChargeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	charge, err := h.service.AddCharge(c.Request.Context(), id, in, c.GetInt64("actor_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, gin.H{"charge": charge})
}

// GET /bookings/:id/charges
func (h *Handler) ListCharges(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	charges, err := h.service.ListCharges(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"charges": charges})
}

// PATCH /bookings/:id/room
func (h *Handler) ReassignRoom(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var body reassignBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, invalid("room_unit_id", "is required"))
		return
	}
	a, err := h.service.ReassignRoom(c.Request.Context(), id, body.RoomUnitID, c.GetInt64("actor_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assignment": a})
}

// GET /bookings/:id/assignments
func (h *Handler) AssignmentHistory(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	history, err := h.service.AssignmentHistory(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assignments": history})
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return 0, false
	}
	return id, true
}

func optionalID(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, invalid(name, "must be a positive integer")
	}
	return &id, nil
}

func writeError(c *gin.Context, err error) {
	var (
		verr *ValidationError
		terr *TransitionError
	)
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(),
			gin.H{"field": verr.Field, "reason": verr.Reason})
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrNoAvailability):
		response.Error(c, http.StatusConflict, "NO_AVAILABILITY", "No room is available for the selected dates")
	case errors.Is(err, ErrUnitUnavailable):
		response.Error(c, http.StatusConflict, "UNIT_UNAVAILABLE", err.Error())
	case errors.As(err, &terr):
		response.ErrorWithDetails(c, http.StatusConflict, "INVALID_TRANSITION", terr.Error(),
			gin.H{"current_status": terr.From, "requested_status": terr.To})
	case errors.Is(err, ErrInvalidState):
		response.Error(c, http.StatusConflict, "INVALID_STATE", err.Error())
	case errors.Is(err, ErrExhaustedRetries):
		response.Error(c, http.StatusServiceUnavailable, "REFERENCE_EXHAUSTED", "Could not allocate a booking reference, retry")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process booking request")
	}
}
