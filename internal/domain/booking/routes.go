package booking

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the booking endpoints. rg is expected to be behind
// staff authentication.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/availability", h.GetAvailability)

	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/:id", h.GetBooking)

	// lifecycle
	rg.PATCH("/bookings/:id/confirm", h.ConfirmBooking)
	rg.PATCH("/bookings/:id/check-in", h.CheckIn)
	rg.PATCH("/bookings/:id/check-out", h.CheckOut)
	rg.PATCH("/bookings/:id/cancel", h.CancelBooking)

	// ledger
	rg.POST("/bookings/:id/charges", h.AddCharge)
	rg.GET("/bookings/:id/charges", h.ListCharges)

	// room assignment
	rg.PATCH("/bookings/:id/room", h.ReassignRoom)
	rg.GET("/bookings/:id/assignments", h.AssignmentHistory)
}
