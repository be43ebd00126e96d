package inventory

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts unit listing on rg and status changes on housekeeping,
// which callers usually guard with a role check.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, housekeeping *gin.RouterGroup) {
	rg.GET("/units", h.ListUnits)
	housekeeping.PATCH("/units/:id/status", h.SetStatus)
}
