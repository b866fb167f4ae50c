package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fleetflow/fleetflow/internal/dispatch"
	notifdomain "github.com/fleetflow/fleetflow/internal/notification/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) listNotifications(c *gin.Context) {
	unreadOnly := c.Query("unread_only") == "true"
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = parsed
	}

	items, err := s.notifSvc.List(c.Request.Context(), notifdomain.ListRequest{
		UnreadOnly: unreadOnly,
		Limit:      limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

func (s *Server) markNotificationRead(c *gin.Context) {
	err := s.notifSvc.MarkRead(c.Request.Context(), c.Param("id"))
	if errors.Is(err, notifdomain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notification read"})
		return
	}
	c.Status(http.StatusNoContent)
}

type validateDispatchRequest struct {
	VehicleID       string  `json:"vehicle_id" binding:"required"`
	DriverID        string  `json:"driver_id" binding:"required"`
	CargoWeightTons float64 `json:"cargo_weight_tons"`
}

func (s *Server) validateDispatch(c *gin.Context) {
	var req validateDispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.validator.Validate(c.Request.Context(), dispatch.Request{
		VehicleID:       req.VehicleID,
		DriverID:        req.DriverID,
		CargoWeightTons: req.CargoWeightTons,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "validation failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// runAutomation triggers every scheduled job immediately. The jobs write
// their own automation_log rows; the response only acknowledges the
// trigger.
func (s *Server) runAutomation(c *gin.Context) {
	s.jobs.RunAll(c.Request.Context())
	c.JSON(http.StatusAccepted, gin.H{"status": "completed"})
}
