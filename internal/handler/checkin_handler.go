package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventsync/eventsync-api/internal/service"
	appErrors "github.com/eventsync/eventsync-api/pkg/errors"
	"github.com/eventsync/eventsync-api/pkg/response"
)

// CheckinHandler exposes the attendance recording endpoint.
type CheckinHandler struct {
	checkins *service.CheckinService
}

// NewCheckinHandler constructs CheckinHandler.
func NewCheckinHandler(checkins *service.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkins: checkins}
}

// CheckinRequest carries the scanned QR code.
type CheckinRequest struct {
	Code string `json:"code" binding:"required"`
}

// CheckIn godoc
// @Summary Record attendance
// @Description Resolve a scanned QR code and record the check-in once
// @Tags Check-ins
// @Accept json
// @Produce json
// @Param payload body handler.CheckinRequest true "Scanned code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /checkins [post]
func (h *CheckinHandler) CheckIn(c *gin.Context) {
	var req CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "check-in code required"))
		return
	}

	enrollment, err := h.checkins.CheckIn(c.Request.Context(), actorFromContext(c), req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}
