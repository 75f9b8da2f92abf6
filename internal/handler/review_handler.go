package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventsync/eventsync-api/internal/models"
	"github.com/eventsync/eventsync-api/internal/service"
	appErrors "github.com/eventsync/eventsync-api/pkg/errors"
	"github.com/eventsync/eventsync-api/pkg/response"
)

// ReviewHandler exposes review submission and listing.
type ReviewHandler struct {
	reviews *service.ReviewService
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Submit godoc
// @Summary Submit review
// @Description One-time rating of a finished, attended event
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body models.SubmitReviewRequest true "Review payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /events/{id}/reviews [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	var req models.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	review, err := h.reviews.Submit(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, review)
}

// List godoc
// @Summary List event reviews
// @Tags Reviews
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id}/reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	reviews, err := h.reviews.ListByEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reviews, nil)
}
