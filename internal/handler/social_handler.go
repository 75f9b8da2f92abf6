package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eventsync/eventsync-api/internal/models"
	"github.com/eventsync/eventsync-api/internal/service"
	appErrors "github.com/eventsync/eventsync-api/pkg/errors"
	"github.com/eventsync/eventsync-api/pkg/response"
)

// SocialHandler exposes the friendship and messaging endpoints.
type SocialHandler struct {
	social *service.SocialService
}

// NewSocialHandler constructs SocialHandler.
func NewSocialHandler(social *service.SocialService) *SocialHandler {
	return &SocialHandler{social: social}
}

// RequestFriendship godoc
// @Summary Request friendship
// @Description Ask another confirmed attendee of an event to connect
// @Tags Social
// @Accept json
// @Produce json
// @Param payload body models.RequestFriendshipRequest true "Friendship payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /friendships [post]
func (h *SocialHandler) RequestFriendship(c *gin.Context) {
	var req models.RequestFriendshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid friendship payload"))
		return
	}

	friendship, err := h.social.RequestFriendship(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, friendship)
}

// ListFriendships godoc
// @Summary List my friendships
// @Description Return every friendship request the caller sent or received
// @Tags Social
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /friendships [get]
func (h *SocialHandler) ListFriendships(c *gin.Context) {
	friendships, err := h.social.ListFriendships(c.Request.Context(), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, friendships, nil)
}

// Accept godoc
// @Summary Accept friendship
// @Tags Social
// @Produce json
// @Param id path string true "Friendship ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /friendships/{id}/accept [put]
func (h *SocialHandler) Accept(c *gin.Context) {
	friendship, err := h.social.Accept(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, friendship, nil)
}

// Reject godoc
// @Summary Reject friendship
// @Tags Social
// @Produce json
// @Param id path string true "Friendship ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /friendships/{id}/reject [put]
func (h *SocialHandler) Reject(c *gin.Context) {
	friendship, err := h.social.Reject(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, friendship, nil)
}

// SendMessage godoc
// @Summary Send message
// @Description Send a direct message to an accepted friend
// @Tags Social
// @Accept json
// @Produce json
// @Param payload body models.SendMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /messages [post]
func (h *SocialHandler) SendMessage(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid message payload"))
		return
	}

	message, err := h.social.SendMessage(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}

// ListMessages godoc
// @Summary List my messages
// @Tags Social
// @Produce json
// @Param limit query int false "Max results"
// @Success 200 {object} response.Envelope
// @Router /messages [get]
func (h *SocialHandler) ListMessages(c *gin.Context) {
	limit := 50
	if parsed, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil && parsed > 0 {
		limit = parsed
	}

	messages, err := h.social.ListMessages(c.Request.Context(), actorFromContext(c), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// MarkMessageRead godoc
// @Summary Mark message read
// @Tags Social
// @Produce json
// @Param id path string true "Message ID"
// @Success 204 {object} response.Envelope
// @Router /messages/{id}/read [put]
func (h *SocialHandler) MarkMessageRead(c *gin.Context) {
	if err := h.social.MarkMessageRead(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
