package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventsync/eventsync-api/internal/service"
	"github.com/eventsync/eventsync-api/pkg/response"
)

// RankingHandler exposes the organizer leaderboard.
type RankingHandler struct {
	rankings *service.RankingService
}

// NewRankingHandler constructs RankingHandler.
func NewRankingHandler(rankings *service.RankingService) *RankingHandler {
	return &RankingHandler{rankings: rankings}
}

// Leaderboard godoc
// @Summary Organizer leaderboard
// @Description Organizers ordered by XP with derived league standings
// @Tags Rankings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rankings/organizers [get]
func (h *RankingHandler) Leaderboard(c *gin.Context) {
	entries, err := h.rankings.Leaderboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
