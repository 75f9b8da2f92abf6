package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/eventsync/eventsync-api/internal/middleware"
	"github.com/eventsync/eventsync-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorFromContext converts claims into the explicit caller identity the
// services take. A zero Actor means anonymous.
func actorFromContext(c *gin.Context) models.Actor {
	return models.ActorFromClaims(claimsFromContext(c))
}
