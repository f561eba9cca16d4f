package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/dto"
)

func abort(c *gin.Context, status int, kind, msg string) {
	c.AbortWithStatusJSON(status, dto.Envelope{Error: msg, Kind: kind})
}
