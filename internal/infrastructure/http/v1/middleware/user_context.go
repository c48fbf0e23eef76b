package middleware

import (
	"github.com/gin-gonic/gin"

	"venueledger/internal/core/security"
)

// AccessScope derives the caller's company scope from the authenticated user
// and stores it in the request context, where the finance service reads it
// through security.GetScope.
//
// Must run after Auth:
//
//	protected.Use(middleware.Auth(cfg.JWTValidator))
//	protected.Use(middleware.AccessScope())
func AccessScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ctx = security.WithScope(ctx, security.NewAccessScope(ctx))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
