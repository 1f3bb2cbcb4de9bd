package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/gastroshop/storefront/internal/infrastructure/auth"
)

// SessionToken moves the caller's bearer token into the request context so outgoing
// calls to the storefront API carry the shopper's session
func SessionToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := auth.BearerToken(c.GetHeader("Authorization")); ok {
			c.Request = c.Request.WithContext(auth.WithToken(c.Request.Context(), token))
		}
		c.Next()
	}
}
