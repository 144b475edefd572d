package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const CtxClaimsKey = "auth_claims"

// Middleware rejects requests without a valid bearer token.
func Middleware(tokens TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, tokens)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

// OptionalMiddleware attaches claims when a valid token is present and
// lets everything else through anonymously. Game routes use this so
// completed games count toward stats for signed-in players only.
func OptionalMiddleware(tokens TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c, tokens); ok {
			c.Set(CtxClaimsKey, claims)
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context, tokens TokenService) (*Claims, bool) {
	h := c.GetHeader("Authorization")
	if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return nil, false
	}
	raw := strings.TrimSpace(h[len("Bearer "):])
	claims, err := tokens.Parse(raw)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func MustGetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
