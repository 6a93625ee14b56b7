package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/untangle-ph/untangle-backend/internal/config"
	"github.com/untangle-ph/untangle-backend/internal/models"
	"github.com/untangle-ph/untangle-backend/internal/utils"
)

const (
	claimsKey  = "claims"
	staffIDKey = "staffId"
	roleKey    = "role"
)

// JWTAuthMiddleware creates a gin middleware for JWT authentication.
func JWTAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	const bearerSchema = "Bearer "

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}
		if !strings.HasPrefix(authHeader, bearerSchema) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer "})
			return
		}

		tokenString := authHeader[len(bearerSchema):]

		claims, err := utils.ValidateJWT(tokenString, cfg)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		c.Set(claimsKey, claims)
		if sub, ok := claims["sub"].(string); ok {
			c.Set(staffIDKey, sub)
		}
		if role, ok := claims["role"].(string); ok {
			c.Set(roleKey, role)
		}
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated caller has one of the
// given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := RoleFromContext(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
	}
}

// RoleFromContext returns the authenticated caller's role, if any.
func RoleFromContext(c *gin.Context) string {
	role, _ := c.Get(roleKey)
	if s, ok := role.(string); ok {
		return s
	}
	return ""
}

// StaffIDFromContext returns the authenticated staff id, if any.
func StaffIDFromContext(c *gin.Context) string {
	id, _ := c.Get(staffIDKey)
	if s, ok := id.(string); ok {
		return s
	}
	return ""
}

// PrivilegedCaller reports whether the authenticated caller may use
// administrative ledger overrides.
func PrivilegedCaller(c *gin.Context) bool {
	return models.PrivilegedRole(RoleFromContext(c))
}
