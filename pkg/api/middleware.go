package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lokalrunner/pkg/models"
)

// authRequired resolves the bearer credential into {userID, roles}. Websocket
// clients cannot set headers, so the token may also arrive as a query param.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
				c.Abort()
				return
			}
			tokenString = parts[1]
		} else {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		claims, err := s.jwt.Parse(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("roles", claims.Roles)
		c.Next()
	}
}

func (s *Server) requireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		have := callerRoles(c)
		for _, role := range roles {
			if models.HasRole(have, role) {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		c.Abort()
	}
}

func callerID(c *gin.Context) int64 {
	return c.GetInt64("user_id")
}

func callerRoles(c *gin.Context) []string {
	return c.GetStringSlice("roles")
}
