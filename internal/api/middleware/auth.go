package middleware

import (
	"net/http"
	"strings"

	"github.com/Asantha20535/docuverify-sub000/internal/db/models"
	"github.com/Asantha20535/docuverify-sub000/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthMiddleware struct {
	sessions *services.SessionService
	db       *gorm.DB
}

func NewAuthMiddleware(sessions *services.SessionService, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		db:       db,
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionToken, err := c.Cookie("session_token")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		userID, valid := am.sessions.ValidateSession(sessionToken)
		if !valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		var user models.User
		if err := am.db.First(&user, userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}
		if !user.ActiveStatus {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account disabled"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("username", user.Username)
		c.Set("role", string(user.Role))
		c.Set("fullName", strings.TrimSpace(user.FirstName+" "+user.LastName))
		c.Next()
	}
}

// RequireRole guards a route group to the named roles. RequireAuth must run
// first.
func (am *AuthMiddleware) RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := c.GetString("role")
		for _, r := range roles {
			if strings.EqualFold(current, string(r)) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}
