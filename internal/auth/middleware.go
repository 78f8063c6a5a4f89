package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chartsight/internal/models"
	"chartsight/internal/repository"
)

const userContextKey = "auth.user"

// RequireSession resolves the session cookie and loads the owning user into
// the gin context. API routes answer unauthenticated access with a 401 JSON
// envelope; there is no HTML surface to redirect to.
func RequireSession(m *SessionManager, repo repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(m.CookieName)
		if err != nil || cookie == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authentication required"})
			return
		}
		userID, err := m.Resolve(c.Request.Context(), cookie)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authentication required"})
			return
		}
		user, err := repo.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to load user"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authentication required"})
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the user loaded by RequireSession, or nil on open routes.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// SetCurrentUser is a test hook for handler tests that bypass the middleware.
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(userContextKey, user)
}
