package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/padel-board-api/internal/models"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
	"github.com/noah-isme/padel-board-api/pkg/response"
)

// ContextUserKey is the gin context key storing the session user.
const ContextUserKey = "currentUser"

type sessionSource interface {
	CurrentUser() *models.CurrentUser
}

// Session protects routes by requiring a logged-in user.
func Session(source sessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := source.CurrentUser()
		if user == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// OptionalSession attaches the user when present but does not block.
func OptionalSession(source sessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := source.CurrentUser(); user != nil {
			c.Set(ContextUserKey, user)
		}
		c.Next()
	}
}

// CurrentUser reads the session user stored by Session.
func CurrentUser(c *gin.Context) *models.CurrentUser {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.CurrentUser)
	if !ok {
		return nil
	}
	return user
}
