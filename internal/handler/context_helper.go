package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/padel-board-api/internal/middleware"
	"github.com/noah-isme/padel-board-api/internal/models"
	"github.com/noah-isme/padel-board-api/internal/service"
)

func userFromContext(c *gin.Context) *models.CurrentUser {
	return middleware.CurrentUser(c)
}

// withNotices drains buffered notifications into response metadata.
func withNotices(notices *service.Notices) map[string]interface{} {
	drained := notices.Drain()
	if len(drained) == 0 {
		return nil
	}
	return map[string]interface{}{"notices": drained}
}
