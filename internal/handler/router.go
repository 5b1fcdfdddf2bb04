package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/padel-board-api/internal/middleware"
	"github.com/noah-isme/padel-board-api/internal/models"
	"github.com/noah-isme/padel-board-api/internal/service"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes. Nil handlers are skipped.
type Handlers struct {
	Session  *SessionHandler
	Calendar *CalendarHandler
	Student  *StudentHandler
	Monitor  *MonitorHandler
	Class    *ClassHandler
	Drag     *DragHandler
	Export   *ExportHandler
	Metrics  *MetricsHandler
}

// RouterConfig toggles optional route groups.
type RouterConfig struct {
	APIPrefix     string
	EnableMetrics bool
}

// RegisterRoutes mounts the ops endpoints at the root and the board API under the prefix.
func RegisterRoutes(r *gin.Engine, cfg RouterConfig, sessions *service.SessionService, h Handlers) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		if cfg.EnableMetrics {
			r.GET("/metrics", h.Metrics.Prometheus)
		}
	}

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)

	coordinatorOnly := middleware.RequireRoles(models.RoleCoordinator)
	secured := api.Group("")
	secured.Use(middleware.Session(sessions))

	if h.Session != nil {
		session := api.Group("/session")
		session.GET("", h.Session.Get)
		session.POST("/login", h.Session.Login)
		session.POST("/logout", h.Session.Logout)
		session.POST("/week", h.Session.NavigateWeek)
		session.POST("/week/today", h.Session.Today)
		session.PUT("/snap", h.Session.Snap)

		focus := secured.Group("/session/focus", coordinatorOnly)
		focus.PUT("", h.Session.Focus)
		focus.DELETE("", h.Session.ClearFocus)
	}

	if h.Calendar != nil {
		calendar := secured.Group("/calendar")
		calendar.GET("/week", h.Calendar.Week)
		calendar.GET("/slot", h.Calendar.Slot)
	}

	if h.Student != nil {
		students := secured.Group("/students")
		students.GET("", h.Student.List)
		students.POST("", h.Student.Create)
		students.GET("/:id", h.Student.Get)
		students.PATCH("/:id", h.Student.Update)
		students.DELETE("/:id", h.Student.Delete)
	}

	if h.Monitor != nil {
		monitors := secured.Group("/monitors")
		monitors.GET("", h.Monitor.List)
		monitors.GET("/roster", coordinatorOnly, h.Monitor.Roster)
		monitors.POST("", coordinatorOnly, h.Monitor.Create)
		monitors.PATCH("/:id", coordinatorOnly, h.Monitor.Update)
		monitors.DELETE("/:id", coordinatorOnly, h.Monitor.Delete)
		selfOrCoordinator := middleware.RBAC(string(models.RoleCoordinator), "SELF")
		monitors.GET("/:id/stats", selfOrCoordinator, h.Monitor.Stats)
		monitors.GET("/:id/classes", selfOrCoordinator, h.Monitor.Classes)
	}

	if h.Class != nil {
		classes := secured.Group("/classes")
		classes.GET("", h.Class.List)
		classes.POST("", h.Class.Create)
		classes.GET("/:id", h.Class.Get)
		classes.PATCH("/:id", h.Class.Update)
		classes.DELETE("/:id", h.Class.Delete)
		classes.POST("/:id/toggle-completed", h.Class.ToggleCompleted)
	}

	if h.Drag != nil {
		drag := secured.Group("/drag")
		drag.POST("/events", h.Drag.Event)
		drag.GET("/pending", h.Drag.Pending)
		drag.POST("/pending/confirm", h.Drag.Confirm)
		drag.POST("/pending/cancel", h.Drag.Cancel)
	}

	if h.Export != nil {
		secured.GET("/exports/week", h.Export.Week)
	}
}
