package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/padel-board-api/internal/models"
	"github.com/noah-isme/padel-board-api/internal/service"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
	"github.com/noah-isme/padel-board-api/pkg/response"
)

// MonitorHandler exposes monitor management and the coordinator roster.
type MonitorHandler struct {
	monitors *service.MonitorService
	notices  *service.Notices
}

// NewMonitorHandler constructs MonitorHandler.
func NewMonitorHandler(monitors *service.MonitorService, notices *service.Notices) *MonitorHandler {
	return &MonitorHandler{monitors: monitors, notices: notices}
}

// List godoc
// @Summary List monitors
// @Tags Monitors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /monitors [get]
func (h *MonitorHandler) List(c *gin.Context) {
	monitors, err := h.monitors.List(c.Request.Context(), userFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, monitors)
}

// Roster godoc
// @Summary Coordinator roster with per-monitor stats
// @Tags Monitors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /monitors/roster [get]
func (h *MonitorHandler) Roster(c *gin.Context) {
	roster, err := h.monitors.Roster(c.Request.Context(), userFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, roster, withNotices(h.notices))
}

// Stats godoc
// @Summary Class and distinct student counts of a monitor
// @Tags Monitors
// @Produce json
// @Param id path string true "Monitor ID"
// @Success 200 {object} response.Envelope
// @Router /monitors/{id}/stats [get]
func (h *MonitorHandler) Stats(c *gin.Context) {
	stats, err := h.monitors.Stats(c.Request.Context(), userFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// Classes godoc
// @Summary Classes assigned to a monitor
// @Tags Monitors
// @Produce json
// @Param id path string true "Monitor ID"
// @Success 200 {object} response.Envelope
// @Router /monitors/{id}/classes [get]
func (h *MonitorHandler) Classes(c *gin.Context) {
	classes, err := h.monitors.Classes(c.Request.Context(), userFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, classes)
}

// Create godoc
// @Summary Create monitor
// @Tags Monitors
// @Accept json
// @Produce json
// @Param payload body service.CreateMonitorRequest true "Monitor payload"
// @Success 201 {object} response.Envelope
// @Router /monitors [post]
func (h *MonitorHandler) Create(c *gin.Context) {
	var req service.CreateMonitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	monitor, err := h.monitors.Create(c.Request.Context(), userFromContext(c), req)
	if err != nil {
		response.Error(c, err, withNotices(h.notices))
		return
	}
	response.Created(c, monitor, withNotices(h.notices))
}

// Update godoc
// @Summary Update monitor
// @Tags Monitors
// @Accept json
// @Produce json
// @Param id path string true "Monitor ID"
// @Param payload body models.MonitorPatch true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /monitors/{id} [patch]
func (h *MonitorHandler) Update(c *gin.Context) {
	var patch models.MonitorPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	monitor, err := h.monitors.Update(c.Request.Context(), userFromContext(c), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err, withNotices(h.notices))
		return
	}
	response.OK(c, monitor, withNotices(h.notices))
}

// Delete godoc
// @Summary Delete monitor together with its classes
// @Tags Monitors
// @Produce json
// @Param id path string true "Monitor ID"
// @Success 200 {object} response.Envelope
// @Router /monitors/{id} [delete]
func (h *MonitorHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	removed, err := h.monitors.Delete(c.Request.Context(), userFromContext(c), id)
	if err != nil {
		response.Error(c, err, withNotices(h.notices))
		return
	}
	response.OK(c, gin.H{"id": id, "removedClasses": removed}, withNotices(h.notices))
}
