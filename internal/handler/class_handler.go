package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/padel-board-api/internal/models"
	"github.com/noah-isme/padel-board-api/internal/service"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
	"github.com/noah-isme/padel-board-api/pkg/response"
)

// ClassHandler exposes booking endpoints.
type ClassHandler struct {
	booking *service.BookingService
	notices *service.Notices
}

// NewClassHandler constructs ClassHandler.
func NewClassHandler(booking *service.BookingService, notices *service.Notices) *ClassHandler {
	return &ClassHandler{booking: booking, notices: notices}
}

// List godoc
// @Summary List classes the viewer may see, across weeks
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	classes, err := h.booking.List(c.Request.Context(), userFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, map[string]interface{}{"total": len(classes)})
}

// Get godoc
// @Summary Get class detail
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.booking.Get(c.Request.Context(), userFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, class)
}

// Create godoc
// @Summary Book a class in the displayed week
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.booking.Create(c.Request.Context(), userFromContext(c), req)
	if err != nil {
		response.Error(c, err, withNotices(h.notices))
		return
	}
	response.Created(c, class, withNotices(h.notices))
}

// Update godoc
// @Summary Partially update a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body models.ClassPatch true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [patch]
func (h *ClassHandler) Update(c *gin.Context) {
	var patch models.ClassPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.booking.Update(c.Request.Context(), userFromContext(c), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err, withNotices(h.notices))
		return
	}
	response.OK(c, class, withNotices(h.notices))
}

// Delete godoc
// @Summary Delete class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.booking.Delete(c.Request.Context(), userFromContext(c), id); err != nil {
		response.Error(c, err, withNotices(h.notices))
		return
	}
	response.OK(c, gin.H{"id": id}, withNotices(h.notices))
}

// ToggleCompleted godoc
// @Summary Flip the manual completion flag
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/toggle-completed [post]
func (h *ClassHandler) ToggleCompleted(c *gin.Context) {
	class, err := h.booking.ToggleCompleted(c.Request.Context(), userFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err, withNotices(h.notices))
		return
	}
	response.OK(c, class, withNotices(h.notices))
}
