package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/padel-board-api/internal/models"
	"github.com/noah-isme/padel-board-api/internal/service"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
	"github.com/noah-isme/padel-board-api/pkg/response"
)

// DragHandler feeds pointer events to the drag reducer and resolves the pending change.
type DragHandler struct {
	drag    *service.DragService
	notices *service.Notices
}

// NewDragHandler constructs DragHandler.
func NewDragHandler(drag *service.DragService, notices *service.Notices) *DragHandler {
	return &DragHandler{drag: drag, notices: notices}
}

// Event godoc
// @Summary Submit a drag_started, drag_moved or drag_ended event
// @Tags Drag
// @Accept json
// @Produce json
// @Param payload body models.DragEvent true "Pointer event with cumulative deltas"
// @Success 200 {object} response.Envelope
// @Router /drag/events [post]
func (h *DragHandler) Event(c *gin.Context) {
	var ev models.DragEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.drag.Handle(c.Request.Context(), userFromContext(c), ev)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Pending godoc
// @Summary Current drag state and pending change
// @Tags Drag
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /drag/pending [get]
func (h *DragHandler) Pending(c *gin.Context) {
	response.OK(c, h.drag.State(userFromContext(c)))
}

// Confirm godoc
// @Summary Commit the pending change
// @Tags Drag
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /drag/pending/confirm [post]
func (h *DragHandler) Confirm(c *gin.Context) {
	class, err := h.drag.Confirm(c.Request.Context(), userFromContext(c))
	if err != nil {
		response.Error(c, err, withNotices(h.notices))
		return
	}
	response.OK(c, class, withNotices(h.notices))
}

// Cancel godoc
// @Summary Roll back the pending change
// @Tags Drag
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /drag/pending/cancel [post]
func (h *DragHandler) Cancel(c *gin.Context) {
	class, err := h.drag.Cancel(c.Request.Context(), userFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, class)
}
