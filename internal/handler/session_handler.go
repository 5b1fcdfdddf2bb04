package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/padel-board-api/internal/models"
	"github.com/noah-isme/padel-board-api/internal/service"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
	"github.com/noah-isme/padel-board-api/pkg/response"
)

// NavigateWeekRequest moves the displayed week by Direction weeks, or jumps
// to the week containing Date when set.
type NavigateWeekRequest struct {
	Direction int    `json:"direction"`
	Date      string `json:"date"`
}

// FocusRequest selects the monitor a coordinator drills into.
type FocusRequest struct {
	MonitorID string `json:"monitorId" binding:"required"`
}

// SnapRequest sets the drag granularity; zero toggles it.
type SnapRequest struct {
	Minutes int `json:"minutes"`
}

// SessionHandler exposes login and application context endpoints.
type SessionHandler struct {
	sessions *service.SessionService
	notices  *service.Notices
}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler(sessions *service.SessionService, notices *service.Notices) *SessionHandler {
	return &SessionHandler{sessions: sessions, notices: notices}
}

// Get godoc
// @Summary Current session
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session [get]
func (h *SessionHandler) Get(c *gin.Context) {
	response.OK(c, h.sessions.State(), withNotices(h.notices))
}

// Login godoc
// @Summary Log in as coordinator or monitor
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Router /session/login [post]
func (h *SessionHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	state, err := h.sessions.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err, withNotices(h.notices))
		return
	}
	response.OK(c, state, withNotices(h.notices))
}

// Logout godoc
// @Summary Log out
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session/logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	h.sessions.Logout(c.Request.Context())
	response.OK(c, h.sessions.State(), withNotices(h.notices))
}

// NavigateWeek godoc
// @Summary Move the displayed week
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body NavigateWeekRequest true "Direction in weeks, or a date"
// @Success 200 {object} response.Envelope
// @Router /session/week [post]
func (h *SessionHandler) NavigateWeek(c *gin.Context) {
	var req NavigateWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if req.Date != "" {
		state, err := h.sessions.ShowWeekOf(req.Date)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, state)
		return
	}
	response.OK(c, h.sessions.NavigateWeek(req.Direction))
}

// Today godoc
// @Summary Show the current week
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session/week/today [post]
func (h *SessionHandler) Today(c *gin.Context) {
	response.OK(c, h.sessions.GoToToday())
}

// Focus godoc
// @Summary Narrow the coordinator calendar to one monitor
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body FocusRequest true "Monitor to focus"
// @Success 200 {object} response.Envelope
// @Router /session/focus [put]
func (h *SessionHandler) Focus(c *gin.Context) {
	var req FocusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	state, err := h.sessions.Focus(userFromContext(c), req.MonitorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, state)
}

// ClearFocus godoc
// @Summary Return to the unfiltered coordinator calendar
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session/focus [delete]
func (h *SessionHandler) ClearFocus(c *gin.Context) {
	state, err := h.sessions.ClearFocus(userFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, state)
}

// Snap godoc
// @Summary Set drag granularity
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body SnapRequest true "15, 30, or 0 to toggle"
// @Success 200 {object} response.Envelope
// @Router /session/snap [put]
func (h *SessionHandler) Snap(c *gin.Context) {
	var req SnapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	state, err := h.sessions.SetSnap(req.Minutes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, state)
}
