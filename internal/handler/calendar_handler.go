package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/padel-board-api/internal/service"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
	"github.com/noah-isme/padel-board-api/pkg/response"
	"github.com/noah-isme/padel-board-api/pkg/timeutil"
)

// CalendarHandler exposes the week grid.
type CalendarHandler struct {
	calendar *service.CalendarService
	notices  *service.Notices
}

// NewCalendarHandler constructs CalendarHandler.
func NewCalendarHandler(calendar *service.CalendarService, notices *service.Notices) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, notices: notices}
}

// Week godoc
// @Summary Week grid for the current viewer
// @Tags Calendar
// @Produce json
// @Param start query string false "Any date of the week (YYYY-MM-DD); defaults to the session week"
// @Success 200 {object} response.Envelope
// @Router /calendar/week [get]
func (h *CalendarHandler) Week(c *gin.Context) {
	weekStart, err := parseWeekQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.calendar.Week(c.Request.Context(), weekStart)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view, withNotices(h.notices))
}

// Slot godoc
// @Summary Classes starting in one hour cell of the session week
// @Tags Calendar
// @Produce json
// @Param day query string true "Day label"
// @Param hour query int true "Hour 0-23"
// @Success 200 {object} response.Envelope
// @Router /calendar/slot [get]
func (h *CalendarHandler) Slot(c *gin.Context) {
	hour, err := strconv.Atoi(c.Query("hour"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid hour"))
		return
	}
	cards, err := h.calendar.Slot(c.Request.Context(), c.Query("day"), hour)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cards)
}

func parseWeekQuery(c *gin.Context) (time.Time, error) {
	raw := c.Query("start")
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := timeutil.ParseDate(raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid start date")
	}
	return t, nil
}
