package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/padel-board-api/internal/models"
	"github.com/noah-isme/padel-board-api/pkg/timeutil"
)

// AppContext is the explicit session object of the board: who is logged in,
// which week is shown and which monitor a coordinator is focused on.
type AppContext struct {
	mu sync.RWMutex

	user           *models.CurrentUser
	weekStart      time.Time
	focusMonitorID string
	snapMinutes    int

	now func() time.Time
}

// NewAppContext creates a context showing the current week.
func NewAppContext(snapMinutes int, now func() time.Time) *AppContext {
	if now == nil {
		now = time.Now
	}
	if snapMinutes <= 0 {
		snapMinutes = 15
	}
	ctx := &AppContext{snapMinutes: snapMinutes, now: now}
	ctx.weekStart = timeutil.Naive(timeutil.MondayOf(now()))
	return ctx
}

// Init resets the context to the current week and restores a cached user.
func (a *AppContext) Init(user *models.CurrentUser) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = copyUser(user)
	a.focusMonitorID = ""
	a.weekStart = timeutil.Naive(timeutil.MondayOf(a.now()))
}

// SetCurrentUser replaces the session identity and drops any focus.
func (a *AppContext) SetCurrentUser(user *models.CurrentUser) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = copyUser(user)
	a.focusMonitorID = ""
}

// CurrentUser returns a copy of the session identity, nil when logged out.
func (a *AppContext) CurrentUser() *models.CurrentUser {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return copyUser(a.user)
}

// Clear logs out.
func (a *AppContext) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = nil
	a.focusMonitorID = ""
}

// WeekStart returns the Monday of the displayed week.
func (a *AppContext) WeekStart() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.weekStart
}

// SetWeekStart normalises t to its Monday and shows that week.
func (a *AppContext) SetWeekStart(t time.Time) time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.weekStart = timeutil.Naive(timeutil.MondayOf(t))
	return a.weekStart
}

// NavigateWeek moves the displayed week by n weeks.
func (a *AppContext) NavigateWeek(n int) time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.weekStart = a.weekStart.AddDate(0, 0, 7*n)
	return a.weekStart
}

// GoToToday shows the week containing now.
func (a *AppContext) GoToToday() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.weekStart = timeutil.Naive(timeutil.MondayOf(a.now()))
	return a.weekStart
}

// Focus narrows a coordinator's calendar to one monitor.
func (a *AppContext) Focus(monitorID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.focusMonitorID = monitorID
}

// ClearFocus returns the coordinator to the unfiltered view.
func (a *AppContext) ClearFocus() {
	a.Focus("")
}

// FocusMonitorID returns the focused monitor, empty when none.
func (a *AppContext) FocusMonitorID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.focusMonitorID
}

// SnapMinutes returns the drag granularity.
func (a *AppContext) SnapMinutes() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapMinutes
}

// SetSnapMinutes changes the drag granularity; only 15 and 30 are accepted.
func (a *AppContext) SetSnapMinutes(step int) error {
	if step != 15 && step != 30 {
		return fmt.Errorf("snap granularity must be 15 or 30, got %d", step)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapMinutes = step
	return nil
}

// ToggleSnap flips between 15 and 30 minute steps.
func (a *AppContext) ToggleSnap() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.snapMinutes == 15 {
		a.snapMinutes = 30
	} else {
		a.snapMinutes = 15
	}
	return a.snapMinutes
}

// Viewer describes the logged-in user for visibility filtering.
// The boolean is false when nobody is logged in.
func (a *AppContext) Viewer() (models.Viewer, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return models.Viewer{}, false
	}
	v := models.Viewer{ID: a.user.ID, Role: a.user.Role}
	if a.user.IsCoordinator() {
		v.FocusMonitorID = a.focusMonitorID
	}
	return v, true
}

// State renders the context for clients.
func (a *AppContext) State() models.SessionState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return models.SessionState{
		CurrentUser:    copyUser(a.user),
		WeekStart:      timeutil.FormatDate(a.weekStart),
		WeekTitle:      WeekTitle(a.weekStart),
		FocusMonitorID: a.focusMonitorID,
		SnapMinutes:    a.snapMinutes,
	}
}

// WeekTitle renders "Semana del DD/MM/YYYY - DD/MM/YYYY" for the week starting at weekStart.
func WeekTitle(weekStart time.Time) string {
	end := weekStart.AddDate(0, 0, 6)
	return fmt.Sprintf("Semana del %s - %s", weekStart.Format(timeutil.DisplayLayout), end.Format(timeutil.DisplayLayout))
}

func copyUser(u *models.CurrentUser) *models.CurrentUser {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
