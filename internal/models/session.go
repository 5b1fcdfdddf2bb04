package models

// Role is the locally trusted role flag of the current user.
type Role string

const (
	RoleCoordinator Role = "coordinator"
	RoleMonitor     Role = "monitor"
)

// CoordinatorID and CoordinatorName identify the single coordinator account.
const (
	CoordinatorID   = "coordinator"
	CoordinatorName = "Coordinador"
)

// CurrentUser is the session identity. It is cached locally, not shared.
type CurrentUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// IsCoordinator reports whether the user holds the coordinator role.
func (u *CurrentUser) IsCoordinator() bool {
	return u != nil && u.Role == RoleCoordinator
}

// IsMonitor reports whether the user holds the monitor role.
func (u *CurrentUser) IsMonitor() bool {
	return u != nil && u.Role == RoleMonitor
}

// Viewer describes who is looking at the calendar.
type Viewer struct {
	ID             string
	Role           Role
	FocusMonitorID string
}

// LoginRequest selects a role and, for monitors, an identity.
type LoginRequest struct {
	Role        Role   `json:"role" validate:"required,oneof=coordinator monitor"`
	MonitorID   string `json:"monitorId"`
	MonitorName string `json:"monitorName" validate:"omitempty,max=120"`
}

// SessionState is the serialisable view of the application context.
type SessionState struct {
	CurrentUser    *CurrentUser `json:"currentUser"`
	WeekStart      string       `json:"weekStart"`
	WeekTitle      string       `json:"weekTitle"`
	FocusMonitorID string       `json:"focusMonitorId,omitempty"`
	SnapMinutes    int          `json:"snapMinutes"`
}
