package models

import "time"

// MonitorRole is the only role value stored on monitor records.
const MonitorRole = "monitor"

// Monitor is an instructor who teaches classes.
type Monitor struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Role        string    `json:"role"`
	CreatedDate time.Time `json:"createdDate"`
}

// MonitorPatch carries the fields of a partial monitor update.
type MonitorPatch struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=120"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=50"`
}

// MonitorStats summarises the workload of a monitor.
type MonitorStats struct {
	TotalClasses  int `json:"totalClasses"`
	TotalStudents int `json:"totalStudents"`
}

// MonitorSummary is one row of the coordinator roster.
type MonitorSummary struct {
	Monitor
	Stats MonitorStats `json:"stats"`
}
