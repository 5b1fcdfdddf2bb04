package models

// ClassStatus captures the lifecycle label stored with a class.
type ClassStatus string

const (
	ClassStatusActive    ClassStatus = "active"
	ClassStatusCancelled ClassStatus = "cancelled"
)

// Occupancy is the derived fill state of a class.
type Occupancy string

const (
	OccupancyEmpty   Occupancy = "empty"
	OccupancyPartial Occupancy = "partial"
	OccupancyFull    Occupancy = "full"
)

// Class is a time-boxed session on the weekly board.
type Class struct {
	ID          string      `json:"id"`
	Day         string      `json:"day"`
	Date        string      `json:"date"`
	StartTime   string      `json:"startTime"`
	EndTime     string      `json:"endTime"`
	Students    []string    `json:"students"`
	MaxCapacity int         `json:"maxCapacity"`
	Status      ClassStatus `json:"status"`
	IsCompleted bool        `json:"isCompleted"`
	MonitorID   *string     `json:"monitorId,omitempty"`
	MonitorName *string     `json:"monitorName,omitempty"`
}

// Clone returns a deep copy so callers never share the students slice.
func (c Class) Clone() Class {
	cp := c
	if c.Students != nil {
		cp.Students = append([]string(nil), c.Students...)
	}
	cp.MonitorID = cloneString(c.MonitorID)
	cp.MonitorName = cloneString(c.MonitorName)
	return cp
}

// HasMonitor reports whether the class is assigned to the given monitor.
func (c Class) HasMonitor(id string) bool {
	return c.MonitorID != nil && *c.MonitorID == id
}

// Occupancy classifies enrollment against capacity. A completed class is always full.
func (c Class) Occupancy() Occupancy {
	if c.IsCompleted {
		return OccupancyFull
	}
	count := len(c.Students)
	switch {
	case count >= c.MaxCapacity:
		return OccupancyFull
	case count > 0:
		return OccupancyPartial
	default:
		return OccupancyEmpty
	}
}

// ClassPatch is a partial class update. Nil fields are left untouched; Date is
// never patched directly because it follows Day.
type ClassPatch struct {
	Day         *string      `json:"day" validate:"omitempty,weekday"`
	StartTime   *string      `json:"startTime"`
	EndTime     *string      `json:"endTime"`
	Students    *[]string    `json:"students" validate:"omitempty,dive,required"`
	Status      *ClassStatus `json:"status" validate:"omitempty,oneof=active cancelled"`
	IsCompleted *bool        `json:"isCompleted"`
	MonitorID   *string      `json:"monitorId"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ClassPatch) IsEmpty() bool {
	return p.Day == nil && p.StartTime == nil && p.EndTime == nil && p.Students == nil &&
		p.Status == nil && p.IsCompleted == nil && p.MonitorID == nil
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}
