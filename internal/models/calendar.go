package models

// ClassCard is a class as drawn on the grid, with derived display state.
type ClassCard struct {
	Class
	Occupancy       Occupancy `json:"occupancy"`
	DurationMinutes int       `json:"durationMinutes"`
}

// SlotView is one hour cell of a day column.
type SlotView struct {
	Hour    int         `json:"hour"`
	Classes []ClassCard `json:"classes"`
}

// DayColumn is one weekday of the board.
type DayColumn struct {
	Label string     `json:"label"`
	Date  string     `json:"date"`
	Slots []SlotView `json:"slots"`
}

// WeekView is the calendar for one viewer and one week window.
type WeekView struct {
	WeekStart string      `json:"weekStart"`
	WeekEnd   string      `json:"weekEnd"`
	Title     string      `json:"title"`
	Days      []DayColumn `json:"days"`
	Total     int         `json:"total"`
}
