package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/padel-board-api/internal/models"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
)

func TestCoordinatorFocusFiltersCalendar(t *testing.T) {
	f := newFixture(t)
	ana := f.loginMonitor(t, "Ana")
	card := f.book(t, ana, "Lunes", "09:00", "10:00", nil)

	coord := f.loginCoordinator(t)
	luis := f.addMonitor("Luis")

	_, err := f.sessions.Focus(coord, ana.ID)
	require.NoError(t, err)
	visible, _, err := f.calendar.Visible(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, card.ID, visible[0].ID)

	_, err = f.sessions.Focus(coord, luis.ID)
	require.NoError(t, err)
	visible, _, err = f.calendar.Visible(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Empty(t, visible)

	_, err = f.sessions.ClearFocus(coord)
	require.NoError(t, err)
	visible, _, err = f.calendar.Visible(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Len(t, visible, 1)
}

func TestClassesVisibleOnlyShowsOwnClassesInWindow(t *testing.T) {
	weekStart := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	monitors := []string{"m1", "m2", "m3"}
	dates := []string{"2024-03-03", "2024-03-04", "2024-03-07", "2024-03-10", "2024-03-11", "not-a-date"}

	var all []models.Class
	for i, date := range dates {
		for j, m := range monitors {
			id := m
			all = append(all, models.Class{ID: fmt.Sprintf("c%d%d", i, j), Date: date, MonitorID: &id})
		}
	}
	all = append(all, models.Class{ID: "orphan", Date: "2024-03-05"})

	for _, m := range monitors {
		got := ClassesVisible(all, weekStart, models.Viewer{ID: m, Role: models.RoleMonitor})
		assert.Len(t, got, 3, m)
		for _, c := range got {
			assert.True(t, c.HasMonitor(m))
			d, err := time.Parse("2006-01-02", c.Date)
			require.NoError(t, err)
			assert.False(t, d.Before(weekStart))
			assert.True(t, d.Before(weekStart.AddDate(0, 0, 7)))
		}
	}

	coord := ClassesVisible(all, weekStart, models.Viewer{ID: models.CoordinatorID, Role: models.RoleCoordinator})
	assert.Len(t, coord, 10)

	focused := ClassesVisible(all, weekStart, models.Viewer{ID: models.CoordinatorID, Role: models.RoleCoordinator, FocusMonitorID: "m2"})
	assert.Len(t, focused, 3)

	assert.Empty(t, ClassesVisible(all, weekStart, models.Viewer{}))
}

func TestClassesInSlotUsesStartHourOnly(t *testing.T) {
	classes := []models.Class{
		{ID: "a", Day: "Lunes", StartTime: "09:00", EndTime: "11:00"},
		{ID: "b", Day: "Lunes", StartTime: "09:45", EndTime: "10:15"},
		{ID: "c", Day: "Martes", StartTime: "09:00", EndTime: "10:00"},
	}
	assert.Len(t, ClassesInSlot(classes, "Lunes", 9), 2)
	assert.Empty(t, ClassesInSlot(classes, "Lunes", 10))
	assert.Len(t, ClassesInSlot(classes, "Martes", 9), 1)
}

func TestWeekViewLaysOutGrid(t *testing.T) {
	f := newFixture(t)
	coord := f.loginCoordinator(t)
	ana := f.addMonitor("Ana")
	f.book(t, coord, "Miércoles", "18:30", "20:00", strPtr(ana.ID))
	f.book(t, coord, "Miércoles", "18:00", "19:00", strPtr(ana.ID))

	view, err := f.calendar.Week(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", view.WeekStart)
	assert.Equal(t, "2024-03-10", view.WeekEnd)
	assert.Equal(t, "Semana del 04/03/2024 - 10/03/2024", view.Title)
	assert.Equal(t, 2, view.Total)
	require.Len(t, view.Days, 7)

	wednesday := view.Days[2]
	assert.Equal(t, "Miércoles", wednesday.Label)
	assert.Equal(t, "2024-03-06", wednesday.Date)
	require.Len(t, wednesday.Slots, 15)
	assert.Equal(t, 8, wednesday.Slots[0].Hour)

	slot := wednesday.Slots[18-8]
	require.Len(t, slot.Classes, 2)
	assert.Equal(t, "18:00", slot.Classes[0].StartTime)
	assert.Equal(t, "18:30", slot.Classes[1].StartTime)

	next, err := f.calendar.Week(context.Background(), time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11", next.WeekStart)
	assert.Zero(t, next.Total)
}

func TestWeekTotalCountsOnlyPlacedClasses(t *testing.T) {
	f := newFixture(t)
	coord := f.loginCoordinator(t)
	ana := f.addMonitor("Ana")
	f.book(t, coord, "Lunes", "06:00", "07:00", strPtr(ana.ID))
	f.book(t, coord, "Lunes", "23:15", "23:45", strPtr(ana.ID))
	placed := f.book(t, coord, "Lunes", "09:00", "10:00", strPtr(ana.ID))

	view, err := f.calendar.Week(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, view.Total)

	var shown []string
	for _, day := range view.Days {
		for _, slot := range day.Slots {
			for _, c := range slot.Classes {
				shown = append(shown, c.ID)
			}
		}
	}
	assert.Equal(t, []string{placed.ID}, shown)
}

func TestSlotValidatesInput(t *testing.T) {
	f := newFixture(t)
	f.loginCoordinator(t)

	_, err := f.calendar.Slot(context.Background(), "Funday", 9)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = f.calendar.Slot(context.Background(), "Lunes", 24)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	cards, err := f.calendar.Slot(context.Background(), "Lunes", 9)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestCalendarRequiresSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.calendar.Week(context.Background(), time.Time{})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}
