package service

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/padel-board-api/internal/models"
	"github.com/noah-isme/padel-board-api/internal/store"
	"github.com/noah-isme/padel-board-api/pkg/config"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
	"github.com/noah-isme/padel-board-api/pkg/timeutil"
)

// ClassesVisible keeps the classes of the week starting at weekStart that the
// viewer may see. Monitors only see their own classes; a focused coordinator
// only sees the focused monitor's classes.
func ClassesVisible(all []models.Class, weekStart time.Time, viewer models.Viewer) []models.Class {
	return lo.Filter(all, func(c models.Class, _ int) bool {
		date, err := timeutil.ParseDate(c.Date)
		if err != nil || !timeutil.InWeek(date, weekStart) {
			return false
		}
		switch viewer.Role {
		case models.RoleMonitor:
			return c.HasMonitor(viewer.ID)
		case models.RoleCoordinator:
			return viewer.FocusMonitorID == "" || c.HasMonitor(viewer.FocusMonitorID)
		default:
			return false
		}
	})
}

// ClassesInSlot keeps the classes of day that start within hour. A class
// belongs to the cell it starts in, never to the cells it spans.
func ClassesInSlot(visible []models.Class, day string, hour int) []models.Class {
	return lo.Filter(visible, func(c models.Class, _ int) bool {
		if c.Day != day {
			return false
		}
		start, err := timeutil.MinutesOfDay(c.StartTime)
		return err == nil && start/60 == hour
	})
}

// ToCard decorates a class with its derived display state.
func ToCard(c models.Class) models.ClassCard {
	card := models.ClassCard{Class: c, Occupancy: c.Occupancy()}
	start, errStart := timeutil.MinutesOfDay(c.StartTime)
	end, errEnd := timeutil.MinutesOfDay(c.EndTime)
	if errStart == nil && errEnd == nil {
		card.DurationMinutes = end - start
	}
	return card
}

// CalendarService builds week and slot views for the logged-in viewer.
type CalendarService struct {
	store   boardStore
	session sessionContext
	board   config.BoardConfig
	logger  *zap.Logger
}

// NewCalendarService constructs the service.
func NewCalendarService(st boardStore, session sessionContext, board config.BoardConfig, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{store: st, session: session, board: board, logger: logger}
}

// Visible returns the classes the current viewer sees in the given week.
// A zero weekStart means the week held by the session.
func (s *CalendarService) Visible(ctx context.Context, weekStart time.Time) ([]models.Class, time.Time, error) {
	viewer, ok := s.session.Viewer()
	if !ok {
		return nil, time.Time{}, appErrors.ErrUnauthorized
	}
	if weekStart.IsZero() {
		weekStart = s.session.WeekStart()
	} else {
		weekStart = timeutil.Naive(timeutil.MondayOf(weekStart))
	}
	return ClassesVisible(s.store.ListClasses(), weekStart, viewer), weekStart, nil
}

// Week renders the grid: one column per weekday, one slot per operating hour.
func (s *CalendarService) Week(ctx context.Context, weekStart time.Time) (*models.WeekView, error) {
	visible, weekStart, err := s.Visible(ctx, weekStart)
	if err != nil {
		return nil, err
	}
	firstHour, lastHour := s.hourRange()

	view := &models.WeekView{
		WeekStart: timeutil.FormatDate(weekStart),
		WeekEnd:   timeutil.FormatDate(weekStart.AddDate(0, 0, 6)),
		Title:     store.WeekTitle(weekStart),
		Days:      make([]models.DayColumn, 0, len(s.board.Days)),
	}
	for i, label := range s.board.Days {
		date, _ := timeutil.DateForDayOffset(weekStart, i)
		col := models.DayColumn{Label: label, Date: timeutil.FormatDate(date)}
		for hour := firstHour; hour < lastHour; hour++ {
			classes := ClassesInSlot(visible, label, hour)
			sortByStart(classes)
			slot := models.SlotView{Hour: hour, Classes: make([]models.ClassCard, 0, len(classes))}
			for _, c := range classes {
				slot.Classes = append(slot.Classes, ToCard(c))
			}
			view.Total += len(slot.Classes)
			col.Slots = append(col.Slots, slot)
		}
		view.Days = append(view.Days, col)
	}
	return view, nil
}

// Slot returns the cards starting in one hour cell of the session week.
func (s *CalendarService) Slot(ctx context.Context, day string, hour int) ([]models.ClassCard, error) {
	if dayIndex(s.board.Days, day) < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown day")
	}
	if hour < 0 || hour > 23 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hour must be between 0 and 23")
	}
	visible, _, err := s.Visible(ctx, time.Time{})
	if err != nil {
		return nil, err
	}
	classes := ClassesInSlot(visible, day, hour)
	sortByStart(classes)
	cards := make([]models.ClassCard, 0, len(classes))
	for _, c := range classes {
		cards = append(cards, ToCard(c))
	}
	return cards, nil
}

func (s *CalendarService) hourRange() (int, int) {
	start, end := operatingWindow(s.board)
	last := end / 60
	if end%60 != 0 {
		last++
	}
	return start / 60, last
}

func sortByStart(classes []models.Class) {
	sort.SliceStable(classes, func(i, j int) bool {
		if classes[i].StartTime != classes[j].StartTime {
			return classes[i].StartTime < classes[j].StartTime
		}
		return classes[i].ID < classes[j].ID
	})
}
