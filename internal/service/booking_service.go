package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/padel-board-api/internal/models"
	"github.com/noah-isme/padel-board-api/pkg/config"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
	"github.com/noah-isme/padel-board-api/pkg/timeutil"
)

// CreateClassRequest holds payload for booking a class in the displayed week.
type CreateClassRequest struct {
	Day       string   `json:"day" validate:"required,weekday"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Students  []string `json:"students" validate:"omitempty,dive,required"`
	MonitorID *string  `json:"monitorId"`
}

// BookingService validates and applies class mutations.
type BookingService struct {
	store     boardStore
	session   sessionContext
	persist   persister
	notices   *Notices
	metrics   *MetricsService
	board     config.BoardConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookingService constructs the booking engine.
func NewBookingService(st boardStore, session sessionContext, persist persister, board config.BoardConfig, notices *Notices, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	RegisterBoardRules(validate, board.Days)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		store:     st,
		session:   session,
		persist:   persist,
		notices:   notices,
		metrics:   metrics,
		board:     board,
		validator: validate,
		logger:    logger,
	}
}

// List returns every class the actor may see, across all weeks.
func (s *BookingService) List(ctx context.Context, actor *models.CurrentUser) ([]models.ClassCard, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	classes := s.store.ListClasses()
	cards := make([]models.ClassCard, 0, len(classes))
	for _, c := range classes {
		if actor.IsMonitor() && !c.HasMonitor(actor.ID) {
			continue
		}
		cards = append(cards, ToCard(c))
	}
	return cards, nil
}

// Get returns one class. Monitors cannot read other monitors' classes.
func (s *BookingService) Get(ctx context.Context, actor *models.CurrentUser, id string) (*models.ClassCard, error) {
	c, err := s.ownedClass(actor, id)
	if err != nil {
		return nil, err
	}
	card := ToCard(c)
	return &card, nil
}

// Create books a class on a weekday of the displayed week.
func (s *BookingService) Create(ctx context.Context, actor *models.CurrentUser, req CreateClassRequest) (*models.ClassCard, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	students := lo.Uniq(req.Students)
	if err := s.checkStudents(students, s.board.MaxStudentsPerClass); err != nil {
		return nil, err
	}
	if err := checkTimeRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	class := models.Class{
		Day:         req.Day,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Students:    students,
		MaxCapacity: s.board.MaxStudentsPerClass,
		Status:      models.ClassStatusActive,
	}
	if err := s.assignMonitor(actor, &class, req.MonitorID); err != nil {
		return nil, err
	}
	date, err := timeutil.DateForDayOffset(s.session.WeekStart(), dayIndex(s.board.Days, req.Day))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day")
	}
	class.Date = timeutil.FormatDate(date)

	stored := s.store.AddClass(class)
	s.afterMutation(ctx, "create", "Clase creada correctamente")
	s.logger.Info("class created", zap.String("class_id", stored.ID), zap.String("date", stored.Date), zap.String("start", stored.StartTime))
	card := ToCard(stored)
	return &card, nil
}

// Update merges a partial change into a class. An empty patch changes nothing
// and is not persisted. Changing the day re-derives the date inside the
// class's own week.
func (s *BookingService) Update(ctx context.Context, actor *models.CurrentUser, id string, patch models.ClassPatch) (*models.ClassCard, error) {
	current, err := s.ownedClass(actor, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		card := ToCard(current)
		return &card, nil
	}
	if err := s.validator.Struct(patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	next := current.Clone()
	if patch.Day != nil && *patch.Day != next.Day {
		date, err := s.dateInClassWeek(current, *patch.Day)
		if err != nil {
			return nil, err
		}
		next.Day = *patch.Day
		next.Date = date
	}
	if patch.StartTime != nil {
		next.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		next.EndTime = *patch.EndTime
	}
	if patch.StartTime != nil || patch.EndTime != nil {
		if err := checkTimeRange(next.StartTime, next.EndTime); err != nil {
			return nil, err
		}
	}
	if patch.Students != nil {
		students := lo.Uniq(*patch.Students)
		if err := s.checkStudents(students, next.MaxCapacity); err != nil {
			return nil, err
		}
		next.Students = students
	}
	if patch.Status != nil {
		next.Status = *patch.Status
	}
	if patch.IsCompleted != nil {
		next.IsCompleted = *patch.IsCompleted
	}
	if patch.MonitorID != nil {
		if !actor.IsCoordinator() {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only the coordinator can reassign classes")
		}
		if err := s.assignMonitor(actor, &next, patch.MonitorID); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.UpdateClass(id, func(c *models.Class) { *c = next })
	if err != nil {
		return nil, notFound(err, "class not found")
	}
	s.afterMutation(ctx, "update", "Clase actualizada")
	card := ToCard(updated)
	return &card, nil
}

// Delete removes a class immediately. Confirmation happens upstream.
func (s *BookingService) Delete(ctx context.Context, actor *models.CurrentUser, id string) error {
	if _, err := s.ownedClass(actor, id); err != nil {
		return err
	}
	if err := s.store.DeleteClass(id); err != nil {
		return notFound(err, "class not found")
	}
	s.afterMutation(ctx, "delete", "Clase eliminada")
	s.logger.Info("class deleted", zap.String("class_id", id))
	return nil
}

// ToggleCompleted flips the manual completion flag. A completed class shows as full.
func (s *BookingService) ToggleCompleted(ctx context.Context, actor *models.CurrentUser, id string) (*models.ClassCard, error) {
	if _, err := s.ownedClass(actor, id); err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateClass(id, func(c *models.Class) { c.IsCompleted = !c.IsCompleted })
	if err != nil {
		return nil, notFound(err, "class not found")
	}
	s.afterMutation(ctx, "toggle_completed", "Clase actualizada")
	card := ToCard(updated)
	return &card, nil
}

func (s *BookingService) ownedClass(actor *models.CurrentUser, id string) (models.Class, error) {
	if err := requireSession(actor); err != nil {
		return models.Class{}, err
	}
	c, err := s.store.GetClass(id)
	if err != nil {
		return models.Class{}, notFound(err, "class not found")
	}
	if actor.IsMonitor() && !c.HasMonitor(actor.ID) {
		return models.Class{}, appErrors.Clone(appErrors.ErrForbidden, "class belongs to another monitor")
	}
	return c, nil
}

// assignMonitor sets the monitor of a class. Monitors always own what they
// book; the coordinator names a monitor, or leaves the class unassigned when
// the board allows it. An empty id unassigns.
func (s *BookingService) assignMonitor(actor *models.CurrentUser, c *models.Class, monitorID *string) error {
	if actor.IsMonitor() {
		c.MonitorID = strPtr(actor.ID)
		c.MonitorName = strPtr(actor.Name)
		return nil
	}
	if monitorID == nil || *monitorID == "" {
		if s.board.RequireMonitor {
			return appErrors.ErrMonitorRequired
		}
		c.MonitorID = nil
		c.MonitorName = nil
		return nil
	}
	m, err := s.store.GetMonitor(*monitorID)
	if err != nil {
		return notFound(err, "monitor not found")
	}
	c.MonitorID = strPtr(m.ID)
	c.MonitorName = strPtr(m.Name)
	return nil
}

func (s *BookingService) checkStudents(students []string, capacity int) error {
	if len(students) > capacity {
		return appErrors.Clone(appErrors.ErrCapacityExceeded, fmt.Sprintf("Máximo %d alumnos por clase", capacity))
	}
	for _, id := range students {
		if !s.store.HasStudent(id) {
			return appErrors.Clone(appErrors.ErrUnknownStudent, fmt.Sprintf("student %s does not exist", id))
		}
	}
	return nil
}

func (s *BookingService) dateInClassWeek(c models.Class, day string) (string, error) {
	idx := dayIndex(s.board.Days, day)
	weekStart := s.session.WeekStart()
	if d, err := timeutil.ParseDate(c.Date); err == nil {
		weekStart = timeutil.MondayOf(d)
	}
	date, err := timeutil.DateForDayOffset(weekStart, idx)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day")
	}
	return timeutil.FormatDate(date), nil
}

func (s *BookingService) afterMutation(ctx context.Context, op, message string) {
	s.metrics.RecordBooking(op)
	s.metrics.SetClassCount(len(s.store.ListClasses()))
	persistSnapshot(ctx, s.store, s.persist, s.logger, "class."+op)
	s.notices.Success(message)
}

// checkTimeRange accepts only zero-padded HH:MM values with end after start.
func checkTimeRange(start, end string) error {
	if !timeutil.IsClock(start) {
		return appErrors.Clone(appErrors.ErrInvalidTimeRange, fmt.Sprintf("invalid start time %q", start))
	}
	if !timeutil.IsClock(end) {
		return appErrors.Clone(appErrors.ErrInvalidTimeRange, fmt.Sprintf("invalid end time %q", end))
	}
	startMin, _ := timeutil.MinutesOfDay(start)
	endMin, _ := timeutil.MinutesOfDay(end)
	if endMin <= startMin {
		return appErrors.ErrInvalidTimeRange
	}
	return nil
}
