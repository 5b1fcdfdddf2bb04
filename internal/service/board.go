package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/padel-board-api/internal/models"
	"github.com/noah-isme/padel-board-api/internal/store"
	"github.com/noah-isme/padel-board-api/pkg/config"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
	"github.com/noah-isme/padel-board-api/pkg/timeutil"
)

type boardStore interface {
	Snapshot() models.Dataset
	ReplaceAll(ds models.Dataset)

	AddStudent(st models.Student) models.Student
	GetStudent(id string) (models.Student, error)
	HasStudent(id string) bool
	ListStudents() []models.Student
	UpdateStudent(id string, patch models.StudentPatch) (models.Student, error)
	DeleteStudent(id string) (int, error)
	StudentClassCount(id string) int

	AddMonitor(m models.Monitor) models.Monitor
	GetMonitor(id string) (models.Monitor, error)
	ListMonitors() []models.Monitor
	UpdateMonitor(id string, patch models.MonitorPatch) (models.Monitor, error)
	DeleteMonitor(id string) (int, error)
	StatsForMonitor(id string) models.MonitorStats
	ClassesByMonitor(id string) []models.Class

	AddClass(c models.Class) models.Class
	GetClass(id string) (models.Class, error)
	ListClasses() []models.Class
	UpdateClass(id string, mutate func(*models.Class)) (models.Class, error)
	DeleteClass(id string) error
}

type sessionContext interface {
	Init(user *models.CurrentUser)
	SetCurrentUser(user *models.CurrentUser)
	CurrentUser() *models.CurrentUser
	Clear()
	WeekStart() time.Time
	SetWeekStart(t time.Time) time.Time
	NavigateWeek(n int) time.Time
	GoToToday() time.Time
	Focus(monitorID string)
	ClearFocus()
	FocusMonitorID() string
	SnapMinutes() int
	SetSnapMinutes(step int) error
	ToggleSnap() int
	Viewer() (models.Viewer, bool)
	State() models.SessionState
}

type persister interface {
	SaveAll(ctx context.Context, ds models.Dataset) error
	SaveNow(ctx context.Context, ds models.Dataset) error
	SaveCurrentUser(ctx context.Context, user *models.CurrentUser) error
}

// persistSnapshot hands the current dataset to the gateway. Persistence
// problems are warnings: they are logged and otherwise swallowed because the
// gateway already raised a notice.
func persistSnapshot(ctx context.Context, st boardStore, p persister, logger *zap.Logger, op string) {
	if p == nil {
		return
	}
	if err := p.SaveAll(ctx, st.Snapshot()); err != nil {
		logger.Warn("persistence degraded", zap.String("operation", op), zap.Error(err))
	}
}

func notFound(err error, message string) error {
	if errors.Is(err, store.ErrNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func requireSession(actor *models.CurrentUser) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	return nil
}

func requireCoordinator(actor *models.CurrentUser) error {
	if err := requireSession(actor); err != nil {
		return err
	}
	if !actor.IsCoordinator() {
		return appErrors.Clone(appErrors.ErrForbidden, "coordinator role required")
	}
	return nil
}

func strPtr(v string) *string { return &v }

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	if *v == "" {
		return nil
	}
	return v
}

// operatingWindow returns the configured opening hours in minutes of day.
// The close never passes 23:59 so every end time stays on the same day.
func operatingWindow(b config.BoardConfig) (int, int) {
	start, err := timeutil.MinutesOfDay(b.HoursStart)
	if err != nil {
		start = 8 * 60
	}
	end := timeutil.MinutesPerDay - 1
	if m, err := timeutil.MinutesOfDay(b.HoursEnd); err == nil {
		end = m
	}
	return start, end
}
