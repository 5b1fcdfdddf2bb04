package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/padel-board-api/internal/models"
	"github.com/noah-isme/padel-board-api/internal/repository"
	"github.com/noah-isme/padel-board-api/internal/store"
	"github.com/noah-isme/padel-board-api/pkg/config"
)

// Thursday; the displayed week starts on Monday 2024-03-04.
var fixedNow = time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store    *store.Store
	session  *store.AppContext
	primary  *repository.MemoryRepository
	fallback *repository.MemoryRepository
	gateway  *PersistenceGateway
	notices  *Notices
	metrics  *MetricsService
	board    config.BoardConfig

	students *StudentService
	monitors *MonitorService
	sessions *SessionService
	calendar *CalendarService
	booking  *BookingService
	drag     *DragService
	exports  *ExportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithBoard(t, config.DefaultBoard())
}

func newFixtureWithBoard(t *testing.T, board config.BoardConfig) *fixture {
	t.Helper()
	seq := 0
	st := store.New(
		store.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%03d", seq)
		}),
		store.WithClock(func() time.Time { return fixedNow }),
	)
	session := store.NewAppContext(board.SnapMinutes, func() time.Time { return fixedNow })
	primary := repository.NewMemoryRepository()
	fallback := repository.NewMemoryRepository()
	notices := NewNotices(0)
	metrics := NewMetricsService()
	gateway := NewPersistenceGateway(primary, fallback, fallback, GatewayConfig{}, notices, metrics, nil)
	validate := NewBoardValidator(board.Days)

	f := &fixture{
		store:    st,
		session:  session,
		primary:  primary,
		fallback: fallback,
		gateway:  gateway,
		notices:  notices,
		metrics:  metrics,
		board:    board,
	}
	f.students = NewStudentService(st, gateway, notices, validate, nil)
	f.monitors = NewMonitorService(st, session, gateway, notices, validate, nil)
	f.calendar = NewCalendarService(st, session, board, nil)
	f.booking = NewBookingService(st, session, gateway, board, notices, metrics, validate, nil)
	f.drag = NewDragService(st, session, gateway, board, notices, metrics, validate, nil)
	f.drag.now = func() time.Time { return fixedNow }
	f.sessions = NewSessionService(st, session, gateway, gateway, f.drag, notices, metrics, validate, nil)
	f.exports = NewExportService(f.calendar, st, session, nil, nil, nil)
	return f
}

func (f *fixture) loginCoordinator(t *testing.T) *models.CurrentUser {
	t.Helper()
	_, err := f.sessions.Login(context.Background(), models.LoginRequest{Role: models.RoleCoordinator})
	require.NoError(t, err)
	return f.session.CurrentUser()
}

func (f *fixture) loginMonitor(t *testing.T, name string) *models.CurrentUser {
	t.Helper()
	_, err := f.sessions.Login(context.Background(), models.LoginRequest{Role: models.RoleMonitor, MonitorName: name})
	require.NoError(t, err)
	return f.session.CurrentUser()
}

func (f *fixture) addMonitor(name string) models.Monitor {
	return f.store.AddMonitor(models.Monitor{Name: name})
}

func (f *fixture) addStudents(names ...string) []string {
	ids := make([]string, 0, len(names))
	for _, n := range names {
		ids = append(ids, f.store.AddStudent(models.Student{Name: n}).ID)
	}
	return ids
}

func (f *fixture) book(t *testing.T, actor *models.CurrentUser, day, start, end string, monitorID *string, students ...string) *models.ClassCard {
	t.Helper()
	card, err := f.booking.Create(context.Background(), actor, CreateClassRequest{
		Day:       day,
		StartTime: start,
		EndTime:   end,
		Students:  students,
		MonitorID: monitorID,
	})
	require.NoError(t, err)
	return card
}

func coordinatorUser() *models.CurrentUser {
	return &models.CurrentUser{ID: models.CoordinatorID, Name: models.CoordinatorName, Role: models.RoleCoordinator}
}

func monitorUser(m models.Monitor) *models.CurrentUser {
	return &models.CurrentUser{ID: m.ID, Name: m.Name, Role: models.RoleMonitor}
}
