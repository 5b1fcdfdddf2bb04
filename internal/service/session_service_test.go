package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/padel-board-api/internal/models"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
)

func TestLoginCoordinatorUsesFixedIdentity(t *testing.T) {
	f := newFixture(t)

	state, err := f.sessions.Login(context.Background(), models.LoginRequest{Role: models.RoleCoordinator})
	require.NoError(t, err)
	require.NotNil(t, state.CurrentUser)
	assert.Equal(t, models.CoordinatorID, state.CurrentUser.ID)
	assert.Equal(t, "2024-03-04", state.WeekStart)
	assert.Equal(t, "Semana del 04/03/2024 - 10/03/2024", state.WeekTitle)
	assert.Equal(t, 15, state.SnapMinutes)

	cached, err := f.fallback.LoadCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, state.CurrentUser, cached)
}

func TestLoginMonitorByNameRegistersOnce(t *testing.T) {
	f := newFixture(t)

	first := f.loginMonitor(t, "Ana")
	assert.Equal(t, models.RoleMonitor, first.Role)
	require.Len(t, f.store.ListMonitors(), 1)

	f.sessions.Logout(context.Background())
	second := f.loginMonitor(t, "  ana ")
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.store.ListMonitors(), 1)
}

func TestLoginMonitorValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.sessions.Login(context.Background(), models.LoginRequest{Role: models.RoleMonitor, MonitorName: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, "Por favor ingresa tu nombre", appErrors.FromError(err).Message)

	_, err = f.sessions.Login(context.Background(), models.LoginRequest{Role: models.RoleMonitor, MonitorID: "ghost"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = f.sessions.Login(context.Background(), models.LoginRequest{Role: "admin"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Nil(t, f.sessions.CurrentUser())
}

func TestLoginMonitorByID(t *testing.T) {
	f := newFixture(t)
	luis := f.addMonitor("Luis")

	state, err := f.sessions.Login(context.Background(), models.LoginRequest{Role: models.RoleMonitor, MonitorID: luis.ID})
	require.NoError(t, err)
	assert.Equal(t, "Luis", state.CurrentUser.Name)
}

func TestLogoutClearsCachedUser(t *testing.T) {
	f := newFixture(t)
	f.loginCoordinator(t)

	f.sessions.Logout(context.Background())
	assert.Nil(t, f.sessions.CurrentUser())
	cached, err := f.fallback.LoadCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestRestoreLoadsDatasetAndSession(t *testing.T) {
	f := newFixture(t)
	ds := sampleDataset()
	require.NoError(t, f.primary.SaveAll(context.Background(), ds))
	require.NoError(t, f.fallback.SaveCurrentUser(context.Background(), &models.CurrentUser{ID: "m1", Name: "Ana", Role: models.RoleMonitor}))

	require.NoError(t, f.sessions.Restore(context.Background()))
	assert.Len(t, f.store.ListClasses(), 1)
	require.NotNil(t, f.sessions.CurrentUser())
	assert.Equal(t, "m1", f.sessions.CurrentUser().ID)
	assert.Equal(t, "2024-03-04", f.sessions.State().WeekStart)
}

func TestRestoreDropsSessionOfDeletedMonitor(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.primary.SaveAll(context.Background(), sampleDataset()))
	require.NoError(t, f.fallback.SaveCurrentUser(context.Background(), &models.CurrentUser{ID: "gone", Name: "Old", Role: models.RoleMonitor}))

	require.NoError(t, f.sessions.Restore(context.Background()))
	assert.Nil(t, f.sessions.CurrentUser())
}

func TestRestoreWithUnavailableStorageStartsEmpty(t *testing.T) {
	f := newFixture(t)
	f.primary.SetFailure(errors.New("connection refused"))
	f.fallback.SetFailure(errors.New("corrupt"))

	err := f.sessions.Restore(context.Background())
	assert.True(t, appErrors.IsWarning(err))
	assert.Empty(t, f.store.ListClasses())
	assert.Nil(t, f.sessions.CurrentUser())
}

func TestWeekNavigation(t *testing.T) {
	f := newFixture(t)
	f.loginCoordinator(t)

	assert.Equal(t, "2024-03-11", f.sessions.NavigateWeek(1).WeekStart)
	assert.Equal(t, "2024-02-26", f.sessions.NavigateWeek(-2).WeekStart)
	assert.Equal(t, "2024-03-04", f.sessions.GoToToday().WeekStart)

	state, err := f.sessions.ShowWeekOf("2024-12-25")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-23", state.WeekStart)

	_, err = f.sessions.ShowWeekOf("25/12/2024")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestFocusIsCoordinatorOnly(t *testing.T) {
	f := newFixture(t)
	ana := f.addMonitor("Ana")

	_, err := f.sessions.Focus(monitorUser(ana), ana.ID)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	_, err = f.sessions.Focus(nil, ana.ID)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	coord := f.loginCoordinator(t)
	_, err = f.sessions.Focus(coord, "ghost")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	state, err := f.sessions.Focus(coord, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, ana.ID, state.FocusMonitorID)
}

func TestSetSnap(t *testing.T) {
	f := newFixture(t)

	state, err := f.sessions.SetSnap(0)
	require.NoError(t, err)
	assert.Equal(t, 30, state.SnapMinutes)

	state, err = f.sessions.SetSnap(15)
	require.NoError(t, err)
	assert.Equal(t, 15, state.SnapMinutes)

	_, err = f.sessions.SetSnap(20)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
