package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/padel-board-api/internal/models"
	"github.com/noah-isme/padel-board-api/pkg/config"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
)

func dragTo(t *testing.T, f *fixture, actor *models.CurrentUser, classID string, mode models.DragMode, dx, dy int) *models.DragResult {
	t.Helper()
	ctx := context.Background()
	_, err := f.drag.Handle(ctx, actor, models.DragEvent{Type: models.DragStarted, ClassID: classID, Mode: mode})
	require.NoError(t, err)
	_, err = f.drag.Handle(ctx, actor, models.DragEvent{Type: models.DragMoved, DX: dx / 2, DY: dy / 2})
	require.NoError(t, err)
	res, err := f.drag.Handle(ctx, actor, models.DragEvent{Type: models.DragEnded, DX: dx, DY: dy})
	require.NoError(t, err)
	return res
}

func bookMonday(t *testing.T, f *fixture) (*models.CurrentUser, *models.ClassCard) {
	t.Helper()
	actor := f.loginCoordinator(t)
	ana := f.addMonitor("Ana")
	ids := f.addStudents("Carla", "Diego")
	return actor, f.book(t, actor, "Lunes", "09:00", "10:00", strPtr(ana.ID), ids...)
}

func TestDragMoveThenCancelRestoresClass(t *testing.T) {
	f := newFixture(t)
	actor, card := bookMonday(t, f)
	original, err := f.store.GetClass(card.ID)
	require.NoError(t, err)
	saves := f.primary.Saves()

	res := dragTo(t, f, actor, card.ID, models.DragModeMove, 120, 60)
	assert.Equal(t, models.PhasePendingConfirmation, res.Phase)
	require.NotNil(t, res.Pending)
	assert.Equal(t, models.ClassProposal{Day: "Martes", Date: "2024-03-05", StartTime: "10:00", EndTime: "11:00"}, res.Pending.ProposedUpdates)
	assert.Equal(t, original, res.Pending.OriginalSnapshot)

	moved, err := f.store.GetClass(card.ID)
	require.NoError(t, err)
	assert.Equal(t, "Martes", moved.Day)
	assert.Equal(t, "10:00", moved.StartTime)

	restored, err := f.drag.Cancel(context.Background(), actor)
	require.NoError(t, err)
	assert.Equal(t, "Lunes", restored.Day)

	after, err := f.store.GetClass(card.ID)
	require.NoError(t, err)
	assert.Equal(t, original, after)
	assert.Equal(t, saves, f.primary.Saves())
	assert.Nil(t, f.drag.Pending(actor))
	assert.Equal(t, models.PhaseIdle, f.drag.State(actor).Phase)
}

func TestDragMoveConfirmPersists(t *testing.T) {
	f := newFixture(t)
	actor, card := bookMonday(t, f)
	dragTo(t, f, actor, card.ID, models.DragModeMove, 120, 60)
	f.notices.Drain()

	confirmed, err := f.drag.Confirm(context.Background(), actor)
	require.NoError(t, err)
	assert.Equal(t, "Martes", confirmed.Day)
	assert.Nil(t, f.drag.Pending(actor))

	stored, err := f.primary.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, stored.Classes, 1)
	assert.Equal(t, "2024-03-05", stored.Classes[0].Date)
	assert.Equal(t, "10:00", stored.Classes[0].StartTime)

	notices := f.notices.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, "Clase actualizada", notices[0].Message)
}

func TestDragConfirmKeepsLocalStateWhenSaveFails(t *testing.T) {
	f := newFixture(t)
	actor, card := bookMonday(t, f)
	dragTo(t, f, actor, card.ID, models.DragModeMove, 0, 120)
	f.primary.SetFailure(errors.New("timeout"))
	f.notices.Drain()

	confirmed, err := f.drag.Confirm(context.Background(), actor)
	require.NoError(t, err)
	assert.Equal(t, "11:00", confirmed.StartTime)
	assert.Nil(t, f.drag.Pending(actor))

	notices := f.notices.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeWarning, notices[0].Level)

	local, err := f.fallback.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, local.Classes, 1)
	assert.Equal(t, "11:00", local.Classes[0].StartTime)
}

func TestResizeSnapsDurationDelta(t *testing.T) {
	f := newFixture(t)
	actor, card := bookMonday(t, f)

	res := dragTo(t, f, actor, card.ID, models.DragModeResize, 0, 37)
	require.NotNil(t, res.Pending)
	assert.Equal(t, "09:00", res.Pending.ProposedUpdates.StartTime)
	assert.Equal(t, "10:30", res.Pending.ProposedUpdates.EndTime)
	assert.Equal(t, "Lunes", res.Pending.ProposedUpdates.Day)
}

func TestResizeNeverShrinksBelowOneStep(t *testing.T) {
	f := newFixture(t)
	actor, card := bookMonday(t, f)

	res := dragTo(t, f, actor, card.ID, models.DragModeResize, 0, -300)
	require.NotNil(t, res.Pending)
	assert.Equal(t, "09:15", res.Pending.ProposedUpdates.EndTime)
}

func TestResizeClampsToClosingTime(t *testing.T) {
	f := newFixture(t)
	actor, card := bookMonday(t, f)

	res := dragTo(t, f, actor, card.ID, models.DragModeResize, 0, 60*20)
	require.NotNil(t, res.Pending)
	assert.Equal(t, "23:00", res.Pending.ProposedUpdates.EndTime)
}

func TestMoveClampsToOperatingWindowAndWeek(t *testing.T) {
	f := newFixture(t)
	actor, card := bookMonday(t, f)

	res := dragTo(t, f, actor, card.ID, models.DragModeMove, -500, -300)
	require.NotNil(t, res.Pending)
	assert.Equal(t, models.ClassProposal{Day: "Lunes", Date: "2024-03-04", StartTime: "08:00", EndTime: "09:00"}, res.Pending.ProposedUpdates)

	_, err := f.drag.Cancel(context.Background(), actor)
	require.NoError(t, err)

	res = dragTo(t, f, actor, card.ID, models.DragModeMove, 5000, 5000)
	require.NotNil(t, res.Pending)
	assert.Equal(t, models.ClassProposal{Day: "Domingo", Date: "2024-03-10", StartTime: "22:00", EndTime: "23:00"}, res.Pending.ProposedUpdates)
}

func TestSnapThirtyRoundsToHalfHours(t *testing.T) {
	f := newFixture(t)
	actor, card := bookMonday(t, f)
	_, err := f.sessions.SetSnap(30)
	require.NoError(t, err)

	res := dragTo(t, f, actor, card.ID, models.DragModeMove, 0, 40)
	require.NotNil(t, res.Pending)
	assert.Equal(t, "09:30", res.Pending.ProposedUpdates.StartTime)
}

func TestShortGestureIsAClick(t *testing.T) {
	f := newFixture(t)
	actor, card := bookMonday(t, f)
	before, err := f.store.GetClass(card.ID)
	require.NoError(t, err)

	res := dragTo(t, f, actor, card.ID, models.DragModeMove, 3, -4)
	assert.True(t, res.Click)
	assert.Equal(t, card.ID, res.ClassID)
	assert.Equal(t, models.PhaseIdle, res.Phase)
	assert.Nil(t, f.drag.Pending(actor))

	after, err := f.store.GetClass(card.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDragMovedPreviewDoesNotTouchStore(t *testing.T) {
	f := newFixture(t)
	actor, card := bookMonday(t, f)
	ctx := context.Background()

	_, err := f.drag.Handle(ctx, actor, models.DragEvent{Type: models.DragStarted, ClassID: card.ID})
	require.NoError(t, err)
	res, err := f.drag.Handle(ctx, actor, models.DragEvent{Type: models.DragMoved, DY: 90})
	require.NoError(t, err)
	assert.Equal(t, models.PhaseDragging, res.Phase)
	require.NotNil(t, res.Preview)
	assert.Equal(t, "10:30", res.Preview.StartTime)

	stored, err := f.store.GetClass(card.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:00", stored.StartTime)
}

func TestPendingChangeBlocksOtherClasses(t *testing.T) {
	f := newFixture(t)
	actor, card := bookMonday(t, f)
	other := f.book(t, actor, "Jueves", "17:00", "18:00", card.MonitorID)

	dragTo(t, f, actor, card.ID, models.DragModeMove, 0, 60)

	_, err := f.drag.Handle(context.Background(), actor, models.DragEvent{Type: models.DragStarted, ClassID: other.ID})
	assert.True(t, errors.Is(err, appErrors.ErrPendingChange))
}

func TestSecondDragOnPendingClassKeepsOriginalSnapshot(t *testing.T) {
	f := newFixture(t)
	actor, card := bookMonday(t, f)
	original, err := f.store.GetClass(card.ID)
	require.NoError(t, err)

	dragTo(t, f, actor, card.ID, models.DragModeMove, 0, 60)
	res := dragTo(t, f, actor, card.ID, models.DragModeResize, 0, 30)
	require.NotNil(t, res.Pending)
	assert.Equal(t, "10:00", res.Pending.ProposedUpdates.StartTime)
	assert.Equal(t, "11:30", res.Pending.ProposedUpdates.EndTime)
	assert.Equal(t, original, res.Pending.OriginalSnapshot)

	_, err = f.drag.Cancel(context.Background(), actor)
	require.NoError(t, err)
	after, err := f.store.GetClass(card.ID)
	require.NoError(t, err)
	assert.Equal(t, original, after)
}

func TestConfirmAndCancelWithoutPendingChange(t *testing.T) {
	f := newFixture(t)
	actor := f.loginCoordinator(t)

	_, err := f.drag.Confirm(context.Background(), actor)
	assert.True(t, errors.Is(err, appErrors.ErrNoPendingChange))
	_, err = f.drag.Cancel(context.Background(), actor)
	assert.True(t, errors.Is(err, appErrors.ErrNoPendingChange))
}

func TestDragEventsOutOfOrder(t *testing.T) {
	f := newFixture(t)
	actor, card := bookMonday(t, f)
	ctx := context.Background()

	_, err := f.drag.Handle(ctx, actor, models.DragEvent{Type: models.DragMoved, ClassID: card.ID, DY: 30})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	_, err = f.drag.Handle(ctx, actor, models.DragEvent{Type: "drag_flung", ClassID: card.ID})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = f.drag.Handle(ctx, actor, models.DragEvent{Type: models.DragStarted, ClassID: "ghost"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestMonitorCannotDragOtherMonitorsClass(t *testing.T) {
	f := newFixture(t)
	_, card := bookMonday(t, f)
	luis := f.addMonitor("Luis")

	_, err := f.drag.Handle(context.Background(), monitorUser(luis), models.DragEvent{Type: models.DragStarted, ClassID: card.ID})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestCancelKeepsEditsMadeWhilePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor, card := bookMonday(t, f)
	dragTo(t, f, actor, card.ID, models.DragModeMove, 120, 60)

	require.NoError(t, f.students.Delete(ctx, actor, card.Students[0]))
	_, err := f.booking.ToggleCompleted(ctx, actor, card.ID)
	require.NoError(t, err)

	restored, err := f.drag.Cancel(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, "Lunes", restored.Day)
	assert.Equal(t, "2024-03-04", restored.Date)
	assert.Equal(t, "09:00", restored.StartTime)
	assert.Equal(t, "10:00", restored.EndTime)

	after, err := f.store.GetClass(card.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{card.Students[1]}, after.Students)
	assert.True(t, after.IsCompleted)
	for _, id := range after.Students {
		assert.True(t, f.store.HasStudent(id), "student %s", id)
	}
}

func TestLogoutRollsBackPendingChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.loginMonitor(t, "Ana")
	card := f.book(t, ana, "Lunes", "09:00", "10:00", nil)
	dragTo(t, f, ana, card.ID, models.DragModeMove, 120, 60)
	saves := f.primary.Saves()
	f.notices.Drain()

	f.sessions.Logout(ctx)

	after, err := f.store.GetClass(card.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lunes", after.Day)
	assert.Equal(t, "09:00", after.StartTime)
	assert.Equal(t, saves, f.primary.Saves())
	notices := f.notices.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, appErrors.ErrPendingChange.Code, notices[0].Code)

	luis := f.loginMonitor(t, "Luis")
	assert.Nil(t, f.drag.Pending(luis))
	assert.Equal(t, models.PhaseIdle, f.drag.State(luis).Phase)

	own := f.book(t, luis, "Martes", "11:00", "12:00", nil)
	res := dragTo(t, f, luis, own.ID, models.DragModeMove, 0, 60)
	assert.Equal(t, models.PhasePendingConfirmation, res.Phase)
}

func TestLoginAsAnotherUserRollsBackPendingChange(t *testing.T) {
	f := newFixture(t)
	ana := f.loginMonitor(t, "Ana")
	card := f.book(t, ana, "Lunes", "09:00", "10:00", nil)
	dragTo(t, f, ana, card.ID, models.DragModeMove, 0, 60)

	ana = f.loginMonitor(t, "Ana")
	require.NotNil(t, f.drag.Pending(ana))

	coord := f.loginCoordinator(t)
	assert.Nil(t, f.drag.Pending(coord))
	after, err := f.store.GetClass(card.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:00", after.StartTime)
}

func TestPendingChangeHiddenFromOtherMonitors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.loginMonitor(t, "Ana")
	card := f.book(t, ana, "Lunes", "09:00", "10:00", nil)
	dragTo(t, f, ana, card.ID, models.DragModeMove, 120, 60)
	luis := monitorUser(f.addMonitor("Luis"))

	assert.Nil(t, f.drag.Pending(luis))
	assert.Equal(t, models.PhaseIdle, f.drag.State(luis).Phase)
	assert.Nil(t, f.drag.State(luis).Pending)

	_, err := f.drag.Confirm(ctx, luis)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	_, err = f.drag.Cancel(ctx, luis)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	require.NotNil(t, f.drag.Pending(ana))
	require.NotNil(t, f.drag.Pending(coordinatorUser()))
	moved, err := f.store.GetClass(card.ID)
	require.NoError(t, err)
	assert.Equal(t, "Martes", moved.Day)
}

func TestLateClosingNeverWrapsPastMidnight(t *testing.T) {
	board := config.DefaultBoard()
	board.HoursEnd = "24:00"
	f := newFixtureWithBoard(t, board)
	actor := f.loginCoordinator(t)
	ana := f.addMonitor("Ana")
	card := f.book(t, actor, "Lunes", "22:00", "23:00", strPtr(ana.ID))

	res := dragTo(t, f, actor, card.ID, models.DragModeResize, 0, 120)
	require.NotNil(t, res.Pending)
	assert.Equal(t, "22:00", res.Pending.ProposedUpdates.StartTime)
	assert.Equal(t, "23:59", res.Pending.ProposedUpdates.EndTime)
	resized, err := f.store.GetClass(card.ID)
	require.NoError(t, err)
	assert.Greater(t, ToCard(resized).DurationMinutes, 0)
	_, err = f.drag.Cancel(context.Background(), actor)
	require.NoError(t, err)

	res = dragTo(t, f, actor, card.ID, models.DragModeMove, 0, 120)
	require.NotNil(t, res.Pending)
	assert.Equal(t, "22:59", res.Pending.ProposedUpdates.StartTime)
	assert.Equal(t, "23:59", res.Pending.ProposedUpdates.EndTime)
	moved, err := f.store.GetClass(card.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, ToCard(moved).DurationMinutes)
}
