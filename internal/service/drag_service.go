package service

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/padel-board-api/internal/models"
	"github.com/noah-isme/padel-board-api/pkg/config"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
	"github.com/noah-isme/padel-board-api/pkg/timeutil"
)

type dragGesture struct {
	classID string
	mode    models.DragMode
	base    models.Class
	preview *models.ClassProposal
}

// DragService is the single reducer for pointer gestures on class cards. It
// owns the one live PendingChange: a gesture on another class is refused
// until that change is confirmed or cancelled.
type DragService struct {
	mu      sync.Mutex
	gesture *dragGesture
	pending *models.PendingChange

	store     boardStore
	session   sessionContext
	persist   persister
	notices   *Notices
	metrics   *MetricsService
	board     config.BoardConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewDragService constructs the reducer.
func NewDragService(st boardStore, session sessionContext, persist persister, board config.BoardConfig, notices *Notices, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *DragService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DragService{
		store:     st,
		session:   session,
		persist:   persist,
		notices:   notices,
		metrics:   metrics,
		board:     board,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle consumes one drag event and reports the resulting state.
func (s *DragService) Handle(ctx context.Context, actor *models.CurrentUser, ev models.DragEvent) (*models.DragResult, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(ev); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid drag event")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case models.DragStarted:
		return s.start(actor, ev)
	case models.DragMoved:
		return s.move(ev)
	default:
		return s.end(ev)
	}
}

func (s *DragService) start(actor *models.CurrentUser, ev models.DragEvent) (*models.DragResult, error) {
	if ev.ClassID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "classId is required")
	}
	if s.pending != nil && s.pending.ClassID != ev.ClassID {
		return nil, appErrors.Clone(appErrors.ErrPendingChange, "confirm or cancel the pending change first")
	}
	c, err := s.store.GetClass(ev.ClassID)
	if err != nil {
		return nil, notFound(err, "class not found")
	}
	if actor.IsMonitor() && !c.HasMonitor(actor.ID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "class belongs to another monitor")
	}
	mode := ev.Mode
	if mode == "" {
		mode = models.DragModeMove
	}
	s.gesture = &dragGesture{classID: c.ID, mode: mode, base: c}
	preview := proposalOf(c)
	s.gesture.preview = &preview
	return s.result(), nil
}

func (s *DragService) move(ev models.DragEvent) (*models.DragResult, error) {
	if err := s.checkGesture(ev); err != nil {
		return nil, err
	}
	proposal := s.propose(s.gesture.base, s.gesture.mode, ev.DX, ev.DY)
	s.gesture.preview = &proposal
	return s.result(), nil
}

func (s *DragService) end(ev models.DragEvent) (*models.DragResult, error) {
	if err := s.checkGesture(ev); err != nil {
		return nil, err
	}
	g := s.gesture
	s.gesture = nil

	if abs(ev.DX) < s.board.DragThreshold && abs(ev.DY) < s.board.DragThreshold {
		res := s.result()
		res.ClassID = g.classID
		res.Click = true
		return res, nil
	}

	proposal := s.propose(g.base, g.mode, ev.DX, ev.DY)
	if proposal == proposalOf(g.base) {
		return s.result(), nil
	}

	if _, err := s.store.UpdateClass(g.classID, func(c *models.Class) { applyProposal(c, proposal) }); err != nil {
		return nil, notFound(err, "class not found")
	}
	if s.pending != nil && s.pending.ClassID == g.classID {
		s.pending.ProposedUpdates = proposal
	} else {
		s.pending = &models.PendingChange{
			ClassID:          g.classID,
			OriginalSnapshot: g.base.Clone(),
			ProposedUpdates:  proposal,
			CreatedAt:        s.now().UTC(),
		}
	}
	s.metrics.RecordPending("created")
	s.logger.Debug("pending change staged", zap.String("class_id", g.classID), zap.String("mode", string(g.mode)))
	return s.result(), nil
}

func (s *DragService) checkGesture(ev models.DragEvent) error {
	if s.gesture == nil {
		return appErrors.Clone(appErrors.ErrConflict, "no drag in progress")
	}
	if ev.ClassID != "" && ev.ClassID != s.gesture.classID {
		return appErrors.Clone(appErrors.ErrConflict, "event targets a different class than the drag in progress")
	}
	return nil
}

// Pending returns a copy of the live pending change, nil when none or when
// the class is not the actor's to see.
func (s *DragService) Pending(actor *models.CurrentUser) *models.PendingChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pendingVisibleTo(actor) {
		return nil
	}
	return s.pendingCopy()
}

// State reports the reducer state as seen by actor without changing it.
func (s *DragService) State(actor *models.CurrentUser) *models.DragResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pendingVisibleTo(actor) {
		return &models.DragResult{Phase: models.PhaseIdle}
	}
	return s.result()
}

// Confirm commits the pending change. The pending change is cleared whatever
// the save outcome; a failed save keeps the optimistic state and raises a notice.
func (s *DragService) Confirm(ctx context.Context, actor *models.CurrentUser) (*models.ClassCard, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil, appErrors.ErrNoPendingChange
	}
	if !s.pendingVisibleTo(actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "pending change belongs to another monitor")
	}
	classID := s.pending.ClassID
	s.pending = nil

	c, err := s.store.GetClass(classID)
	if err != nil {
		return nil, notFound(err, "class not found")
	}
	s.metrics.RecordPending("confirmed")
	s.metrics.RecordBooking("update")
	if s.persist != nil {
		if err := s.persist.SaveNow(ctx, s.store.Snapshot()); err != nil {
			s.logger.Warn("pending change kept locally", zap.String("class_id", classID), zap.Error(err))
			card := ToCard(c)
			return &card, nil
		}
	}
	s.notices.Success("Clase actualizada")
	card := ToCard(c)
	return &card, nil
}

// Cancel moves the class back to the day and times it had before the
// gesture. Edits made through other operations meanwhile are kept. Nothing is
// persisted.
func (s *DragService) Cancel(ctx context.Context, actor *models.CurrentUser) (*models.ClassCard, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil, appErrors.ErrNoPendingChange
	}
	if !s.pendingVisibleTo(actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "pending change belongs to another monitor")
	}
	restored, err := s.rollbackLocked()
	if err != nil {
		return nil, notFound(err, "class not found")
	}
	card := ToCard(restored)
	return &card, nil
}

// Discard rolls back any pending change and drops the gesture in progress.
// The session calls it when the user changes. It reports whether a pending
// change was rolled back.
func (s *DragService) Discard(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gesture = nil
	if s.pending == nil {
		return false
	}
	classID := s.pending.ClassID
	if _, err := s.rollbackLocked(); err != nil {
		s.logger.Debug("discarded pending change of a removed class", zap.String("class_id", classID))
		return false
	}
	s.logger.Info("pending change discarded", zap.String("class_id", classID))
	return true
}

func (s *DragService) rollbackLocked() (models.Class, error) {
	pending := s.pending
	s.pending = nil
	s.gesture = nil
	original := proposalOf(pending.OriginalSnapshot)
	restored, err := s.store.UpdateClass(pending.ClassID, func(c *models.Class) { applyProposal(c, original) })
	if err != nil {
		return models.Class{}, err
	}
	s.metrics.RecordPending("cancelled")
	return restored, nil
}

// pendingVisibleTo applies the start rule to the pending change: monitors
// only reach changes on their own classes.
func (s *DragService) pendingVisibleTo(actor *models.CurrentUser) bool {
	if s.pending == nil {
		return true
	}
	if actor == nil {
		return false
	}
	if !actor.IsMonitor() {
		return true
	}
	c, err := s.store.GetClass(s.pending.ClassID)
	if err != nil {
		c = s.pending.OriginalSnapshot
	}
	return c.HasMonitor(actor.ID)
}

// propose converts a cumulative pixel delta into new class fields. Moves keep
// the duration and stay inside opening hours and the Monday to Sunday range;
// resizes keep the start and never shrink below one snap step.
func (s *DragService) propose(base models.Class, mode models.DragMode, dx, dy int) models.ClassProposal {
	step := s.session.SnapMinutes()
	windowStart, windowEnd := operatingWindow(s.board)
	proposal := proposalOf(base)

	start, errStart := timeutil.MinutesOfDay(base.StartTime)
	end, errEnd := timeutil.MinutesOfDay(base.EndTime)
	if errStart != nil || errEnd != nil {
		return proposal
	}
	delta := timeutil.Snap(pixelsToMinutes(dy, s.board.PixelsPerHour), step)

	if mode == models.DragModeResize {
		newEnd := end + delta
		if newEnd-start < step {
			newEnd = start + step
		}
		if newEnd > windowEnd {
			newEnd = windowEnd
		}
		if !validSpan(start, newEnd) {
			return proposalOf(base)
		}
		proposal.EndTime = timeutil.ClockOf(newEnd)
		return proposal
	}

	duration := end - start
	latest := windowEnd - duration
	if latest < windowStart {
		latest = windowStart
	}
	newStart := timeutil.Clamp(start+delta, windowStart, latest)
	if !validSpan(newStart, newStart+duration) {
		return proposalOf(base)
	}
	proposal.StartTime = timeutil.ClockOf(newStart)
	proposal.EndTime = timeutil.ClockOf(newStart + duration)

	idx := dayIndex(s.board.Days, base.Day)
	if idx < 0 {
		return proposal
	}
	columns := int(math.Round(float64(dx) / float64(s.board.DayColumnWidth)))
	newIdx := timeutil.Clamp(idx+columns, 0, len(s.board.Days)-1)
	if newIdx != idx {
		weekStart := s.session.WeekStart()
		if d, err := timeutil.ParseDate(base.Date); err == nil {
			weekStart = timeutil.MondayOf(d)
		}
		if date, err := timeutil.DateForDayOffset(weekStart, newIdx); err == nil {
			proposal.Day = s.board.Days[newIdx]
			proposal.Date = timeutil.FormatDate(date)
		}
	}
	return proposal
}

func (s *DragService) result() *models.DragResult {
	res := &models.DragResult{Phase: models.PhaseIdle}
	if s.pending != nil {
		res.Phase = models.PhasePendingConfirmation
		res.ClassID = s.pending.ClassID
		res.Pending = s.pendingCopy()
	}
	if s.gesture != nil {
		res.Phase = models.PhaseDragging
		res.ClassID = s.gesture.classID
		if s.gesture.preview != nil {
			p := *s.gesture.preview
			res.Preview = &p
		}
	}
	return res
}

func (s *DragService) pendingCopy() *models.PendingChange {
	if s.pending == nil {
		return nil
	}
	cp := *s.pending
	cp.OriginalSnapshot = s.pending.OriginalSnapshot.Clone()
	return &cp
}

func proposalOf(c models.Class) models.ClassProposal {
	return models.ClassProposal{Day: c.Day, Date: c.Date, StartTime: c.StartTime, EndTime: c.EndTime}
}

func applyProposal(c *models.Class, p models.ClassProposal) {
	c.Day = p.Day
	c.Date = p.Date
	c.StartTime = p.StartTime
	c.EndTime = p.EndTime
}

// validSpan reports whether start and end are clock values of one day with
// end after start.
func validSpan(start, end int) bool {
	return start >= 0 && end > start && end < timeutil.MinutesPerDay
}

func pixelsToMinutes(px, pixelsPerHour int) int {
	if pixelsPerHour <= 0 {
		return 0
	}
	return int(math.Round(float64(px) * 60 / float64(pixelsPerHour)))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
