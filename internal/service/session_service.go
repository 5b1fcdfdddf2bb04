package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/padel-board-api/internal/models"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
	"github.com/noah-isme/padel-board-api/pkg/timeutil"
)

// pendingDiscarder drops work in progress that belongs to the previous user.
type pendingDiscarder interface {
	Discard(ctx context.Context) bool
}

type datasetLoader interface {
	Load(ctx context.Context) (models.Dataset, error)
	LoadCurrentUser(ctx context.Context) *models.CurrentUser
}

// SessionService owns the application context lifecycle: restore, login,
// logout, week navigation, coordinator focus and snap granularity.
type SessionService struct {
	store     boardStore
	session   sessionContext
	persist   persister
	loader    datasetLoader
	drafts    pendingDiscarder
	notices   *Notices
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs the session service.
func NewSessionService(st boardStore, session sessionContext, persist persister, loader datasetLoader, drafts pendingDiscarder, notices *Notices, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		store:     st,
		session:   session,
		persist:   persist,
		loader:    loader,
		drafts:    drafts,
		notices:   notices,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Restore loads the dataset and the cached user into memory. A failed load
// leaves the board empty and returns a warning.
func (s *SessionService) Restore(ctx context.Context) error {
	var loadErr error
	ds := emptyDataset()
	if s.loader != nil {
		ds, loadErr = s.loader.Load(ctx)
	}
	s.store.ReplaceAll(ds)
	s.metrics.SetClassCount(len(ds.Classes))

	var user *models.CurrentUser
	if s.loader != nil {
		user = s.loader.LoadCurrentUser(ctx)
	}
	if user != nil && user.IsMonitor() {
		if _, err := s.store.GetMonitor(user.ID); err != nil {
			s.logger.Info("cached monitor no longer exists, session dropped", zap.String("monitor_id", user.ID))
			user = nil
		}
	}
	s.session.Init(user)
	s.logger.Info("board restored",
		zap.Int("students", len(ds.Students)),
		zap.Int("classes", len(ds.Classes)),
		zap.Int("monitors", len(ds.Monitors)),
		zap.Bool("session_restored", user != nil),
	)
	return loadErr
}

// CurrentUser returns the logged-in user, nil when logged out.
func (s *SessionService) CurrentUser() *models.CurrentUser {
	return s.session.CurrentUser()
}

// State renders the application context.
func (s *SessionService) State() models.SessionState {
	return s.session.State()
}

// Login sets the current user. Coordinators share one fixed identity; a
// monitor logs in by id, or by name, which registers the monitor on first use.
func (s *SessionService) Login(ctx context.Context, req models.LoginRequest) (*models.SessionState, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	var user *models.CurrentUser
	switch req.Role {
	case models.RoleCoordinator:
		user = &models.CurrentUser{ID: models.CoordinatorID, Name: models.CoordinatorName, Role: models.RoleCoordinator}
	case models.RoleMonitor:
		m, err := s.resolveMonitor(ctx, req)
		if err != nil {
			return nil, err
		}
		user = &models.CurrentUser{ID: m.ID, Name: m.Name, Role: models.RoleMonitor}
	}

	if prev := s.session.CurrentUser(); prev == nil || prev.ID != user.ID {
		s.discardDrafts(ctx)
	}
	s.session.SetCurrentUser(user)
	if s.persist != nil {
		_ = s.persist.SaveCurrentUser(ctx, user)
	}
	s.logger.Info("login", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	state := s.session.State()
	return &state, nil
}

func (s *SessionService) resolveMonitor(ctx context.Context, req models.LoginRequest) (models.Monitor, error) {
	if id := strings.TrimSpace(req.MonitorID); id != "" {
		m, err := s.store.GetMonitor(id)
		if err != nil {
			return models.Monitor{}, notFound(err, "monitor not found")
		}
		return m, nil
	}
	name := strings.TrimSpace(req.MonitorName)
	if name == "" {
		return models.Monitor{}, appErrors.Clone(appErrors.ErrValidation, "Por favor ingresa tu nombre")
	}
	for _, m := range s.store.ListMonitors() {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	m := s.store.AddMonitor(models.Monitor{Name: name})
	persistSnapshot(ctx, s.store, s.persist, s.logger, "monitor.create")
	s.notices.Success("Monitor agregado correctamente")
	return m, nil
}

// Logout rolls back the user's pending change, then clears the session and
// its cached copy.
func (s *SessionService) Logout(ctx context.Context) {
	s.discardDrafts(ctx)
	s.session.Clear()
	if s.persist != nil {
		_ = s.persist.SaveCurrentUser(ctx, nil)
	}
}

func (s *SessionService) discardDrafts(ctx context.Context) {
	if s.drafts == nil {
		return
	}
	if s.drafts.Discard(ctx) {
		s.notices.Warn(appErrors.ErrPendingChange.Code, "Cambio pendiente descartado")
	}
}

// NavigateWeek moves the displayed week by direction weeks.
func (s *SessionService) NavigateWeek(direction int) models.SessionState {
	s.session.NavigateWeek(direction)
	return s.session.State()
}

// GoToToday shows the current week.
func (s *SessionService) GoToToday() models.SessionState {
	s.session.GoToToday()
	return s.session.State()
}

// ShowWeekOf shows the week containing the given ISO date.
func (s *SessionService) ShowWeekOf(raw string) (*models.SessionState, error) {
	date, err := timeutil.ParseDate(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	s.session.SetWeekStart(date)
	state := s.session.State()
	return &state, nil
}

// Focus narrows the coordinator calendar to one monitor.
func (s *SessionService) Focus(actor *models.CurrentUser, monitorID string) (*models.SessionState, error) {
	if err := requireCoordinator(actor); err != nil {
		return nil, err
	}
	if _, err := s.store.GetMonitor(monitorID); err != nil {
		return nil, notFound(err, "monitor not found")
	}
	s.session.Focus(monitorID)
	state := s.session.State()
	return &state, nil
}

// ClearFocus returns the coordinator to the unfiltered calendar.
func (s *SessionService) ClearFocus(actor *models.CurrentUser) (*models.SessionState, error) {
	if err := requireCoordinator(actor); err != nil {
		return nil, err
	}
	s.session.ClearFocus()
	state := s.session.State()
	return &state, nil
}

// SetSnap sets the drag granularity; zero toggles between 15 and 30.
func (s *SessionService) SetSnap(step int) (*models.SessionState, error) {
	if step == 0 {
		s.session.ToggleSnap()
	} else if err := s.session.SetSnapMinutes(step); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "snap must be 15 or 30 minutes")
	}
	state := s.session.State()
	return &state, nil
}
