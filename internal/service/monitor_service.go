package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/padel-board-api/internal/models"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
)

// CreateMonitorRequest holds payload for registering monitors.
type CreateMonitorRequest struct {
	Name  string  `json:"name" validate:"required,max=120"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=50"`
}

// MonitorService manages monitors and the coordinator roster.
type MonitorService struct {
	store     boardStore
	session   sessionContext
	persist   persister
	notices   *Notices
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMonitorService constructs the monitor service.
func NewMonitorService(st boardStore, session sessionContext, persist persister, notices *Notices, validate *validator.Validate, logger *zap.Logger) *MonitorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonitorService{store: st, session: session, persist: persist, notices: notices, validator: validate, logger: logger}
}

// List returns all monitors. Any logged-in user may read it to pick a monitor.
func (s *MonitorService) List(ctx context.Context, actor *models.CurrentUser) ([]models.Monitor, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	return s.store.ListMonitors(), nil
}

// Roster is the coordinator home: every monitor with its stats.
func (s *MonitorService) Roster(ctx context.Context, actor *models.CurrentUser) ([]models.MonitorSummary, error) {
	if err := requireCoordinator(actor); err != nil {
		return nil, err
	}
	monitors := s.store.ListMonitors()
	out := make([]models.MonitorSummary, 0, len(monitors))
	for _, m := range monitors {
		out = append(out, models.MonitorSummary{Monitor: m, Stats: s.store.StatsForMonitor(m.ID)})
	}
	return out, nil
}

// Stats returns class and distinct student counts for a monitor. Monitors may only read their own.
func (s *MonitorService) Stats(ctx context.Context, actor *models.CurrentUser, id string) (*models.MonitorStats, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	if actor.IsMonitor() && actor.ID != id {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "monitors can only read their own stats")
	}
	if _, err := s.store.GetMonitor(id); err != nil {
		return nil, notFound(err, "monitor not found")
	}
	stats := s.store.StatsForMonitor(id)
	return &stats, nil
}

// Classes lists the classes assigned to a monitor.
func (s *MonitorService) Classes(ctx context.Context, actor *models.CurrentUser, id string) ([]models.Class, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	if actor.IsMonitor() && actor.ID != id {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "monitors can only read their own classes")
	}
	if _, err := s.store.GetMonitor(id); err != nil {
		return nil, notFound(err, "monitor not found")
	}
	return s.store.ClassesByMonitor(id), nil
}

// Create registers a monitor.
func (s *MonitorService) Create(ctx context.Context, actor *models.CurrentUser, req CreateMonitorRequest) (*models.Monitor, error) {
	if err := requireCoordinator(actor); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid monitor payload")
	}
	m := s.create(ctx, req)
	s.notices.Success("Monitor agregado correctamente")
	return &m, nil
}

func (s *MonitorService) create(ctx context.Context, req CreateMonitorRequest) models.Monitor {
	m := s.store.AddMonitor(models.Monitor{
		Name:  req.Name,
		Email: trimmedPtr(req.Email),
		Phone: trimmedPtr(req.Phone),
	})
	persistSnapshot(ctx, s.store, s.persist, s.logger, "monitor.create")
	s.logger.Info("monitor created", zap.String("monitor_id", m.ID))
	return m
}

// Update merges the provided fields into a monitor.
func (s *MonitorService) Update(ctx context.Context, actor *models.CurrentUser, id string, patch models.MonitorPatch) (*models.Monitor, error) {
	if err := requireCoordinator(actor); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if err := s.validator.Struct(patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid monitor payload")
	}
	m, err := s.store.UpdateMonitor(id, patch)
	if err != nil {
		return nil, notFound(err, "monitor not found")
	}
	persistSnapshot(ctx, s.store, s.persist, s.logger, "monitor.update")
	s.notices.Success("Monitor actualizado")
	return &m, nil
}

// Delete removes a monitor together with every class assigned to it.
func (s *MonitorService) Delete(ctx context.Context, actor *models.CurrentUser, id string) (int, error) {
	if err := requireCoordinator(actor); err != nil {
		return 0, err
	}
	removed, err := s.store.DeleteMonitor(id)
	if err != nil {
		return 0, notFound(err, "monitor not found")
	}
	if s.session != nil && s.session.FocusMonitorID() == id {
		s.session.ClearFocus()
	}
	persistSnapshot(ctx, s.store, s.persist, s.logger, "monitor.delete")
	s.notices.Success("Monitor eliminado")
	s.logger.Info("monitor deleted", zap.String("monitor_id", id), zap.Int("classes_removed", removed))
	return removed, nil
}
