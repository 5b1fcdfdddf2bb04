package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/padel-board-api/internal/models"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
	"github.com/noah-isme/padel-board-api/pkg/jobs"
)

type datasetBackend interface {
	Name() string
	Load(ctx context.Context) (models.Dataset, error)
	SaveAll(ctx context.Context, ds models.Dataset) error
}

type sessionCache interface {
	LoadCurrentUser(ctx context.Context) (*models.CurrentUser, error)
	SaveCurrentUser(ctx context.Context, user *models.CurrentUser) error
}

// GatewayConfig tunes persistence behaviour.
type GatewayConfig struct {
	// Async hands snapshots to a single background writer instead of saving inline.
	Async      bool
	Retries    int
	RetryDelay time.Duration
	Timeout    time.Duration
}

const saveJobType = "dataset.save"

// PersistenceGateway saves and loads the board dataset. Writes go to the
// primary backend and fall back to the secondary one on failure; failures are
// reported as warnings and never undo the in-memory state.
type PersistenceGateway struct {
	primary  datasetBackend
	fallback datasetBackend
	session  sessionCache
	cfg      GatewayConfig
	notices  *Notices
	metrics  *MetricsService
	logger   *zap.Logger
	queue    *jobs.Queue
}

// NewPersistenceGateway wires the backends. fallback and session may be nil.
func NewPersistenceGateway(primary, fallback datasetBackend, session sessionCache, cfg GatewayConfig, notices *Notices, metrics *MetricsService, logger *zap.Logger) *PersistenceGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	g := &PersistenceGateway{
		primary:  primary,
		fallback: fallback,
		session:  session,
		cfg:      cfg,
		notices:  notices,
		metrics:  metrics,
		logger:   logger,
	}
	if cfg.Async {
		g.queue = jobs.NewQueue("persistence", g.handleSaveJob, jobs.QueueConfig{
			Workers:    1,
			BufferSize: 64,
			MaxRetries: cfg.Retries,
			RetryDelay: cfg.RetryDelay,
			Ordered:    true,
			OnDrop:     g.handleDroppedSave,
			Logger:     logger,
		})
	}
	return g
}

// Start launches the background writer when running asynchronously.
func (g *PersistenceGateway) Start(ctx context.Context) {
	if g.queue != nil {
		g.queue.Start(ctx)
	}
}

// Stop cancels the background writer and waits for it to exit. Call Flush
// first to finish queued saves.
func (g *PersistenceGateway) Stop() {
	if g.queue != nil {
		g.queue.Stop()
	}
}

// Flush waits for queued saves to finish.
func (g *PersistenceGateway) Flush(ctx context.Context) error {
	if g.queue == nil {
		return nil
	}
	return g.queue.Flush(ctx)
}

// Load reads the dataset from the primary backend, then the fallback. When
// both fail it returns an empty dataset together with a warning.
func (g *PersistenceGateway) Load(ctx context.Context) (models.Dataset, error) {
	ds, err := g.loadFrom(ctx, g.primary)
	if err == nil {
		return ds, nil
	}
	g.logger.Warn("primary load failed", zap.String("backend", backendName(g.primary)), zap.Error(err))

	if g.fallback != nil {
		fb, fbErr := g.loadFrom(ctx, g.fallback)
		if fbErr == nil {
			g.metrics.RecordFallback()
			warn := appErrors.Degraded(err, "remote data unavailable, loaded the local copy")
			g.notices.FromError(warn)
			return fb, warn
		}
		g.logger.Warn("fallback load failed", zap.String("backend", g.fallback.Name()), zap.Error(fbErr))
	}

	warn := appErrors.Degraded(err, "stored data unavailable, starting empty")
	g.notices.FromError(warn)
	return emptyDataset(), warn
}

// LoadCurrentUser returns the cached session identity; failures yield nil.
func (g *PersistenceGateway) LoadCurrentUser(ctx context.Context) *models.CurrentUser {
	if g.session == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()
	user, err := g.session.LoadCurrentUser(ctx)
	if err != nil {
		g.logger.Warn("load current user failed", zap.Error(err))
		return nil
	}
	return user
}

// SaveCurrentUser persists the session identity on its own; nil clears it.
func (g *PersistenceGateway) SaveCurrentUser(ctx context.Context, user *models.CurrentUser) error {
	if g.session == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()
	if err := g.session.SaveCurrentUser(ctx, user); err != nil {
		g.logger.Warn("save current user failed", zap.Error(err))
		warn := appErrors.Degraded(err, "session could not be cached")
		g.notices.FromError(warn)
		return warn
	}
	return nil
}

// SaveAll persists a snapshot, inline or through the background writer.
// The returned error is always warning level.
func (g *PersistenceGateway) SaveAll(ctx context.Context, ds models.Dataset) error {
	if g.queue != nil {
		err := g.queue.Enqueue(jobs.Job{Type: saveJobType, Payload: ds.Clone()})
		if err == nil {
			return nil
		}
		g.logger.Warn("save queue unavailable, saving inline", zap.Error(err))
	}
	return g.SaveNow(ctx, ds)
}

// SaveNow persists a snapshot inline regardless of the async setting.
func (g *PersistenceGateway) SaveNow(ctx context.Context, ds models.Dataset) error {
	if err := g.save(ctx, ds); err != nil {
		g.notices.FromError(err)
		return err
	}
	return nil
}

func (g *PersistenceGateway) save(ctx context.Context, ds models.Dataset) error {
	primaryErr := g.saveTo(ctx, g.primary, ds)
	if primaryErr == nil {
		if g.fallback != nil {
			// Keep the local copy warm so a later outage loads recent data.
			if err := g.saveTo(ctx, g.fallback, ds); err != nil {
				g.logger.Debug("local mirror save failed", zap.String("backend", g.fallback.Name()), zap.Error(err))
			}
		}
		return nil
	}

	g.logger.Warn("primary save failed", zap.String("backend", backendName(g.primary)), zap.Error(primaryErr))
	if g.fallback == nil {
		return appErrors.Degraded(primaryErr, "changes kept in memory only, save failed")
	}
	if err := g.saveTo(ctx, g.fallback, ds); err != nil {
		g.logger.Error("fallback save failed", zap.String("backend", g.fallback.Name()), zap.Error(err))
		return appErrors.Degraded(errors.Join(primaryErr, err), "changes kept in memory only, save failed")
	}
	g.metrics.RecordFallback()
	return appErrors.Degraded(primaryErr, "remote save failed, changes kept in the local copy")
}

func (g *PersistenceGateway) handleSaveJob(ctx context.Context, job jobs.Job) error {
	ds, ok := job.Payload.(models.Dataset)
	if !ok {
		return nil
	}
	err := g.save(ctx, ds)
	if err != nil && job.Attempt < g.cfg.Retries {
		// Retried by the queue; only the final outcome is reported.
		return err
	}
	g.notices.FromError(err)
	return nil
}

func (g *PersistenceGateway) handleDroppedSave(job jobs.Job, err error) {
	g.notices.FromError(appErrors.Degraded(err, "background save abandoned"))
}

func (g *PersistenceGateway) loadFrom(ctx context.Context, backend datasetBackend) (models.Dataset, error) {
	if backend == nil {
		return models.Dataset{}, errors.New("no backend configured")
	}
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()
	ds, err := backend.Load(ctx)
	if err != nil {
		return models.Dataset{}, err
	}
	if ds.Students == nil {
		ds.Students = []models.Student{}
	}
	if ds.Classes == nil {
		ds.Classes = []models.Class{}
	}
	if ds.Monitors == nil {
		ds.Monitors = []models.Monitor{}
	}
	return ds, nil
}

func (g *PersistenceGateway) saveTo(ctx context.Context, backend datasetBackend, ds models.Dataset) error {
	if backend == nil {
		return errors.New("no backend configured")
	}
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()
	start := time.Now()
	err := backend.SaveAll(ctx, ds)
	g.metrics.ObserveSave(backend.Name(), err, time.Since(start))
	return err
}

func backendName(b datasetBackend) string {
	if b == nil {
		return "none"
	}
	return b.Name()
}

func emptyDataset() models.Dataset {
	return models.Dataset{Students: []models.Student{}, Classes: []models.Class{}, Monitors: []models.Monitor{}}
}
