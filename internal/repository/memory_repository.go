package repository

import (
	"context"
	"sync"

	"github.com/noah-isme/padel-board-api/internal/models"
)

// MemoryRepository keeps the dataset in process memory. It backs the board
// when no durable store is configured and doubles as a test fake.
type MemoryRepository struct {
	mu      sync.Mutex
	dataset models.Dataset
	user    *models.CurrentUser

	// failWith, when set, is returned by every operation.
	failWith error
	saves    int
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Name identifies the backend in logs and metrics.
func (r *MemoryRepository) Name() string { return "memory" }

// Ping fails only when a failure was injected.
func (r *MemoryRepository) Ping(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failWith
}

// Load returns a copy of the stored dataset.
func (r *MemoryRepository) Load(context.Context) (models.Dataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return models.Dataset{}, r.failWith
	}
	return r.dataset.Clone(), nil
}

// SaveAll replaces the stored dataset.
func (r *MemoryRepository) SaveAll(_ context.Context, ds models.Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.dataset = ds.Clone()
	r.saves++
	return nil
}

// LoadCurrentUser returns the stored session identity.
func (r *MemoryRepository) LoadCurrentUser(context.Context) (*models.CurrentUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	if r.user == nil {
		return nil, nil
	}
	u := *r.user
	return &u, nil
}

// SaveCurrentUser stores the session identity; nil clears it.
func (r *MemoryRepository) SaveCurrentUser(_ context.Context, user *models.CurrentUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	if user == nil {
		r.user = nil
		return nil
	}
	u := *user
	r.user = &u
	return nil
}

// Saves reports how many successful SaveAll calls were made.
func (r *MemoryRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// SetFailure makes every later operation return err; nil restores normal behaviour.
func (r *MemoryRepository) SetFailure(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith = err
}
