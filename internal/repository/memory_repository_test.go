package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/padel-board-api/internal/models"
)

func TestMemoryRepositoryStoresCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	ds := models.Dataset{Classes: []models.Class{{ID: "c1", Students: []string{"s1"}}}}
	require.NoError(t, repo.SaveAll(ctx, ds))
	ds.Classes[0].Students[0] = "mutated"

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, loaded.Classes[0].Students)
	assert.Equal(t, 1, repo.Saves())
}

func TestMemoryRepositoryInjectedFailure(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	boom := errors.New("offline")

	repo.SetFailure(boom)
	assert.ErrorIs(t, repo.SaveAll(ctx, models.Dataset{}), boom)
	assert.ErrorIs(t, repo.SaveCurrentUser(ctx, nil), boom)

	repo.SetFailure(nil)
	require.NoError(t, repo.SaveCurrentUser(ctx, &models.CurrentUser{ID: "coordinator", Role: models.RoleCoordinator}))
	user, err := repo.LoadCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "coordinator", user.ID)
}
