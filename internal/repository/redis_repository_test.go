package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/padel-board-api/internal/models"
)

func TestRedisRepositoryKeys(t *testing.T) {
	repo := NewRedisRepository(nil, "padelApp_", nil)
	assert.Equal(t, "padelApp_students", repo.Key(KeyStudents))
	assert.Equal(t, "padelApp_currentUser", repo.Key(KeyCurrentUser))
}

func TestRedisRepositoryWithoutClientBehavesAsEmptyCache(t *testing.T) {
	repo := NewRedisRepository(nil, "padelApp_", nil)
	ctx := context.Background()

	ds, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ds.IsEmpty())

	user, err := repo.LoadCurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	assert.Error(t, repo.SaveAll(ctx, models.Dataset{}))
	assert.Error(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}

func TestRedisRepositoryUnreachableServerReturnsErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	repo := NewRedisRepository(client, "padelApp_", nil)
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := repo.Load(ctx)
	assert.Error(t, err)
	assert.Error(t, repo.SaveAll(ctx, models.Dataset{}))
	assert.Error(t, repo.SaveCurrentUser(ctx, &models.CurrentUser{ID: "coordinator"}))
}
