package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahulbansal29/Landchain/internal/models"
	"github.com/rahulbansal29/Landchain/internal/repository"
	"github.com/rahulbansal29/Landchain/pkg/logger"
)

func newTestService() *Service {
	return NewService(repository.NewMemoryPropertyStore(), logger.NewNop())
}

func TestCreateDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	property, err := svc.Create(ctx, &models.Property{Name: "Dockside Lofts", TotalTokens: 1000, TokenPrice: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), property.TokensAvailable)
	assert.Equal(t, int64(50000), property.TotalValue)
	assert.Equal(t, models.PropertyActive, property.Status)
	assert.False(t, property.CreatedAt.IsZero())
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Create(ctx, &models.Property{TotalTokens: 10, TokenPrice: 1})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Create(ctx, &models.Property{Name: "x", TotalTokens: 0, TokenPrice: 1})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Create(ctx, &models.Property{Name: "x", TotalTokens: 10, TokenPrice: -5})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	property, err := svc.Create(ctx, &models.Property{Name: "Dockside Lofts", TotalTokens: 1000, TokenPrice: 50})
	require.NoError(t, err)

	name := "Dockside Lofts II"
	price := int64(75)
	updated, err := svc.Update(ctx, property.ID, &models.PropertyUpdate{Name: &name, TokenPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, "Dockside Lofts II", updated.Name)
	assert.Equal(t, int64(75), updated.TokenPrice)
	assert.Equal(t, int64(1000), updated.TokensAvailable)

	bad := int64(0)
	_, err = svc.Update(ctx, property.ID, &models.PropertyUpdate{TokenPrice: &bad})
	assert.ErrorIs(t, err, models.ErrValidation)

	empty := ""
	_, err = svc.Update(ctx, property.ID, &models.PropertyUpdate{Name: &empty})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestDeleteDropsLockEntry(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	property, err := svc.Create(ctx, &models.Property{Name: "Hillview", TotalTokens: 100, TokenPrice: 10})
	require.NoError(t, err)

	require.NoError(t, svc.Reserve(ctx, property.ID, 1))
	svc.mu.Lock()
	_, held := svc.locks[property.ID]
	svc.mu.Unlock()
	require.True(t, held)

	_, err = svc.Delete(ctx, property.ID)
	require.NoError(t, err)
	svc.mu.Lock()
	_, held = svc.locks[property.ID]
	svc.mu.Unlock()
	assert.False(t, held)
}

func TestReserveAndCommit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	property, err := svc.Create(ctx, &models.Property{Name: "Hillview", TotalTokens: 100, TokenPrice: 10})
	require.NoError(t, err)

	require.NoError(t, svc.Reserve(ctx, property.ID, 100))
	assert.ErrorIs(t, svc.Reserve(ctx, property.ID, 101), models.ErrSupplyExhausted)

	require.NoError(t, svc.Commit(ctx, property.ID, 60))
	got, err := svc.Get(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), got.TokensAvailable)
	assert.Equal(t, models.PropertyActive, got.Status)

	require.NoError(t, svc.Commit(ctx, property.ID, 40))
	got, err = svc.Get(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.TokensAvailable)
	assert.Equal(t, models.PropertySoldOut, got.Status)

	// Sold out properties accept no further reservations.
	assert.ErrorIs(t, svc.Reserve(ctx, property.ID, 1), models.ErrStateConflict)
}

func TestConcurrentCommitsNeverGoNegative(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	property, err := svc.Create(ctx, &models.Property{Name: "Hillview", TotalTokens: 100, TokenPrice: 10})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.Commit(ctx, property.ID, 10)
		}()
	}
	wg.Wait()

	got, err := svc.Get(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.TokensAvailable)
	assert.Equal(t, models.PropertySoldOut, got.Status)
}

func TestWithPropertySerializesAccess(t *testing.T) {
	svc := newTestService()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.WithProperty(1, func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}
