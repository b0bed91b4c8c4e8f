package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/testutil"
)

// TestFreezeService_SetFrozen tests the freeze switch.
//
// WHY: Admins retry. Turning the freeze on twice must not fail and must not
// move the last-modified timestamp.
func TestFreezeService_SetFrozen(t *testing.T) {
	ctx := context.Background()

	t.Run("setting ON twice is idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFreezeService(t, db)

		first, err := svc.WithClock(testutil.FixedClock(now)).SetFrozen(ctx, true)
		require.NoError(t, err)
		assert.True(t, first.Frozen)
		assert.True(t, first.Changed)

		second, err := svc.WithClock(testutil.FixedClock(now.Add(time.Hour))).SetFrozen(ctx, true)
		require.NoError(t, err)
		assert.True(t, second.Frozen)
		assert.False(t, second.Changed)
		assert.True(t, first.UpdatedAt.Equal(second.UpdatedAt))

		frozen, err := svc.IsFrozen(ctx)
		require.NoError(t, err)
		assert.True(t, frozen)
	})

	t.Run("OFF after ON", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFreezeService(t, db)

		_, err := svc.SetFrozen(ctx, true)
		require.NoError(t, err)

		result, err := svc.WithClock(testutil.FixedClock(now)).SetFrozen(ctx, false)
		require.NoError(t, err)
		assert.False(t, result.Frozen)
		assert.True(t, result.Changed)
		assert.True(t, now.Equal(result.UpdatedAt))

		state, err := svc.State(ctx)
		require.NoError(t, err)
		assert.False(t, state.Frozen)
	})

	t.Run("concurrent identical calls agree", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFreezeService(t, db)

		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.SetFrozen(ctx, true)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			assert.NoError(t, err)
		}
		frozen, err := svc.IsFrozen(ctx)
		require.NoError(t, err)
		assert.True(t, frozen)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFreezeService(t, db)
		db.Close()

		_, err := svc.SetFrozen(ctx, true)
		assert.ErrorIs(t, err, apperrors.ErrFailedToUpdateFreeze)
	})
}
