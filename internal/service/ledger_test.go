package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealmate/internal/domain"
	"mealmate/internal/testutil"
)

func TestGetBalanceCreatesZeroRow(t *testing.T) {
	f := newFixture(t)
	u := testutil.CreateUser(t, f.db, "ana")

	b, err := f.ledger.GetBalance(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.AvailablePoints)
	assert.Equal(t, int64(0), b.TotalEarned)
	assert.Equal(t, int64(0), b.TotalUsed)
}

func TestEarnAndSpend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := testutil.CreateUser(t, f.db, "ana")

	b, err := f.ledger.Earn(ctx, u.ID, 500, "signup", "")
	require.NoError(t, err)
	assert.Equal(t, int64(500), b.AvailablePoints)

	b, err = f.ledger.Spend(ctx, u.ID, 200, "coupon", "c-1")
	require.NoError(t, err)
	assert.Equal(t, int64(300), b.AvailablePoints)
	assert.Equal(t, int64(500), b.TotalEarned)
	assert.Equal(t, int64(200), b.TotalUsed)

	page, err := f.ledger.ListTransactions(ctx, u.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, domain.PointsTxSpend, page.Items[0].Type)
	assert.Equal(t, int64(300), page.Items[0].BalanceAfter)

	ok, err := f.ledger.Reconcile(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSpendRejectsInvalidAndInsufficient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := testutil.CreateUser(t, f.db, "ana")

	_, err := f.ledger.Spend(ctx, u.ID, 0, "x", "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.ledger.Earn(ctx, u.ID, -5, "x", "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.ledger.Spend(ctx, u.ID, 1, "x", "")
	assert.ErrorIs(t, err, domain.ErrInsufficientPoints)

	b, err := f.ledger.GetBalance(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.AvailablePoints)
}

func TestConcurrentSpendNeverOverdraws(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := testutil.CreateUser(t, f.db, "ana")
	_, err := f.ledger.Earn(ctx, u.ID, 150, "seed", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.ledger.Spend(ctx, u.ID, 100, "race", "")
		}(i)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInsufficientPoints)
			failed++
		}
	}
	assert.Equal(t, 1, failed)

	b, err := f.ledger.GetBalance(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), b.AvailablePoints)
}
