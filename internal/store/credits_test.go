// File path: internal/store/credits_test.go
package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBalanceDefaultsToZero(t *testing.T) {
	st := newTestStore(t)
	balance, err := st.Balance(context.Background(), "nobody")
	require.NoError(t, err)
	require.Zero(t, balance)
}

func TestGrantAndDeductCredits(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.GrantCredits(ctx, "user-1", 50, "signup bonus"))
	require.NoError(t, st.GrantCredits(ctx, "user-1", 10, "promo"))
	balance, err := st.Balance(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 60, balance)

	require.NoError(t, st.DeductCredits(ctx, "user-1", 45, "ingest proj-1"))
	balance, err = st.Balance(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 15, balance)

	entries, err := st.Ledger(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	var sum int
	for _, e := range entries {
		sum += e.Delta
	}
	require.Equal(t, 15, sum)
}

func TestDeductCreditsRejectsOverdraft(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.GrantCredits(ctx, "user-1", 5, "signup"))
	err := st.DeductCredits(ctx, "user-1", 6, "ingest proj-1")
	require.ErrorIs(t, err, ErrInsufficientCredits)

	// The failed deduction must leave no ledger trace.
	balance, err := st.Balance(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 5, balance)
	entries, err := st.Ledger(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestDeductCreditsWithoutBalanceRow(t *testing.T) {
	st := newTestStore(t)
	err := st.DeductCredits(context.Background(), "ghost", 1, "ingest")
	require.ErrorIs(t, err, ErrInsufficientCredits)
}

func TestGrantAndDeductValidateAmounts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	require.Error(t, st.GrantCredits(ctx, "user-1", 0, "noop"))
	require.Error(t, st.DeductCredits(ctx, "user-1", -1, "noop"))
}

func TestApplyCheckoutEventIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	credited, err := st.ApplyCheckoutEvent(ctx, "evt-1", "user-1", 100)
	require.NoError(t, err)
	require.True(t, credited)

	// Replayed delivery of the same event must not credit twice.
	credited, err = st.ApplyCheckoutEvent(ctx, "evt-1", "user-1", 100)
	require.NoError(t, err)
	require.False(t, credited)

	balance, err := st.Balance(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 100, balance)

	entries, err := st.Ledger(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "checkout", entries[0].Reason)
	require.Equal(t, "evt-1", entries[0].EventID.String)
}

func TestApplyCheckoutEventValidation(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	_, err := st.ApplyCheckoutEvent(ctx, " ", "user-1", 10)
	require.Error(t, err)
	_, err = st.ApplyCheckoutEvent(ctx, "evt-1", "user-1", 0)
	require.Error(t, err)
}
