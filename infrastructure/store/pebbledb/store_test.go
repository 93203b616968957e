package pebbledb

import (
	"testing"
	"time"

	"github.com/hedera-audit/contract-census/entities"
	"github.com/stretchr/testify/require"
)

func TestRunStore_LastRun(t *testing.T) {
	store, err := NewRunStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.GetLastRun()
	require.ErrorIs(t, err, entities.ErrStoreEntityNotFound)

	expected := entities.RunInfo{
		CollectedAt:          time.Date(2025, 12, 2, 10, 30, 0, 0, time.UTC),
		WindowLabel:          "oct-dec-2025",
		TotalContractResults: 10704,
		TotalTransactions:    9834,
		Truncated:            false,
	}
	require.NoError(t, store.SetLastRun(expected))

	got, err := store.GetLastRun()
	require.NoError(t, err)
	require.Equal(t, expected, got)
}

func TestRunStore_overwriteLastRun(t *testing.T) {
	store, err := NewRunStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	first := entities.RunInfo{WindowLabel: "first", TotalContractResults: 1}
	second := entities.RunInfo{WindowLabel: "second", TotalContractResults: 2, Truncated: true}

	require.NoError(t, store.SetLastRun(first))
	require.NoError(t, store.SetLastRun(second))

	got, err := store.GetLastRun()
	require.NoError(t, err)
	require.Equal(t, second, got)
}
