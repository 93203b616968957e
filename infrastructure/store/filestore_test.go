package store

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/hedera-audit/contract-census/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_snapshotRoundtrip(t *testing.T) {
	fileStore, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	snapshot := &entities.Snapshot{
		Metadata: entities.SnapshotMetadata{
			ContractID:           "0.0.9392720",
			ContractEvmAddress:   "0x00000000000000000000000000000000008f5250",
			WindowLabel:          "oct-dec-2025",
			StartTimestamp:       1759276800,
			EndTimestamp:         1764547200,
			CollectedAt:          time.Date(2025, 12, 2, 10, 30, 0, 0, time.UTC),
			TotalContractResults: 2,
			TotalTransactions:    1,
		},
		ContractResults: []entities.ActivityRecord{
			entities.ActivityRecord(`{"from":"0x01","result":"SUCCESS"}`),
			entities.ActivityRecord(`{"from":"0x02","result":"SUCCESS"}`),
		},
		Transactions: []entities.ActivityRecord{
			entities.ActivityRecord(`{"transfers":[{"account":"0.0.5000","amount":500}]}`),
		},
	}
	require.NoError(t, fileStore.SaveSnapshot(snapshot))

	loaded, err := fileStore.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, snapshot.Metadata, loaded.Metadata)
	assert.JSONEq(t, string(snapshot.ContractResults[0]), string(loaded.ContractResults[0]))
	assert.Len(t, loaded.ContractResults, 2)
	assert.Len(t, loaded.Transactions, 1)
}

func TestFileStore_snapshotKeepsMetadataFieldNames(t *testing.T) {
	fileStore, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	snapshot := &entities.Snapshot{
		Metadata: entities.SnapshotMetadata{TotalContractResults: 10704, TotalTransactions: 9834},
	}
	require.NoError(t, fileStore.SaveSnapshot(snapshot))

	data, err := os.ReadFile(fileStore.SnapshotPath())
	require.NoError(t, err)

	var document map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &document))
	assert.Contains(t, string(document["metadata"]), `"totalContractResults": 10704`)
	assert.Contains(t, string(document["metadata"]), `"totalTransactions": 9834`)
}

func TestFileStore_loadMissingSnapshot(t *testing.T) {
	fileStore, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = fileStore.LoadSnapshot()
	assert.ErrorIs(t, err, entities.ErrStoreEntityNotFound)
}

func TestFileStore_saveReport(t *testing.T) {
	fileStore, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	report := &entities.WalletReport{
		WindowLabel:       "oct-dec-2025",
		ContractID:        "0.0.9392720",
		UniqueWalletCount: 3,
		Wallets:           []string{"0.0.1001", "0.0.1002", "0.0.1003"},
	}
	require.NoError(t, fileStore.SaveReport(report))

	data, err := os.ReadFile(fileStore.ReportPath())
	require.NoError(t, err)

	var loaded entities.WalletReport
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, 3, loaded.UniqueWalletCount)
	assert.Equal(t, report.Wallets, loaded.Wallets)
}

func TestFileStore_noTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	fileStore, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, fileStore.SaveSnapshot(&entities.Snapshot{}))
	require.NoError(t, fileStore.SaveReport(&entities.WalletReport{}))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
