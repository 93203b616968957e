package census

import (
	"context"
	"time"

	"github.com/hedera-audit/contract-census/entities"
	"github.com/hedera-audit/contract-census/metrics"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type MirrorClient interface {
	GetContractResults(ctx context.Context, contractID string, window entities.ReportingWindow) (*entities.StreamResult, error)
	GetAccountTransactions(ctx context.Context, accountID string, window entities.ReportingWindow) (*entities.StreamResult, error)
}

type SnapshotStore interface {
	SaveSnapshot(snapshot *entities.Snapshot) error
}

type RunStore interface {
	SetLastRun(info entities.RunInfo) error
}

// Fetcher collects the two activity streams of the audited contract and
// persists them as one snapshot. The streams run sequentially so that both
// share the mirror client's single request rate budget.
type Fetcher struct {
	client       MirrorClient
	snapshots    SnapshotStore
	runs         RunStore
	identity     entities.ContractIdentity
	window       entities.ReportingWindow
	fetchTimeout time.Duration
	fetchMetrics *metrics.FetchMetrics
	logger       *zap.SugaredLogger
}

func NewFetcher(
	client MirrorClient,
	snapshots SnapshotStore,
	runs RunStore,
	identity entities.ContractIdentity,
	window entities.ReportingWindow,
	fetchTimeout time.Duration,
	fetchMetrics *metrics.FetchMetrics,
	logger *zap.SugaredLogger,
) *Fetcher {
	return &Fetcher{
		client:       client,
		snapshots:    snapshots,
		runs:         runs,
		identity:     identity,
		window:       window,
		fetchTimeout: fetchTimeout,
		fetchMetrics: fetchMetrics,
		logger:       logger,
	}
}

// Run executes one complete fetch: inbound contract results first, outbound
// transactions second, then the snapshot write. A truncated stream is kept as
// partial data and flagged in the metadata; only outright failures (aborted
// context, unusable configuration, failed write) return an error.
func (f *Fetcher) Run(ctx context.Context) (*entities.Snapshot, error) {
	if err := f.identity.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating contract identity")
	}
	if err := f.window.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating reporting window")
	}
	if f.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.fetchTimeout)
		defer cancel()
	}

	f.logger.Infow("Collecting contract results", "contract", f.identity.AccountID, "window", f.window.Label)
	inbound, err := f.client.GetContractResults(ctx, f.identity.AccountID, f.window)
	if err != nil {
		return nil, errors.Wrap(err, "collecting contract results")
	}
	f.fetchMetrics.AddContractResults(len(inbound.Records))
	f.fetchMetrics.AddPages(inbound.Pages)
	f.logger.Infow("Collected contract results", "records", len(inbound.Records), "pages", inbound.Pages, "truncated", inbound.Truncated)

	f.logger.Infow("Collecting transactions", "contract", f.identity.AccountID, "window", f.window.Label)
	outbound, err := f.client.GetAccountTransactions(ctx, f.identity.AccountID, f.window)
	if err != nil {
		return nil, errors.Wrap(err, "collecting transactions")
	}
	f.fetchMetrics.AddTransactions(len(outbound.Records))
	f.fetchMetrics.AddPages(outbound.Pages)
	f.logger.Infow("Collected transactions", "records", len(outbound.Records), "pages", outbound.Pages, "truncated", outbound.Truncated)

	collectedAt := time.Now().UTC()
	snapshot := &entities.Snapshot{
		Metadata: entities.SnapshotMetadata{
			ContractID:           f.identity.AccountID,
			ContractEvmAddress:   f.identity.EvmAddress,
			WindowLabel:          f.window.Label,
			StartTimestamp:       f.window.StartTimestamp,
			EndTimestamp:         f.window.EndTimestamp,
			CollectedAt:          collectedAt,
			TotalContractResults: len(inbound.Records),
			TotalTransactions:    len(outbound.Records),
			ContractResultPages:  inbound.Pages,
			TransactionPages:     outbound.Pages,
			Truncated:            inbound.Truncated || outbound.Truncated,
		},
		ContractResults: inbound.Records,
		Transactions:    outbound.Records,
	}

	if err := f.snapshots.SaveSnapshot(snapshot); err != nil {
		return nil, errors.Wrap(err, "writing snapshot")
	}
	if err := f.runs.SetLastRun(entities.RunInfo{
		CollectedAt:          collectedAt,
		WindowLabel:          f.window.Label,
		TotalContractResults: snapshot.Metadata.TotalContractResults,
		TotalTransactions:    snapshot.Metadata.TotalTransactions,
		Truncated:            snapshot.Metadata.Truncated,
	}); err != nil {
		return nil, errors.Wrap(err, "storing run info")
	}
	f.fetchMetrics.SetLastRun(collectedAt, snapshot.Metadata.Truncated)

	if snapshot.Metadata.Truncated {
		f.logger.Warnw("Snapshot is incomplete, a page failed or the page ceiling was hit",
			"contractResults", snapshot.Metadata.TotalContractResults,
			"transactions", snapshot.Metadata.TotalTransactions)
	}
	f.logger.Infow("Snapshot complete",
		"contractResults", snapshot.Metadata.TotalContractResults,
		"transactions", snapshot.Metadata.TotalTransactions,
		"truncated", snapshot.Metadata.Truncated)

	return snapshot, nil
}
