package entities

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// ActivityRecord is one mirror node record (contract result or transaction)
// kept verbatim as returned by the API. The pipeline never modifies it.
type ActivityRecord = json.RawMessage

// ReportingWindow is a half-open interval [StartTimestamp, EndTimestamp)
// in unix seconds.
type ReportingWindow struct {
	Label          string
	StartTimestamp int64
	EndTimestamp   int64
}

func (w ReportingWindow) Validate() error {
	if w.StartTimestamp >= w.EndTimestamp {
		return errors.Errorf("invalid reporting window: start [%d] must be before end [%d]", w.StartTimestamp, w.EndTimestamp)
	}
	return nil
}

// StreamResult is the outcome of collecting one paginated result stream.
// Truncated is set when pagination stopped before the source was exhausted
// (failed page or page ceiling), in which case Records holds the pages
// collected up to that point.
type StreamResult struct {
	Records   []ActivityRecord
	Pages     int
	Truncated bool
}

type SnapshotMetadata struct {
	ContractID           string    `json:"contractId"`
	ContractEvmAddress   string    `json:"contractEvmAddress"`
	WindowLabel          string    `json:"windowLabel"`
	StartTimestamp       int64     `json:"startTimestamp"`
	EndTimestamp         int64     `json:"endTimestamp"`
	CollectedAt          time.Time `json:"collectedAt"`
	TotalContractResults int       `json:"totalContractResults"`
	TotalTransactions    int       `json:"totalTransactions"`
	ContractResultPages  int       `json:"contractResultPages"`
	TransactionPages     int       `json:"transactionPages"`
	Truncated            bool      `json:"truncated"`
}

// Snapshot is the artifact produced by the fetcher and consumed by the
// analyzer. ContractResults holds the inbound stream (calls made to the
// contract), Transactions the outbound stream (transactions where the
// contract is the transacting account), both in ascending fetch order.
type Snapshot struct {
	Metadata        SnapshotMetadata `json:"metadata"`
	ContractResults []ActivityRecord `json:"contractResults"`
	Transactions    []ActivityRecord `json:"transactions"`
}

func (s *Snapshot) Identity() ContractIdentity {
	return ContractIdentity{
		AccountID:  s.Metadata.ContractID,
		EvmAddress: s.Metadata.ContractEvmAddress,
	}
}

// WalletReport is the analyzer output: every unique non-contract counterparty
// seen in the snapshot, plus the totals needed to audit the run.
type WalletReport struct {
	WindowLabel          string    `json:"windowLabel"`
	ContractID           string    `json:"contractId"`
	TotalContractResults int       `json:"totalContractResults"`
	TotalTransactions    int       `json:"totalTransactions"`
	SkippedRecords       int       `json:"skippedRecords"`
	UniqueWalletCount    int       `json:"uniqueWalletCount"`
	Truncated            bool      `json:"truncated"`
	GeneratedAt          time.Time `json:"generatedAt"`
	Wallets              []string  `json:"wallets"`
}

// RunInfo summarizes the last completed fetch run. It is stored locally so
// the status endpoint can report progress independently of the snapshot file.
type RunInfo struct {
	CollectedAt          time.Time `json:"collectedAt"`
	WindowLabel          string    `json:"windowLabel"`
	TotalContractResults int       `json:"totalContractResults"`
	TotalTransactions    int       `json:"totalTransactions"`
	Truncated            bool      `json:"truncated"`
}
