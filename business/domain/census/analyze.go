package census

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/hedera-audit/contract-census/entities"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Analyzer derives the unique counterparty wallet set from a snapshot.
// Inbound contract results contribute the calling account, outbound
// transactions contribute every account the contract's transaction credited.
// The contract's own identity is excluded in both of its forms.
type Analyzer struct {
	logger *zap.SugaredLogger
}

func NewAnalyzer(logger *zap.SugaredLogger) *Analyzer {
	return &Analyzer{logger: logger}
}

func (a *Analyzer) Analyze(snapshot *entities.Snapshot) (*entities.WalletReport, error) {
	identity := snapshot.Identity()
	if err := identity.Validate(); err != nil {
		return nil, errors.Wrap(err, "reading contract identity from snapshot metadata")
	}

	wallets := make(map[string]bool)
	skipped := 0

	for _, record := range snapshot.ContractResults {
		caller, err := callerAccount(record)
		if err != nil {
			skipped++
			a.logger.Warnw("Skipping contract result without caller", "error", err)
			continue
		}
		addWallet(wallets, identity, caller)
	}

	for _, record := range snapshot.Transactions {
		counterparties, err := creditedAccounts(record)
		if err != nil {
			skipped++
			a.logger.Warnw("Skipping transaction without transfers", "error", err)
			continue
		}
		for _, counterparty := range counterparties {
			addWallet(wallets, identity, counterparty)
		}
	}

	list := make([]string, 0, len(wallets))
	for wallet := range wallets {
		list = append(list, wallet)
	}
	sort.Strings(list)

	if skipped > 0 {
		a.logger.Warnw("Some records were missing the counterparty field", "skipped", skipped)
	}

	return &entities.WalletReport{
		WindowLabel:          snapshot.Metadata.WindowLabel,
		ContractID:           snapshot.Metadata.ContractID,
		TotalContractResults: snapshot.Metadata.TotalContractResults,
		TotalTransactions:    snapshot.Metadata.TotalTransactions,
		SkippedRecords:       skipped,
		UniqueWalletCount:    len(list),
		Truncated:            snapshot.Metadata.Truncated,
		GeneratedAt:          time.Now().UTC(),
		Wallets:              list,
	}, nil
}

func addWallet(wallets map[string]bool, identity entities.ContractIdentity, raw string) {
	canonical := entities.CanonicalAccountID(raw)
	if canonical == "" || identity.Matches(canonical) {
		return
	}
	wallets[canonical] = true
}

// callerAccount extracts the account that initiated the call to the contract.
func callerAccount(record entities.ActivityRecord) (string, error) {
	var fields struct {
		From string `json:"from"`
	}
	if err := json.Unmarshal(record, &fields); err != nil {
		return "", errors.Wrap(err, "decoding contract result")
	}
	if fields.From == "" {
		return "", errors.New("missing from field")
	}
	return fields.From, nil
}

// creditedAccounts extracts the accounts a transaction paid. The contract
// itself also appears in the transfer list as the debited party and is
// filtered out later by identity matching.
func creditedAccounts(record entities.ActivityRecord) ([]string, error) {
	var fields struct {
		Transfers []struct {
			Account string `json:"account"`
			Amount  int64  `json:"amount"`
		} `json:"transfers"`
	}
	if err := json.Unmarshal(record, &fields); err != nil {
		return nil, errors.Wrap(err, "decoding transaction")
	}
	if len(fields.Transfers) == 0 {
		return nil, errors.New("missing transfers field")
	}
	accounts := make([]string, 0, len(fields.Transfers))
	for _, transfer := range fields.Transfers {
		if transfer.Amount > 0 && transfer.Account != "" {
			accounts = append(accounts, transfer.Account)
		}
	}
	return accounts, nil
}
