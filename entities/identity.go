package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// ContractIdentity is the audited entity in its two equivalent on-ledger
// forms: the native account id (0.0.N) and the long-zero EVM address that
// encodes the same entity number. Both must be excluded from wallet counts.
type ContractIdentity struct {
	AccountID  string
	EvmAddress string
}

func (ci ContractIdentity) Validate() error {
	if ci.AccountID == "" {
		return fmt.Errorf("missing contract account id")
	}
	return nil
}

// Matches reports whether a canonicalized identifier denotes the contract
// itself in either of its forms.
func (ci ContractIdentity) Matches(canonical string) bool {
	if canonical == "" {
		return false
	}
	return canonical == CanonicalAccountID(ci.AccountID) ||
		canonical == CanonicalAccountID(ci.EvmAddress)
}

// CanonicalAccountID normalizes a mirror node account identifier to one
// textual form so that identifiers from different record types compare and
// deduplicate consistently. Native ids (0.0.N) are kept as-is. Long-zero EVM
// addresses (shard and realm zero, entity number in the low eight bytes)
// collapse to the equivalent 0.0.N form. Any other EVM address is normalized
// to its lowercase 0x form.
func CanonicalAccountID(raw string) string {
	id := strings.ToLower(strings.TrimSpace(raw))
	if id == "" {
		return ""
	}
	hex := strings.TrimPrefix(id, "0x")
	if len(hex) != 40 || hex == id {
		return id
	}
	if !strings.HasPrefix(hex, strings.Repeat("0", 24)) {
		return "0x" + hex
	}
	num, err := strconv.ParseUint(hex[24:], 16, 64)
	if err != nil {
		return "0x" + hex
	}
	return fmt.Sprintf("0.0.%d", num)
}
