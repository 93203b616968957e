package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalAccountID_nativeId(t *testing.T) {
	assert.Equal(t, "0.0.9392720", CanonicalAccountID("0.0.9392720"))
	assert.Equal(t, "0.0.9392720", CanonicalAccountID("  0.0.9392720 "))
}

func TestCanonicalAccountID_longZeroEvmAddress(t *testing.T) {
	canonical := CanonicalAccountID("0x00000000000000000000000000000000008f5250")
	assert.Equal(t, "0.0.9392720", canonical)
}

func TestCanonicalAccountID_longZeroEvmAddress_uppercase(t *testing.T) {
	canonical := CanonicalAccountID("0x00000000000000000000000000000000008F5250")
	assert.Equal(t, "0.0.9392720", canonical)
}

func TestCanonicalAccountID_foreignEvmAddress(t *testing.T) {
	// not long-zero: keep the lowercase 0x form
	canonical := CanonicalAccountID("0xAD5Cc4c2a6625151F9063D3373526abad2Ab846c")
	assert.Equal(t, "0xad5cc4c2a6625151f9063d3373526abad2ab846c", canonical)
}

func TestCanonicalAccountID_empty(t *testing.T) {
	assert.Equal(t, "", CanonicalAccountID(""))
	assert.Equal(t, "", CanonicalAccountID("   "))
}

func TestContractIdentity_matchesBothForms(t *testing.T) {
	identity := ContractIdentity{
		AccountID:  "0.0.9392720",
		EvmAddress: "0x00000000000000000000000000000000008f5250",
	}

	assert.True(t, identity.Matches(CanonicalAccountID("0.0.9392720")))
	assert.True(t, identity.Matches(CanonicalAccountID("0x00000000000000000000000000000000008F5250")))
	assert.False(t, identity.Matches(CanonicalAccountID("0.0.1234")))
	assert.False(t, identity.Matches(""))
}

func TestReportingWindow_validate(t *testing.T) {
	window := ReportingWindow{Label: "oct-dec-2025", StartTimestamp: 1759276800, EndTimestamp: 1764547200}
	assert.NoError(t, window.Validate())

	inverted := ReportingWindow{StartTimestamp: 1764547200, EndTimestamp: 1759276800}
	assert.Error(t, inverted.Validate())
}
