//go:build !ci
// +build !ci

package mirror

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/hedera-audit/contract-census/entities"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runs against the public mainnet mirror node, capped at two pages

func integrationClient() *Client {
	if err := godotenv.Load("../../.env.local"); err != nil {
		log.Printf("[WARN] no env file found")
	}
	baseURL := os.Getenv("CONTRACT_CENSUS_MIRROR_BASE_URL")
	if baseURL == "" {
		baseURL = "https://mainnet.mirrornode.hedera.com"
	}
	return NewClient(baseURL, 25, 2, 250*time.Millisecond, 30*time.Second)
}

func TestMirrorClient_getContractResults_integration(t *testing.T) {
	window := entities.ReportingWindow{
		Label:          "oct-2025",
		StartTimestamp: 1759276800,
		EndTimestamp:   1761955200,
	}

	result, err := integrationClient().GetContractResults(context.Background(), "0.0.9392720", window)
	require.NoError(t, err)

	log.Printf("Collected [%d] contract results in [%d] pages (truncated: %v)",
		len(result.Records), result.Pages, result.Truncated)
	assert.LessOrEqual(t, result.Pages, 2)
}

func TestMirrorClient_getAccountTransactions_integration(t *testing.T) {
	window := entities.ReportingWindow{
		Label:          "oct-2025",
		StartTimestamp: 1759276800,
		EndTimestamp:   1761955200,
	}

	result, err := integrationClient().GetAccountTransactions(context.Background(), "0.0.9392720", window)
	require.NoError(t, err)

	log.Printf("Collected [%d] transactions in [%d] pages (truncated: %v)",
		len(result.Records), result.Pages, result.Truncated)
	assert.LessOrEqual(t, result.Pages, 2)
}
