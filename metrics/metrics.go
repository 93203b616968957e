package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type FetchMetrics struct {
	contractResultCount prometheus.Counter
	transactionCount    prometheus.Counter
	pageCount           prometheus.Counter
	lastRunGauge        prometheus.Gauge
	truncatedGauge      prometheus.Gauge
}

func NewFetchMetrics(namespace string) *FetchMetrics {
	m := FetchMetrics{
		contractResultCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_contract_result_count", namespace),
			Help: "The total number of collected contract results",
		}),
		transactionCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_transaction_count", namespace),
			Help: "The total number of collected transactions",
		}),
		pageCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_page_count", namespace),
			Help: "The total number of fetched result pages",
		}),
		lastRunGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_last_run_timestamp", namespace),
			Help: "Unix timestamp of the last completed fetch run",
		}),
		truncatedGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_last_run_truncated", namespace),
			Help: "Whether the last fetch run returned partial data (1) or not (0)",
		}),
	}
	return &m
}

func (metrics *FetchMetrics) AddContractResults(count int) {
	metrics.contractResultCount.Add(float64(count))
}

func (metrics *FetchMetrics) AddTransactions(count int) {
	metrics.transactionCount.Add(float64(count))
}

func (metrics *FetchMetrics) AddPages(count int) {
	metrics.pageCount.Add(float64(count))
}

func (metrics *FetchMetrics) SetLastRun(at time.Time, truncated bool) {
	metrics.lastRunGauge.Set(float64(at.Unix()))
	if truncated {
		metrics.truncatedGauge.Set(1)
	} else {
		metrics.truncatedGauge.Set(0)
	}
}
