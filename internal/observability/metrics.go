package observability

import (
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	queriesSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "athenactl_queries_submitted_total",
			Help: "Total number of query executions submitted.",
		},
	)
	pollCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "athenactl_poll_cycles_total",
			Help: "Total number of execution status polls.",
		},
	)
	resultPagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "athenactl_result_pages_total",
			Help: "Total number of result pages fetched.",
		},
	)
	resultRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "athenactl_result_rows_total",
			Help: "Total number of result data rows collected.",
		},
	)
	scannedBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "athenactl_query_scanned_bytes",
			Help:    "Bytes scanned per fresh (non-cached) query execution.",
			Buckets: prometheus.ExponentialBuckets(1024, 8, 10),
		},
	)
	downloadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "athenactl_result_downloads_total",
			Help: "Total number of result objects downloaded.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		queriesSubmittedTotal,
		pollCyclesTotal,
		resultPagesTotal,
		resultRowsTotal,
		scannedBytes,
		downloadsTotal,
	)
}

func ObserveQuerySubmitted() {
	queriesSubmittedTotal.Inc()
}

func ObservePollCycle() {
	pollCyclesTotal.Inc()
}

func ObserveResultPage(rows int) {
	resultPagesTotal.Inc()
	if rows > 0 {
		resultRowsTotal.Add(float64(rows))
	}
}

func ObserveScannedBytes(n int64) {
	scannedBytes.Observe(float64(n))
}

func ObserveDownload() {
	downloadsTotal.Inc()
}

// DumpMetrics logs the current values of the tool's collectors. A
// short-lived process has no scrape endpoint to serve, so this is the
// exposition path: gather once at end of run and write through the
// logger.
func DumpMetrics(logger *slog.Logger) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		logger.Warn("gather metrics", "error", err)
		return
	}
	for _, family := range families {
		name := family.GetName()
		if !strings.HasPrefix(name, "athenactl_") {
			continue
		}
		for _, metric := range family.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				logger.Info("metric",
					slog.String("name", name),
					slog.Float64("value", metric.GetCounter().GetValue()),
				)
			case metric.GetHistogram() != nil:
				histogram := metric.GetHistogram()
				logger.Info("metric",
					slog.String("name", name),
					slog.Uint64("count", histogram.GetSampleCount()),
					slog.Float64("sum", histogram.GetSampleSum()),
				)
			}
		}
	}
}
