// Package metrics exposes Prometheus metrics for the dashboard:
//   - dashboard_parse_passes_total{result}      – ingest passes by result (ok|error)
//   - dashboard_log_lines_total{container}      – raw log lines classified
//   - dashboard_log_events_total{kind}          – classified events by kind
//   - dashboard_positions_total{side,action}    – position opens/updates/closes
//   - dashboard_open_positions                  – open positions currently tracked
//   - dashboard_api_calls_enabled               – 1 when the bot reports API calls enabled
//   - dashboard_coins_tracking{side}            – coins tracked per side
//   - dashboard_rollups_total{period,result}    – summary rollup runs
//   - dashboard_parse_pass_seconds              – ingest pass duration histogram
//
// Registered in init() and served at /metrics by the HTTP server.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	parsePasses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_parse_passes_total",
			Help: "Log ingest passes by result (ok|error)",
		},
		[]string{"result"},
	)

	logLines = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_log_lines_total",
			Help: "Raw log lines classified, per container",
		},
		[]string{"container"},
	)

	logEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_log_events_total",
			Help: "Classified log events by kind",
		},
		[]string{"kind"},
	)

	positionOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_positions_total",
			Help: "Position ledger operations by side and action (open|update|close)",
		},
		[]string{"side", "action"},
	)

	openPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_open_positions",
			Help: "Open positions currently tracked in the ledger",
		},
	)

	apiEnabled = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_api_calls_enabled",
			Help: "1 when the monitored bot reports API calls enabled, 0 otherwise",
		},
	)

	coinsTracking = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dashboard_coins_tracking",
			Help: "Coins tracked per side (BUY|SELL) from the latest status snapshot",
		},
		[]string{"side"},
	)

	rollups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_rollups_total",
			Help: "Summary rollup runs by period and result",
		},
		[]string{"period", "result"},
	)

	parsePassDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dashboard_parse_pass_seconds",
			Help:    "Duration of one full log ingest pass",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(parsePasses, logLines, logEvents)
	prometheus.MustRegister(positionOps, openPositions)
	prometheus.MustRegister(apiEnabled, coinsTracking)
	prometheus.MustRegister(rollups, parsePassDuration)
}

func IncParsePass(result string) { parsePasses.WithLabelValues(result).Inc() }

func AddLogLines(container string, n int) {
	logLines.WithLabelValues(container).Add(float64(n))
}

func IncLogEvent(kind string) { logEvents.WithLabelValues(kind).Inc() }

func IncPositionOp(side, action string) { positionOps.WithLabelValues(side, action).Inc() }

func SetOpenPositions(n int) { openPositions.Set(float64(n)) }

func SetAPICallsEnabled(enabled bool) {
	if enabled {
		apiEnabled.Set(1)
	} else {
		apiEnabled.Set(0)
	}
}

func SetCoinsTracking(side string, n int) {
	coinsTracking.WithLabelValues(side).Set(float64(n))
}

func IncRollup(period, result string) { rollups.WithLabelValues(period, result).Inc() }

func ObserveParsePass(seconds float64) { parsePassDuration.Observe(seconds) }
