package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the scorigami worker

var (
	// Upstream fetch metrics
	SeasonFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scorigami_season_fetches_total",
			Help: "Total number of season game log fetch outcomes",
		},
		[]string{"status"},
	)

	FetchRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scorigami_fetch_retries_total",
			Help: "Total number of season fetch retries by failure kind",
		},
		[]string{"kind"},
	)

	ScoreboardFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scorigami_scoreboard_fetches_total",
			Help: "Total number of day scoreboard fetches",
		},
		[]string{"status"},
	)

	// Ledger metrics
	LedgerGames = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scorigami_ledger_games",
			Help: "Number of distinct games in the ledger",
		},
	)

	GamesMergedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scorigami_games_merged_total",
			Help: "Total number of newly merged games",
		},
	)

	// Detection metrics
	GamesClassifiedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scorigami_games_classified_total",
			Help: "Total number of final games classified, by verdict",
		},
		[]string{"verdict"},
	)

	ScorigamiDetectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scorigami_detected_total",
			Help: "Total number of never-before-seen score combinations detected",
		},
	)

	// Notification metrics
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scorigami_notifications_total",
			Help: "Total number of notification attempts",
		},
		[]string{"status"},
	)

	NotificationsDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scorigami_notifications_deduplicated_total",
			Help: "Total number of games skipped because they were already announced",
		},
	)

	// Run metrics
	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scorigami_scan_duration_seconds",
			Help:    "Duration of one reference date scan in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	LastSuccessfulScan = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scorigami_last_successful_scan_timestamp",
			Help: "Timestamp of the last fully successful scan",
		},
	)

	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scorigami_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)
)

// RecordSeasonFetch records a season fetch outcome
func RecordSeasonFetch(status string) {
	SeasonFetchesTotal.WithLabelValues(status).Inc()
}

// RecordClassification records a classification verdict
func RecordClassification(verdict string) {
	GamesClassifiedTotal.WithLabelValues(verdict).Inc()
}

// RecordNotification records a notification attempt outcome
func RecordNotification(status string) {
	NotificationsTotal.WithLabelValues(status).Inc()
}

// RecordScan records a completed scan
func RecordScan(duration float64, success bool) {
	ScanDuration.Observe(duration)
	if success {
		LastSuccessfulScan.SetToCurrentTime()
	}
}
