package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FilesDiscovered counts files surfaced to the user, after deduplication.
	FilesDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "autoimport",
		Name:      "files_discovered_total",
		Help:      "Files surfaced to the user after deduplication.",
	})

	// DuplicateEvents counts creation notifications dropped because the path was already seen.
	DuplicateEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "autoimport",
		Name:      "duplicate_events_total",
		Help:      "Creation notifications dropped because the path was already seen.",
	})

	// Resolutions counts user decisions by action and outcome.
	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "autoimport",
		Name:      "resolutions_total",
		Help:      "User decisions on pending files.",
	}, []string{"action", "result"})

	// PendingFiles is the number of entries currently waiting for a decision.
	PendingFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "autoimport",
		Name:      "pending_files",
		Help:      "Entries currently waiting for a decision.",
	})

	// EditorConnected is 1 when the last connection attempt succeeded.
	EditorConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "autoimport",
		Name:      "editor_connected",
		Help:      "1 when the last connection attempt to the editor succeeded.",
	})
)

// Result maps a boolean outcome to a label value.
func Result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// Bool maps a boolean to a gauge value.
func Bool(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
