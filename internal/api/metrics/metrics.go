// Package metrics defines the custom Prometheus metrics of the billing API.
// They are registered with the default registry on import and served next
// to the HTTP metrics from echoprometheus at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "billing"

// ── Auth ─────────────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok", "invalid_credentials", "inactive" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Imports ──────────────────────────────────────────────────────────────────

// ImportsTotal counts bulk uploads.
// Labels:
//   - kind: "pelanggan" or "kontrak"
//   - result: "ok", "rejected" or "error"
var ImportsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "imports_total",
		Help:      "Total number of bulk uploads, by kind and result.",
	},
	[]string{"kind", "result"},
)

// ImportedRowsTotal counts rows stored by bulk uploads.
var ImportedRowsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "imported_rows_total",
		Help:      "Total number of rows stored by bulk uploads.",
	},
	[]string{"kind"},
)

// ── Contract documents ───────────────────────────────────────────────────────

// DocumentsUploadedTotal counts contract PDFs written to object storage.
var DocumentsUploadedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "documents_uploaded_total",
		Help:      "Total number of contract documents uploaded.",
	},
)

// DocumentCleanupTotal counts background removals of replaced documents.
// Label:
//   - result: "ok" or "error"
var DocumentCleanupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "document_cleanup_total",
		Help:      "Total number of replaced or orphaned documents removed, by result.",
	},
	[]string{"result"},
)

// ── Change polling ───────────────────────────────────────────────────────────

// LastUpdatePollsTotal counts last-update requests, which every open
// dashboard issues on a fixed interval.
// Label:
//   - role: caller role
var LastUpdatePollsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "last_update_polls_total",
		Help:      "Total number of change-poll requests, by caller role.",
	},
	[]string{"role"},
)

// CleanupDone is the hook handed to the cleanup worker pool.
func CleanupDone(_ string, err error) {
	if err != nil {
		DocumentCleanupTotal.WithLabelValues("error").Inc()
		return
	}
	DocumentCleanupTotal.WithLabelValues("ok").Inc()
}
