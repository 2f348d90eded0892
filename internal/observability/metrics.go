package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsCreated counts persisted requests by their initial status.
	RequestsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grimoire_requests_created_total",
		Help: "Total number of requests persisted, by initial status",
	}, []string{"status"})

	// StatusTransitions counts successful status changes by target status.
	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grimoire_status_transitions_total",
		Help: "Total number of request status transitions, by target status",
	}, []string{"status"})

	// GrimorioAssignments counts grimorio draws by the tier that was picked.
	GrimorioAssignments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grimoire_grimorio_assignments_total",
		Help: "Total number of grimorios assigned, by clover tier",
	}, []string{"tipo_trebol"})

	// AssignmentFailures counts approvals rolled back because no grimorio could be drawn.
	AssignmentFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grimoire_assignment_failures_total",
		Help: "Total number of approvals that could not draw a grimorio",
	})

	// DatabaseQueryLatency records repository latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grimoire_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CacheLookups counts cache-aside lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grimoire_cache_lookups_total",
		Help: "Total number of cache-aside lookups, by result",
	}, []string{"result"})
)

// RecordAssignment increments the assignment counter for a clover tier.
func RecordAssignment(tipoTrebol int) {
	GrimorioAssignments.WithLabelValues(strconv.Itoa(tipoTrebol)).Inc()
}

// TrackQuery returns a func that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
