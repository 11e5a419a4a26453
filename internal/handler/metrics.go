package handler

import (
	"bufio"
	"fmt"
	"net/http"

	"github.com/todomanager/todomanager/internal/metrics"
)

// MetricsHandler serves a Prometheus text rendering of a metrics snapshot.
type MetricsHandler struct {
	source metrics.Snapshotter
}

// NewMetricsHandler creates a MetricsHandler. A nil source makes the
// endpoint report 503.
func NewMetricsHandler(source metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{source: source}
}

type sample struct {
	labels string
	value  any
}

type family struct {
	name, kind, help string
	samples          []sample
}

// Metrics handles GET /metrics.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	s := h.source.Snapshot()

	families := []family{
		{"todomanager_todos_total", "counter", "Document todo writes.", []sample{
			{`op="created"`, s.TodosCreated}, {`op="updated"`, s.TodosUpdated}, {`op="deleted"`, s.TodosDeleted},
		}},
		{"todomanager_tasks_total", "counter", "Relational todo writes.", []sample{
			{`op="created"`, s.TasksCreated}, {`op="updated"`, s.TasksUpdated}, {`op="deleted"`, s.TasksDeleted},
		}},
		{"todomanager_identity_verified_total", "counter", "Requests with an accepted identity.", []sample{
			{`source="token"`, s.IdentityVerifiedToken},
			{`source="session"`, s.IdentityVerifiedSession},
			{`source="header"`, s.IdentityVerifiedHeader},
		}},
		{"todomanager_identity_rejected_total", "counter", "Requests with a rejected credential.", []sample{{"", s.IdentityRejected}}},
		{"todomanager_identity_cache_hits_total", "counter", "Verified token cache hits.", []sample{{"", s.IdentityCacheHits}}},
		{"todomanager_identity_cache_misses_total", "counter", "Verified token cache misses.", []sample{{"", s.IdentityCacheMisses}}},
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	bw := bufio.NewWriter(w)
	for _, f := range families {
		fmt.Fprintf(bw, "# HELP %s %s\n# TYPE %s %s\n", f.name, f.help, f.name, f.kind)
		for _, smp := range f.samples {
			if smp.labels == "" {
				fmt.Fprintf(bw, "%s %v\n", f.name, smp.value)
			} else {
				fmt.Fprintf(bw, "%s{%s} %v\n", f.name, smp.labels, smp.value)
			}
		}
	}

	const store = "todomanager_store_duration_seconds"
	fmt.Fprintf(bw, "# HELP %s Time spent in store round trips.\n# TYPE %s summary\n", store, store)
	fmt.Fprintf(bw, "%s_count %d\n%s_sum %.6f\n", store, s.StoreDurationCount, store, float64(s.StoreDurationTotalNs)/1e9)
	_ = bw.Flush()
}
