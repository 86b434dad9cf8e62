package repository

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "tabulator_sql_query_duration_seconds",
	Help: "Duration of sql queries in seconds",
}, []string{"query"})

// observeQuery starts a timer for the named query; call the returned func when done.
func observeQuery(query string) func() {
	start := time.Now()
	return func() {
		queryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
	}
}
