package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(movieCacheLookups, dbPoolConnections) }

var (
	movieCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "composite_movie_cache_lookups_total",
			Help: "Movie cache lookups by result (hit|miss).",
		},
		[]string{"result"},
	)

	dbPoolConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "composite_db_pool_connections",
			Help: "Job history connection pool by state (total|idle|acquired).",
		},
		[]string{"state"},
	)
)

func ObserveMovieCache(hit bool) {
	if hit {
		movieCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	movieCacheLookups.WithLabelValues("miss").Inc()
}

func SetDBPoolConnections(total, idle, acquired int32) {
	dbPoolConnections.WithLabelValues("total").Set(float64(total))
	dbPoolConnections.WithLabelValues("idle").Set(float64(idle))
	dbPoolConnections.WithLabelValues("acquired").Set(float64(acquired))
}
