package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(shareCardPollsTotal, shareCardSessionsTotal, shareCardActiveSessions, shareCardRechecksTotal)
}

var (
	shareCardPollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sharecard_polls_total",
			Help: "Share card status queries, labeled by reported status ('error' on failure).",
		},
		[]string{"status"},
	)

	shareCardSessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sharecard_sessions_total",
			Help: "Finished share card poll sessions by outcome.",
		},
		[]string{"outcome"}, // completed, timed_out, unknown, failed, cancelled
	)

	shareCardRechecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sharecard_rechecks_total",
			Help: "Scheduled rechecks of abandoned jobs by result (started|skipped|failed|exhausted).",
		},
		[]string{"result"}, // started, skipped, failed
	)

	shareCardActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sharecard_active_sessions",
			Help: "Poll sessions currently running in this process.",
		},
	)
)

func IncShareCardPoll(status string) {
	shareCardPollsTotal.WithLabelValues(norm(status)).Inc()
}

func IncShareCardSession(outcome string) {
	shareCardSessionsTotal.WithLabelValues(norm(outcome)).Inc()
}

func SessionStarted()  { shareCardActiveSessions.Inc() }
func SessionFinished() { shareCardActiveSessions.Dec() }

func IncShareCardRecheck(result string) {
	shareCardRechecksTotal.WithLabelValues(norm(result)).Inc()
}
