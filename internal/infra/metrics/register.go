package metrics

import (
	"errors"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() { register(buildInfo) }

var (
	once       sync.Once
	collectors []prometheus.Collector

	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "composite_client_build_info",
			Help: "Always 1; labelled with the client version and commit.",
		},
		[]string{"version", "commit"},
	)
)

// register queues collectors from each file's init().
func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister adds the queued collectors to the default registry once.
// A collector registered elsewhere already is tolerated.
func MustRegister() {
	once.Do(func() {
		for _, c := range collectors {
			if err := prometheus.Register(c); err != nil {
				var are prometheus.AlreadyRegisteredError
				if !errors.As(err, &are) {
					panic(err)
				}
			}
		}
	})
}

// Handler exposes the default registry, registering the client's collectors first.
func Handler() http.Handler {
	MustRegister()
	return promhttp.Handler()
}

func SetBuildInfo(version, commit string) {
	buildInfo.WithLabelValues(version, commit).Set(1)
}
