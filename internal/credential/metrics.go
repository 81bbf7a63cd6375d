package credential

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	verifications *prometheus.CounterVec //nolint:gochecknoglobals
	metricsOnce   sync.Once              //nolint:gochecknoglobals
)

// observe counts a verification by scheme and result.
func observe(scheme Scheme, result Result) {
	metricsOnce.Do(func() {
		verifications = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mysqlauth_verifications_total",
				Help: "Number of password verifications, differentiated by scheme and result.",
			},
			[]string{"scheme", "result"},
		)
	})

	verifications.WithLabelValues(scheme.String(), result.String()).Inc()
}
