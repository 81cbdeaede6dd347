package identity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks verification outcomes and face match quality.
type Metrics struct {
	VerificationsTotal *prometheus.CounterVec
	FaceScore          prometheus.Histogram
}

// NewMetrics registers identity metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		VerificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_verifications_total",
			Help: "Identity verification attempts by outcome.",
		}, []string{"outcome"}),
		FaceScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "votegate_face_match_score",
			Help:    "Face comparator scores for verification attempts.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}
}
