package ballot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks cast outcomes.
type Metrics struct {
	VotesCastTotal     prometheus.Counter
	VotesRejectedTotal *prometheus.CounterVec
}

// NewMetrics registers ballot metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		VotesCastTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "votegate_votes_cast_total",
			Help: "Votes committed to the ledger.",
		}),
		VotesRejectedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_votes_rejected_total",
			Help: "Cast attempts rejected, by reason.",
		}, []string{"reason"}),
	}
}
