package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the coordinator. Increment helpers
// are nil-receiver safe so services constructed without metrics stay quiet.
type Metrics struct {
	ParticipantsRegistered prometheus.Counter

	RecordsSubmitted    prometheus.Counter
	QueriesSubmitted    prometheus.Counter
	QueriesDiscarded    prometheus.Counter
	QueriesProcessed    prometheus.Counter
	ComputationRequests prometheus.Counter
	DecryptionRequests  prometheus.Counter
	ProofFailures       prometheus.Counter
	ProposalsCreated    prometheus.Counter
	VotesCast           prometheus.Counter
	ProposalsExecuted   prometheus.Counter
	RequestLatency      *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ParticipantsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medcommons_participants_registered_total",
			Help: "Total number of actors that claimed a role",
		}),
		RecordsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medcommons_records_submitted_total",
			Help: "Total number of encrypted records appended to the ledger",
		}),
		QueriesSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medcommons_queries_submitted_total",
			Help: "Total number of research queries submitted",
		}),
		QueriesDiscarded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medcommons_queries_discarded_total",
			Help: "Total number of unprocessed queries overwritten by a resubmission",
		}),
		QueriesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medcommons_queries_processed_total",
			Help: "Total number of queries completed by a verified computation result",
		}),
		ComputationRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medcommons_computation_requests_total",
			Help: "Total number of batches handed to the external computation service",
		}),
		DecryptionRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medcommons_decryption_requests_total",
			Help: "Total number of result ciphertexts forwarded for decryption",
		}),
		ProofFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medcommons_proof_failures_total",
			Help: "Total number of callback attestations that failed verification",
		}),
		ProposalsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medcommons_proposals_created_total",
			Help: "Total number of governance proposals created",
		}),
		VotesCast: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medcommons_votes_cast_total",
			Help: "Total number of governance votes recorded",
		}),
		ProposalsExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medcommons_proposals_executed_total",
			Help: "Total number of governance proposals marked executed",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medcommons_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

func (m *Metrics) IncParticipantsRegistered() {
	m.inc(func() prometheus.Counter { return m.ParticipantsRegistered })
}

func (m *Metrics) IncRecordsSubmitted() { m.inc(func() prometheus.Counter { return m.RecordsSubmitted }) }

func (m *Metrics) IncQueriesSubmitted() { m.inc(func() prometheus.Counter { return m.QueriesSubmitted }) }

func (m *Metrics) IncQueriesDiscarded() { m.inc(func() prometheus.Counter { return m.QueriesDiscarded }) }

func (m *Metrics) IncQueriesProcessed() { m.inc(func() prometheus.Counter { return m.QueriesProcessed }) }

func (m *Metrics) IncComputationRequests() {
	m.inc(func() prometheus.Counter { return m.ComputationRequests })
}

func (m *Metrics) IncDecryptionRequests() { m.inc(func() prometheus.Counter { return m.DecryptionRequests }) }

func (m *Metrics) IncProofFailures() { m.inc(func() prometheus.Counter { return m.ProofFailures }) }

func (m *Metrics) IncProposalsCreated() { m.inc(func() prometheus.Counter { return m.ProposalsCreated }) }

func (m *Metrics) IncVotesCast() { m.inc(func() prometheus.Counter { return m.VotesCast }) }

func (m *Metrics) IncProposalsExecuted() { m.inc(func() prometheus.Counter { return m.ProposalsExecuted }) }

func (m *Metrics) inc(get func() prometheus.Counter) {
	if m == nil {
		return
	}
	if c := get(); c != nil {
		c.Inc()
	}
}

// ObserveRequest records one HTTP request observation.
func (m *Metrics) ObserveRequest(route, status string, elapsed time.Duration) {
	if m == nil || m.RequestLatency == nil {
		return
	}
	m.RequestLatency.WithLabelValues(route, status).Observe(elapsed.Seconds())
}
