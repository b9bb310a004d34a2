package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	UsersRegistered   prometheus.Counter
	Logins            *prometheus.CounterVec
	IncidentsReported prometheus.Counter
	VotesCast         *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		UsersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "trafine_users_registered_total",
			Help: "Total number of identities registered",
		}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trafine_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		IncidentsReported: f.NewCounter(prometheus.CounterOpts{
			Name: "trafine_incidents_reported_total",
			Help: "Total number of incidents reported",
		}),
		VotesCast: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trafine_votes_cast_total",
			Help: "Votes cast on incidents by direction",
		}, []string{"direction"}),
	}
}

func (m *Metrics) IncrementUsersRegistered() {
	if m == nil {
		return
	}
	m.UsersRegistered.Inc()
}

func (m *Metrics) ObserveLogin(ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.Logins.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementIncidentsReported() {
	if m == nil {
		return
	}
	m.IncidentsReported.Inc()
}

func (m *Metrics) ObserveVote(vote int) {
	if m == nil {
		return
	}
	direction := "down"
	if vote > 0 {
		direction = "up"
	}
	m.VotesCast.WithLabelValues(direction).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
