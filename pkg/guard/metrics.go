package guard

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes guard decision counters.
type Metrics struct {
	Decisions    *prometheus.CounterVec
	RemoteChecks *prometheus.CounterVec
	Unconfigured prometheus.Counter
}

// NewMetrics creates and registers guard metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_route_decisions_total",
				Help: "Route activation decisions by outcome and deciding source",
			},
			[]string{"outcome", "source"},
		),
		RemoteChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_remote_permission_checks_total",
				Help: "Remote authority permission checks by result",
			},
			[]string{"result"},
		),
		Unconfigured: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "console_unconfigured_route_grants_total",
				Help: "Navigations granted by the permissive default for routes absent from the taxonomy",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Decisions, m.RemoteChecks, m.Unconfigured)
	}
	return m
}
