package reporter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"netconnd/internal/connection"
)

// MetricsReporter decorates another Reporter, publishing diff sizes and
// self-check outcomes as Prometheus series: the diff sizes are running
// counters accumulated across PushDiff calls, and each self-check component
// gets a 0/1 gauge set by PushSelfCheckResult.
type MetricsReporter struct {
	next Reporter

	diffAdded   prometheus.Counter
	diffRemoved prometheus.Counter
	selfCheck   *prometheus.GaugeVec
}

func NewMetricsReporter(next Reporter) *MetricsReporter {
	return &MetricsReporter{
		next: next,
		diffAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netconnd_diff_added_total",
			Help: "Connections reported as newly added across all PushDiff calls.",
		}),
		diffRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netconnd_diff_removed_total",
			Help: "Connections reported as removed across all PushDiff calls.",
		}),
		selfCheck: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "netconnd_self_check_observed",
			Help: "1 if the named self-check component has observed its event, else 0.",
		}, []string{"component"}),
	}
}

func (r *MetricsReporter) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(r.diffAdded, r.diffRemoved, r.selfCheck)
}

func (r *MetricsReporter) PushDiff(added, removed []connection.Connection, wallTime time.Time) error {
	r.diffAdded.Add(float64(len(added)))
	r.diffRemoved.Add(float64(len(removed)))
	return r.next.PushDiff(added, removed, wallTime)
}

func (r *MetricsReporter) PushSelfCheckResult(observed bool, component string) error {
	v := 0.0
	if observed {
		v = 1.0
	}
	r.selfCheck.WithLabelValues(component).Set(v)
	return r.next.PushSelfCheckResult(observed, component)
}
