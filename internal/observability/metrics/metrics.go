package metrics

import "github.com/prometheus/client_golang/prometheus"

// PlannerMetrics exposes counters/histograms for the surgical planner and
// the adherence tracker.
type PlannerMetrics struct {
	planSaves          *prometheus.CounterVec
	selectionsRejected *prometheus.CounterVec
	checklistToggles   *prometheus.CounterVec
	saveLatency        *prometheus.HistogramVec
}

func NewPlannerMetrics(reg prometheus.Registerer) *PlannerMetrics {
	m := &PlannerMetrics{
		planSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cataract",
			Subsystem: "planner",
			Name:      "plan_saves_total",
			Help:      "Total patient document saves",
		}, []string{"kind", "status"}),
		selectionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cataract",
			Subsystem: "planner",
			Name:      "selections_rejected_total",
			Help:      "Package selections rejected for not being offered",
		}, []string{"reason"}),
		checklistToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cataract",
			Subsystem: "tracker",
			Name:      "checklist_toggles_total",
			Help:      "Adherence checklist toggle attempts",
		}, []string{"result"}),
		saveLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cataract",
			Subsystem: "planner",
			Name:      "save_latency_seconds",
			Help:      "Latency of patient document saves",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.planSaves, m.selectionsRejected, m.checklistToggles, m.saveLatency)
	return m
}

func (m *PlannerMetrics) ObservePlanSave(kind, status string) {
	if m == nil {
		return
	}
	m.planSaves.WithLabelValues(kind, status).Inc()
}

func (m *PlannerMetrics) ObserveSelectionRejected(reason string) {
	if m == nil {
		return
	}
	m.selectionsRejected.WithLabelValues(reason).Inc()
}

func (m *PlannerMetrics) ObserveToggle(result string) {
	if m == nil {
		return
	}
	m.checklistToggles.WithLabelValues(result).Inc()
}

func (m *PlannerMetrics) ObserveSaveLatency(kind string, seconds float64) {
	if m == nil {
		return
	}
	m.saveLatency.WithLabelValues(kind).Observe(seconds)
}
