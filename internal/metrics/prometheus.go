package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusSink implements Sink with the Prometheus client library.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	commandsTotal   *prometheus.CounterVec
	commandDuration prometheus.Histogram
	jobsTotal       prometheus.Gauge
	attachmentOps   *prometheus.CounterVec
	leasesActive    prometheus.Gauge
}

// NewPrometheusSink creates a sink whose collectors are registered on reg.
func NewPrometheusSink(reg prometheus.Registerer, logger *slog.Logger) *PrometheusSink {
	if logger == nil {
		logger = slog.Default()
	}
	s := &PrometheusSink{
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobtrail_commands_total",
			Help: "Total number of dispatched tracker commands by outcome.",
		}, []string{"command", "outcome"}),
		commandDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobtrail_command_duration_seconds",
			Help:    "Time to apply and persist a tracker command.",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		jobsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jobtrail_jobs",
			Help: "Number of tracked job applications.",
		}),
		attachmentOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobtrail_attachment_operations_total",
			Help: "Total number of attachment store operations by result.",
		}, []string{"op", "result"}),
		leasesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jobtrail_leases_active",
			Help: "Number of unexpired attachment download leases.",
		}),
	}

	for name, c := range map[string]prometheus.Collector{
		"jobtrail_commands_total":              s.commandsTotal,
		"jobtrail_command_duration_seconds":    s.commandDuration,
		"jobtrail_jobs":                        s.jobsTotal,
		"jobtrail_attachment_operations_total": s.attachmentOps,
		"jobtrail_leases_active":               s.leasesActive,
	} {
		if err := reg.Register(c); err != nil {
			logger.Warn("metrics: register failed", slog.String("metric", name), slog.String("error", err.Error()))
		}
	}
	return s
}

func (s *PrometheusSink) CommandCompleted(name, outcome string, duration time.Duration) {
	s.commandsTotal.WithLabelValues(name, outcome).Inc()
	s.commandDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) JobsTotal(n int) {
	s.jobsTotal.Set(float64(n))
}

func (s *PrometheusSink) AttachmentOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.attachmentOps.WithLabelValues(op, result).Inc()
}

func (s *PrometheusSink) LeasesActive(n int) {
	s.leasesActive.Set(float64(n))
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
