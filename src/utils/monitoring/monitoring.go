package monitoring

import (
	"github.com/mintforge/revealer/src/utils/monitoring/report"

	"github.com/prometheus/client_golang/prometheus"
)

// Implemented by per-application monitors
type Monitor interface {
	GetReport() *report.Report
	GetPrometheusCollector() prometheus.Collector
}
