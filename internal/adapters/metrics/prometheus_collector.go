package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace for all metrics
	namespace = "factorio_calc"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalCalculationCollector is set by SetGlobalCalculationCollector when metrics are enabled
	globalCalculationCollector CalculationMetricsRecorder
)

// CalculationMetricsRecorder records calculator events from application code
type CalculationMetricsRecorder interface {
	RecordCalculation(status string, duration float64, nodes int)
	RecordFuelLoop(fuel string, status string)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry, nil when metrics are disabled
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	if Registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// SetGlobalCalculationCollector sets the global calculation metrics collector
func SetGlobalCalculationCollector(collector CalculationMetricsRecorder) {
	globalCalculationCollector = collector
}

// RecordCalculation records one finished calculation globally
func RecordCalculation(status string, duration float64, nodes int) {
	if globalCalculationCollector != nil {
		globalCalculationCollector.RecordCalculation(status, duration, nodes)
	}
}

// RecordFuelLoop records one fuel loop seen while building a tree
func RecordFuelLoop(fuel string, status string) {
	if globalCalculationCollector != nil {
		globalCalculationCollector.RecordFuelLoop(fuel, status)
	}
}
