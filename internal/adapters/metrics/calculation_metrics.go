package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Calculation statuses
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// CalculationMetricsCollector tracks production tree calculations
type CalculationMetricsCollector struct {
	calculationsTotal   *prometheus.CounterVec
	calculationDuration prometheus.Histogram
	treeNodes           prometheus.Histogram
	fuelLoopsTotal      *prometheus.CounterVec
}

// NewCalculationMetricsCollector creates a new calculation metrics collector
func NewCalculationMetricsCollector() *CalculationMetricsCollector {
	return &CalculationMetricsCollector{
		calculationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calculations_total",
				Help:      "Total number of calculations by outcome",
			},
			[]string{"status"},
		),

		calculationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "calculation_duration_seconds",
				Help:      "Time to build the production trees of one calculation",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
		),

		treeNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tree_nodes",
				Help:      "Number of nodes in the forest of one calculation",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
		),

		fuelLoopsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fuel_loops_total",
				Help:      "Fuel subtrees that burn their own product, by fuel and outcome",
			},
			[]string{"fuel", "status"},
		),
	}
}

// Register registers all calculation metrics with the Prometheus registry
func (c *CalculationMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.calculationsTotal,
		c.calculationDuration,
		c.treeNodes,
		c.fuelLoopsTotal,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordCalculation records the outcome, duration and forest size of a calculation
func (c *CalculationMetricsCollector) RecordCalculation(status string, duration float64, nodes int) {
	c.calculationsTotal.WithLabelValues(status).Inc()
	c.calculationDuration.Observe(duration)
	c.treeNodes.Observe(float64(nodes))
}

// RecordFuelLoop counts a solved ("solved") or unsatisfiable ("unsatisfiable") fuel loop
func (c *CalculationMetricsCollector) RecordFuelLoop(fuel string, status string) {
	c.fuelLoopsTotal.WithLabelValues(fuel, status).Inc()
}
