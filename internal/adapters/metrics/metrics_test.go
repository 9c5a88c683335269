package metrics_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorio-calculator/internal/adapters/metrics"
	"github.com/andrescamacho/factorio-calculator/internal/application/mediator"
)

type sampleQuery struct{}

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func withRegistry(t *testing.T) {
	t.Helper()
	metrics.InitRegistry()
	t.Cleanup(func() {
		metrics.Registry = nil
		metrics.SetGlobalCalculationCollector(nil)
	})
}

func TestCalculationMetrics_RecordsThroughGlobalCollector(t *testing.T) {
	// Arrange
	withRegistry(t)
	collector := metrics.NewCalculationMetricsCollector()
	require.NoError(t, collector.Register())
	metrics.SetGlobalCalculationCollector(collector)

	// Act
	metrics.RecordCalculation(metrics.StatusSuccess, 0.002, 6)
	metrics.RecordCalculation(metrics.StatusPartial, 0.004, 9)
	metrics.RecordFuelLoop("coal", "solved")

	// Assert
	body := scrape(t)
	assert.Contains(t, body, `factorio_calc_calculations_total{status="success"} 1`)
	assert.Contains(t, body, `factorio_calc_calculations_total{status="partial"} 1`)
	assert.Contains(t, body, `factorio_calc_fuel_loops_total{fuel="coal",status="solved"} 1`)
	assert.Contains(t, body, "factorio_calc_tree_nodes_count 2")
}

func TestRecordCalculation_NoCollectorIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.RecordCalculation(metrics.StatusFailed, 1, 0)
		metrics.RecordFuelLoop("wood", "unsatisfiable")
	})
}

func TestPrometheusMiddleware_LabelsByRequestType(t *testing.T) {
	// Arrange
	withRegistry(t)
	collector := metrics.NewCommandMetricsCollector()
	require.NoError(t, collector.Register())
	middleware := metrics.PrometheusMiddleware(collector)

	// Act
	_, _ = middleware(context.Background(), &sampleQuery{}, func(ctx context.Context, r mediator.Request) (mediator.Response, error) {
		return nil, nil
	})
	_, err := middleware(context.Background(), &sampleQuery{}, func(ctx context.Context, r mediator.Request) (mediator.Response, error) {
		return nil, errors.New("boom")
	})

	// Assert
	assert.Error(t, err)
	body := scrape(t)
	assert.Contains(t, body, `factorio_calc_commands_total{command="sampleQuery",status="error"} 1`)
	assert.Contains(t, body, `factorio_calc_commands_total{command="sampleQuery",status="success"} 1`)
}

func TestAPIMetrics_InstrumentRecordsStatus(t *testing.T) {
	// Arrange
	withRegistry(t)
	collector := metrics.NewAPIMetricsCollector()
	require.NoError(t, collector.Register())
	handler := collector.Instrument("/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	// Act
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	// Assert
	assert.Contains(t, scrape(t), `factorio_calc_api_requests_total{method="GET",route="/healthz",status_code="418"} 1`)
}

func TestHandler_ServesRegistry(t *testing.T) {
	withRegistry(t)
	collector := metrics.NewCalculationMetricsCollector()
	require.NoError(t, collector.Register())
	collector.RecordCalculation(metrics.StatusSuccess, 0.001, 3)

	assert.Contains(t, scrape(t), "factorio_calc_calculations_total")
}
