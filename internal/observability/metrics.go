package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analysis pipeline.
type Metrics struct {
	RowsLoaded  prometheus.Counter
	RowsCleaned prometheus.Counter

	// Cleaning metrics.
	RowsDropped    *prometheus.CounterVec // labels: reason={missing_key,out_of_range,negative_magnitude,duplicate}
	ValuesImputed  *prometheus.CounterVec // labels: column
	MalformedCells *prometheus.CounterVec // labels: column

	StageDuration *prometheus.HistogramVec // labels: stage

	// Regression metrics, set once per run.
	ModelFitted prometheus.Gauge
	ModelMAE    prometheus.Gauge
	ModelRMSE   prometheus.Gauge
	ModelR2     prometheus.Gauge

	// Gatherer exposes everything registered above, for the textfile
	// export at the end of a run.
	Gatherer prometheus.Gatherer
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	m.Gatherer = prometheus.DefaultGatherer

	prometheus.MustRegister(
		m.RowsLoaded,
		m.RowsCleaned,
		m.RowsDropped,
		m.ValuesImputed,
		m.MalformedCells,
		m.StageDuration,
		m.ModelFitted,
		m.ModelMAE,
		m.ModelRMSE,
		m.ModelR2,
	)

	return m
}

// NewMetricsForTesting creates Metrics backed by a fresh registry to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	m.Gatherer = reg

	reg.MustRegister(
		m.RowsLoaded,
		m.RowsCleaned,
		m.RowsDropped,
		m.ValuesImputed,
		m.MalformedCells,
		m.StageDuration,
		m.ModelFitted,
		m.ModelMAE,
		m.ModelRMSE,
		m.ModelR2,
	)

	return m
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lightning_eda",
			Name:      "rows_loaded_total",
			Help:      "Total rows read from the input CSV.",
		}),
		RowsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lightning_eda",
			Name:      "rows_cleaned_total",
			Help:      "Total rows surviving the cleaning pass.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lightning_eda",
			Name:      "rows_dropped_total",
			Help:      "Rows removed during cleaning by reason.",
		}, []string{"reason"}),
		ValuesImputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lightning_eda",
			Name:      "values_imputed_total",
			Help:      "Missing cells filled during cleaning by column.",
		}, []string{"column"}),
		MalformedCells: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lightning_eda",
			Name:      "malformed_cells_total",
			Help:      "Unparseable cells treated as missing at load time by column.",
		}, []string{"column"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lightning_eda",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		ModelFitted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lightning_eda",
			Name:      "model_fitted",
			Help:      "1 when the regression fit succeeded, 0 otherwise.",
		}),
		ModelMAE: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lightning_eda",
			Name:      "model_mae",
			Help:      "Mean absolute error of the fitted model on the test split.",
		}),
		ModelRMSE: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lightning_eda",
			Name:      "model_rmse",
			Help:      "Root mean squared error of the fitted model on the test split.",
		}),
		ModelR2: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lightning_eda",
			Name:      "model_r2",
			Help:      "Coefficient of determination of the fitted model on the test split.",
		}),
	}
}
