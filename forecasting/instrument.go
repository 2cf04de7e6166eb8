package forecasting

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Instrumentation exports backtest activity to Prometheus. A nil
// *Instrumentation records nothing.
type Instrumentation struct {
	Windows   *prometheus.CounterVec
	Failures  *prometheus.CounterVec
	FitTime   *prometheus.HistogramVec
	PredTime  *prometheus.HistogramVec
	LastScore *prometheus.GaugeVec
}

// NewInstrumentation registers the backtest collectors on reg.
func NewInstrumentation(reg prometheus.Registerer) *Instrumentation {
	factory := promauto.With(reg)
	return &Instrumentation{
		Windows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goforecast",
				Subsystem: "backtest",
				Name:      "windows_total",
				Help:      "Total number of backtest windows completed",
			},
			[]string{"model"},
		),
		Failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goforecast",
				Subsystem: "backtest",
				Name:      "failures_total",
				Help:      "Total number of backtest failures by stage",
			},
			[]string{"model", "stage"},
		),
		FitTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "goforecast",
				Subsystem: "backtest",
				Name:      "fit_seconds",
				Help:      "Time spent fitting the model per window",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"model"},
		),
		PredTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "goforecast",
				Subsystem: "backtest",
				Name:      "predict_seconds",
				Help:      "Time spent predicting per window",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"model"},
		),
		LastScore: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "goforecast",
				Subsystem: "backtest",
				Name:      "score",
				Help:      "Score of the most recent backtest by metric",
			},
			[]string{"model", "metric"},
		),
	}
}

// ObserveWindow records one completed window.
func (in *Instrumentation) ObserveWindow(model string, fit, predict time.Duration) {
	if in == nil {
		return
	}
	in.Windows.WithLabelValues(model).Inc()
	in.FitTime.WithLabelValues(model).Observe(fit.Seconds())
	in.PredTime.WithLabelValues(model).Observe(predict.Seconds())
}

// ObserveFailure counts a failed run by the stage that failed.
func (in *Instrumentation) ObserveFailure(model, stage string) {
	if in == nil {
		return
	}
	in.Failures.WithLabelValues(model, stage).Inc()
}

// ObserveScores publishes the scores of a finished run.
func (in *Instrumentation) ObserveScores(model string, scores map[string]float64) {
	if in == nil {
		return
	}
	for name, v := range scores {
		in.LastScore.WithLabelValues(model, name).Set(v)
	}
}
