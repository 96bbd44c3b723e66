package telemetry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector captures telemetry events emitted by stores.
//
// Implementations may forward metrics to Prometheus, loggers or other
// monitoring systems. They are called inline on every dispatch and must be
// cheap and safe for concurrent use.
type Collector interface {
	IncDispatch(store, action string)
	IncIgnored(store, action string)
	IncFailed(store, action string)
	ObserveDispatch(store string, seconds float64)
	SetSubscribers(store string, count int)
}

type noopCollector struct{}

// Noop returns a collector that discards all metrics.
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) IncDispatch(string, string)      {}
func (noopCollector) IncIgnored(string, string)       {}
func (noopCollector) IncFailed(string, string)        {}
func (noopCollector) ObserveDispatch(string, float64) {}
func (noopCollector) SetSubscribers(string, int)      {}

// Metric names exported by PrometheusCollector.
const (
	MetricDispatchTotal    = "storekit_dispatch_total"
	MetricIgnoredTotal     = "storekit_dispatch_ignored_total"
	MetricFailedTotal      = "storekit_dispatch_failed_total"
	MetricDispatchDuration = "storekit_dispatch_duration_seconds"
	MetricSubscribers      = "storekit_subscribers"
)

// PrometheusCollector exposes store telemetry via Prometheus.
type PrometheusCollector struct {
	dispatched  *prometheus.CounterVec
	ignored     *prometheus.CounterVec
	failed      *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	subscribers *prometheus.GaugeVec
}

// NewPrometheusCollector registers the store metrics with the provided registerer.
// Metrics already registered with reg are reused, so several collectors may
// share one registry.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	dispatched, err := registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MetricDispatchTotal,
		Help: "Number of dispatches that produced a new state.",
	}, []string{"store", "action"}))
	if err != nil {
		return nil, err
	}

	ignored, err := registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MetricIgnoredTotal,
		Help: "Number of unknown actions dropped by lenient stores.",
	}, []string{"store", "action"}))
	if err != nil {
		return nil, err
	}

	failed, err := registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MetricFailedTotal,
		Help: "Number of dispatches rejected by the reducer.",
	}, []string{"store", "action"}))
	if err != nil {
		return nil, err
	}

	duration, err := registerOrReuse(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    MetricDispatchDuration,
		Help:    "Time spent applying the reducer and swapping state.",
		Buckets: prometheus.ExponentialBuckets(1e-7, 10, 8),
	}, []string{"store"}))
	if err != nil {
		return nil, err
	}

	subscribers, err := registerOrReuse(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: MetricSubscribers,
		Help: "Number of listeners currently subscribed to a store.",
	}, []string{"store"}))
	if err != nil {
		return nil, err
	}

	return &PrometheusCollector{
		dispatched:  dispatched,
		ignored:     ignored,
		failed:      failed,
		duration:    duration,
		subscribers: subscribers,
	}, nil
}

func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}

// IncDispatch counts a successful dispatch.
func (p *PrometheusCollector) IncDispatch(store, action string) {
	if p == nil || p.dispatched == nil {
		return
	}
	p.dispatched.WithLabelValues(store, action).Inc()
}

// IncIgnored counts an unknown action dropped under the lenient policy.
func (p *PrometheusCollector) IncIgnored(store, action string) {
	if p == nil || p.ignored == nil {
		return
	}
	p.ignored.WithLabelValues(store, action).Inc()
}

// IncFailed counts a dispatch whose reducer returned an error.
func (p *PrometheusCollector) IncFailed(store, action string) {
	if p == nil || p.failed == nil {
		return
	}
	p.failed.WithLabelValues(store, action).Inc()
}

// ObserveDispatch records the reducer latency for a store.
func (p *PrometheusCollector) ObserveDispatch(store string, seconds float64) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(store).Observe(seconds)
}

// SetSubscribers updates the listener gauge for a store.
func (p *PrometheusCollector) SetSubscribers(store string, count int) {
	if p == nil || p.subscribers == nil {
		return
	}
	p.subscribers.WithLabelValues(store).Set(float64(count))
}
