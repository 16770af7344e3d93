// Package metrics exposes request telemetry for remote calls. The telemetry
// object is constructed once and injected into the request client; there is
// no package-level counter state.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultShowDelay = 300 * time.Millisecond

// LoadingListener is notified when the loading indicator should appear or
// disappear. Show fires only if a call is still in flight after the debounce
// delay; Hide fires immediately once the in-flight count returns to zero.
type LoadingListener interface {
	ShowLoading()
	HideLoading()
}

// RequestTelemetry tracks in-flight remote calls and drives the debounced
// loading indicator.
type RequestTelemetry struct {
	inflightGauge prometheus.Gauge
	callsTotal    *prometheus.CounterVec
	latency       *prometheus.HistogramVec

	showDelay time.Duration
	listener  LoadingListener

	mu       sync.Mutex
	inflight int
	visible  bool
	timer    *time.Timer
}

// NewRequestTelemetry constructs telemetry and registers its collectors.
func NewRequestTelemetry(reg prometheus.Registerer, showDelay time.Duration, listener LoadingListener) *RequestTelemetry {
	if showDelay <= 0 {
		showDelay = defaultShowDelay
	}
	t := &RequestTelemetry{
		inflightGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clinic",
			Subsystem: "remote",
			Name:      "inflight_requests",
			Help:      "Remote visit-API calls currently in flight",
		}),
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "remote",
			Name:      "requests_total",
			Help:      "Total remote visit-API calls",
		}, []string{"operation", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "remote",
			Name:      "request_duration_seconds",
			Help:      "Latency of remote visit-API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		showDelay: showDelay,
		listener:  listener,
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(t.inflightGauge, t.callsTotal, t.latency)
	return t
}

// CallStarted records the start of a remote call.
func (t *RequestTelemetry) CallStarted(operation string) {
	if t == nil {
		return
	}
	t.inflightGauge.Inc()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflight++
	if t.listener != nil && !t.visible && t.timer == nil {
		t.timer = time.AfterFunc(t.showDelay, t.maybeShow)
	}
}

// CallFinished records the completion of a remote call, success or failure.
func (t *RequestTelemetry) CallFinished(operation, status string, elapsed time.Duration) {
	if t == nil {
		return
	}
	t.inflightGauge.Dec()
	t.callsTotal.WithLabelValues(operation, status).Inc()
	t.latency.WithLabelValues(operation).Observe(elapsed.Seconds())

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inflight > 0 {
		t.inflight--
	}
	if t.inflight == 0 {
		if t.timer != nil {
			t.timer.Stop()
			t.timer = nil
		}
		if t.visible {
			t.visible = false
			if t.listener != nil {
				t.listener.HideLoading()
			}
		}
	}
}

// InFlight returns the current in-flight call count.
func (t *RequestTelemetry) InFlight() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inflight
}

func (t *RequestTelemetry) maybeShow() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer = nil
	if t.inflight > 0 && !t.visible && t.listener != nil {
		t.visible = true
		t.listener.ShowLoading()
	}
}
