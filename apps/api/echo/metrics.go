package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/shkola/core/notify"
)

const metricsNamespace = "shkola"

type metrics struct {
	gatherer prometheus.Gatherer
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg *prometheus.Registry) *metrics {
	m := &metrics{
		gatherer: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	reg.MustRegister(
		m.requests,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		err := next(ctx)
		if err != nil {
			ctx.Error(err) // commit the response so its status is known
		}

		route := ctx.Path()
		if route == "" {
			route = "unmatched"
		}
		code := ctx.Response().Status
		m.requests.WithLabelValues(route, ctx.Request().Method, strconv.Itoa(code)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return nil
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

type relayObserver struct {
	clients  prometheus.Gauge
	messages prometheus.Counter
	sent     prometheus.Counter
}

var _ notify.Observer = (*relayObserver)(nil)

// NewRelayObserver returns a notify.Observer exporting the relay activity to reg.
func NewRelayObserver(reg prometheus.Registerer) notify.Observer {
	o := &relayObserver{
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "notification_clients",
			Help:      "Connected notification clients.",
		}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notification_messages_total",
			Help:      "Notifications received for relaying.",
		}),
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notification_deliveries_total",
			Help:      "Notifications delivered to clients.",
		}),
	}
	reg.MustRegister(o.clients, o.messages, o.sent)
	return o
}

func (o *relayObserver) Joined() { o.clients.Inc() }
func (o *relayObserver) Left()   { o.clients.Dec() }

func (o *relayObserver) Relayed(recipients int) {
	o.messages.Inc()
	o.sent.Add(float64(recipients))
}
