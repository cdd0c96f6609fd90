package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tracking"

// Collector holds the service's Prometheus metrics on a private registry
type Collector struct {
	reg *prometheus.Registry

	PositionsPublished prometheus.Counter
	TripsEnded         prometheus.Counter
	InputsRejected     *prometheus.CounterVec // field label
	ActiveSubscribers  prometheus.Gauge
	SubscribersDropped *prometheus.CounterVec // reason label: write_error|overflow|shutdown|disconnect
	KeepAlives         prometheus.Counter
	StalePurges        prometheus.Counter
	NATSConnectedGauge prometheus.Gauge
}

// NewCollector creates and registers every tracking metric
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		PositionsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "positions_published_total",
			Help:      "Total accepted position samples.",
		}),
		TripsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trips_ended_total",
			Help:      "Total end-of-tracking calls.",
		}),
		InputsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inputs_rejected_total",
			Help:      "Requests rejected by validation, by offending field.",
		}, []string{"field"}),
		ActiveSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_subscribers",
			Help:      "Number of open live streams.",
		}),
		SubscribersDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscribers_removed_total",
			Help:      "Streams removed from the dispatcher, by reason.",
		}, []string{"reason"}),
		KeepAlives: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keepalives_sent_total",
			Help:      "Total keep-alives written to idle streams.",
		}),
		StalePurges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_positions_purged_total",
			Help:      "Total position records dropped for staleness.",
		}),
		NATSConnectedGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nats_connected",
			Help:      "1 if NATS connection is established, 0 otherwise.",
		}),
	}

	reg.MustRegister(
		c.PositionsPublished, c.TripsEnded, c.InputsRejected,
		c.ActiveSubscribers, c.SubscribersDropped, c.KeepAlives,
		c.StalePurges, c.NATSConnectedGauge,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// TrackTrips exposes count() as the number of trips currently held
func (c *Collector) TrackTrips(count func() int) {
	c.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "tracked_trips",
		Help:      "Position records currently held, stale ones included.",
	}, func() float64 { return float64(count()) }))
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

func (c *Collector) PositionPublished() { c.PositionsPublished.Inc() }

func (c *Collector) TrackingEnded() { c.TripsEnded.Inc() }

func (c *Collector) InputRejected(field string) { c.InputsRejected.WithLabelValues(field).Inc() }

func (c *Collector) SubscriberAdded() { c.ActiveSubscribers.Inc() }

func (c *Collector) SubscriberRemoved(reason string) {
	c.ActiveSubscribers.Dec()
	c.SubscribersDropped.WithLabelValues(reason).Inc()
}

func (c *Collector) KeepAliveSent() { c.KeepAlives.Inc() }

func (c *Collector) StalePurged(n int) { c.StalePurges.Add(float64(n)) }

// NATSConnected is a nats.ConnectionObserver
func (c *Collector) NATSConnected(connected bool) {
	if connected {
		c.NATSConnectedGauge.Set(1)
		return
	}
	c.NATSConnectedGauge.Set(0)
}
