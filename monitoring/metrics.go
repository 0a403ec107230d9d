package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_orders_created_total",
		Help: "Orders accepted into the lifecycle engine.",
	}, []string{"tenant"})

	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_order_transitions_total",
		Help: "Successful order status transitions.",
	}, []string{"tenant", "to_status"})

	DaysClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_days_closed_total",
		Help: "Operational sessions settled and closed.",
	}, []string{"tenant"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_realtime_events_published_total",
		Help: "Realtime events handed to the fan-out hub.",
	}, []string{"event"})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_realtime_events_dropped_total",
		Help: "Realtime events lost to marshal or write failures.",
	})

	AuthDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_auth_denials_total",
		Help: "Requests denied by the request gate, by error kind.",
	}, []string{"kind"})
)
