package edge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operator-facing counters, served from the edge process's /metrics
// endpoint. Dropped readings are labelled by reason so a drop alert can
// distinguish bad payloads from a sick disk.
var (
	ingestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edge_readings_ingested_total",
		Help: "Readings validated and committed to the store.",
	})

	droppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edge_readings_dropped_total",
		Help: "Readings dropped, by reason (decode, validation, write, queue_full).",
	}, []string{"reason"})

	alertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edge_readings_alerts_total",
		Help: "Readings committed with alert_flag set.",
	})

	reconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edge_broker_reconnects_total",
		Help: "Broker connection losses observed by the subscriber.",
	})

	writeRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edge_store_write_retries_total",
		Help: "Store insert attempts that were retried after a transient failure.",
	})
)
