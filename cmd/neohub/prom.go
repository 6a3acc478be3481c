package main

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sonirico/neohub"
)

var connectedGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "neohub",
	Subsystem: "client",
	Name:      "connected",
	Help:      "1 while the websocket to the hub is open.",
})

var eventsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "neohub",
	Subsystem: "client",
	Name:      "events_total",
	Help:      "Events received from the hub, by type.",
}, []string{"event"})

var partitionArmedGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "neohub",
	Subsystem: "alarm",
	Name:      "partition_armed",
	Help:      "1 when the partition is armed away, home or night.",
}, []string{"session", "partition", "name"})

var partitionStatusGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "neohub",
	Subsystem: "alarm",
	Name:      "partition_status",
	Help:      "1 for the current status of each partition.",
}, []string{"session", "partition", "status"})

var zoneOpenGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "neohub",
	Subsystem: "alarm",
	Name:      "zone_open",
	Help:      "1 while the zone is open.",
}, []string{"session", "zone", "name"})

var statuses = []neohub.PartitionStatus{
	neohub.StatusDisarmed,
	neohub.StatusArmedAway,
	neohub.StatusArmedHome,
	neohub.StatusArmedNight,
	neohub.StatusArming,
	neohub.StatusPending,
	neohub.StatusTriggered,
	neohub.StatusUnknown,
}

// exportState rewrites every alarm gauge from state. Series of entities that
// are gone are dropped.
func exportState(state neohub.State) {
	partitionArmedGauge.Reset()
	partitionStatusGauge.Reset()
	zoneOpenGauge.Reset()

	for _, sess := range state {
		for _, p := range sess.Partitions {
			exportPartition(sess.ID, p)
		}
		for _, z := range sess.Zones {
			zoneOpenGauge.
				WithLabelValues(sess.ID, strconv.Itoa(z.Number), z.DisplayName()).
				Set(boolToFloat(z.Open))
		}
	}
}

func exportPartition(sessionID string, p neohub.Partition) {
	number := strconv.Itoa(p.Number)
	partitionArmedGauge.
		WithLabelValues(sessionID, number, p.DisplayName()).
		Set(boolToFloat(p.Status.IsArmed()))
	for _, s := range statuses {
		partitionStatusGauge.
			WithLabelValues(sessionID, number, string(s)).
			Set(boolToFloat(s == p.Status))
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
