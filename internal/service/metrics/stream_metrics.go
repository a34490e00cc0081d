package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	StreamClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "crediscan",
			Subsystem: "stream",
			Name:      "clients",
			Help:      "Connected WebSocket subscribers",
		},
	)

	StreamMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crediscan",
			Subsystem: "stream",
			Name:      "messages_total",
			Help:      "Analyses pushed to subscribers by outcome",
		},
		[]string{"outcome"},
	)
)

// Register adds the stream collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(StreamClients, StreamMessages)
	})
}
