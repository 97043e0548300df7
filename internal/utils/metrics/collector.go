// internal/utils/metrics/collector.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "solana_txkit"

// Collector держит метрики на собственном реестре, чтобы несколько экземпляров
// (например, в тестах) не конфликтовали в глобальном.
// Все методы допускают nil-получатель.
type Collector struct {
	registry    *prometheus.Registry
	rpcRequests *prometheus.CounterVec
	rpcLatency  *prometheus.HistogramVec
	outcomes    *prometheus.CounterVec
}

// NewCollector создает коллектор и регистрирует метрики.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rpc_requests_total",
				Help:      "Total number of RPC requests by method and result",
			},
			[]string{"method", "result"},
		),
		rpcLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rpc_latency_seconds",
				Help:      "RPC request latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "confirmation_outcomes_total",
				Help:      "Classified confirmation outcomes",
			},
			[]string{"outcome"},
		),
	}
	c.registry.MustRegister(c.rpcRequests, c.rpcLatency, c.outcomes)
	return c
}

// RecordRPC записывает один вызов RPC.
func (c *Collector) RecordRPC(method string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	c.rpcRequests.WithLabelValues(method, result).Inc()
	c.rpcLatency.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordOutcome записывает результат классификации статуса.
func (c *Collector) RecordOutcome(outcome string) {
	if c == nil {
		return
	}
	c.outcomes.WithLabelValues(outcome).Inc()
}

// Registry возвращает реестр для экспорта.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// WriteTextfile пишет метрики в формате textfile-коллектора node_exporter.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.registry)
}
