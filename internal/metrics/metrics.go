// Registers:
//
//	#itchflow_messages_total{type}
//	#itchflow_unknown_bytes_total
//	#itchflow_executions_total
//	#itchflow_snapshots_total
//	#go_* and process_* system metrics
//
// Exposes them over the Prometheus HTTP handler when Serve is called.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once          sync.Once
	messagesTotal *prometheus.CounterVec
	unknownBytes  prometheus.Counter
	executions    prometheus.Counter
	snapshots     prometheus.Counter
)

func Init() {
	once.Do(func() {
		messagesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "itchflow_messages_total",
				Help: "Number of feed messages decoded, by type code",
			},
			[]string{"type"},
		)

		unknownBytes = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itchflow_unknown_bytes_total",
			Help: "Number of bytes skipped while resyncing past unknown type codes",
		})

		executions = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itchflow_executions_total",
			Help: "Number of execution records appended to the ledger",
		})

		snapshots = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itchflow_snapshots_total",
			Help: "Number of snapshot notifications delivered to sinks",
		})

		_ = prometheus.Register(messagesTotal)
		_ = prometheus.Register(unknownBytes)
		_ = prometheus.Register(executions)
		_ = prometheus.Register(snapshots)
		_ = prometheus.Register(collectors.NewGoCollector())
		_ = prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Serve exposes /metrics on the given address in a background goroutine.
func Serve(addr string) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			panic("metrics server failed: " + err.Error())
		}
	}()
}

// IncrementMessage counts one decoded message of the given type code.
func IncrementMessage(code byte) {
	if messagesTotal != nil {
		messagesTotal.WithLabelValues(string(code)).Inc()
	}
}

// IncrementUnknownByte counts one byte skipped during resync.
func IncrementUnknownByte() {
	if unknownBytes != nil {
		unknownBytes.Inc()
	}
}

// IncrementExecution counts one ledger append.
func IncrementExecution() {
	if executions != nil {
		executions.Inc()
	}
}

// IncrementSnapshot counts one sink notification.
func IncrementSnapshot() {
	if snapshots != nil {
		snapshots.Inc()
	}
}
