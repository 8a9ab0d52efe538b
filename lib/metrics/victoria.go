package metrics

import (
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

type victoriaSink struct{}

// NewVictoriaSink returns a sink backed by the process-global
// VictoriaMetrics registry. An embedding server can expose the collected
// series via metrics.WritePrometheus.
func NewVictoriaSink() Sink {
	return victoriaSink{}
}

func (victoriaSink) RecordOperation(op string, outcome Outcome, elapsed time.Duration) {
	metrics.GetOrCreateCounter(
		fmt.Sprintf(`tkv_operations_total{op=%q,outcome=%q}`, op, string(outcome)),
	).Inc()
	metrics.GetOrCreateHistogram(
		fmt.Sprintf(`tkv_operation_duration_seconds{op=%q}`, op),
	).Update(elapsed.Seconds())
}

func (victoriaSink) RecordStoreStats(shardCount, keyCount int) {
	metrics.GetOrCreateCounter(`tkv_store_shards`).Set(uint64(shardCount))
	metrics.GetOrCreateCounter(`tkv_store_keys`).Set(uint64(keyCount))
}
