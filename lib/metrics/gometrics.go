package metrics

import (
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

type registrySink struct {
	registry gometrics.Registry
}

// NewRegistrySink returns a sink recording into a go-metrics registry:
// a timer per operation, an error meter per operation, and gauges for
// the store occupancy. A nil registry uses gometrics.DefaultRegistry.
func NewRegistrySink(registry gometrics.Registry) Sink {
	if registry == nil {
		registry = gometrics.DefaultRegistry
	}
	return &registrySink{registry: registry}
}

func (s *registrySink) RecordOperation(op string, outcome Outcome, elapsed time.Duration) {
	gometrics.GetOrRegisterTimer("engine.ops."+op, s.registry).Update(elapsed)
	if outcome != OutcomeOK {
		gometrics.GetOrRegisterMeter("engine.ops."+op+"."+string(outcome), s.registry).Mark(1)
	}
}

func (s *registrySink) RecordStoreStats(shardCount, keyCount int) {
	gometrics.GetOrRegisterGauge("engine.store.shards", s.registry).Update(int64(shardCount))
	gometrics.GetOrRegisterGauge("engine.store.keys", s.registry).Update(int64(keyCount))
}
