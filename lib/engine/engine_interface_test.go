package engine_test

import (
	"testing"

	"github.com/tkv-io/tkv/lib/engine"
	enginetesting "github.com/tkv-io/tkv/lib/engine/testing"
)

func Test(t *testing.T) {
	enginetesting.RunEngineTests(t, "Engine", func() engine.IEngine {
		return engine.New(nil)
	})
}

func Benchmark(b *testing.B) {
	enginetesting.RunEngineBenchmarks(b, "Engine", func() engine.IEngine {
		return engine.New(nil)
	})
}
