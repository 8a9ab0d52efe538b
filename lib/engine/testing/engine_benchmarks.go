package testing

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/tkv-io/tkv/lib/engine"
)

// RunEngineBenchmarks runs all benchmarks for an IEngine implementation.
func RunEngineBenchmarks(b *testing.B, name string, factory EngineFactory) {

	b.Run("Set", func(b *testing.B) {
		benchmarkSet(b, factory())
	})

	b.Run("SetExisting", func(b *testing.B) {
		benchmarkSetExisting(b, factory())
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory())
	})

	b.Run("Increment", func(b *testing.B) {
		benchmarkIncrement(b, factory())
	})

	b.Run("ListPushPop", func(b *testing.B) {
		benchmarkListPushPop(b, factory())
	})

	b.Run("MapSet", func(b *testing.B) {
		benchmarkMapSet(b, factory())
	})

	b.Run("MixedUsage", func(b *testing.B) {
		benchmarkMixedUsage(b, factory())
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func benchDispatch(b *testing.B, e engine.IEngine, req *engine.Request) {
	if _, err := e.Dispatch(context.Background(), req); err != nil {
		b.Fatalf("dispatch %s failed: %v", req.Op, err)
	}
}

func benchmarkSet(b *testing.B, e engine.IEngine) {
	b.Cleanup(func() { e.Close() })

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			benchDispatch(b, e, &engine.Request{
				Op:   "set",
				Key:  fmt.Sprintf("test-key-%d", counter),
				Args: [][]byte{[]byte(fmt.Sprintf("test-value-%d", counter))},
			})
			counter++
		}
	})
}

func benchmarkSetExisting(b *testing.B, e engine.IEngine) {
	b.Cleanup(func() { e.Close() })

	const numKeys = 1024
	for i := 0; i < numKeys; i++ {
		benchDispatch(b, e, &engine.Request{
			Op:   "set",
			Key:  fmt.Sprintf("test-key-%d", i),
			Args: [][]byte{[]byte("initial")},
		})
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			benchDispatch(b, e, &engine.Request{
				Op:   "set",
				Key:  fmt.Sprintf("test-key-%d", counter%numKeys),
				Args: [][]byte{[]byte("updated")},
			})
			counter++
		}
	})
}

func benchmarkGet(b *testing.B, e engine.IEngine) {
	b.Cleanup(func() { e.Close() })

	const numKeys = 1024
	for i := 0; i < numKeys; i++ {
		benchDispatch(b, e, &engine.Request{
			Op:   "set",
			Key:  fmt.Sprintf("test-key-%d", i),
			Args: [][]byte{[]byte(fmt.Sprintf("test-value-%d", i))},
		})
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			benchDispatch(b, e, &engine.Request{
				Op:  "get",
				Key: fmt.Sprintf("test-key-%d", counter%numKeys),
			})
			counter++
		}
	})
}

func benchmarkIncrement(b *testing.B, e engine.IEngine) {
	b.Cleanup(func() { e.Close() })

	// all goroutines hammer a small keyspace to measure contention
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			benchDispatch(b, e, &engine.Request{
				Op:  "increment",
				Key: fmt.Sprintf("counter-%d", counter%8),
			})
			counter++
		}
	})
}

func benchmarkListPushPop(b *testing.B, e engine.IEngine) {
	b.Cleanup(func() { e.Close() })

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("queue-%d", counter%16)
			benchDispatch(b, e, &engine.Request{
				Op: "list:push:back", Key: key, Args: [][]byte{[]byte("job")},
			})
			benchDispatch(b, e, &engine.Request{
				Op: "list:pop:front", Key: key,
			})
			counter++
		}
	})
}

func benchmarkMapSet(b *testing.B, e engine.IEngine) {
	b.Cleanup(func() { e.Close() })

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			benchDispatch(b, e, &engine.Request{
				Op:   "map:set",
				Key:  fmt.Sprintf("hash-%d", counter%64),
				Args: [][]byte{[]byte(fmt.Sprintf("field-%d", counter%32)), []byte("v")},
			})
			counter++
		}
	})
}

func benchmarkMixedUsage(b *testing.B, e engine.IEngine) {
	b.Cleanup(func() { e.Close() })

	const numKeys = 1024
	for i := 0; i < numKeys; i++ {
		benchDispatch(b, e, &engine.Request{
			Op:   "set",
			Key:  fmt.Sprintf("test-key-%d", i),
			Args: [][]byte{[]byte("initial")},
		})
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		rng := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", rng.Intn(numKeys))
			switch rng.Intn(10) {
			case 0, 1, 2, 3, 4, 5: // 60% reads
				benchDispatch(b, e, &engine.Request{Op: "get", Key: key})
			case 6, 7: // 20% writes
				benchDispatch(b, e, &engine.Request{
					Op: "set", Key: key, Args: [][]byte{[]byte("updated")},
				})
			case 8: // 10% existence checks
				benchDispatch(b, e, &engine.Request{Op: "exists", Key: key})
			default: // 10% deletes (the key is recreated by later writes)
				benchDispatch(b, e, &engine.Request{Op: "delete", Key: key})
			}
		}
	})
}
