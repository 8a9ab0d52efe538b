package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkv-io/tkv/cmd/util"
	"github.com/tkv-io/tkv/lib/engine"
)

var (
	// BenchCmd represents the in-process benchmark command
	BenchCmd = &cobra.Command{
		Use:     "bench",
		Short:   "Benchmark an in-process engine",
		RunE:    run,
		PreRunE: processBenchConfig,
	}

	benchKeyPrefix  = "__bench"
	benchNumThreads = 10
	benchKeySpread  = 100
	benchSkip       = make([]string, 0)

	benchEngine engine.IEngine
)

func init() {
	cobra.OnInitialize(util.InitConfig)
	util.SetupEngineFlags(BenchCmd)

	// add flags
	key := "skip"
	BenchCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	BenchCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "keys"
	BenchCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	BenchCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processBenchConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	benchKeySpread = viper.GetInt("keys")
	benchNumThreads = viper.GetInt("threads")
	benchSkip = strings.Split(viper.GetString("skip"), ",")

	opts, err := util.GetEngineOptions()
	if err != nil {
		return err
	}
	benchEngine = engine.New(opts)
	return nil
}

func run(_ *cobra.Command, _ []string) error {
	defer benchEngine.Close()

	fmt.Println("Benchmark tool for the tkv engine")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("Threads: %d\n", benchNumThreads)
	fmt.Printf("Keys:    %d\n", benchKeySpread)
	fmt.Println()

	fmt.Println("starting benchmarks...")

	// Create results map
	results := make(map[string]testing.BenchmarkResult)

	setResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("set") {
			return
		}

		// prepare keys
		getKey, iter := getKeys("set")

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) { mustDispatch("set", "delete", k) })
		})

		b.SetParallelism(benchNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				mustDispatch("set", "set", getKey(counter), "test")
				counter++
			}
		})
	})

	results["set"] = setResult
	printResult("set", setResult)

	getResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("get") {
			return
		}

		// prepare keys
		getKey, iter := getKeys("get")
		iter(func(k string) { mustDispatch("get", "set", k, "test") })

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) { mustDispatch("get", "delete", k) })
		})

		b.SetParallelism(benchNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				mustDispatch("get", "get", getKey(counter))
				counter++
			}
		})
	})

	results["get"] = getResult
	printResult("get", getResult)

	incrementResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("increment") {
			return
		}

		getKey, iter := getKeys("increment")

		b.Cleanup(func() {
			iter(func(k string) { mustDispatch("increment", "delete", k) })
		})

		b.SetParallelism(benchNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				mustDispatch("increment", "increment", getKey(counter))
				counter++
			}
		})
	})

	results["increment"] = incrementResult
	printResult("increment", incrementResult)

	queueResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("queue") {
			return
		}

		getKey, iter := getKeys("queue")

		b.Cleanup(func() {
			iter(func(k string) { mustDispatch("queue", "delete", k) })
		})

		b.SetParallelism(benchNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				key := getKey(counter)
				mustDispatch("queue", "list:push:back", key, "job")
				mustDispatch("queue", "list:pop:front", key)
				counter++
			}
		})
	})

	results["queue"] = queueResult
	printResult("queue", queueResult)

	mixedUsageResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("mixed") {
			return
		}

		// prepare keys
		getKey, iter := getKeys("mixed")
		iter(func(k string) { mustDispatch("mixed", "set", k, "test") })

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) { mustDispatch("mixed", "delete", k) })
		})

		b.SetParallelism(benchNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				key := getKey(counter)
				switch counter % 4 {
				case 0: // set
					mustDispatch("mixed", "set", key, "test")
				case 1: // get
					mustDispatch("mixed", "get", key)
				case 2: // delete
					mustDispatch("mixed", "delete", key)
				case 3: // exists
					mustDispatch("mixed", "exists", key)
				}
				counter++
			}
		})
	})

	results["mixed"] = mixedUsageResult
	printResult("mixed", mixedUsageResult)

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range benchSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// mustDispatch executes one operation, logging instead of failing so a
// benchmark run never aborts mid-way.
func mustDispatch(test, op, key string, args ...string) {
	req := &engine.Request{Op: op, Key: key}
	for _, a := range args {
		req.Args = append(req.Args, []byte(a))
	}
	if _, err := benchEngine.Dispatch(context.Background(), req); err != nil {
		log.Printf("(%s) - error performing %s: %v\n", test, op, err)
	}
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, benchKeySpread)
	for i := 0; i < benchKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", benchKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%benchKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Threads", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			strconv.Itoa(benchNumThreads),
			strconv.Itoa(benchKeySpread),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %v", err)
		}
	}

	return nil
}
