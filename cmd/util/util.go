package util

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkv-io/tkv/lib/engine"
	"github.com/tkv-io/tkv/lib/logging"
	"github.com/tkv-io/tkv/lib/metrics"
	"github.com/tkv-io/tkv/lib/store"
)

const (
	// Wrap is the column flag help text is re-flowed at
	Wrap int = 50
)

// WrapString re-flows text to lines of at most Wrap characters,
// breaking on whitespace only. Words longer than Wrap get a line of
// their own.
func WrapString(text string) string {
	var b strings.Builder
	width := 0

	for _, word := range strings.Fields(text) {
		switch {
		case width == 0:
		case width+1+len(word) > Wrap:
			b.WriteByte('\n')
			width = 0
		default:
			b.WriteByte(' ')
			width++
		}
		b.WriteString(word)
		width += len(word)
	}

	return b.String()
}

// SetupEngineFlags adds the common engine configuration flags to a command
func SetupEngineFlags(cmd *cobra.Command) {
	key := "shards"
	cmd.PersistentFlags().Int(key, 0, WrapString("Number of store shards (0 = one per CPU, rounded up to a power of two)"))

	key = "metrics"
	cmd.PersistentFlags().String(key, "off", WrapString("Metrics sink to use (off, victoria, registry)"))

	key = "metrics-async"
	cmd.PersistentFlags().Bool(key, false, WrapString("Decouple metrics recording from the operation path via a background pipeline"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "info", WrapString("Log level (debug, info, warning, error)"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("tkv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetEngineOptions builds the engine configuration from viper
func GetEngineOptions() (*engine.Options, error) {
	level, err := logging.ParseLogLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, err
	}
	logging.SetLevelAll(level)

	var sink metrics.Sink
	switch viper.GetString("metrics") {
	case "", "off":
		sink = metrics.NewNoopSink()
	case "victoria":
		sink = metrics.NewVictoriaSink()
	case "registry":
		sink = metrics.NewRegistrySink(gometrics.DefaultRegistry)
	default:
		return nil, fmt.Errorf("invalid metrics sink %s", viper.GetString("metrics"))
	}
	if viper.GetBool("metrics-async") {
		sink = metrics.NewAsyncSink(sink)
	}

	return &engine.Options{
		Store: &store.Options{NumShards: viper.GetInt("shards")},
		Sink:  sink,
	}, nil
}
