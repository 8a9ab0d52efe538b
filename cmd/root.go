package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tkv-io/tkv/cmd/bench"
	"github.com/tkv-io/tkv/cmd/shell"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "tkv",
		Short: "typed in-process key-value storage engine",
		Long: fmt.Sprintf(`tkv (v%s)

A concurrent, typed key-value storage engine library written in Go,
with per-key atomicity, TTLs and blocking waits on key conditions.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tkv",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tkv v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(shell.ShellCmd)
	RootCmd.AddCommand(bench.BenchCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
