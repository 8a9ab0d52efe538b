package shell

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tkv-io/tkv/cmd/util"
	"github.com/tkv-io/tkv/lib/engine"
	"github.com/tkv-io/tkv/lib/value"
	"github.com/tkv-io/tkv/lib/watch"
)

var (
	// ShellCmd represents the interactive shell command
	ShellCmd = &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell on an in-process engine",
		Long: util.WrapString(
			"Starts a read-eval-print loop over a fresh in-process engine. " +
				"Each line is one operation: OPERATION KEY [ARGS...]. " +
				"Prefix an argument list with @kind (e.g. @int, @string) to tag " +
				"the value variant, and use 'wait:for KEY CONDITION [ARG] TIMEOUT_MS' " +
				"for blocking waits. Type 'help' for the operation list, 'exit' to quit."),
		RunE: runShell,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)
	util.SetupEngineFlags(ShellCmd)
}

func runShell(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	opts, err := util.GetEngineOptions()
	if err != nil {
		return err
	}

	e := engine.New(opts)
	defer e.Close()

	fmt.Println("tkv shell - type 'help' for commands, 'exit' to quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("tkv> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "exit", "quit":
			return nil
		case "help":
			printHelp()
			continue
		}

		if err := evalLine(e, line); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
	return scanner.Err()
}

// evalLine parses and dispatches a single shell line.
func evalLine(e engine.IEngine, line string) error {
	fields := strings.Fields(line)
	op := fields[0]

	req := &engine.Request{Op: op}
	rest := fields[1:]

	if len(rest) > 0 {
		req.Key = rest[0]
		rest = rest[1:]
	}

	// an optional @kind tag precedes the value arguments
	if len(rest) > 0 && strings.HasPrefix(rest[0], "@") {
		kind, ok := value.KindFromString(strings.TrimPrefix(rest[0], "@"))
		if !ok {
			return fmt.Errorf("unknown kind %q", rest[0])
		}
		req.Kind = &kind
		rest = rest[1:]
	}

	// the wait operation takes its timeout (in ms) as the last argument
	if op == engine.OpWait.Name() {
		if len(rest) == 0 {
			return fmt.Errorf("wait needs a condition and a timeout")
		}
		ms, err := time.ParseDuration(rest[len(rest)-1] + "ms")
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		req.Timeout = ms
		rest = rest[:len(rest)-1]
	}

	for _, arg := range rest {
		req.Args = append(req.Args, []byte(arg))
	}

	resp, err := e.Dispatch(context.Background(), req)
	if err != nil {
		return err
	}

	switch {
	case op == engine.OpWait.Name() && resp.Outcome != watch.OutcomeSatisfied:
		fmt.Println(resp.Outcome)
	case resp.Payload == nil:
		fmt.Println("ok")
	default:
		fmt.Println(resp.Payload)
	}
	return nil
}

func printHelp() {
	fmt.Println("usage: OPERATION KEY [@kind] [ARGS...]")
	fmt.Println()
	fmt.Println("examples:")
	fmt.Println("  set greeting @string hello")
	fmt.Println("  get greeting")
	fmt.Println("  increment counter")
	fmt.Println("  list:push:back jobs a b c")
	fmt.Println("  map:set user:1 name alice")
	fmt.Println("  expire greeting 5000")
	fmt.Println("  wait greeting absent 10000")
	fmt.Println()
	fmt.Println("kinds: @bytes @bool @int @float @string @list @set @map")
}
