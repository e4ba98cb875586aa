package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/mityu/bf/runtime"
	"github.com/mityu/bf/runtime/executor"
	"github.com/mityu/bf/runtime/parser"
	"github.com/mityu/bf/runtime/watch"
)

// Exit code constants
const (
	exitSuccess = 0
	exitFailure = 1
)

const usageText = `Usage: ./bf <argument>
    argument:
        <source-file>    Run brainfuck program.
        -h|--help        Show this help

    options:
        --ast            Print the instruction tree instead of running.
        --watch          Rerun the program whenever the file changes.
        --debug          Trace evaluation steps to stderr.
        --telemetry      Print a run summary to stderr.
`

// errReported marks failures already printed in their required format,
// so no generic Error: line is added on top.
var errReported = errors.New("error already reported")

// session carries one invocation's modes and streams
type session struct {
	dumpTree  bool
	watchMode bool
	debug     executor.DebugLevel
	telemetry executor.TelemetryLevel
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		dumpTree  bool
		watchMode bool
		debug     bool
		telemetry bool
	)

	rootCmd := &cobra.Command{
		Use:           "bf <source-file>",
		Short:         "Run brainfuck programs",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Anything but exactly one source file shows usage and
			// succeeds, matching the historical command surface.
			if len(args) != 1 {
				fmt.Fprint(stdout, usageText)
				return nil
			}
			if dumpTree && watchMode {
				return errors.New("--ast cannot be combined with --watch")
			}

			s := session{
				dumpTree:  dumpTree,
				watchMode: watchMode,
				stdin:     stdin,
				stdout:    stdout,
				stderr:    stderr,
			}
			if debug {
				s.debug = executor.DebugDetailed
			}
			if telemetry {
				s.telemetry = executor.TelemetryTiming
			}
			return runFile(args[0], s)
		},
	}

	rootCmd.Flags().BoolVar(&dumpTree, "ast", false, "Print the instruction tree instead of running")
	rootCmd.Flags().BoolVar(&watchMode, "watch", false, "Rerun the program whenever the file changes")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Trace evaluation steps to stderr")
	rootCmd.Flags().BoolVar(&telemetry, "telemetry", false, "Print a run summary to stderr")

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetHelpFunc(func(*cobra.Command, []string) {
		fmt.Fprint(stdout, usageText)
	})

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitFailure
	}
	return exitSuccess
}

func runFile(file string, s session) error {
	if s.watchMode {
		return watchFile(file, s)
	}

	src, err := os.ReadFile(file)
	if err != nil {
		reportReadFailure(s.stdout, file, err)
		return errReported
	}

	result, err := runtime.ExecuteSource(src, runtime.ExecutionOptions{
		DumpTree:  s.dumpTree,
		Debug:     s.debug,
		Telemetry: s.telemetry,
		Stdin:     s.stdin,
		Stdout:    s.stdout,
		Stderr:    s.stderr,
	})
	if err != nil {
		return err
	}

	printTelemetry(s.stderr, result)
	return nil
}

// watchFile reruns the file on every change until interrupted
func watchFile(file string, s session) error {
	w, err := watch.New(file, watch.Config{
		Debug:     s.debug,
		Telemetry: s.telemetry,
		Stdin:     s.stdin,
		Stdout:    s.stdout,
		Stderr:    s.stderr,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	return w.Run(ctx)
}

// reportReadFailure prints the two diagnostic lines for an unreadable
// source file, plus a suggestion when a similarly named file exists
// next to it. The diagnostics go to stdout, matching the historical
// command surface.
func reportReadFailure(w io.Writer, file string, err error) {
	fmt.Fprintf(w, "Error occurred while reading a file: %s\n", file)
	fmt.Fprintf(w, "%v\n", err)

	if closest := closestSourceFile(file); closest != "" {
		fmt.Fprintf(w, "Did you mean '%s'?\n", closest)
	}
}

// closestSourceFile finds the closest file name match in the same
// directory using fuzzy matching
func closestSourceFile(file string) string {
	entries, err := os.ReadDir(filepath.Dir(file))
	if err != nil {
		return ""
	}

	var candidates []string
	for _, entry := range entries {
		if !entry.IsDir() {
			candidates = append(candidates, entry.Name())
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	// RankFindFold reports matches in candidate order; sort so the
	// lowest edit distance wins.
	ranks := fuzzy.RankFindFold(filepath.Base(file), candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Slice(ranks, func(i, j int) bool {
		return ranks[i].Distance < ranks[j].Distance
	})
	return filepath.Join(filepath.Dir(file), ranks[0].Target)
}

// printTelemetry writes the run summary lines
func printTelemetry(w io.Writer, result *executor.ExecutionResult) {
	if result == nil || result.Telemetry == nil {
		return
	}

	tel := result.Telemetry
	fmt.Fprintf(w, "[telemetry] duration: %v\n", result.Duration)
	fmt.Fprintf(w, "[telemetry] steps: %d\n", result.StepsRun)
	fmt.Fprintf(w, "[telemetry] loop iterations: %d\n", tel.LoopIterations)
	fmt.Fprintf(w, "[telemetry] input reads: %d\n", tel.InputReads)
	fmt.Fprintf(w, "[telemetry] output writes: %d\n", tel.OutputWrites)
	fmt.Fprintf(w, "[telemetry] io wait: %v\n", tel.IOWait)
	fmt.Fprintf(w, "[telemetry] tape length: %d\n", tel.FinalTapeLen)

	kinds := []parser.Kind{
		parser.Increment, parser.Decrement,
		parser.ShiftLeft, parser.ShiftRight,
		parser.PrintChar, parser.GetChar,
	}
	for _, kind := range kinds {
		if count := tel.OpCounts[kind]; count > 0 {
			fmt.Fprintf(w, "[telemetry] %s: %d\n", kind, count)
		}
	}
}
