package runtime

import (
	"fmt"
	"io"

	"github.com/mityu/bf/runtime/executor"
	"github.com/mityu/bf/runtime/lexer"
	"github.com/mityu/bf/runtime/parser"
	"github.com/mityu/bf/runtime/validation"
)

// ExecutionOptions configures how programs are run
type ExecutionOptions struct {
	DumpTree  bool                    // Print the instruction tree instead of running
	Debug     executor.DebugLevel     // Evaluator debug tracing
	Telemetry executor.TelemetryLevel // Evaluator telemetry collection
	Stdin     io.Reader               // Source of GetChar lines
	Stdout    io.Writer               // Sink for PrintChar bytes and tree dumps
	Stderr    io.Writer               // Debug trace output
}

// Execute runs a brainfuck program from source through the full
// pipeline: validate, lex, parse, evaluate.
func Execute(source io.Reader, opts ExecutionOptions) (*executor.ExecutionResult, error) {
	src, err := io.ReadAll(source)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return ExecuteSource(src, opts)
}

// ExecuteSource runs a program already held in memory. With DumpTree
// set it prints the instruction tree to Stdout instead of evaluating
// and returns a nil result.
func ExecuteSource(src []byte, opts ExecutionOptions) (*executor.ExecutionResult, error) {
	program, err := Compile(src)
	if err != nil {
		return nil, err
	}

	if opts.DumpTree {
		out := opts.Stdout
		if out == nil {
			out = io.Discard
		}
		if err := parser.WriteTree(out, program); err != nil {
			return nil, fmt.Errorf("write instruction tree: %w", err)
		}
		return nil, nil
	}

	return ExecuteProgram(program, opts)
}

// Compile runs the front half of the pipeline and returns the
// instruction tree. Validation gates the rest: once it passes, lexing
// and parsing cannot fail.
func Compile(src []byte) ([]parser.Instruction, error) {
	if err := validation.ValidateLoops(src); err != nil {
		return nil, err
	}
	return parser.Parse(lexer.Lex(src).Tokens).Instructions, nil
}

// ExecuteProgram evaluates a compiled instruction tree.
func ExecuteProgram(program []parser.Instruction, opts ExecutionOptions) (*executor.ExecutionResult, error) {
	result, err := executor.Execute(program, executor.Config{
		Input:     opts.Stdin,
		Output:    opts.Stdout,
		Debug:     opts.Debug,
		Telemetry: opts.Telemetry,
	})
	if err != nil {
		return nil, err
	}

	if opts.Debug != executor.DebugOff && opts.Stderr != nil {
		for _, event := range result.DebugEvents {
			_, _ = fmt.Fprintf(opts.Stderr, "[DEBUG] %s %s\n", event.Event, event.Context)
		}
	}

	return result, nil
}
