package executor

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mityu/bf/core/invariant"
	"github.com/mityu/bf/runtime/parser"
)

// ErrInputExhausted reports a GetChar with no input line left. It is
// fatal to the run: the walk stops where it happened and the error
// propagates to the caller.
var ErrInputExhausted = errors.New("input exhausted")

// Config configures the evaluator
type Config struct {
	Input     io.Reader      // Source of GetChar lines (nil reads as empty)
	Output    io.Writer      // Sink for PrintChar bytes (nil discards)
	Debug     DebugLevel     // Debug tracing (development only)
	Telemetry TelemetryLevel // Telemetry collection (production-safe)
}

// DebugLevel controls debug tracing (development only)
type DebugLevel int

const (
	DebugOff      DebugLevel = iota // No debug info (default)
	DebugSteps                      // One event per executed leaf operation
	DebugDetailed                   // Leaf events + loop condition tracing
)

// TelemetryLevel controls telemetry collection (production-safe)
type TelemetryLevel int

const (
	TelemetryOff    TelemetryLevel = iota // Zero overhead (default)
	TelemetryBasic                        // Operation counts only
	TelemetryTiming                       // Counts + time blocked on I/O
)

// ExecutionResult holds the result of one program evaluation
type ExecutionResult struct {
	Duration    time.Duration       // Total evaluation time
	StepsRun    int                 // Leaf operations executed
	Tape        *Tape               // Final tape state
	Telemetry   *ExecutionTelemetry // Additional metrics (nil if TelemetryOff)
	DebugEvents []DebugEvent        // Debug events (nil if DebugOff)
}

// ExecutionTelemetry holds additional evaluation metrics (optional, production-safe)
type ExecutionTelemetry struct {
	OpCounts       map[parser.Kind]int // Executed leaf operations by kind
	LoopIterations int                 // Completed Repeat body passes
	InputReads     int                 // GetChar lines consumed
	OutputWrites   int                 // PrintChar bytes emitted
	FinalTapeLen   int                 // Tape length when the walk ended
	IOWait         time.Duration       // Time blocked on I/O (TelemetryTiming only)
}

// DebugEvent represents a debug trace event
type DebugEvent struct {
	Timestamp time.Time
	Event     string // "enter_walk", "op", "loop_enter", "loop_pass", "loop_exit", "exit_walk"
	Context   string // Additional context (kind, cursor, cell)
}

// evaluator holds the walk state
type evaluator struct {
	config Config
	tape   *Tape
	input  *bufio.Reader
	output io.Writer

	stepsRun int

	// Observability
	debugEvents []DebugEvent
	telemetry   *ExecutionTelemetry
	startTime   time.Time
}

// Execute walks the instruction tree depth-first against a fresh tape
// with the cursor on its single zero cell. The only failure modes are
// I/O: GetChar on an exhausted input stream, and write errors on the
// output sink. Structural problems never reach the evaluator (the
// validator gates them before lexing) and an unknown node kind is an
// invariant violation, not an error. An empty program is legal and
// evaluates with zero side effects.
func Execute(program []parser.Instruction, config Config) (*ExecutionResult, error) {
	if config.Input == nil {
		config.Input = bytes.NewReader(nil)
	}
	if config.Output == nil {
		config.Output = io.Discard
	}

	e := &evaluator{
		config:    config,
		tape:      NewTape(),
		input:     bufio.NewReader(config.Input),
		output:    config.Output,
		startTime: time.Now(),
	}

	// Initialize telemetry if enabled
	if config.Telemetry != TelemetryOff {
		e.telemetry = &ExecutionTelemetry{
			OpCounts: make(map[parser.Kind]int),
		}
	}

	if config.Debug >= DebugSteps {
		e.recordDebugEvent("enter_walk", fmt.Sprintf("nodes=%d", len(program)))
	}

	err := e.walk(program)

	duration := time.Since(e.startTime)
	if e.telemetry != nil {
		e.telemetry.FinalTapeLen = e.tape.Len()
	}
	if config.Debug >= DebugSteps {
		e.recordDebugEvent("exit_walk", fmt.Sprintf("steps_run=%d, duration=%v", e.stepsRun, duration))
	}

	if err != nil {
		return nil, err
	}

	// OUTPUT CONTRACT (postconditions)
	invariant.InRange(e.tape.Cursor(), 0, e.tape.Len()-1, "cursor")
	invariant.Postcondition(e.stepsRun >= 0, "steps run must be non-negative")

	return &ExecutionResult{
		Duration:    duration,
		StepsRun:    e.stepsRun,
		Tape:        e.tape,
		Telemetry:   e.telemetry,
		DebugEvents: e.debugEvents,
	}, nil
}

// walk executes one instruction sequence in order
func (e *evaluator) walk(instructions []parser.Instruction) error {
	for _, inst := range instructions {
		if inst.Kind == parser.Repeat {
			if err := e.repeat(inst.Body); err != nil {
				return err
			}
			continue
		}
		if err := e.step(inst.Kind); err != nil {
			return err
		}
	}
	return nil
}

// step executes one leaf operation at the cursor
func (e *evaluator) step(kind parser.Kind) error {
	switch kind {
	case parser.Increment:
		e.tape.Increment()

	case parser.Decrement:
		e.tape.Decrement()

	case parser.ShiftLeft:
		e.tape.ShiftLeft()

	case parser.ShiftRight:
		e.tape.ShiftRight()

	case parser.PrintChar:
		if err := e.printChar(); err != nil {
			return err
		}

	case parser.GetChar:
		if err := e.getChar(); err != nil {
			return err
		}

	default:
		invariant.Invariant(false, "unknown instruction kind: %v", kind)
	}

	e.stepsRun++
	if e.telemetry != nil {
		e.telemetry.OpCounts[kind]++
	}
	if e.config.Debug >= DebugSteps {
		e.recordDebugEvent("op", fmt.Sprintf("%s cursor=%d cell=%d", kind, e.tape.Cursor(), e.tape.Cell()))
	}

	return nil
}

// repeat runs body while the cell at the cursor is nonzero, re-checking
// the cell before entering and after every full pass. Recursion depth
// equals the nesting depth of executing loops; pathological nesting
// exhausts the call stack, an accepted resource failure.
func (e *evaluator) repeat(body []parser.Instruction) error {
	if e.config.Debug >= DebugDetailed {
		e.recordDebugEvent("loop_enter", fmt.Sprintf("cursor=%d cell=%d", e.tape.Cursor(), e.tape.Cell()))
	}

	for e.tape.Cell() != 0 {
		if err := e.walk(body); err != nil {
			return err
		}
		if e.telemetry != nil {
			e.telemetry.LoopIterations++
		}
		if e.config.Debug >= DebugDetailed {
			e.recordDebugEvent("loop_pass", fmt.Sprintf("cursor=%d cell=%d", e.tape.Cursor(), e.tape.Cell()))
		}
	}

	if e.config.Debug >= DebugDetailed {
		e.recordDebugEvent("loop_exit", fmt.Sprintf("cursor=%d", e.tape.Cursor()))
	}

	return nil
}

// printChar emits the cell at the cursor as one raw byte. The value is
// not validated as any text encoding.
func (e *evaluator) printChar() error {
	var start time.Time
	if e.config.Telemetry == TelemetryTiming {
		start = time.Now()
	}

	if _, err := e.output.Write([]byte{e.tape.Cell()}); err != nil {
		return fmt.Errorf("write output byte: %w", err)
	}

	if e.telemetry != nil {
		e.telemetry.OutputWrites++
		if e.config.Telemetry == TelemetryTiming {
			e.telemetry.IOWait += time.Since(start)
		}
	}
	return nil
}

// getChar reads one full line from the input stream and stores only its
// first byte at the cursor; the rest of the line is dropped, not
// buffered for the next read. A lone newline therefore stores 10. The
// line-oriented read is kept on purpose: switching to single-byte reads
// would change what programs observe on multi-character input lines.
func (e *evaluator) getChar() error {
	var start time.Time
	if e.config.Telemetry == TelemetryTiming {
		start = time.Now()
	}

	line, err := e.input.ReadString('\n')
	if len(line) == 0 {
		// A final line without a trailing newline still counts; only a
		// truly empty read is exhaustion.
		if err == nil || errors.Is(err, io.EOF) {
			return fmt.Errorf("read input line: %w", ErrInputExhausted)
		}
		return fmt.Errorf("read input line: %w", err)
	}

	e.tape.SetCell(line[0])

	if e.telemetry != nil {
		e.telemetry.InputReads++
		if e.config.Telemetry == TelemetryTiming {
			e.telemetry.IOWait += time.Since(start)
		}
	}
	return nil
}

// recordDebugEvent records a debug event (only if debug enabled)
func (e *evaluator) recordDebugEvent(event string, context string) {
	if e.config.Debug == DebugOff {
		return
	}

	e.debugEvents = append(e.debugEvents, DebugEvent{
		Timestamp: time.Now(),
		Event:     event,
		Context:   context,
	})
}
