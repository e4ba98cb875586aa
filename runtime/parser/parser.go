package parser

import (
	"fmt"
	"time"

	"github.com/mityu/bf/core/invariant"
	"github.com/mityu/bf/runtime/lexer"
)

// Program is the structurer's output: the top-level instruction
// sequence plus optional observability data.
type Program struct {
	Instructions []Instruction
	Telemetry    *Telemetry   // nil unless telemetry was requested
	DebugEvents  []DebugEvent // nil unless debug was requested
}

// Parse structures a flat tag sequence into the instruction tree in a
// single left-to-right pass over an explicit stack of in-progress
// sequences: leaf tags append to the current sequence, LoopStart
// suspends it on the stack and opens a new one, LoopEnd pops the outer
// sequence and appends the finished body as a Repeat node.
//
// Balance is a precondition: the loop validator must have accepted the
// source these tokens came from. The stack discipline is asserted, not
// re-validated, so feeding unvalidated tokens is a caller bug and
// panics.
func Parse(tokens []lexer.Token, opts ...Opt) *Program {
	config := &Config{}
	for _, opt := range opts {
		opt(config)
	}

	var telemetry *Telemetry
	var startBuild time.Time

	// Initialize telemetry if enabled
	if config.telemetry >= TelemetryBasic {
		telemetry = &Telemetry{}
		if config.telemetry >= TelemetryTiming {
			startBuild = time.Now()
		}
	}

	b := &builder{config: config}

	// Only allocate debug structures when needed
	if config.debug > DebugOff {
		b.debugEvents = make([]DebugEvent, 0, len(tokens))
	}

	instructions := b.build(tokens)

	if telemetry != nil {
		telemetry.TokenCount = len(tokens)
		telemetry.InstructionCount = b.leafCount
		telemetry.LoopCount = b.loopCount
		telemetry.MaxDepth = b.maxDepth
		if config.telemetry >= TelemetryTiming {
			telemetry.BuildTime = time.Since(startBuild)
		}
	}

	return &Program{
		Instructions: instructions,
		Telemetry:    telemetry,
		DebugEvents:  b.debugEvents,
	}
}

// ParseString lexes and structures input in one call, a convenience for
// tests. The input must be loop-balanced; run validation.ValidateLoops
// first for anything untrusted.
func ParseString(input string, opts ...Opt) *Program {
	return Parse(lexer.Lex([]byte(input)).Tokens, opts...)
}

// builder is the internal structurer state
type builder struct {
	config      *Config
	debugEvents []DebugEvent

	// stack holds the suspended outer sequences while a loop body is
	// being built.
	stack [][]Instruction

	depth     int
	maxDepth  int
	leafCount int
	loopCount int
}

func (b *builder) build(tokens []lexer.Token) []Instruction {
	var current []Instruction

	for pos, token := range tokens {
		switch token.Op {
		case lexer.LoopStart:
			b.stack = append(b.stack, current)
			current = nil
			b.depth++
			if b.depth > b.maxDepth {
				b.maxDepth = b.depth
			}
			b.recordDebugEvent("open_loop", pos, fmt.Sprintf("depth %d", b.depth))

		case lexer.LoopEnd:
			// The validator guarantees every ']' has an open loop.
			invariant.Precondition(len(b.stack) > 0,
				"sequence stack must not be empty on LoopEnd at offset %d", token.Position.Offset)

			outer := b.stack[len(b.stack)-1]
			b.stack = b.stack[:len(b.stack)-1]
			current = append(outer, Instruction{Kind: Repeat, Body: current})
			b.loopCount++
			b.depth--
			b.recordDebugEvent("close_loop", pos, fmt.Sprintf("depth %d", b.depth))

		default:
			kind := leafKind(token.Op)
			current = append(current, Instruction{Kind: kind})
			b.leafCount++
			if b.config.debug >= DebugDetailed {
				b.recordDebugEvent("leaf", pos, kind.String())
			}
		}
	}

	invariant.Postcondition(len(b.stack) == 0,
		"sequence stack must be empty after the final tag, %d left", len(b.stack))

	return current
}

// recordDebugEvent records debug events when debug tracing is enabled
func (b *builder) recordDebugEvent(event string, tokenPos int, context string) {
	if b.config.debug == DebugOff || b.debugEvents == nil {
		return
	}

	b.debugEvents = append(b.debugEvents, DebugEvent{
		Timestamp: time.Now(),
		Event:     event,
		TokenPos:  tokenPos,
		Context:   context,
	})
}

// leafKind maps a non-loop tag to its leaf node kind
func leafKind(op lexer.Op) Kind {
	switch op {
	case lexer.Increment:
		return Increment
	case lexer.Decrement:
		return Decrement
	case lexer.ShiftLeft:
		return ShiftLeft
	case lexer.ShiftRight:
		return ShiftRight
	case lexer.PrintChar:
		return PrintChar
	case lexer.GetChar:
		return GetChar
	default:
		invariant.Invariant(false, "no leaf instruction for tag %s", op)
		return 0 // unreachable
	}
}
