package lexer

import (
	"log/slog"
	"os"
	"time"
)

// Opt represents a lexer configuration option
type Opt func(*Config)

// TelemetryMode controls telemetry collection (production-safe)
type TelemetryMode int

const (
	TelemetryOff    TelemetryMode = iota // Zero overhead (default)
	TelemetryBasic                       // Byte and token counts only
	TelemetryTiming                      // Counts + scan duration
)

// DebugLevel controls debug tracing (development only)
type DebugLevel int

const (
	DebugOff      DebugLevel = iota // No debug info (default)
	DebugOps                        // One event per emitted token
	DebugDetailed                   // One event per scanned byte, including skipped comment bytes
)

// Config holds lexer configuration
type Config struct {
	telemetry TelemetryMode
	debug     DebugLevel
}

// WithTelemetryBasic enables basic telemetry (byte and token counts only)
func WithTelemetryBasic() Opt {
	return func(c *Config) {
		c.telemetry = TelemetryBasic
	}
}

// WithTelemetryTiming enables timing telemetry (counts + scan duration)
func WithTelemetryTiming() Opt {
	return func(c *Config) {
		c.telemetry = TelemetryTiming
	}
}

// WithDebugOps enables per-token debug tracing (development only)
func WithDebugOps() Opt {
	return func(c *Config) {
		c.debug = DebugOps
	}
}

// WithDebugDetailed enables per-byte debug tracing (development only)
func WithDebugDetailed() Opt {
	return func(c *Config) {
		c.debug = DebugDetailed
	}
}

// Telemetry holds counters for one Lex call (production-safe)
type Telemetry struct {
	BytesScanned  int
	BytesSkipped  int
	TokensEmitted int
	OpCounts      map[Op]int
	Duration      time.Duration // populated in TelemetryTiming mode only
}

// DebugEvent records one lexing decision (development only)
type DebugEvent struct {
	Event    string // "emit" or "skip"
	Byte     byte
	Op       Op // meaningful only when Event is "emit"
	Position Position
}

// Result is the output of one Lex call
type Result struct {
	Tokens      []Token
	Telemetry   *Telemetry   // nil unless telemetry was requested
	DebugEvents []DebugEvent // nil unless debug was requested
}

// Lex maps each recognized source byte to an operation tag in order of
// appearance. Every other byte, whitespace and newlines included, is
// comment text and is silently skipped. Lexing has no failure modes:
// structural balance is the validator's concern and character-level
// garbage is tolerated by construction.
func Lex(source []byte, opts ...Opt) *Result {
	config := &Config{}
	for _, opt := range opts {
		opt(config)
	}

	// Debug logger - active only when BF_DEBUG_LEXER is set, so the
	// scan loop pays nothing in normal runs.
	var logger *slog.Logger
	if os.Getenv("BF_DEBUG_LEXER") != "" {
		logger = newDebugLogger()
	}

	result := &Result{
		Tokens: make([]Token, 0, len(source)),
	}

	// Only allocate telemetry structures when needed
	if config.telemetry > TelemetryOff {
		result.Telemetry = &Telemetry{OpCounts: make(map[Op]int)}
	}
	if config.debug > DebugOff {
		result.DebugEvents = make([]DebugEvent, 0, len(source))
	}

	var start time.Time
	if config.telemetry >= TelemetryTiming {
		start = time.Now()
	}

	line, column := 1, 1
	for offset := 0; offset < len(source); offset++ {
		ch := source[offset]
		pos := Position{Line: line, Column: column, Offset: offset}

		if isOpByte[ch] {
			op := opForByte[ch]
			result.Tokens = append(result.Tokens, Token{Op: op, Position: pos})

			if logger != nil {
				logger.Debug("emit", "op", op.String(), "line", line, "column", column)
			}
			if result.Telemetry != nil {
				result.Telemetry.TokensEmitted++
				result.Telemetry.OpCounts[op]++
			}
			if config.debug > DebugOff {
				result.DebugEvents = append(result.DebugEvents, DebugEvent{
					Event:    "emit",
					Byte:     ch,
					Op:       op,
					Position: pos,
				})
			}
		} else {
			if result.Telemetry != nil {
				result.Telemetry.BytesSkipped++
			}
			if config.debug >= DebugDetailed {
				result.DebugEvents = append(result.DebugEvents, DebugEvent{
					Event:    "skip",
					Byte:     ch,
					Position: pos,
				})
			}
		}

		if ch == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}

	if result.Telemetry != nil {
		result.Telemetry.BytesScanned = len(source)
		if config.telemetry >= TelemetryTiming {
			result.Telemetry.Duration = time.Since(start)
		}
	}

	return result
}

// newDebugLogger builds the lexer debug logger: text output on stderr
// with the timestamp and level attributes stripped for readability.
func newDebugLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove timestamp for cleaner output
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			// Simplify level display
			if a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}
