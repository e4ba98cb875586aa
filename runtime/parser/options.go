package parser

import "time"

// Opt represents a parser configuration option
type Opt func(*Config)

// TelemetryMode controls telemetry collection (production-safe)
type TelemetryMode int

const (
	TelemetryOff    TelemetryMode = iota // Zero overhead (default)
	TelemetryBasic                       // Structure counts only
	TelemetryTiming                      // Structure counts + build duration
)

// DebugLevel controls debug tracing (development only)
type DebugLevel int

const (
	DebugOff      DebugLevel = iota // No debug info (default)
	DebugLoops                      // Loop open/close tracing
	DebugDetailed                   // Per-token tracing
)

// Config holds parser configuration
type Config struct {
	telemetry TelemetryMode
	debug     DebugLevel
}

// WithTelemetryBasic enables basic telemetry (structure counts only)
func WithTelemetryBasic() Opt {
	return func(c *Config) {
		c.telemetry = TelemetryBasic
	}
}

// WithTelemetryTiming enables timing telemetry (counts + build duration)
func WithTelemetryTiming() Opt {
	return func(c *Config) {
		c.telemetry = TelemetryTiming
	}
}

// WithDebugLoops enables loop open/close tracing (development only)
func WithDebugLoops() Opt {
	return func(c *Config) {
		c.debug = DebugLoops
	}
}

// WithDebugDetailed enables per-token debug tracing (development only)
func WithDebugDetailed() Opt {
	return func(c *Config) {
		c.debug = DebugDetailed
	}
}

// Telemetry holds structurer metrics (production-safe)
type Telemetry struct {
	BuildTime        time.Duration // Time spent structuring
	TokenCount       int           // Number of consumed tokens
	InstructionCount int           // Leaf instructions in the tree
	LoopCount        int           // Repeat nodes in the tree
	MaxDepth         int           // Maximum loop nesting depth
}

// DebugEvent holds debug tracing information (development only)
type DebugEvent struct {
	Timestamp time.Time
	Event     string // "open_loop", "close_loop", "leaf"
	TokenPos  int    // Index of the consumed token
	Context   string // Additional context (node kind, depth)
}
