package validation

import (
	"fmt"

	"github.com/mityu/bf/runtime/lexer"
)

// UnbalancedLoopError reports the structural failure that stops a
// program before lexing: a ']' with no open loop, or '[' left unclosed
// at end of source.
type UnbalancedLoopError struct {
	Position lexer.Position // offending ']', or end of source for unclosed '['
	Unclosed int            // count of '[' still open; 0 for the early ']' case
	Message  string
}

func (e *UnbalancedLoopError) Error() string {
	return e.Message
}

// ValidateLoops scans the raw source once with a signed counter: '['
// opens, ']' closes, every other byte is comment text. The scan fails
// the moment the counter goes negative; an excursion below zero is
// unrecoverable even if later characters restore the balance. A nonzero
// counter at end of source fails as unclosed loops. On success the
// validator produces no value; it only gates progression to lexing, and
// the structurer may assume balance from here on.
func ValidateLoops(source []byte) error {
	count := 0
	line, column := 1, 1

	for offset := 0; offset < len(source); offset++ {
		ch := source[offset]
		switch ch {
		case '[':
			count++
		case ']':
			count--
		}

		if count < 0 {
			return &UnbalancedLoopError{
				Position: lexer.Position{Line: line, Column: column, Offset: offset},
				Message: fmt.Sprintf("unbalanced loop: ']' at line %d, column %d has no matching '['",
					line, column),
			}
		}

		if ch == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}

	if count != 0 {
		return &UnbalancedLoopError{
			Position: lexer.Position{Line: line, Column: column, Offset: len(source)},
			Unclosed: count,
			Message:  fmt.Sprintf("unbalanced loop: %d unclosed '[' at end of source", count),
		}
	}

	return nil
}
