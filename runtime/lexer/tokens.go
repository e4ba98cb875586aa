package lexer

import "fmt"

// Op classifies one recognized source character before structuring.
type Op int

const (
	Increment  Op = iota // + add one to the cell at the cursor
	Decrement            // - subtract one from the cell at the cursor
	ShiftLeft            // < move the cursor one cell to the left
	ShiftRight           // > move the cursor one cell to the right
	PrintChar            // . write the cell at the cursor as one raw byte
	GetChar              // , read one input line, keep its first byte
	LoopStart            // [ open a loop region
	LoopEnd              // ] close a loop region
)

// Token is one operation tag plus where it appeared in the source.
// Positions feed diagnostics and debug output only; downstream stages
// consume the tag.
type Token struct {
	Op       Op
	Position Position
}

// Position represents a position in the source code
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// String returns the operation name used in debug output and tree dumps.
func (op Op) String() string {
	switch op {
	case Increment:
		return "Increment"
	case Decrement:
		return "Decrement"
	case ShiftLeft:
		return "ShiftLeft"
	case ShiftRight:
		return "ShiftRight"
	case PrintChar:
		return "PrintChar"
	case GetChar:
		return "GetChar"
	case LoopStart:
		return "LoopStart"
	case LoopEnd:
		return "LoopEnd"
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

// Byte lookup tables for fast classification. Any byte not marked in
// isOpByte is comment text and produces no token.
var (
	opForByte [256]Op
	isOpByte  [256]bool
)

func init() {
	for ch, op := range map[byte]Op{
		'+': Increment,
		'-': Decrement,
		'<': ShiftLeft,
		'>': ShiftRight,
		'.': PrintChar,
		',': GetChar,
		'[': LoopStart,
		']': LoopEnd,
	} {
		opForByte[ch] = op
		isOpByte[ch] = true
	}
}
