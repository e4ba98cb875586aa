package parser

import (
	"fmt"
	"io"
	"strings"
)

// Kind discriminates instruction tree nodes.
type Kind int

const (
	Increment  Kind = iota // add one to the cell at the cursor
	Decrement              // subtract one from the cell at the cursor
	ShiftLeft              // move the cursor one cell to the left
	ShiftRight             // move the cursor one cell to the right
	PrintChar              // write the cell at the cursor as one raw byte
	GetChar                // read one input line, keep its first byte
	Repeat                 // run Body while the cell at the cursor is nonzero
)

// String returns the node name used in tree dumps and debug output.
func (k Kind) String() string {
	switch k {
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
	case Repeat:
		return "Repeat"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Instruction is one node of the structured program. Body is non-nil
// only for Repeat nodes, which exclusively own their child sequence:
// the tree is strict (no sharing, no cycles), built once by Parse and
// read-only afterward.
type Instruction struct {
	Kind Kind
	Body []Instruction
}

// WriteTree renders an instruction sequence one node name per line,
// with the children of each Repeat indented two spaces under its
// "Repeat:" label line.
func WriteTree(w io.Writer, instructions []Instruction) error {
	return writeTreeIndent(w, instructions, 0)
}

func writeTreeIndent(w io.Writer, instructions []Instruction, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, inst := range instructions {
		if inst.Kind == Repeat {
			if _, err := fmt.Fprintf(w, "%sRepeat:\n", indent); err != nil {
				return err
			}
			if err := writeTreeIndent(w, inst.Body, depth+1); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", indent, inst.Kind); err != nil {
			return err
		}
	}
	return nil
}
