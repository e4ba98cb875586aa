package executor

// Tape is the growable sequence of unsigned 8-bit cells addressed by a
// single cursor. A fresh tape holds one zero cell with the cursor on
// it. Cell arithmetic wraps modulo 256, never a fault. Growth is
// unbounded in both directions: a program that shifts forever exhausts
// memory, a resource failure rather than a logic error.
type Tape struct {
	cells  []uint8
	cursor int
}

// NewTape returns a tape of one zero cell with the cursor on it.
func NewTape() *Tape {
	return &Tape{cells: make([]uint8, 1)}
}

// Increment adds one to the cell at the cursor, wrapping past 255 to 0.
func (t *Tape) Increment() {
	t.cells[t.cursor]++
}

// Decrement subtracts one from the cell at the cursor, wrapping past 0
// to 255.
func (t *Tape) Decrement() {
	t.cells[t.cursor]--
}

// ShiftLeft moves the cursor one cell to the left. On cell 0 the tape
// instead grows a new zero cell at the front and the cursor stays
// pinned to it, modeling leftward extension of the tape.
func (t *Tape) ShiftLeft() {
	if t.cursor == 0 {
		t.cells = append(t.cells, 0)
		copy(t.cells[1:], t.cells)
		t.cells[0] = 0
		return
	}
	t.cursor--
}

// ShiftRight moves the cursor one cell to the right, appending a zero
// cell when the cursor steps past the current last one.
func (t *Tape) ShiftRight() {
	t.cursor++
	if t.cursor == len(t.cells) {
		t.cells = append(t.cells, 0)
	}
}

// Cell returns the value at the cursor.
func (t *Tape) Cell() uint8 {
	return t.cells[t.cursor]
}

// SetCell stores value at the cursor.
func (t *Tape) SetCell(value uint8) {
	t.cells[t.cursor] = value
}

// Cursor returns the current cell index.
func (t *Tape) Cursor() int {
	return t.cursor
}

// Len returns the number of cells.
func (t *Tape) Len() int {
	return len(t.cells)
}

// Cells returns a copy of the tape contents, leftmost cell first.
func (t *Tape) Cells() []uint8 {
	out := make([]uint8, len(t.cells))
	copy(out, t.cells)
	return out
}
