package game

import (
	"errors"
	"fmt"
)

// BoardType selects the rules the board plays under.
type BoardType uint8

const (
	// Endless boards rise forever; a clog ends the game at once.
	Endless BoardType = iota
	// Score boards rise like endless ones but survive a clog while
	// matches in progress can clear the top row.
	Score
	// Puzzle boards never rise and end when moves run out or the board is empty.
	Puzzle
)

func (t BoardType) String() string {
	switch t {
	case Endless:
		return "endless"
	case Score:
		return "score"
	case Puzzle:
		return "puzzle"
	}
	return fmt.Sprintf("BoardType(%d)", uint8(t))
}

// ParseBoardType is the inverse of BoardType.String.
func ParseBoardType(s string) (BoardType, error) {
	switch s {
	case "endless", "":
		return Endless, nil
	case "score":
		return Score, nil
	case "puzzle":
		return Puzzle, nil
	}
	return 0, fmt.Errorf("unknown board type %q", s)
}

// BoardState is the board-level state machine.
type BoardState uint8

const (
	Rising BoardState = iota
	Rised
	FastRising
	RequestFastRise
	GenerateNext
	Clogged
	Stopped
	PuzzleMode
	Win
	GameOver
)

var boardStateNames = [...]string{
	Rising:          "RISING",
	Rised:           "RISED",
	FastRising:      "FAST_RISING",
	RequestFastRise: "REQUEST_FAST_RISE",
	GenerateNext:    "GENERATE_NEXT",
	Clogged:         "CLOGGED",
	Stopped:         "STOPPED",
	PuzzleMode:      "PUZZLE",
	Win:             "WIN",
	GameOver:        "GAMEOVER",
}

func (s BoardState) String() string {
	if int(s) < len(boardStateNames) {
		return boardStateNames[s]
	}
	return fmt.Sprintf("BoardState(%d)", uint8(s))
}

const (
	// riseUnit is one whole rise step in riseCounter units.
	riseUnit = 0x1000
	// riseSteps whole steps raise the board by one row.
	riseSteps = 16
)

// Options configures NewBoard.
type Options struct {
	Rows     int
	Columns  int
	Type     BoardType
	Settings SpeedSettings
	// Speed is added to the rise counter every tick.
	Speed int
	// Source feeds the initial board and every new row. Puzzle boards
	// built from Layout may leave it nil.
	Source PanelSource
	// Layout, when set, is used verbatim as the initial board (row-major,
	// Rows*Columns values) without any re-rolling.
	Layout []Value
	// Moves is the puzzle move budget.
	Moves int
}

var (
	ErrBoardSize   = errors.New("board needs at least 3 rows and 3 columns")
	ErrNoSource    = errors.New("board needs a panel source or a layout")
	ErrLayoutSize  = errors.New("layout does not match board size")
	ErrNegativeArg = errors.New("speed and moves must not be negative")
)

// Board is the panel table: rows*columns panels in row-major order plus
// the staging row that rises in from below.
type Board struct {
	rows, columns int
	panels        []Panel
	next          []Panel

	kind   BoardType
	state  BoardState
	resume BoardState

	settings SpeedSettings
	source   PanelSource

	speed       int
	rise        int
	riseCounter int
	timeout     int
	moves       int
	chain       int
	cascade     int
	lines       int
	generated   int
}

// NewBoard builds a board and fills it from the source (or layout).
func NewBoard(opts Options) (*Board, error) {
	if opts.Rows < 3 || opts.Columns < 3 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrBoardSize, opts.Rows, opts.Columns)
	}
	if opts.Speed < 0 || opts.Moves < 0 {
		return nil, ErrNegativeArg
	}
	if opts.Source == nil && opts.Layout == nil {
		return nil, ErrNoSource
	}
	if opts.Layout != nil && len(opts.Layout) != opts.Rows*opts.Columns {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrLayoutSize, len(opts.Layout), opts.Rows, opts.Columns)
	}

	b := &Board{
		rows:     opts.Rows,
		columns:  opts.Columns,
		kind:     opts.Type,
		settings: opts.Settings,
		source:   opts.Source,
		speed:    opts.Speed,
		moves:    opts.Moves,
	}
	b.panels = make([]Panel, b.rows*b.columns)
	b.next = make([]Panel, b.columns)
	for i := range b.panels {
		b.panels[i].settings = &b.settings
	}
	for j := range b.next {
		b.next[j].settings = &b.settings
		b.next[j].state = Bottom
	}

	if b.kind == Puzzle {
		b.state = PuzzleMode
	} else {
		b.state = Rising
	}

	if opts.Layout != nil {
		for i, v := range opts.Layout {
			b.panels[i].value = v
		}
	} else {
		b.generate()
	}
	if b.kind != Puzzle && b.source != nil {
		b.generateNext()
	}
	return b, nil
}

func (b *Board) Rows() int               { return b.rows }
func (b *Board) Columns() int            { return b.columns }
func (b *Board) Type() BoardType         { return b.kind }
func (b *Board) Settings() SpeedSettings { return b.settings }
func (b *Board) Speed() int              { return b.speed }
func (b *Board) Rise() int               { return b.rise }
func (b *Board) RiseCounter() int        { return b.riseCounter }
func (b *Board) Timeout() int            { return b.timeout }
func (b *Board) Moves() int              { return b.moves }
func (b *Board) Chain() int              { return b.chain }
func (b *Board) Cascade() int            { return b.cascade }

// Lines is the number of rows the board has risen.
func (b *Board) Lines() int { return b.lines }

// Generated counts rows pulled from the source into the staging row,
// including the first one.
func (b *Board) Generated() int { return b.generated }

// State is the board state; a frozen board reports Stopped.
func (b *Board) State() BoardState { return b.state }

// Resume is the state a Stopped board returns to.
func (b *Board) Resume() BoardState {
	if b.state == Stopped {
		return b.resume
	}
	return b.state
}

func (b *Board) Finished() bool { return b.state == Win || b.state == GameOver }

func (b *Board) index(row, col int) int { return row*b.columns + col }

// Get returns a copy of the panel at row, col. Row Rows() addresses the
// staging row.
func (b *Board) Get(row, col int) Panel {
	if col < 0 || col >= b.columns || row < 0 || row > b.rows {
		panic(fmt.Sprintf("game: cell (%d,%d) outside %dx%d board", row, col, b.rows, b.columns))
	}
	if row == b.rows {
		return b.next[col]
	}
	return b.panels[b.index(row, col)]
}

func (b *Board) value(row, col int) Value {
	return b.panels[b.index(row, col)].value
}

func (b *Board) matchable(row, col int) bool {
	return b.panels[b.index(row, col)].Matchable()
}

func (b *Board) rowEmpty(row int) bool {
	for j := 0; j < b.columns; j++ {
		if b.value(row, j) != Empty {
			return false
		}
	}
	return true
}

// Warning reports panels in the second row from the top.
func (b *Board) Warning() bool { return !b.rowEmpty(1) }

// Danger reports panels in the top row.
func (b *Board) Danger() bool { return !b.rowEmpty(0) }

// DangerColumns flags every column with a panel in the top row.
func (b *Board) DangerColumns() []bool {
	out := make([]bool, b.columns)
	for j := range out {
		out[j] = b.value(0, j) != Empty
	}
	return out
}

// ClearedLines reports whether everything above the absolute line number
// line (counted in risen rows) has been cleared. Lines outside the
// visible window are never cleared.
func (b *Board) ClearedLines(line int) bool {
	top := b.lines - b.rows
	if line < top || line > b.lines {
		return false
	}
	offset := min(line-top, b.rows-1)
	for i := 0; i < offset; i++ {
		if !b.rowEmpty(i) {
			return false
		}
	}
	return true
}

// AllIdle reports whether every panel is at rest.
func (b *Board) AllIdle() bool {
	for i := range b.panels {
		if b.panels[i].state != Idle {
			return false
		}
	}
	return true
}

// AllEmpty reports whether the board holds no panels.
func (b *Board) AllEmpty() bool {
	for i := range b.panels {
		if b.panels[i].value != Empty {
			return false
		}
	}
	return true
}

// Swap starts exchanging the panels at (row, col) and (row, col+1).
// Illegal requests are ignored.
func (b *Board) Swap(row, col int) {
	if row < 0 || row >= b.rows || col < 0 || col+1 >= b.columns {
		return
	}
	if b.Finished() {
		return
	}
	if b.kind == Puzzle && b.moves <= 0 {
		return
	}
	left := &b.panels[b.index(row, col)]
	right := &b.panels[b.index(row, col+1)]
	if left.state != Idle || right.state != Idle {
		return
	}
	if left.Special() || right.Special() || left.value == right.value {
		return
	}

	left.enter(LeftSwap, b.settings.Swap)
	right.enter(RightSwap, b.settings.Swap)
	if b.kind == Puzzle {
		b.moves--
		if b.moves < 0 {
			panic("game: puzzle move count went negative")
		}
	}
}

// Freeze stops the rise for n ticks unless a longer freeze is running.
func (b *Board) Freeze(n int) {
	if n <= 0 || n <= b.timeout || b.kind == Puzzle || b.Finished() {
		return
	}
	b.timeout = n
	if b.state != Stopped {
		b.resume = b.state
		b.state = Stopped
	}
}

// QuickRise requests an immediate rise step while the board is rising.
// A freeze interrupting the rise is cut down to one more tick.
func (b *Board) QuickRise() {
	switch {
	case b.state == Rising:
		b.state = RequestFastRise
	case b.state == Stopped && b.resume == Rising:
		b.resume = RequestFastRise
		b.timeout = 1
	}
}
