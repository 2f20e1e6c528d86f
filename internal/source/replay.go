package source

import (
	"fmt"

	"github.com/TricksterGuy/bottomless-block-barrage/internal/game"
)

// Replay hands back a recorded initial board and the recorded staging rows
// in order. Once the rows run out it yields empty rows. Re-rolls always
// return Empty, so generation never alters recorded data.
type Replay struct {
	columns int
	initial []game.Value
	lines   [][]game.Value
	next    int
}

func NewReplay(columns int, initial []game.Value, lines [][]game.Value) (*Replay, error) {
	if columns <= 0 || len(initial)%columns != 0 {
		return nil, fmt.Errorf("replay source: %d initial values do not fill %d columns", len(initial), columns)
	}
	for i, line := range lines {
		if len(line) != columns {
			return nil, fmt.Errorf("replay source: line %d has %d values, want %d", i, len(line), columns)
		}
	}
	return &Replay{columns: columns, initial: initial, lines: lines}, nil
}

func (r *Replay) Board() []game.Value {
	out := make([]game.Value, len(r.initial))
	copy(out, r.initial)
	return out
}

func (r *Replay) Panel() game.Value { return game.Empty }

func (r *Replay) Line() []game.Value {
	out := make([]game.Value, r.columns)
	if r.next < len(r.lines) {
		copy(out, r.lines[r.next])
		r.next++
	}
	return out
}

// Remaining is the number of recorded rows not yet handed out.
func (r *Replay) Remaining() int { return len(r.lines) - r.next }
