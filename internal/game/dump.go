package game

import (
	"fmt"
	"strings"
)

// String dumps the board one row per line, the staging row last. Each
// cell is written as value, state code and '+' when the cascade flag is
// set, e.g. "3.  " or "1v+ ".
func (b *Board) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "state=%s rise=%d/%#x chain=%d cascade=%d moves=%d lines=%d\n",
		b.state, b.rise, b.riseCounter, b.chain, b.cascade, b.moves, b.lines)
	for i := 0; i <= b.rows; i++ {
		for j := 0; j < b.columns; j++ {
			p := b.Get(i, j)
			flag := byte(' ')
			if p.cascade {
				flag = '+'
			}
			fmt.Fprintf(&sb, "%d%c%c ", p.value, p.state.Code(), flag)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// TraceWords packs every panel, staging row included, with
// Panel.TraceWord.
func (b *Board) TraceWords() []uint32 {
	out := make([]uint32, 0, len(b.panels)+len(b.next))
	for _, p := range b.panels {
		out = append(out, p.TraceWord())
	}
	for _, p := range b.next {
		out = append(out, p.TraceWord())
	}
	return out
}

// NextValues returns the staging row values.
func (b *Board) NextValues() []Value {
	out := make([]Value, len(b.next))
	for i, p := range b.next {
		out[i] = p.value
	}
	return out
}
