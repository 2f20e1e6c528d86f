package game

import (
	"fmt"
	"sort"
)

// MatchInfo summarises what one Update call matched.
type MatchInfo struct {
	// Combo is the number of panels in the new match.
	Combo int
	// Chain is the swap chain counter before this match (0 for the first).
	Chain int
	// Cascade is the fall-triggered match counter after this match.
	Cascade int
	// Colors is the number of distinct colors in the match.
	Colors    int
	SwapMatch bool
	FallMatch bool
	// X, Y locate the last matched panel in row-major order.
	X, Y int
}

// Matched reports whether anything was matched.
func (m MatchInfo) Matched() bool { return m.Combo > 0 }

func (m MatchInfo) String() string {
	return fmt.Sprintf("combo=%d chain=%d cascade=%d colors=%d swap=%t fall=%t at=(%d,%d)",
		m.Combo, m.Chain, m.Cascade, m.Colors, m.SwapMatch, m.FallMatch, m.Y, m.X)
}

type point struct{ row, col int }

type pointSet map[point]struct{}

func (s pointSet) add(row, col int) { s[point{row, col}] = struct{}{} }

// sorted returns the points in row-major order.
func (s pointSet) sorted() []point {
	out := make([]point, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].row != out[b].row {
			return out[a].row < out[b].row
		}
		return out[a].col < out[b].col
	})
	return out
}

// perpendicular offsets checked next to every panel of a run: each pair
// (k, l) names two cells that, with the run panel, make a crossing triple.
var perpendicular = [...][2]int{{-2, -1}, {-1, 1}, {1, 2}}

func (b *Board) sameMatchable(v Value, row, col int) bool {
	if row < 0 || row >= b.rows || col < 0 || col >= b.columns {
		return false
	}
	return b.matchable(row, col) && b.value(row, col) == v
}

// horizontalRun reports a matchable run of three starting at (row, col).
func (b *Board) horizontalRun(row, col int) bool {
	if col+2 >= b.columns || !b.matchable(row, col) {
		return false
	}
	v := b.value(row, col)
	return b.sameMatchable(v, row, col+1) && b.sameMatchable(v, row, col+2)
}

func (b *Board) verticalRun(row, col int) bool {
	if row+2 >= b.rows || !b.matchable(row, col) {
		return false
	}
	v := b.value(row, col)
	return b.sameMatchable(v, row+1, col) && b.sameMatchable(v, row+2, col)
}

// collectHorizontal adds the run starting at (row, col), extended right
// as far as it goes, plus vertical pairs crossing it.
func (b *Board) collectHorizontal(set pointSet, row, col int) {
	v := b.value(row, col)
	length := 3
	for col+length < b.columns && b.sameMatchable(v, row, col+length) {
		length++
	}
	for m := 0; m < length; m++ {
		set.add(row, col+m)
		for _, kl := range perpendicular {
			if b.sameMatchable(v, row+kl[0], col+m) && b.sameMatchable(v, row+kl[1], col+m) {
				set.add(row+kl[0], col+m)
				set.add(row+kl[1], col+m)
			}
		}
	}
}

func (b *Board) collectVertical(set pointSet, row, col int) {
	v := b.value(row, col)
	length := 3
	for row+length < b.rows && b.sameMatchable(v, row+length, col) {
		length++
	}
	for m := 0; m < length; m++ {
		set.add(row+m, col)
		for _, kl := range perpendicular {
			if b.sameMatchable(v, row+m, col+kl[0]) && b.sameMatchable(v, row+m, col+kl[1]) {
				set.add(row+m, col+kl[0])
				set.add(row+m, col+kl[1])
			}
		}
	}
}

// updateMatches finds every new match on the board and starts its
// animation.
func (b *Board) updateMatches() MatchInfo {
	set := pointSet{}
	for i := 0; i < b.rows; i++ {
		for j := 0; j < b.columns; j++ {
			if b.horizontalRun(i, j) {
				b.collectHorizontal(set, i, j)
			}
			if b.verticalRun(i, j) {
				b.collectVertical(set, i, j)
			}
		}
	}
	if len(set) == 0 {
		return MatchInfo{}
	}

	points := set.sorted()
	colors := map[Value]struct{}{}
	fall, cascade := false, false
	for _, pt := range points {
		p := &b.panels[b.index(pt.row, pt.col)]
		colors[p.value] = struct{}{}
		if p.cascade {
			cascade = true
			if p.state == EndFall {
				fall = true
			}
		}
	}

	info := MatchInfo{
		Combo:     len(points),
		Colors:    len(colors),
		FallMatch: fall,
		SwapMatch: !fall,
	}
	index := len(points) - 1
	for _, pt := range points {
		b.panels[b.index(pt.row, pt.col)].Match(index, len(points)-1, info.Colors, cascade)
		index--
		info.X, info.Y = pt.col, pt.row
	}
	return info
}
