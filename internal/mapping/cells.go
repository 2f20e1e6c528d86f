package mapping

import (
	"math"

	"github.com/TricksterGuy/bottomless-block-barrage/internal/game"
)

// Look is how a cell should be drawn.
type Look uint8

const (
	LookEmpty Look = iota
	LookNormal
	LookSwapLeft
	LookSwapRight
	LookHover
	LookFalling
	LookLanded
	LookFlash
	LookPopping
	LookNext
)

type Cell struct {
	Value game.Value
	Look  Look
	// Phase is the animation step, 0..PhaseSteps-1.
	Phase   int
	Danger  bool
	Cascade bool
	// Colors is the number of colors in the match a flashing or popping
	// cell belongs to.
	Colors int
}

// PhaseSteps is the number of animation steps a timed state is split into.
const PhaseSteps = 4

// Grid is a render snapshot of a board: Rows x Cols visible cells plus the
// staging row.
type Grid struct {
	Rows  int
	Cols  int
	Rise  int
	Cells [][]Cell // [row][col]
	Next  []Cell
}

// PhaseFromCountdown maps the remaining countdown of a state lasting total
// ticks to 0..PhaseSteps-1, counting up as the state runs out.
func PhaseFromCountdown(countdown, total int) int {
	if total <= 0 || countdown <= 0 {
		return PhaseSteps - 1
	}
	if countdown >= total {
		return 0
	}
	done := float64(total-countdown) / float64(total)
	phase := int(math.Floor(done * PhaseSteps))
	if phase > PhaseSteps-1 {
		phase = PhaseSteps - 1
	}
	return phase
}

// LookFor picks the look of a single panel.
func LookFor(p game.Panel) Look {
	if p.Empty() {
		return LookEmpty
	}
	switch p.State() {
	case game.LeftSwap:
		return LookSwapLeft
	case game.RightSwap:
		return LookSwapRight
	case game.PendingFall:
		return LookHover
	case game.Falling:
		return LookFalling
	case game.EndFall, game.IdleFell:
		return LookLanded
	case game.PendingMatch, game.Matched:
		return LookFlash
	case game.Removed:
		return LookPopping
	case game.Bottom:
		return LookNext
	}
	return LookNormal
}

func cellFor(p game.Panel, s game.SpeedSettings) Cell {
	c := Cell{Value: p.Value(), Look: LookFor(p), Cascade: p.Cascade()}
	switch c.Look {
	case LookSwapLeft, LookSwapRight:
		c.Phase = PhaseFromCountdown(p.Countdown(), s.Swap)
	case LookLanded:
		c.Phase = PhaseFromCountdown(p.Countdown(), s.FallAnimation)
	case LookFlash:
		// Flashing blinks every other tick.
		c.Phase = p.Countdown() % 2
		c.Colors = p.MatchColors()
	case LookPopping:
		c.Colors = p.MatchColors()
	}
	return c
}

// BuildCells converts a board into a render grid. Columns with a panel in
// the top row are flagged as in danger from top to bottom.
func BuildCells(b *game.Board) Grid {
	rows, cols := b.Rows(), b.Columns()
	settings := b.Settings()
	danger := b.DangerColumns()

	cells := make([][]Cell, rows)
	for r := 0; r < rows; r++ {
		cells[r] = make([]Cell, cols)
		for c := 0; c < cols; c++ {
			cells[r][c] = cellFor(b.Get(r, c), settings)
			cells[r][c].Danger = danger[c]
		}
	}

	next := make([]Cell, cols)
	for c := range next {
		next[c] = cellFor(b.Get(rows, c), settings)
	}

	return Grid{
		Rows:  rows,
		Cols:  cols,
		Rise:  b.Rise(),
		Cells: cells,
		Next:  next,
	}
}
