package replay

import "github.com/TricksterGuy/bottomless-block-barrage/internal/game"

// Driver turns one frame of pad input into board calls. It is shared by
// the live terminal game and the trace simulation so both apply input the
// same way.
type Driver struct {
	board  *game.Board
	last   Input
	freeze bool
}

// NewDriver drives board. With freeze set, every match freezes the rise
// for game.StopTime frames.
func NewDriver(board *game.Board, freeze bool) *Driver {
	return &Driver{board: board, freeze: freeze}
}

func (d *Driver) Board() *game.Board { return d.board }

// Step applies input for one frame with the cursor's left panel at
// (row, col), ticks the board and returns the tick's match.
func (d *Driver) Step(in Input, row, col int) game.MatchInfo {
	if in.Pressed(d.last, ButtonA) {
		d.board.Swap(row, col)
	}
	if in.Pressed(d.last, ButtonL) || in.Pressed(d.last, ButtonR) {
		d.board.QuickRise()
	}
	info := d.board.Update()
	if d.freeze && info.Matched() {
		d.board.Freeze(game.StopTime(info))
	}
	d.last = in
	return info
}
