package game

// PanelSource supplies panel colors to a board.
type PanelSource interface {
	// Board returns rows*columns values, row-major, for the initial board.
	Board() []Value
	// Panel returns one replacement value for generation re-rolls.
	Panel() Value
	// Line returns columns values for the next staging row.
	Line() []Value
}
