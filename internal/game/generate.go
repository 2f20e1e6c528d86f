package game

import "fmt"

// Generation only looks at values: empty and special cells never form runs,
// whatever state the neighbouring panels are in.

func (b *Board) sameColor(v Value, row, col int) bool {
	if row < 0 || row >= b.rows || col < 0 || col >= b.columns {
		return false
	}
	return v.IsColor() && b.value(row, col) == v
}

func (b *Board) colorRunRight(row, col int) bool {
	if col < 0 || col+2 >= b.columns {
		return false
	}
	v := b.value(row, col)
	return v.IsColor() && b.sameColor(v, row, col+1) && b.sameColor(v, row, col+2)
}

func (b *Board) colorRunDown(row, col int) bool {
	if row < 0 || row+2 >= b.rows || col < 0 || col >= b.columns {
		return false
	}
	v := b.value(row, col)
	return v.IsColor() && b.sameColor(v, row+1, col) && b.sameColor(v, row+2, col)
}

// generate fills the board from the source and re-rolls cells until no
// run of three identical colors remains.
func (b *Board) generate() {
	values := b.source.Board()
	if len(values) < len(b.panels) {
		panic(fmt.Sprintf("game: panel source returned %d values for a %dx%d board", len(values), b.rows, b.columns))
	}
	for i := range b.panels {
		b.panels[i].value = values[i]
	}

	for i := 0; i < b.rows; i++ {
		for j := 0; j < b.columns; j++ {
			id := b.index(i, j)
			// Re-rolling the cell below may also close a run from above.
			for b.colorRunDown(i, j) || b.colorRunDown(i-1, j) {
				b.panels[id+b.columns].value = b.source.Panel()
			}
			if j+1 >= b.columns {
				continue
			}
			for b.colorRunRight(i, j) || b.colorRunRight(i, j-1) ||
				b.colorRunDown(i-2, j+1) || b.colorRunDown(i-1, j+1) {
				b.panels[id+1].value = b.source.Panel()
			}
		}
	}
}

func (b *Board) nextVerticalError(j int) bool {
	v := b.next[j].value
	return v.IsColor() && b.sameColor(v, b.rows-1, j) && b.sameColor(v, b.rows-2, j)
}

func (b *Board) nextHorizontalError(j int) bool {
	if j < 0 || j+2 >= b.columns {
		return false
	}
	v := b.next[j].value
	return v.IsColor() && b.next[j+1].value == v && b.next[j+2].value == v
}

// generateNext pulls a new staging row from the source, re-rolling cells
// that would complete a run with the bottom rows or within the row.
func (b *Board) generateNext() {
	line := b.source.Line()
	if len(line) < b.columns {
		panic(fmt.Sprintf("game: panel source returned %d values for a %d column row", len(line), b.columns))
	}
	for j := range b.next {
		b.next[j].value = line[j]
		b.next[j].enter(Bottom, 0)
		b.next[j].cascade = false
	}

	for j := 0; j < b.columns; j++ {
		for b.nextVerticalError(j) || b.nextHorizontalError(j-2) || b.nextHorizontalError(j-1) {
			b.next[j].value = b.source.Panel()
		}
		for b.nextHorizontalError(j) {
			b.next[j+1].value = b.source.Panel()
		}
	}
	b.generated++
}

// shift moves every row up by one, promoting the staging row to the
// bottom row and clearing the staging row.
func (b *Board) shift() {
	copy(b.panels, b.panels[b.columns:])
	bottom := b.panels[len(b.panels)-b.columns:]
	for j := range bottom {
		bottom[j] = b.next[j]
		bottom[j].enter(Idle, 0)
		b.next[j] = Panel{state: Bottom, settings: &b.settings}
	}
}
