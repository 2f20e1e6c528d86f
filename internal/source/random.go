package source

import (
	"fmt"
	"math/rand/v2"

	"github.com/TricksterGuy/bottomless-block-barrage/internal/game"
)

// MinColors is the smallest palette for which row generation always
// terminates.
const MinColors = 3

// Random draws panel colors uniformly from a seeded PCG stream, so equal
// seeds produce equal games.
type Random struct {
	rng       *rand.Rand
	rows      int
	columns   int
	colors    int
	startRows int
}

// NewRandom returns a source for a rows x columns board whose bottom
// startRows rows start filled.
func NewRandom(rows, columns, colors, startRows int, seed uint64) (*Random, error) {
	if rows <= 0 || columns <= 0 {
		return nil, fmt.Errorf("random source: invalid size %dx%d", rows, columns)
	}
	if colors < MinColors || colors > game.ColorCount {
		return nil, fmt.Errorf("random source: colors must be in [%d,%d], got %d", MinColors, game.ColorCount, colors)
	}
	if startRows < 0 || startRows > rows {
		return nil, fmt.Errorf("random source: start rows %d outside [0,%d]", startRows, rows)
	}
	return &Random{
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		rows:      rows,
		columns:   columns,
		colors:    colors,
		startRows: startRows,
	}, nil
}

func (r *Random) Panel() game.Value {
	return game.Value(1 + r.rng.IntN(r.colors))
}

func (r *Random) Board() []game.Value {
	out := make([]game.Value, r.rows*r.columns)
	for i := (r.rows - r.startRows) * r.columns; i < len(out); i++ {
		out[i] = r.Panel()
	}
	return out
}

func (r *Random) Line() []game.Value {
	out := make([]game.Value, r.columns)
	for j := range out {
		out[j] = r.Panel()
	}
	return out
}
