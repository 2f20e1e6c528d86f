package game

import (
	"errors"
	"math/rand/v2"
	"testing"
)

var unitSettings = SpeedSettings{Swap: 1, Hover: 1, Fall: 1, Flash: 1, Face: 1, Pop: 1}

const (
	testRows    = 11
	testColumns = 6
)

// newPuzzleBoard builds an 11x6 puzzle board from 12 rows of values; the
// last row fills the staging row.
func newPuzzleBoard(t *testing.T, data []Value) *Board {
	t.Helper()
	b, err := NewBoard(Options{
		Rows:     testRows,
		Columns:  testColumns,
		Type:     Puzzle,
		Settings: unitSettings,
		Layout:   data[:testRows*testColumns],
		Moves:    100,
	})
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	for j := 0; j < testColumns; j++ {
		b.next[j].value = data[testRows*testColumns+j]
	}
	return b
}

func expectValues(t *testing.T, b *Board, want []Value) {
	t.Helper()
	for i := 0; i <= b.Rows(); i++ {
		for j := 0; j < b.Columns(); j++ {
			if got := b.Get(i, j).Value(); got != want[i*b.Columns()+j] {
				t.Fatalf("value at (%d,%d): got %d want %d\n%s", i, j, got, want[i*b.Columns()+j], b)
			}
		}
	}
}

func expectState(t *testing.T, b *Board, row, col int, want PanelState) {
	t.Helper()
	if got := b.Get(row, col).State(); got != want {
		t.Fatalf("state at (%d,%d): got %s want %s\n%s", row, col, got, want, b)
	}
}

func updateN(b *Board, n int) MatchInfo {
	var info MatchInfo
	for i := 0; i < n; i++ {
		info = b.Update()
	}
	return info
}

func TestFall(t *testing.T) {
	t.Parallel()

	b := newPuzzleBoard(t, []Value{
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		2, 0, 0, 0, 0, 0,
		1, 0, 0, 0, 0, 0,
		1, 0, 0, 0, 0, 0,
		8, 8, 8, 8, 8, 8,
	})

	b.Swap(8, 0)
	expectState(t, b, 8, 0, LeftSwap)
	expectState(t, b, 8, 1, RightSwap)

	b.Update()
	expectState(t, b, 8, 0, Swapped)
	expectState(t, b, 8, 1, PendingFall)

	b.Update()
	expectState(t, b, 8, 0, Idle)
	expectState(t, b, 8, 1, Falling)
	if got := b.Get(8, 0).Value(); got != Empty {
		t.Fatalf("swapped-out cell should be empty, got %d", got)
	}
	if got := b.Get(8, 1).Value(); got != 2 {
		t.Fatalf("swapped-in cell should hold 2, got %d", got)
	}

	b.Update()
	expectState(t, b, 8, 1, Idle)
	expectState(t, b, 9, 1, Falling)

	b.Update()
	expectState(t, b, 9, 1, Idle)

	b.Update()
	expectState(t, b, 10, 1, EndFall)

	b.Update()
	expectState(t, b, 10, 1, IdleFell)

	b.Update()
	expectState(t, b, 10, 1, Idle)

	expectValues(t, b, []Value{
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		1, 0, 0, 0, 0, 0,
		1, 2, 0, 0, 0, 0,
		8, 8, 8, 8, 8, 8,
	})
}

func TestStackDown(t *testing.T) {
	t.Parallel()

	b := newPuzzleBoard(t, []Value{
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		3, 0, 0, 0, 0, 0,
		2, 0, 0, 0, 0, 0,
		1, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		8, 8, 8, 8, 8, 8,
	})

	b.Swap(9, 0)
	expectState(t, b, 9, 0, LeftSwap)
	expectState(t, b, 9, 1, RightSwap)

	b.Update()
	expectState(t, b, 9, 0, Swapped)

	updateN(b, 50)
	expectValues(t, b, []Value{
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		3, 0, 0, 0, 0, 0,
		2, 1, 0, 0, 0, 0,
		8, 8, 8, 8, 8, 8,
	})
	if !b.AllIdle() {
		t.Fatalf("expected every panel to settle\n%s", b)
	}
}

func TestUpdateMatchesStagger(t *testing.T) {
	t.Parallel()

	b := newPuzzleBoard(t, []Value{
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		1, 1, 1, 0, 1, 1,
		8, 8, 8, 8, 8, 8,
	})

	info := b.updateMatches()
	if info.Combo != 3 || info.Colors != 1 {
		t.Fatalf("expected a one-color combo of 3, got %v", info)
	}
	if info.X != 2 || info.Y != 10 {
		t.Fatalf("expected last matched cell (10,2), got (%d,%d)", info.Y, info.X)
	}

	steps := [][3]PanelState{
		{PendingMatch, PendingMatch, PendingMatch},
		{Matched, Matched, Matched},
		{Removed, Matched, Matched},
		{Removed, Removed, Matched},
		{Removed, Removed, Removed},
	}
	for n, want := range steps {
		if n > 0 {
			b.Update()
		}
		for j := 0; j < 3; j++ {
			expectState(t, b, 10, j, want[j])
		}
	}

	b.Update()
	expectValues(t, b, []Value{
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 1, 1,
		8, 8, 8, 8, 8, 8,
	})
}

func TestMatchCrossShape(t *testing.T) {
	t.Parallel()

	b := newPuzzleBoard(t, []Value{
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 3, 0, 0, 0,
		0, 0, 3, 0, 0, 0,
		2, 3, 3, 3, 3, 2,
		8, 8, 8, 8, 8, 8,
	})

	info := b.updateMatches()
	if info.Combo != 6 {
		t.Fatalf("expected an L/T combo of 6, got %v", info)
	}
	for _, pt := range [][2]int{{8, 2}, {9, 2}, {10, 1}, {10, 2}, {10, 3}, {10, 4}} {
		expectState(t, b, pt[0], pt[1], PendingMatch)
	}
	expectState(t, b, 10, 0, Idle)
	if got := b.Get(8, 2).matchIndex; got != 5 {
		t.Fatalf("first cell in row-major order should get the highest index, got %d", got)
	}
}

func TestMatchIgnoresSpecialAndBusyPanels(t *testing.T) {
	t.Parallel()

	b := newPuzzleBoard(t, []Value{
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		8, 8, 8, 0, 0, 0,
		2, 2, 2, 0, 0, 0,
		8, 8, 8, 8, 8, 8,
	})
	b.panels[b.index(10, 1)].state = Falling

	if info := b.updateMatches(); info.Matched() {
		t.Fatalf("expected no match, got %v", info)
	}
}

// cascadeBoard holds a swap match that sets off four cascades.
func cascadeBoard(t *testing.T) *Board {
	t.Helper()
	return newPuzzleBoard(t, []Value{
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		8, 8, 2, 5, 8, 8,
		8, 8, 1, 4, 8, 8,
		8, 8, 1, 3, 8, 8,
		8, 2, 1, 2, 8, 8,
		8, 8, 8, 3, 8, 8,
		8, 5, 5, 3, 4, 4,
		8, 8, 8, 8, 8, 8,
	})
}

func TestCascades(t *testing.T) {
	t.Parallel()

	b := cascadeBoard(t)
	info := b.updateMatches()
	if info.Combo != 3 || info.Chain != 0 || info.Cascade != 0 || !info.SwapMatch || info.FallMatch {
		t.Fatalf("initial match: got %v", info)
	}

	info = b.Update()
	if info.Matched() || b.Cascade() != 0 || b.Chain() != 0 {
		t.Fatalf("first update should not match: got %v cascade=%d chain=%d", info, b.Cascade(), b.Chain())
	}

	// removal, then the 2 above drops three rows onto the 8
	info = updateN(b, 9)
	if !b.Get(8, 2).Cascade() {
		t.Fatalf("landed panel should carry the cascade flag\n%s", b)
	}
	expectCascade(t, b, info, 1)

	// 8 and the 3-4-5 column fall onto the vertical 3s
	info = updateN(b, 8)
	expectCascade(t, b, info, 2)

	info = updateN(b, 10)
	expectCascade(t, b, info, 3)

	info = updateN(b, 8)
	expectCascade(t, b, info, 4)

	settled := false
	for i := 0; i < 30 && !settled; i++ {
		if info = b.Update(); info.Matched() {
			t.Fatalf("expected the board to settle without matching, got %v", info)
		}
		settled = b.Cascade() == 0
	}
	if !settled || b.Chain() != 0 {
		t.Fatalf("counters should reset: cascade=%d chain=%d", b.Cascade(), b.Chain())
	}
	for i := 0; i < b.Rows(); i++ {
		for j := 0; j < b.Columns(); j++ {
			if b.Get(i, j).Cascade() {
				t.Fatalf("cascade reset while (%d,%d) still carries the flag\n%s", i, j, b)
			}
		}
	}
}

func TestCascadeCounterHoldsWhileFalling(t *testing.T) {
	t.Parallel()

	b := cascadeBoard(t)
	b.updateMatches()

	// first cascade lands on tick 10, the fourth on tick 36
	updateN(b, 10)
	if b.Cascade() != 1 {
		t.Fatalf("expected the first cascade, got cascade=%d\n%s", b.Cascade(), b)
	}
	falls, prev := 0, b.Cascade()
	for tick := 11; tick <= 36; tick++ {
		info := b.Update()
		for i := range b.panels {
			if b.panels[i].IsFalling() && b.panels[i].cascade {
				falls++
				break
			}
		}
		if b.Cascade() < prev {
			t.Fatalf("tick %d: cascade dropped from %d to %d\n%s", tick, prev, b.Cascade(), b)
		}
		if info.FallMatch && info.Cascade != prev+1 {
			t.Fatalf("tick %d: cascade match reported %d after %d", tick, info.Cascade, prev)
		}
		prev = b.Cascade()
	}
	if falls == 0 {
		t.Fatalf("expected flagged panels to fall between cascades")
	}
	if prev != 4 {
		t.Fatalf("expected four cascades by tick 36, got %d", prev)
	}
}

func expectCascade(t *testing.T, b *Board, info MatchInfo, n int) {
	t.Helper()
	if info.Combo != 3 || info.Chain != 0 || info.Cascade != n || info.SwapMatch || !info.FallMatch {
		t.Fatalf("cascade %d: got %v\n%s", n, info, b)
	}
	if b.Cascade() != n || b.Chain() != 0 {
		t.Fatalf("cascade %d: board counters cascade=%d chain=%d", n, b.Cascade(), b.Chain())
	}
}

func TestSwapChain(t *testing.T) {
	t.Parallel()

	b := newPuzzleBoard(t, []Value{
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		3, 4, 3, 3, 5, 4,
		1, 2, 1, 1, 4, 5,
		8, 8, 8, 8, 8, 8,
	})

	b.Swap(10, 0)
	first := b.Update()
	if !first.SwapMatch || first.Combo != 3 || first.Chain != 0 {
		t.Fatalf("first swap match: got %v", first)
	}

	b.Swap(9, 0)
	second := b.Update()
	if !second.SwapMatch || second.Combo != 3 || second.Chain != 1 {
		t.Fatalf("second swap match should extend the chain, got %v", second)
	}
	if b.Chain() != 2 || b.Cascade() != 0 {
		t.Fatalf("counters: chain=%d cascade=%d", b.Chain(), b.Cascade())
	}
}

func TestSwapLeadsToCascade(t *testing.T) {
	t.Parallel()

	b := newPuzzleBoard(t, []Value{
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 3, 0, 0,
		1, 2, 1, 1, 3, 3,
		8, 8, 8, 8, 8, 8,
	})

	b.Swap(10, 0)
	info := b.Update()
	if !info.SwapMatch || info.Chain != 0 {
		t.Fatalf("swap match: got %v", info)
	}

	var fall MatchInfo
	for i := 0; i < 40 && !fall.Matched(); i++ {
		fall = b.Update()
	}
	if !fall.FallMatch || fall.SwapMatch || fall.Cascade != 1 || fall.Combo != 3 {
		t.Fatalf("expected a cascade after the swap match, got %v\n%s", fall, b)
	}
	if b.Chain() != 0 {
		t.Fatalf("a fall match must not count as a swap chain, chain=%d", b.Chain())
	}
}

func TestSwapLegality(t *testing.T) {
	t.Parallel()

	layout := func() []Value {
		return []Value{
			0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0,
			1, 1, 8, 2, 3, 4,
			8, 8, 8, 8, 8, 8,
		}
	}

	tests := []struct {
		name     string
		row, col int
		prepare  func(b *Board)
		accepted bool
	}{
		{name: "different colors", row: 10, col: 3, accepted: true},
		{name: "same color", row: 10, col: 0},
		{name: "special on the right", row: 10, col: 1},
		{name: "special on the left", row: 10, col: 2},
		{name: "last column", row: 10, col: 5},
		{name: "negative column", row: 10, col: -1},
		{name: "row out of range", row: 11, col: 0},
		{name: "busy panel", row: 10, col: 3, prepare: func(b *Board) { b.panels[b.index(10, 4)].state = Matched }},
		{name: "no moves left", row: 10, col: 3, prepare: func(b *Board) { b.moves = 0 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := newPuzzleBoard(t, layout())
			if tt.prepare != nil {
				tt.prepare(b)
			}
			before := b.String()
			moves := b.Moves()

			b.Swap(tt.row, tt.col)

			if !tt.accepted {
				if after := b.String(); after != before {
					t.Fatalf("rejected swap changed the board:\n%s\n%s", before, after)
				}
				return
			}
			expectState(t, b, tt.row, tt.col, LeftSwap)
			expectState(t, b, tt.row, tt.col+1, RightSwap)
			if b.Moves() != moves-1 {
				t.Fatalf("moves: got %d want %d", b.Moves(), moves-1)
			}
		})
	}
}

func TestSwapDoesNotSpendMovesOutsidePuzzle(t *testing.T) {
	t.Parallel()

	b, err := NewBoard(Options{Rows: 6, Columns: 6, Type: Endless, Settings: unitSettings, Source: newPatternSource(6, 6, 3)})
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	b.Swap(5, 0)
	expectState(t, b, 5, 0, LeftSwap)
	if b.Moves() != 0 {
		t.Fatalf("moves should stay untouched, got %d", b.Moves())
	}
}

// patternSource yields rows that never contain a run: neighbours in a row
// differ and consecutive rows differ column by column.
type patternSource struct {
	rows, columns, filled int
	line                  int
}

func newPatternSource(rows, columns, filled int) *patternSource {
	return &patternSource{rows: rows, columns: columns, filled: filled}
}

func (s *patternSource) row(k int) []Value {
	out := make([]Value, s.columns)
	for j := range out {
		out[j] = Value(1 + (k+2*j)%4)
	}
	return out
}

func (s *patternSource) Board() []Value {
	out := make([]Value, 0, s.rows*s.columns)
	for i := 0; i < s.rows; i++ {
		if i < s.rows-s.filled {
			out = append(out, make([]Value, s.columns)...)
			continue
		}
		out = append(out, s.row(s.line)...)
		s.line++
	}
	return out
}

func (s *patternSource) Panel() Value { return Red }

func (s *patternSource) Line() []Value {
	r := s.row(s.line)
	s.line++
	return r
}

type randSource struct {
	rng                   *rand.Rand
	rows, columns, colors int
}

func (s *randSource) Panel() Value { return Value(1 + s.rng.IntN(s.colors)) }

func (s *randSource) Board() []Value {
	out := make([]Value, s.rows*s.columns)
	for i := range out {
		out[i] = s.Panel()
	}
	return out
}

func (s *randSource) Line() []Value {
	out := make([]Value, s.columns)
	for i := range out {
		out[i] = s.Panel()
	}
	return out
}

func TestGenerationHasNoRuns(t *testing.T) {
	t.Parallel()

	for seed := uint64(1); seed <= 50; seed++ {
		src := &randSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), rows: 12, columns: 6, colors: 3}
		b, err := NewBoard(Options{Rows: 12, Columns: 6, Type: Endless, Settings: unitSettings, Source: src})
		if err != nil {
			t.Fatalf("NewBoard: %v", err)
		}
		for i := 0; i < b.Rows(); i++ {
			for j := 0; j < b.Columns(); j++ {
				if b.colorRunRight(i, j) || b.colorRunDown(i, j) {
					t.Fatalf("seed %d: run at (%d,%d)\n%s", seed, i, j, b)
				}
			}
		}
		for j := 0; j < b.Columns(); j++ {
			if b.nextVerticalError(j) || b.nextHorizontalError(j) {
				t.Fatalf("seed %d: staging row completes a run at column %d\n%s", seed, j, b)
			}
		}
		if b.Generated() != 1 {
			t.Fatalf("expected one generated row, got %d", b.Generated())
		}
	}
}

func TestRiseThenGenerate(t *testing.T) {
	t.Parallel()

	b, err := NewBoard(Options{Rows: 12, Columns: 6, Type: Endless, Settings: unitSettings, Speed: riseUnit, Source: newPatternSource(12, 6, 4)})
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	staged := b.NextValues()

	// every whole step takes two ticks at this speed
	updateN(b, 2*riseSteps)
	if b.State() != Rised {
		t.Fatalf("expected RISED after %d ticks, got %s (rise=%d)", 2*riseSteps, b.State(), b.Rise())
	}

	b.Update()
	if b.State() != GenerateNext || b.Lines() != 1 || b.Rise() != 0 {
		t.Fatalf("expected GENERATE_NEXT after shifting, got %s lines=%d rise=%d", b.State(), b.Lines(), b.Rise())
	}
	for j, v := range staged {
		if got := b.Get(b.Rows()-1, j).Value(); got != v {
			t.Fatalf("bottom row col %d: got %d want %d", j, got, v)
		}
		if got := b.Get(b.Rows(), j).Value(); got != Empty {
			t.Fatalf("staging row should be cleared, col %d holds %d", j, got)
		}
	}

	b.Update()
	if b.State() != Rising || b.Generated() != 2 {
		t.Fatalf("expected RISING with a fresh row, got %s generated=%d", b.State(), b.Generated())
	}
}

func TestFreezeDoesNotDelayShift(t *testing.T) {
	t.Parallel()

	b, err := NewBoard(Options{Rows: 12, Columns: 6, Type: Endless, Settings: unitSettings, Speed: riseUnit, Source: newPatternSource(12, 6, 4)})
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	updateN(b, 2*riseSteps)
	if b.State() != Rised {
		t.Fatalf("expected RISED, got %s", b.State())
	}

	b.Freeze(5)
	b.Update()
	if b.Lines() != 1 || b.Rise() != 0 {
		t.Fatalf("row should shift while frozen: lines=%d rise=%d", b.Lines(), b.Rise())
	}
	if b.State() != Stopped || b.Resume() != GenerateNext || b.Timeout() != 5 {
		t.Fatalf("freeze should hold: state=%s resume=%s timeout=%d", b.State(), b.Resume(), b.Timeout())
	}

	updateN(b, 5)
	if b.State() != Stopped || b.Generated() != 1 {
		t.Fatalf("still frozen: state=%s generated=%d", b.State(), b.Generated())
	}
	b.Update()
	if b.State() != Rising || b.Generated() != 2 {
		t.Fatalf("expected a fresh row once the freeze ends, got %s generated=%d", b.State(), b.Generated())
	}
}

func TestMatchHoldsRiseUntilCleared(t *testing.T) {
	t.Parallel()

	b, err := NewBoard(Options{Rows: 6, Columns: 6, Type: Endless, Settings: unitSettings, Speed: 0x100, Source: newPatternSource(6, 6, 0)})
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	for j, v := range []Value{1, 2, 1, 1, 3, 4} {
		b.panels[b.index(5, j)].value = v
	}

	b.Swap(5, 0)
	info := b.Update()
	if !info.SwapMatch || info.Combo != 3 {
		t.Fatalf("expected the swap to match three, got %v", info)
	}
	if b.RiseCounter() != 0 {
		t.Fatalf("the swapping pair should hold the rise, counter=%#x", b.RiseCounter())
	}

	for i := 0; !b.AllIdle(); i++ {
		if i > 50 {
			t.Fatalf("match never cleared\n%s", b)
		}
		b.Update()
		if b.RiseCounter() != 0 {
			t.Fatalf("tick %d: board rose during a match, counter=%#x", i, b.RiseCounter())
		}
	}
	b.Update()
	if b.RiseCounter() != 0x100 {
		t.Fatalf("rise should resume once the match clears, counter=%#x", b.RiseCounter())
	}
}

func TestClog(t *testing.T) {
	t.Parallel()

	newFull := func(kind BoardType) *Board {
		b, err := NewBoard(Options{Rows: 6, Columns: 6, Type: kind, Settings: unitSettings, Speed: riseUnit, Source: newPatternSource(6, 6, 6)})
		if err != nil {
			t.Fatalf("NewBoard: %v", err)
		}
		if !b.Danger() {
			t.Fatalf("full board should be in danger")
		}
		updateN(b, 2*riseSteps)
		if b.State() != Clogged {
			t.Fatalf("expected CLOGGED, got %s", b.State())
		}
		return b
	}

	endless := newFull(Endless)
	endless.Update()
	if endless.State() != GameOver {
		t.Fatalf("endless clog should end the game, got %s", endless.State())
	}

	score := newFull(Score)
	for j := 0; j < score.Columns(); j++ {
		score.panels[score.index(0, j)].value = Empty
	}
	score.Update()
	if score.State() != Rised {
		t.Fatalf("score board should survive once the top row clears, got %s", score.State())
	}

	stuck := newFull(Score)
	stuck.Update()
	if stuck.State() != GameOver {
		t.Fatalf("score board still in danger should end, got %s", stuck.State())
	}
}

func TestPuzzleTermination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		bottom []Value
		col    int
		want   BoardState
	}{
		{name: "cleared", bottom: []Value{1, 1, 2, 1, 2, 2}, col: 2, want: Win},
		{name: "out of moves", bottom: []Value{1, 2, 1, 3, 0, 0}, col: 0, want: GameOver},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			layout := make([]Value, 3*6)
			copy(layout[12:], tt.bottom)
			b, err := NewBoard(Options{Rows: 3, Columns: 6, Type: Puzzle, Settings: unitSettings, Layout: layout, Moves: 1})
			if err != nil {
				t.Fatalf("NewBoard: %v", err)
			}
			if b.State() != PuzzleMode {
				t.Fatalf("expected PUZZLE, got %s", b.State())
			}
			b.Swap(2, tt.col)
			for i := 0; i < 100 && !b.Finished(); i++ {
				b.Update()
			}
			if b.State() != tt.want {
				t.Fatalf("got %s want %s\n%s", b.State(), tt.want, b)
			}
			if b.Moves() != 0 {
				t.Fatalf("moves: got %d", b.Moves())
			}
		})
	}
}

func TestFreezeAndQuickRise(t *testing.T) {
	t.Parallel()

	b, err := NewBoard(Options{Rows: 12, Columns: 6, Type: Endless, Settings: unitSettings, Speed: 0x100, Source: newPatternSource(12, 6, 4)})
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}

	b.Freeze(3)
	if b.State() != Stopped || b.Timeout() != 3 {
		t.Fatalf("expected STOPPED for 3, got %s timeout=%d", b.State(), b.Timeout())
	}
	b.Freeze(2)
	if b.Timeout() != 3 {
		t.Fatalf("shorter freeze must be ignored, timeout=%d", b.Timeout())
	}

	updateN(b, 3)
	if b.RiseCounter() != 0 || b.State() != Stopped {
		t.Fatalf("frozen board moved: counter=%#x state=%s", b.RiseCounter(), b.State())
	}
	b.Update()
	if b.State() != Rising || b.RiseCounter() != 0x100 {
		t.Fatalf("expected rising to resume, got %s counter=%#x", b.State(), b.RiseCounter())
	}

	b.Freeze(10)
	b.QuickRise()
	if b.Resume() != RequestFastRise || b.Timeout() != 1 {
		t.Fatalf("quick rise should cut the freeze short: resume=%s timeout=%d", b.Resume(), b.Timeout())
	}
	b.Update()
	b.Update()
	if b.State() != FastRising {
		t.Fatalf("expected FAST_RISING, got %s", b.State())
	}
	b.Update()
	if b.Rise() != 1 {
		t.Fatalf("fast rise should advance a whole step per tick, rise=%d", b.Rise())
	}
}

func TestFreezeIgnoredInPuzzle(t *testing.T) {
	t.Parallel()

	b := newPuzzleBoard(t, make([]Value, (testRows+1)*testColumns))
	b.Freeze(30)
	b.QuickRise()
	if b.State() != PuzzleMode || b.Timeout() != 0 {
		t.Fatalf("puzzle boards cannot be frozen or raised, got %s timeout=%d", b.State(), b.Timeout())
	}
}

func TestNewBoardErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts Options
		want error
	}{
		{name: "too small", opts: Options{Rows: 2, Columns: 6, Layout: make([]Value, 12)}, want: ErrBoardSize},
		{name: "no source", opts: Options{Rows: 6, Columns: 6}, want: ErrNoSource},
		{name: "short layout", opts: Options{Rows: 6, Columns: 6, Layout: make([]Value, 30)}, want: ErrLayoutSize},
		{name: "negative moves", opts: Options{Rows: 6, Columns: 6, Moves: -1, Layout: make([]Value, 36)}, want: ErrNegativeArg},
	}
	for _, tt := range tests {
		if _, err := NewBoard(tt.opts); !errors.Is(err, tt.want) {
			t.Fatalf("%s: got %v want %v", tt.name, err, tt.want)
		}
	}
}

func TestQueries(t *testing.T) {
	t.Parallel()

	data := make([]Value, (testRows+1)*testColumns)
	data[2] = Blue
	data[testColumns+4] = Red
	b := newPuzzleBoard(t, data)

	if !b.Danger() || !b.Warning() {
		t.Fatalf("expected danger and warning")
	}
	cols := b.DangerColumns()
	for j, d := range cols {
		if d != (j == 2) {
			t.Fatalf("danger column %d: got %t", j, d)
		}
	}
	if b.ClearedLines(b.Lines()) {
		t.Fatalf("board with panels on top is not cleared")
	}
	if got := b.Get(0, 2).TraceWord(); got != uint32(Blue) {
		t.Fatalf("trace word: got %#x", got)
	}
	if got := len(b.TraceWords()); got != (testRows+1)*testColumns {
		t.Fatalf("trace words: got %d", got)
	}
}
