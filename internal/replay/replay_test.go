package replay

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TricksterGuy/bottomless-block-barrage/internal/game"
	"github.com/TricksterGuy/bottomless-block-barrage/internal/source"
)

var testSettings = game.SpeedSettings{Swap: 4, Hover: 11, Fall: 1, Flash: 45, Face: 25, Pop: 9, FallAnimation: 3}

func TestInputEdges(t *testing.T) {
	t.Parallel()

	held := ButtonA | Left
	assert.True(t, held.Has(ButtonA))
	assert.False(t, held.Has(ButtonA|ButtonB))
	assert.True(t, held.Pressed(Left, ButtonA))
	assert.False(t, held.Pressed(ButtonA, ButtonA))
	assert.False(t, Input(0).Pressed(0, ButtonL))
}

func smallTrace() *Trace {
	initial := make([]uint32, 12)
	for i := 0; i < 9; i++ {
		initial[i] = uint32(1 + (i+i/3)%3)
	}
	initial[9], initial[10], initial[11] = 0x0B01, 0x0B02, 0x0B03

	staging := func(a, b, c uint32) []uint32 {
		p := make([]uint32, 12)
		copy(p, initial[:9])
		p[9], p[10], p[11] = a, b, c
		return p
	}
	return &Trace{
		Rows:    3,
		Columns: 3,
		Speed:   0x47,
		Initial: initial,
		Frames: []Frame{
			{Frame: 0, Panels: staging(0x0B01, 0x0B02, 0x0B03)},
			{Frame: 1, Panels: staging(RisenSentinel, 0, 0)},
			{Frame: 3, Panels: staging(0x0B04, 0x0B05, 0x0B06)},
			{Frame: 4, Panels: staging(0x0B04, 0x0B05, 0x0B06)},
		},
	}
}

func TestNextRowsFollowsRiseSentinel(t *testing.T) {
	t.Parallel()

	tr := smallTrace()
	require.NoError(t, tr.Validate())

	rows := tr.NextRows()
	assert.Equal(t, [][]game.Value{{1, 2, 3}, {4, 5, 6}}, rows)
	assert.Equal(t, 5, tr.FinalFrame())
	assert.Equal(t, []game.Value{1, 2, 3, 2, 3, 1, 3, 1, 2}, tr.InitialValues())
}

func TestValidateRejectsBadTraces(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Trace)
	}{
		{"small board", func(tr *Trace) { tr.Rows = 2 }},
		{"bad mode", func(tr *Trace) { tr.Mode = "versus" }},
		{"short initial", func(tr *Trace) { tr.Initial = tr.Initial[:9] }},
		{"no frames", func(tr *Trace) { tr.Frames = nil }},
		{"negative frame", func(tr *Trace) { tr.Frames[0].Frame = -1 }},
		{"short frame", func(tr *Trace) { tr.Frames[2].Panels = tr.Frames[2].Panels[:3] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := smallTrace()
			tt.mutate(tr)
			assert.Error(t, tr.Validate())
		})
	}
	assert.ErrorIs(t, (&Trace{Rows: 3, Columns: 3, Initial: make([]uint32, 12)}).Validate(), ErrEmptyTrace)
}

func TestSimulationStopsAtMissingFrame(t *testing.T) {
	t.Parallel()

	sim, err := NewSimulation(smallTrace(), testSettings, nil)
	require.NoError(t, err)
	sim.Run()
	assert.Equal(t, 2, sim.Frame())
}

func TestDriverSwapsOnPressOnly(t *testing.T) {
	t.Parallel()

	layout := []game.Value{
		0, 0, 0,
		0, 0, 0,
		1, 2, 3,
	}
	b, err := game.NewBoard(game.Options{Rows: 3, Columns: 3, Type: game.Puzzle, Settings: testSettings, Layout: layout, Moves: 5})
	require.NoError(t, err)

	d := NewDriver(b, false)
	d.Step(ButtonA, 2, 0)
	assert.Equal(t, 4, b.Moves())
	for i := 0; i < 10; i++ {
		d.Step(ButtonA, 2, 1)
	}
	assert.Equal(t, 4, b.Moves(), "holding A must not swap again")
	assert.Equal(t, game.Value(2), b.Get(2, 0).Value())
	assert.Equal(t, game.Value(1), b.Get(2, 1).Value())
}

// playSession drives a seeded endless board with scripted input and
// records every frame.
func playSession(t *testing.T, freeze bool) *Recorder {
	t.Helper()

	src, err := source.NewRandom(12, 6, 5, 6, 2024)
	require.NoError(t, err)
	b, err := game.NewBoard(game.Options{Rows: 12, Columns: 6, Type: game.Endless, Settings: testSettings, Speed: 0x400, Source: src})
	require.NoError(t, err)

	d := NewDriver(b, freeze)
	rec := NewRecorder(b, freeze)
	for f := 0; f < 600; f++ {
		var in Input
		row, col := 6+f/9%6, f/9%5
		if f < 120 && f%9 == 0 {
			in |= ButtonA
		}
		if f == 200 {
			in |= ButtonL
		}
		d.Step(in, row, col)
		rec.Record(in, row, col)
	}
	return rec
}

func TestRecordedSessionVerifies(t *testing.T) {
	t.Parallel()

	for _, freeze := range []bool{false, true} {
		rec := playSession(t, freeze)
		require.Equal(t, 600, rec.Frames())
		assert.NotEmpty(t, rec.Session())

		path := filepath.Join(t.TempDir(), "traces", "session.json")
		require.NoError(t, rec.Save(path))

		tr, err := Load(path)
		require.NoError(t, err)
		assert.Greater(t, len(tr.NextRows()), 1, "session should include a rise")
		assert.Equal(t, freeze, tr.Freeze)

		sim, err := NewSimulation(tr, game.SpeedSettings{}, nil)
		require.NoError(t, err)
		require.NoError(t, sim.Verify())
		assert.Equal(t, 600, sim.Frame())
	}
}

func TestVerifyReportsDivergence(t *testing.T) {
	t.Parallel()

	tr := playSession(t, false).Trace()
	cell := 11 * 6
	want := tr.Frames[10].Panels[cell] & valueMask
	bad := uint32(7)
	if want == bad {
		bad = 6
	}
	tr.Frames[10].Panels[cell] = tr.Frames[10].Panels[cell]&^valueMask | bad

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tr))
	decoded, err := Decode(&buf)
	require.NoError(t, err)

	sim, err := NewSimulation(decoded, testSettings, nil)
	require.NoError(t, err)
	err = sim.Verify()
	require.Error(t, err)
	require.True(t, IsDivergence(err))

	var de *DivergenceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 10, de.Frame)
	assert.Equal(t, 11, de.Row)
	assert.Equal(t, 0, de.Col)
	assert.Equal(t, game.Value(bad), de.Want)
	assert.Equal(t, game.Value(want), de.Got)
}
