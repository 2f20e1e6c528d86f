// Package replay records and re-plays frame traces of a board.
//
// A trace holds the board as it was before the first frame and, for every
// frame, the pad input, the cursor and the board after that frame's tick,
// packed with game.Panel.TraceWord. The staging row is stored after the
// visible rows; a frame whose first staging word is RisenSentinel marks a
// rise, and the staging row of the next recorded frame is the row that was
// generated for it.
package replay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	jsoniter "github.com/json-iterator/go"

	"github.com/TricksterGuy/bottomless-block-barrage/internal/game"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RisenSentinel replaces the first staging word on the frame the board rose.
const RisenSentinel uint32 = 0xFF00FF

const valueMask = 0xFF

var ErrEmptyTrace = errors.New("replay: trace has no frames")

type Frame struct {
	Frame     int      `json:"frame"`
	Input     Input    `json:"input"`
	SelectorX int      `json:"selector_x"`
	SelectorY int      `json:"selector_y"`
	Panels    []uint32 `json:"panels,omitempty"`
}

type Trace struct {
	Session  string             `json:"session"`
	Mode     string             `json:"mode,omitempty"`
	Rows     int                `json:"rows"`
	Columns  int                `json:"columns"`
	Speed    int                `json:"speed"`
	Freeze   bool               `json:"freeze,omitempty"`
	Settings game.SpeedSettings `json:"settings"`
	Initial  []uint32           `json:"initial"`
	Frames   []Frame            `json:"frames"`
}

// Validate checks the dimensions of every snapshot in the trace.
func (t *Trace) Validate() error {
	if t.Rows < 3 || t.Columns < 3 {
		return fmt.Errorf("replay: bad board size %dx%d", t.Rows, t.Columns)
	}
	if _, err := game.ParseBoardType(t.Mode); err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	want := (t.Rows + 1) * t.Columns
	if len(t.Initial) != want {
		return fmt.Errorf("replay: initial snapshot has %d words, want %d", len(t.Initial), want)
	}
	if len(t.Frames) == 0 {
		return ErrEmptyTrace
	}
	for _, f := range t.Frames {
		if f.Frame < 0 {
			return fmt.Errorf("replay: negative frame number %d", f.Frame)
		}
		if len(f.Panels) != 0 && len(f.Panels) != want {
			return fmt.Errorf("replay: frame %d has %d words, want %d", f.Frame, len(f.Panels), want)
		}
	}
	return nil
}

// FinalFrame is one past the highest frame number in the trace.
func (t *Trace) FinalFrame() int {
	last := -1
	for _, f := range t.Frames {
		if f.Frame > last {
			last = f.Frame
		}
	}
	return last + 1
}

func (t *Trace) index() map[int]*Frame {
	out := make(map[int]*Frame, len(t.Frames))
	for i := range t.Frames {
		out[t.Frames[i].Frame] = &t.Frames[i]
	}
	return out
}

// InitialValues is the visible part of the initial snapshot.
func (t *Trace) InitialValues() []game.Value {
	return values(t.Initial[:t.Rows*t.Columns])
}

// NextRows extracts every staging row the board was fed: the one in the
// initial snapshot followed by the row recorded on the frame after each
// rise. Missing frames are skipped.
func (t *Trace) NextRows() [][]game.Value {
	staging := t.Rows * t.Columns
	rows := [][]game.Value{values(t.Initial[staging : staging+t.Columns])}

	frames := t.index()
	numbers := make([]int, 0, len(frames))
	for n := range frames {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	risen := false
	for _, n := range numbers {
		f := frames[n]
		if len(f.Panels) == 0 {
			continue
		}
		if risen {
			rows = append(rows, values(f.Panels[staging:staging+t.Columns]))
			risen = false
		}
		if f.Panels[staging] == RisenSentinel {
			risen = true
		}
	}
	return rows
}

func values(words []uint32) []game.Value {
	out := make([]game.Value, len(words))
	for i, w := range words {
		out[i] = game.Value(w & valueMask)
	}
	return out
}

func Decode(r io.Reader) (*Trace, error) {
	var t Trace
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func Encode(w io.Writer, t *Trace) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}
	return nil
}

// Load reads a trace file.
func Load(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
