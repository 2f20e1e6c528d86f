package replay

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/TricksterGuy/bottomless-block-barrage/internal/game"
)

// Recorder captures a live session as a Trace. Call Record once after every
// Driver.Step.
type Recorder struct {
	board     *game.Board
	trace     Trace
	generated int
}

func NewRecorder(board *game.Board, freeze bool) *Recorder {
	return &Recorder{
		board:     board,
		generated: board.Generated(),
		trace: Trace{
			Session:  uuid.NewString(),
			Mode:     board.Type().String(),
			Rows:     board.Rows(),
			Columns:  board.Columns(),
			Speed:    board.Speed(),
			Freeze:   freeze,
			Settings: board.Settings(),
			Initial:  board.TraceWords(),
		},
	}
}

// Record appends the frame that was just stepped.
func (r *Recorder) Record(in Input, row, col int) {
	if g := r.board.Generated(); g != r.generated {
		r.generated = g
		// The new staging row shows up on this frame, so the rise is
		// flagged on the one before it.
		if n := len(r.trace.Frames); n > 0 {
			r.trace.Frames[n-1].Panels[r.trace.Rows*r.trace.Columns] = RisenSentinel
		}
	}
	r.trace.Frames = append(r.trace.Frames, Frame{
		Frame:     len(r.trace.Frames),
		Input:     in,
		SelectorX: col,
		SelectorY: row,
		Panels:    r.board.TraceWords(),
	})
}

func (r *Recorder) Session() string { return r.trace.Session }

func (r *Recorder) Frames() int { return len(r.trace.Frames) }

// Trace returns the trace recorded so far. The result shares no memory
// with the recorder.
func (r *Recorder) Trace() *Trace {
	t := r.trace
	t.Initial = append([]uint32(nil), r.trace.Initial...)
	t.Frames = make([]Frame, len(r.trace.Frames))
	for i, f := range r.trace.Frames {
		f.Panels = append([]uint32(nil), f.Panels...)
		t.Frames[i] = f
	}
	return &t
}

// Save writes the trace to path, creating parent directories.
func (r *Recorder) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save trace: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save trace: %w", err)
	}
	if err := Encode(f, &r.trace); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
