package replay

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/TricksterGuy/bottomless-block-barrage/internal/game"
	"github.com/TricksterGuy/bottomless-block-barrage/internal/source"
)

// DivergenceError reports the first cell where the simulated board differs
// from the trace.
type DivergenceError struct {
	Frame    int
	Row, Col int
	Want     game.Value
	Got      game.Value
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("frame %d: panel (%d,%d) is %d, trace has %d", e.Frame, e.Row, e.Col, e.Got, e.Want)
}

func IsDivergence(err error) bool {
	var de *DivergenceError
	return errors.As(err, &de)
}

// Simulation feeds a trace's inputs into a fresh board frame by frame.
type Simulation struct {
	trace  *Trace
	frames map[int]*Frame
	driver *Driver
	frame  int
	logger *zap.Logger
}

// NewSimulation builds the board described by the trace. Settings stored in
// the trace win over settings; a nil logger disables logging.
func NewSimulation(t *Trace, settings game.SpeedSettings, logger *zap.Logger) (*Simulation, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if t.Settings != (game.SpeedSettings{}) {
		settings = t.Settings
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	kind, _ := game.ParseBoardType(t.Mode)
	if kind == game.Puzzle {
		return nil, fmt.Errorf("replay: puzzle traces are not supported")
	}

	src, err := source.NewReplay(t.Columns, t.InitialValues(), t.NextRows())
	if err != nil {
		return nil, err
	}
	board, err := game.NewBoard(game.Options{
		Rows:     t.Rows,
		Columns:  t.Columns,
		Type:     kind,
		Settings: settings,
		Speed:    t.Speed,
		Source:   src,
	})
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	return &Simulation{
		trace:  t,
		frames: t.index(),
		driver: NewDriver(board, t.Freeze),
		logger: logger.With(zap.String("session", t.Session)),
	}, nil
}

func (s *Simulation) Board() *game.Board { return s.driver.Board() }

// Frame is the number of the next frame to simulate.
func (s *Simulation) Frame() int { return s.frame }

// Step simulates the next frame. It returns false, doing nothing, once the
// trace has no frame with that number.
func (s *Simulation) Step() bool {
	f, ok := s.frames[s.frame]
	if !ok {
		return false
	}
	info := s.driver.Step(f.Input, f.SelectorY, f.SelectorX)
	if ce := s.logger.Check(zap.DebugLevel, "frame"); ce != nil {
		ce.Write(
			zap.Int("frame", s.frame),
			zap.Uint16("input", uint16(f.Input)),
			zap.Int("selector_x", f.SelectorX),
			zap.Int("selector_y", f.SelectorY),
			zap.Stringer("match", info),
			zap.Stringer("board", s.Board()),
		)
	}
	s.frame++
	return true
}

// Run steps until the trace runs out of frames.
func (s *Simulation) Run() {
	for s.Step() {
	}
}

// Verify runs the trace and compares the visible panel values after every
// recorded frame with the snapshot for that frame.
func (s *Simulation) Verify() error {
	for {
		f, ok := s.frames[s.frame]
		if !ok {
			s.logger.Info("trace verified", zap.Int("frames", s.frame))
			return nil
		}
		s.Step()
		if err := s.compare(f); err != nil {
			s.logger.Warn("trace diverged", zap.Error(err))
			return err
		}
	}
}

func (s *Simulation) compare(f *Frame) error {
	if len(f.Panels) == 0 {
		return nil
	}
	b := s.Board()
	for i := 0; i < s.trace.Rows; i++ {
		for j := 0; j < s.trace.Columns; j++ {
			want := game.Value(f.Panels[i*s.trace.Columns+j] & valueMask)
			if got := b.Get(i, j).Value(); got != want {
				return &DivergenceError{Frame: f.Frame, Row: i, Col: j, Want: want, Got: got}
			}
		}
	}
	return nil
}
