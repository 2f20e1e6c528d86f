// Package puzzle reads and writes puzzle layout files.
//
// A file is little endian:
//
//	magic    [4]byte "BBBP"
//	major    uint8
//	minor    uint8
//	type     uint8   0 = clear the board within a move budget
//	rows     uint8
//	columns  uint8
//	starting uint8   rows filled at the bottom of the board
//	moves    uint32
//	panels   [starting*columns]uint8, top row first
package puzzle

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/TricksterGuy/bottomless-block-barrage/internal/game"
)

const (
	VersionMajor = 1
	VersionMinor = 0

	MaxRows    = 11
	MaxColumns = 6
	MinSize    = 3
	MaxMoves   = 1_000_000
)

var magic = [4]byte{'B', 'B', 'B', 'P'}

// Type is the puzzle goal.
type Type uint8

const (
	// Moves puzzles are won by emptying the board within the move budget.
	Moves Type = iota
)

var (
	ErrBadMagic  = errors.New("not a puzzle file")
	ErrTruncated = errors.New("puzzle file is truncated")
)

// VersionError reports a file written by a newer format revision.
type VersionError struct {
	Major, Minor uint8
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("puzzle file version %d.%d is newer than supported %d.%d", e.Major, e.Minor, VersionMajor, VersionMinor)
}

// FormatError reports a header or panel field outside its allowed range.
type FormatError struct {
	Field string
	Value int
	Limit string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("puzzle file: %s=%d, want %s", e.Field, e.Value, e.Limit)
}

func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// Puzzle is a decoded puzzle layout.
type Puzzle struct {
	Type     Type
	Rows     int
	Columns  int
	Starting int
	Moves    int
	// Panels holds Starting*Columns values, top row first.
	Panels []game.Value
}

type header struct {
	Magic    [4]byte
	Major    uint8
	Minor    uint8
	Type     uint8
	Rows     uint8
	Columns  uint8
	Starting uint8
	Moves    uint32
}

// Decode reads one puzzle from r.
func Decode(r io.Reader) (*Puzzle, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, fmt.Errorf("read puzzle header: %w", err)
	}
	if h.Magic != magic {
		return nil, ErrBadMagic
	}
	if h.Major > VersionMajor || (h.Major == VersionMajor && h.Minor > VersionMinor) {
		return nil, &VersionError{Major: h.Major, Minor: h.Minor}
	}

	p := &Puzzle{
		Type:     Type(h.Type),
		Rows:     int(h.Rows),
		Columns:  int(h.Columns),
		Starting: int(h.Starting),
		Moves:    int(h.Moves),
	}
	if err := p.validateHeader(); err != nil {
		return nil, err
	}

	raw := make([]byte, p.Starting*p.Columns)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, ErrTruncated
	}
	p.Panels = make([]game.Value, len(raw))
	for i, b := range raw {
		p.Panels[i] = game.Value(b)
	}
	if err := p.validatePanels(); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeBytes is Decode over an in-memory file.
func DecodeBytes(data []byte) (*Puzzle, error) {
	return Decode(bytes.NewReader(data))
}

func (p *Puzzle) validateHeader() error {
	switch {
	case p.Type != Moves:
		return &FormatError{Field: "type", Value: int(p.Type), Limit: "0"}
	case p.Rows < MinSize || p.Rows > MaxRows:
		return &FormatError{Field: "rows", Value: p.Rows, Limit: fmt.Sprintf("%d..%d", MinSize, MaxRows)}
	case p.Columns < MinSize || p.Columns > MaxColumns:
		return &FormatError{Field: "columns", Value: p.Columns, Limit: fmt.Sprintf("%d..%d", MinSize, MaxColumns)}
	case p.Starting < 0 || p.Starting > p.Rows:
		return &FormatError{Field: "starting", Value: p.Starting, Limit: fmt.Sprintf("0..%d", p.Rows)}
	case p.Moves < 0 || p.Moves > MaxMoves:
		return &FormatError{Field: "moves", Value: p.Moves, Limit: fmt.Sprintf("0..%d", MaxMoves)}
	}
	return nil
}

func (p *Puzzle) validatePanels() error {
	if len(p.Panels) != p.Starting*p.Columns {
		return &FormatError{Field: "panels", Value: len(p.Panels), Limit: fmt.Sprintf("%d", p.Starting*p.Columns)}
	}
	for _, v := range p.Panels {
		if v > game.Special {
			return &FormatError{Field: "panel", Value: int(v), Limit: fmt.Sprintf("0..%d", game.Special)}
		}
	}
	return nil
}

// Validate checks the puzzle against the file format limits.
func (p *Puzzle) Validate() error {
	if err := p.validateHeader(); err != nil {
		return err
	}
	return p.validatePanels()
}

// Encode writes p in the current format revision.
func (p *Puzzle) Encode(w io.Writer) error {
	if err := p.Validate(); err != nil {
		return err
	}
	h := header{
		Magic:    magic,
		Major:    VersionMajor,
		Minor:    VersionMinor,
		Type:     uint8(p.Type),
		Rows:     uint8(p.Rows),
		Columns:  uint8(p.Columns),
		Starting: uint8(p.Starting),
		Moves:    uint32(p.Moves),
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("write puzzle header: %w", err)
	}
	raw := make([]byte, len(p.Panels))
	for i, v := range p.Panels {
		raw[i] = byte(v)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("write puzzle panels: %w", err)
	}
	return nil
}

// Layout expands the puzzle to a full Rows*Columns board, empty above
// the starting rows.
func (p *Puzzle) Layout() []game.Value {
	out := make([]game.Value, p.Rows*p.Columns)
	copy(out[(p.Rows-p.Starting)*p.Columns:], p.Panels)
	return out
}

// Board builds a playable puzzle board.
func (p *Puzzle) Board(settings game.SpeedSettings) (*game.Board, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return game.NewBoard(game.Options{
		Rows:     p.Rows,
		Columns:  p.Columns,
		Type:     game.Puzzle,
		Settings: settings,
		Layout:   p.Layout(),
		Moves:    p.Moves,
	})
}
