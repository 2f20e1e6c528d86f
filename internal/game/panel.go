package game

import "fmt"

// Value is the color held by a panel slot.
type Value uint8

const (
	Empty Value = iota
	Red
	Green
	Cyan
	Yellow
	Purple
	Blue
	Silver
	// Special and anything above it can be neither matched nor swapped.
	Special
)

// ColorCount is the number of matchable colors.
const ColorCount = int(Silver)

// IsColor reports whether v can take part in a match.
func (v Value) IsColor() bool { return v >= Red && v < Special }

func (v Value) IsSpecial() bool { return v >= Special }

// PanelState is the animation/logic state of a single panel.
type PanelState uint8

const (
	Idle PanelState = iota
	LeftSwap
	RightSwap
	Swapped
	PendingFall
	Falling
	EndFall
	IdleFell
	PendingMatch
	Matched
	Removed
	Bottom
)

var panelStateNames = [...]string{
	Idle:         "IDLE",
	LeftSwap:     "LEFT_SWAP",
	RightSwap:    "RIGHT_SWAP",
	Swapped:      "SWAPPED",
	PendingFall:  "PENDING_FALL",
	Falling:      "FALLING",
	EndFall:      "END_FALL",
	IdleFell:     "IDLE_FELL",
	PendingMatch: "PENDING_MATCH",
	Matched:      "MATCHED",
	Removed:      "REMOVED",
	Bottom:       "BOTTOM",
}

func (s PanelState) String() string {
	if int(s) < len(panelStateNames) {
		return panelStateNames[s]
	}
	return fmt.Sprintf("PanelState(%d)", uint8(s))
}

var panelStateCodes = [...]byte{
	Idle:         '.',
	LeftSwap:     '<',
	RightSwap:    '>',
	Swapped:      '=',
	PendingFall:  '^',
	Falling:      'v',
	EndFall:      '_',
	IdleFell:     ',',
	PendingMatch: '!',
	Matched:      '*',
	Removed:      'x',
	Bottom:       '#',
}

// Code is the one-character form used by board dumps.
func (s PanelState) Code() byte {
	if int(s) < len(panelStateCodes) {
		return panelStateCodes[s]
	}
	return '?'
}

// SpeedSettings holds the frame durations of every timed panel state.
type SpeedSettings struct {
	Swap          int `yaml:"swap" json:"swap"`
	Hover         int `yaml:"hover" json:"hover"`
	Fall          int `yaml:"fall" json:"fall"`
	Flash         int `yaml:"flash" json:"flash"`
	Face          int `yaml:"face" json:"face"`
	Pop           int `yaml:"pop" json:"pop"`
	FallAnimation int `yaml:"fall_animation" json:"fall_animation"`
}

// Panel is one cell of the board.
type Panel struct {
	value     Value
	state     PanelState
	countdown int
	cascade   bool

	colors     int
	matchIndex int
	matchTotal int

	settings *SpeedSettings
}

func (p Panel) Value() Value       { return p.value }
func (p Panel) State() PanelState  { return p.state }
func (p Panel) Countdown() int     { return p.countdown }
func (p Panel) Cascade() bool      { return p.cascade }
func (p Panel) Empty() bool        { return p.value == Empty }
func (p Panel) Special() bool      { return p.value.IsSpecial() }
func (p Panel) MatchColors() int   { return p.colors }
func (p Panel) IsIdle() bool       { return p.state == Idle }
func (p Panel) IsFalling() bool    { return p.state == PendingFall || p.state == Falling }
func (p Panel) IsSwapping() bool   { return p.state == LeftSwap || p.state == RightSwap }
func (p Panel) IsMatchState() bool { return p.state == PendingMatch || p.state == Matched || p.state == Removed }

// Matchable reports whether the panel may be part of a newly detected match.
func (p Panel) Matchable() bool {
	if !p.value.IsColor() {
		return false
	}
	switch p.state {
	case Idle, Swapped, EndFall, IdleFell:
		return true
	}
	return false
}

// TraceWord packs the panel the way recorded traces do:
// countdown<<16 | state<<8 | value.
func (p Panel) TraceWord() uint32 {
	return uint32(p.countdown&0xFFFF)<<16 | uint32(p.state)<<8 | uint32(p.value)
}

func (p *Panel) enter(s PanelState, countdown int) {
	p.state = s
	p.countdown = countdown
}

// receiving reports whether a falling panel above may drop into this cell.
func (p *Panel) receiving() bool {
	return p.value == Empty && p.state == Idle
}

func (p *Panel) tick() bool {
	if p.countdown > 0 {
		p.countdown--
	}
	return p.countdown <= 0
}

// Match marks the panel as the index-th of total panels in a new match.
func (p *Panel) Match(index, total, colors int, cascade bool) {
	if index < 0 || index > total {
		panic(fmt.Sprintf("game: match index %d outside [0,%d]", index, total))
	}
	p.enter(PendingMatch, 1)
	p.colors = colors
	p.cascade = cascade
	p.matchIndex, p.matchTotal = index, total
}

// neighbors are the cells a panel's step may look at or write into.
// below is the staging row for the last board row; right is nil in the
// last column.
type neighbors struct {
	below      *Panel
	right      *Panel
	belowRight *Panel
}

// update advances the panel one tick and reports whether the board must
// rescan for matches.
func (p *Panel) update(n neighbors) bool {
	expired := p.tick()
	s := p.settings

	switch p.state {
	case Idle:
		if p.value == Empty {
			p.cascade = false
			return false
		}
		if n.below != nil && (n.below.receiving() || n.below.IsFalling()) {
			p.enter(PendingFall, s.Hover)
			p.cascade = n.below.cascade
		}
	case LeftSwap:
		if !expired || n.right == nil || n.right.state != RightSwap {
			return false
		}
		p.value, n.right.value = n.right.value, p.value
		p.settleSwap(n.below)
		n.right.settleSwap(n.belowRight)
		return true
	case RightSwap:
		// Resolved by the left half.
	case Swapped:
		if expired {
			p.enter(Idle, 0)
		}
	case PendingFall:
		if expired {
			p.enter(Falling, s.Fall)
		}
	case Falling:
		if !expired {
			return false
		}
		switch {
		case n.below != nil && n.below.receiving():
			n.below.value = p.value
			n.below.cascade = p.cascade
			n.below.enter(Falling, s.Fall)
			p.value = Empty
			p.cascade = false
			p.enter(Idle, 0)
		case n.below != nil && n.below.IsFalling():
		default:
			p.enter(EndFall, s.FallAnimation)
			return true
		}
	case EndFall:
		if expired {
			p.enter(IdleFell, 1)
		}
	case IdleFell:
		if expired {
			p.enter(Idle, 0)
			p.cascade = false
		}
	case PendingMatch:
		if expired {
			p.enter(Matched, s.Flash+s.Pop*(p.matchTotal-p.matchIndex))
		}
	case Matched:
		if expired {
			p.enter(Removed, s.Face+s.Pop*p.matchIndex)
		}
	case Removed:
		if expired {
			p.value = Empty
			p.colors = 0
			p.enter(Idle, 0)
			p.cascade = true
		}
	case Bottom:
	}
	return false
}

// settleSwap picks the state of one half of a finished swap.
func (p *Panel) settleSwap(below *Panel) {
	if p.value != Empty && below != nil && below.receiving() {
		p.enter(PendingFall, p.settings.Hover)
		return
	}
	p.enter(Swapped, 1)
}
