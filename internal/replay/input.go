package replay

// Input is the pad state of one frame, one bit per button.
type Input uint16

const (
	ButtonA Input = 1 << iota
	ButtonB
	Select
	Start
	Right
	Left
	Up
	Down
	ButtonR
	ButtonL
)

// Has reports whether every bit of b is held.
func (in Input) Has(b Input) bool { return in&b == b }

// Pressed reports whether b went down this frame.
func (in Input) Pressed(prev, b Input) bool { return in.Has(b) && !prev.Has(b) }
