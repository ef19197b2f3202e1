package input

import "time"

// Direction is a logical d-pad direction, each debounced independently
type Direction uint8

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown

	dirCount
)

func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	}
	return "none"
}

// Frame is one tick of raw controller state
type Frame struct {
	// D-pad: DPadX +1 right, DPadY +1 up (hat convention)
	DPadX int
	DPadY int

	// Analog stick in [-1,1], screen convention (positive Y points down)
	StickX float64
	StickY float64

	// Buttons is a bitmask indexed by device button number
	Buttons uint32

	// Now is the monotonic sample time
	Now time.Time
}

// Held reports whether button index b is pressed
func (f Frame) Held(b int) bool {
	return b >= 0 && b < 32 && f.Buttons&(1<<uint(b)) != 0
}

// Source produces one Frame per tick
// present is false while no device is attached; the frame is then zero apart from Now
type Source interface {
	Poll(now time.Time) (frame Frame, present bool)
	Close() error
}
