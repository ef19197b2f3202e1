package input

import (
	"time"

	"github.com/lixenwraith/coral-compass/compass"
)

// Accepted reports which transitions a tick applied
type Accepted uint8

const (
	AcceptedLeft Accepted = 1 << iota
	AcceptedRight
	AcceptedUp
	AcceptedDown
	AcceptedSide

	AcceptedNone Accepted = 0
)

// Steps reports whether any d-pad direction was accepted
func (a Accepted) Steps() bool {
	return a&(AcceptedLeft|AcceptedRight|AcceptedUp|AcceptedDown) != 0
}

// SideChanged reports whether the stick moved the selection to another side
func (a Accepted) SideChanged() bool {
	return a&AcceptedSide != 0
}

func acceptedFor(dir Direction) Accepted {
	return Accepted(1) << dir
}

// Adapter applies debounced frames to a selection
type Adapter struct {
	debouncer *Debouncer
	deadzone  float64
}

// NewAdapter creates an adapter
// Non-positive debounce selects DefaultDebounce; negative deadzone selects compass.DefaultDeadzone
func NewAdapter(debounce time.Duration, deadzone float64) *Adapter {
	if deadzone < 0 {
		deadzone = compass.DefaultDeadzone
	}
	return &Adapter{
		debouncer: NewDebouncer(debounce),
		deadzone:  deadzone,
	}
}

// Debouncer exposes the per-direction clock
func (a *Adapter) Debouncer() *Debouncer {
	return a.debouncer
}

// Apply runs one tick: d-pad steps first, then stick aim
// Right/left cycle the column forward/back; up/down move the row up (-1) and down (+1)
func (a *Adapter) Apply(sel compass.Selection, f Frame) (compass.Selection, Accepted) {
	acc := AcceptedNone

	switch {
	case f.DPadX > 0:
		if a.debouncer.Allow(DirRight, f.Now) {
			sel = sel.StepColumn(1)
			acc |= acceptedFor(DirRight)
		}
	case f.DPadX < 0:
		if a.debouncer.Allow(DirLeft, f.Now) {
			sel = sel.StepColumn(-1)
			acc |= acceptedFor(DirLeft)
		}
	}

	switch {
	case f.DPadY > 0:
		if a.debouncer.Allow(DirUp, f.Now) {
			sel = sel.StepRow(-1)
			acc |= acceptedFor(DirUp)
		}
	case f.DPadY < 0:
		if a.debouncer.Allow(DirDown, f.Now) {
			sel = sel.StepRow(1)
			acc |= acceptedFor(DirDown)
		}
	}

	prevSide := sel.Side
	sel = sel.AimStick(f.StickX, f.StickY, a.deadzone)
	if sel.Side != prevSide {
		acc |= AcceptedSide
	}

	return sel, acc
}
