package input

import (
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/coral-compass/compass"
)

// Keyboard is a bench Source driven by terminal key events
// Events between ticks are coalesced last-value-wins per axis; each Poll consumes them
// Terminal auto-repeat on a held key re-asserts the direction, so the debouncer sees a held pad
type Keyboard struct {
	table   *KeyTable
	armMask uint32

	dpadX, dpadY int
	aim          compass.Side
	arm          bool
}

// NewKeyboard creates a keyboard source; armMask is reported as held when Enter is pressed
func NewKeyboard(table *KeyTable, armMask uint32) *Keyboard {
	if table == nil {
		table = DefaultKeyTable()
	}
	return &Keyboard{
		table:   table,
		armMask: armMask,
		aim:     compass.NoSide,
	}
}

// HandleEvent records a terminal event; returns false when the operator asked to quit
func (k *Keyboard) HandleEvent(ev tcell.Event) bool {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return true
	}

	entry, ok := k.table.Lookup(key)
	if !ok {
		return true
	}

	switch entry.Action {
	case ActionQuit:
		return false
	case ActionDPad:
		if entry.DX != 0 {
			k.dpadX = entry.DX
		}
		if entry.DY != 0 {
			k.dpadY = entry.DY
		}
	case ActionAim:
		k.aim = entry.Side
	case ActionArm:
		k.arm = true
	}
	return true
}

// Poll implements Source; the keyboard is always present
func (k *Keyboard) Poll(now time.Time) (Frame, bool) {
	f := Frame{
		DPadX: k.dpadX,
		DPadY: k.dpadY,
		Now:   now,
	}
	if k.aim != compass.NoSide {
		angle := compass.SideCenterAngle(k.aim)
		f.StickX = math.Cos(angle)
		f.StickY = math.Sin(angle)
	}
	if k.arm {
		f.Buttons = k.armMask
	}

	k.dpadX, k.dpadY = 0, 0
	k.aim = compass.NoSide
	k.arm = false

	return f, true
}

// Close implements Source
func (k *Keyboard) Close() error {
	return nil
}
