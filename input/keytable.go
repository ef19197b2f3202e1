package input

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/coral-compass/compass"
)

// KeyAction classifies what a key does to the pending frame
type KeyAction uint8

const (
	ActionNone KeyAction = iota
	ActionQuit
	ActionDPad // Assert a d-pad direction for the next tick
	ActionAim  // Deflect the stick toward a side center
	ActionArm  // Hold the arm combination for the next tick
)

// KeyEntry describes a key's behavior without function pointers
type KeyEntry struct {
	Action KeyAction
	DX, DY int
	Side   compass.Side
}

// KeyTable maps terminal keys to controller actions
type KeyTable struct {
	// Special keys (Ctrl+*, arrows, Enter)
	SpecialKeys map[tcell.Key]KeyEntry

	// Rune bindings
	Runes map[rune]KeyEntry
}

// DefaultKeyTable returns the bench bindings: arrows or hjkl for the d-pad,
// 1-6 aim at sides 0-5, Enter arms, q/Esc/Ctrl+C quit
func DefaultKeyTable() *KeyTable {
	return &KeyTable{
		SpecialKeys: map[tcell.Key]KeyEntry{
			tcell.KeyCtrlC:  {Action: ActionQuit},
			tcell.KeyCtrlQ:  {Action: ActionQuit},
			tcell.KeyEscape: {Action: ActionQuit},
			tcell.KeyUp:     {Action: ActionDPad, DY: 1},
			tcell.KeyDown:   {Action: ActionDPad, DY: -1},
			tcell.KeyLeft:   {Action: ActionDPad, DX: -1},
			tcell.KeyRight:  {Action: ActionDPad, DX: 1},
			tcell.KeyEnter:  {Action: ActionArm},
		},

		Runes: map[rune]KeyEntry{
			'q': {Action: ActionQuit},

			'h': {Action: ActionDPad, DX: -1},
			'j': {Action: ActionDPad, DY: -1},
			'k': {Action: ActionDPad, DY: 1},
			'l': {Action: ActionDPad, DX: 1},

			'1': {Action: ActionAim, Side: 0},
			'2': {Action: ActionAim, Side: 1},
			'3': {Action: ActionAim, Side: 2},
			'4': {Action: ActionAim, Side: 3},
			'5': {Action: ActionAim, Side: 4},
			'6': {Action: ActionAim, Side: 5},
		},
	}
}

// Lookup resolves a key event to its entry
func (kt *KeyTable) Lookup(ev *tcell.EventKey) (KeyEntry, bool) {
	if ev.Key() == tcell.KeyRune {
		e, ok := kt.Runes[ev.Rune()]
		return e, ok
	}
	e, ok := kt.SpecialKeys[ev.Key()]
	return e, ok
}
