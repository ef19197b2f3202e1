package input

import (
	"testing"
	"time"

	"github.com/lixenwraith/coral-compass/compass"
)

func TestAdapterRightSignalsDebounced(t *testing.T) {
	tests := []struct {
		name    string
		gap     time.Duration
		changes int
	}{
		{"100ms apart", 100 * time.Millisecond, 1},
		{"200ms apart", 200 * time.Millisecond, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdapter(DefaultDebounce, compass.DefaultDeadzone)
			sel := compass.NewSelection()

			sel, _ = a.Apply(sel, Frame{DPadX: 1, Now: epoch})
			sel, _ = a.Apply(sel, Frame{DPadX: 1, Now: epoch.Add(tt.gap)})

			if sel.Column != tt.changes {
				t.Errorf("Expected column %d after two right signals, got %d", tt.changes, sel.Column)
			}
		})
	}
}

func TestAdapterDirectionMapping(t *testing.T) {
	a := NewAdapter(DefaultDebounce, compass.DefaultDeadzone)
	sel := compass.NewSelection()

	sel, acc := a.Apply(sel, Frame{DPadX: 1, Now: epoch})
	if sel.Column != 1 || sel.Position != 2 || acc != AcceptedRight {
		t.Errorf("Right: column %d position %d accepted %b", sel.Column, sel.Position, acc)
	}

	sel, acc = a.Apply(sel, Frame{DPadX: -1, Now: epoch.Add(time.Millisecond)})
	if sel.Column != 0 || acc != AcceptedLeft {
		t.Errorf("Left: column %d accepted %b", sel.Column, acc)
	}

	sel, acc = a.Apply(sel, Frame{DPadY: 1, Now: epoch.Add(2 * time.Millisecond)})
	if sel.Row != 3 || acc != AcceptedUp {
		t.Errorf("Up from row 0 should wrap to 3, got row %d accepted %b", sel.Row, acc)
	}

	sel, acc = a.Apply(sel, Frame{DPadY: -1, Now: epoch.Add(3 * time.Millisecond)})
	if sel.Row != 0 || acc != AcceptedDown {
		t.Errorf("Down should increase row, got row %d accepted %b", sel.Row, acc)
	}
}

// TestAdapterHeldDirectionRepeats checks a held pad re-triggers once per interval
func TestAdapterHeldDirectionRepeats(t *testing.T) {
	a := NewAdapter(DefaultDebounce, compass.DefaultDeadzone)
	sel := compass.NewSelection()

	steps := 0
	// 16ms ticks for one second with the pad held right
	for tick := 0; tick <= 62; tick++ {
		var acc Accepted
		sel, acc = a.Apply(sel, Frame{DPadX: 1, Now: epoch.Add(time.Duration(tick) * 16 * time.Millisecond)})
		if acc.Steps() {
			steps++
		}
	}

	// Accepts at 0, 160, 320, 480, 640, 800, 960 ms
	if steps != 7 {
		t.Errorf("Expected 7 repeats while held for ~1s, got %d", steps)
	}
	if sel.Column != 7%compass.ColumnCount {
		t.Errorf("Expected column %d, got %d", 7%compass.ColumnCount, sel.Column)
	}
}

func TestAdapterStickAim(t *testing.T) {
	a := NewAdapter(DefaultDebounce, compass.DefaultDeadzone)
	sel := compass.NewSelection()

	sel, acc := a.Apply(sel, Frame{StickX: 0.1, StickY: -0.15, Now: epoch})
	if acc != AcceptedNone || sel.Side != compass.SideBottom {
		t.Errorf("Deadzone vector changed state: side %d accepted %b", sel.Side, acc)
	}

	sel, acc = a.Apply(sel, Frame{StickX: 1, StickY: 0, Now: epoch})
	if !acc.SideChanged() || sel.Side != 0 || sel.Position != 10 {
		t.Errorf("Expected side 0 position 10, got side %d position %d accepted %b", sel.Side, sel.Position, acc)
	}

	// Same side again reports no change
	_, acc = a.Apply(sel, Frame{StickX: 1, StickY: 0.1, Now: epoch})
	if acc.SideChanged() {
		t.Error("Re-aiming at the same side should not report a change")
	}
}

func TestAdapterCombinedTick(t *testing.T) {
	a := NewAdapter(DefaultDebounce, compass.DefaultDeadzone)
	sel := compass.NewSelection()

	// Column step and side aim in the same tick: position reflects both
	sel, acc := a.Apply(sel, Frame{DPadX: 1, StickX: -1, StickY: -0.5, Now: epoch})
	if sel.Column != 1 {
		t.Errorf("Expected column 1, got %d", sel.Column)
	}
	if sel.Side != 3 {
		t.Errorf("Expected side 3 for up-left deflection, got %d", sel.Side)
	}
	if sel.Position != compass.Resolve(sel.Side, sel.Column) {
		t.Errorf("Position %d out of sync with side %d column %d", sel.Position, sel.Side, sel.Column)
	}
	if acc.SideChanged() {
		t.Error("Side did not change from the default bottom side")
	}
}
