package input

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/coral-compass/compass"
)

func keyEvent(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeEvent(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestKeyboardArrowsMapToDPad(t *testing.T) {
	kb := NewKeyboard(nil, 0)

	kb.HandleEvent(keyEvent(tcell.KeyRight))
	kb.HandleEvent(keyEvent(tcell.KeyUp))
	f, present := kb.Poll(epoch)

	if !present {
		t.Error("Keyboard should always be present")
	}
	if f.DPadX != 1 || f.DPadY != 1 {
		t.Errorf("Expected dpad (1,1), got (%d,%d)", f.DPadX, f.DPadY)
	}
	if !f.Now.Equal(epoch) {
		t.Errorf("Frame not stamped with poll time: %v", f.Now)
	}
}

// TestKeyboardCoalescesBetweenTicks checks last-value-wins and consumption on poll
func TestKeyboardCoalescesBetweenTicks(t *testing.T) {
	kb := NewKeyboard(nil, 0)

	kb.HandleEvent(keyEvent(tcell.KeyLeft))
	kb.HandleEvent(runeEvent('l'))
	kb.HandleEvent(keyEvent(tcell.KeyRight))

	f, _ := kb.Poll(epoch)
	if f.DPadX != 1 {
		t.Errorf("Expected last horizontal value to win, got %d", f.DPadX)
	}

	f, _ = kb.Poll(epoch)
	if f.DPadX != 0 || f.DPadY != 0 {
		t.Errorf("Expected empty frame after consumption, got %+v", f)
	}
}

func TestKeyboardAimAndArm(t *testing.T) {
	mask := ButtonMask(6, 7)
	kb := NewKeyboard(nil, mask)

	kb.HandleEvent(runeEvent('2'))
	kb.HandleEvent(keyEvent(tcell.KeyEnter))
	f, _ := kb.Poll(epoch)

	sel := compass.NewSelection().AimStick(f.StickX, f.StickY, compass.DefaultDeadzone)
	if sel.Side != 1 {
		t.Errorf("Key '2' should aim at side 1, got %d", sel.Side)
	}
	if f.Buttons != mask {
		t.Errorf("Enter should report the arm mask, got %b", f.Buttons)
	}
}

func TestKeyboardQuit(t *testing.T) {
	kb := NewKeyboard(nil, 0)

	if kb.HandleEvent(runeEvent('x')) != true {
		t.Error("Unbound key should not quit")
	}
	if kb.HandleEvent(tcell.NewEventResize(80, 24)) != true {
		t.Error("Non-key event should not quit")
	}
	for _, ev := range []*tcell.EventKey{runeEvent('q'), keyEvent(tcell.KeyEscape)} {
		if kb.HandleEvent(ev) {
			t.Errorf("Expected quit for %v", ev.Name())
		}
	}
}
