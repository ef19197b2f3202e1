package input

import "testing"

func TestGateRequiresArmCombination(t *testing.T) {
	g := NewGate(true, 6, 7)

	if g.Update(true, 0) {
		t.Error("Gate must not arm without the combination")
	}
	if g.Update(true, ButtonMask(6)) {
		t.Error("Gate must not arm on one button of the pair")
	}
	if !g.Update(true, ButtonMask(6, 7)) {
		t.Error("Gate should arm when both buttons are held")
	}
	// Releasing the buttons keeps the gate armed
	if !g.Update(true, 0) {
		t.Error("Gate should stay armed after release")
	}
}

func TestGateDisarmsOnDeviceLoss(t *testing.T) {
	g := NewGate(true, 0, 1)
	g.Update(true, ButtonMask(0, 1))

	if g.Update(false, ButtonMask(0, 1)) {
		t.Error("Absent device must disarm")
	}
	if g.Present() {
		t.Error("Expected gate to report device absent")
	}
	// Re-detected device needs the combination again
	if g.Update(true, 0) {
		t.Error("Re-detected device must be re-armed explicitly")
	}
	if !g.Present() {
		t.Error("Expected gate to report device present")
	}
}

func TestGateWithoutArmRequirement(t *testing.T) {
	g := NewGate(false, 0, 1)

	if g.Update(false, 0) {
		t.Error("Absent device is never armed")
	}
	if !g.Update(true, 0) {
		t.Error("Present device should arm immediately when arming is not required")
	}
}

func TestButtonMask(t *testing.T) {
	if got := ButtonMask(0, 3); got != 0b1001 {
		t.Errorf("ButtonMask(0, 3) = %b", got)
	}
	if got := ButtonMask(-1, 32); got != 0 {
		t.Errorf("Out-of-range indices should be ignored, got %b", got)
	}
}
