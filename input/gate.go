package input

// Gate holds the arming state: after a device appears, input is ignored until the arm
// combination is held; losing the device disarms
type Gate struct {
	requireArm bool
	armMask    uint32

	present bool
	armed   bool
}

// NewGate creates a gate armed by holding buttons a and b together
// With requireArm false, any present device is armed
func NewGate(requireArm bool, a, b int) *Gate {
	return &Gate{
		requireArm: requireArm,
		armMask:    ButtonMask(a, b),
	}
}

// ButtonMask builds a bitmask from button indices; indices outside [0,31] are ignored
func ButtonMask(buttons ...int) uint32 {
	var mask uint32
	for _, b := range buttons {
		if b >= 0 && b < 32 {
			mask |= 1 << uint(b)
		}
	}
	return mask
}

// Update advances the gate with the current tick's device state and returns whether
// selection input may be applied
func (g *Gate) Update(present bool, buttons uint32) bool {
	if !present {
		g.present = false
		g.armed = false
		return false
	}

	g.present = true
	if !g.armed {
		if !g.requireArm || (g.armMask != 0 && buttons&g.armMask == g.armMask) {
			g.armed = true
		}
	}
	return g.armed
}

// Armed reports whether input is currently accepted
func (g *Gate) Armed() bool {
	return g.armed
}

// Present reports whether a device was present on the last update
func (g *Gate) Present() bool {
	return g.present
}

// ArmMask returns the button combination that arms the gate
func (g *Gate) ArmMask() uint32 {
	return g.armMask
}
