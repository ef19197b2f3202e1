// Package engine composes the per-tick pipeline: input frame, arming gate, debounced
// selection transitions, position resolution and hexagon geometry.
package engine

import (
	"time"

	"github.com/golang/geo/r2"

	"github.com/lixenwraith/coral-compass/compass"
	"github.com/lixenwraith/coral-compass/hexgeom"
	"github.com/lixenwraith/coral-compass/input"
)

// Options configures a Controller
type Options struct {
	Debounce   time.Duration
	Deadzone   float64
	RequireArm bool
	ArmButtons [2]int

	// Origin is the side carrying positions 1-3
	Origin compass.Side
}

// DefaultOptions returns the stock debounce, deadzone and Xbox back+start arming
func DefaultOptions() Options {
	return Options{
		Debounce:   input.DefaultDebounce,
		Deadzone:   compass.DefaultDeadzone,
		RequireArm: true,
		ArmButtons: [2]int{6, 7},
		Origin:     compass.SideBottom,
	}
}

// Snapshot is the derived state handed to render and telemetry sinks each tick
type Snapshot struct {
	Selection compass.Selection
	Segments  []hexgeom.Segment

	Present   bool
	Armed     bool
	JustArmed bool
	Accepted  input.Accepted

	Tick uint64
	Time time.Time
}

// TelemetrySink receives named numeric values
type TelemetrySink interface {
	PutNumber(key string, value float64)
}

// Keys names the published telemetry values
type Keys struct {
	Column   string
	Row      string
	Position string
}

// DefaultKeys returns the published names column, row, position
func DefaultKeys() Keys {
	return Keys{Column: "column", Row: "row", Position: "position"}
}

// Controller owns the selection state; single-goroutine use only
type Controller struct {
	clock   TimeProvider
	adapter *input.Adapter
	gate    *input.Gate

	sel compass.Selection

	center r2.Point
	radius float64

	tick uint64
	last Snapshot
}

// NewController creates a controller with default selection; nil clock uses the system clock
func NewController(opts Options, clock TimeProvider) *Controller {
	if clock == nil {
		clock = NewMonotonicTimeProvider()
	}
	c := &Controller{
		clock:   clock,
		adapter: input.NewAdapter(opts.Debounce, opts.Deadzone),
		gate:    input.NewGate(opts.RequireArm, opts.ArmButtons[0], opts.ArmButtons[1]),
		sel:     compass.NewSelectionFrom(opts.Origin),
		radius:  1,
	}
	c.last = c.snapshot(input.AcceptedNone, false, clock.Now())
	return c
}

// SetLayout sets the hexagon center and radius used for geometry
func (c *Controller) SetLayout(center r2.Point, radius float64) {
	c.center = center
	c.radius = radius
	c.last.Segments = hexgeom.Segments(c.center, c.radius, c.sel.Side, c.sel.Position)
}

// Step polls src with the controller clock and runs one tick
func (c *Controller) Step(src input.Source) Snapshot {
	f, present := src.Poll(c.clock.Now())
	return c.Tick(f, present)
}

// Tick runs one evaluation pass
// While the device is absent or unarmed the selection is frozen but geometry is still produced
func (c *Controller) Tick(f input.Frame, present bool) Snapshot {
	wasArmed := c.gate.Armed()
	armed := c.gate.Update(present, f.Buttons)

	acc := input.AcceptedNone
	if armed {
		c.sel, acc = c.adapter.Apply(c.sel, f)
	}

	c.tick++
	c.last = c.snapshot(acc, armed && !wasArmed, f.Now)
	return c.last
}

// Selection returns the current selection
func (c *Controller) Selection() compass.Selection {
	return c.sel
}

// Last returns the most recent snapshot
func (c *Controller) Last() Snapshot {
	return c.last
}

// Report writes the current indices to a telemetry sink
func (c *Controller) Report(sink TelemetrySink, keys Keys) {
	sink.PutNumber(keys.Column, float64(c.sel.Column))
	sink.PutNumber(keys.Row, float64(c.sel.Row))
	sink.PutNumber(keys.Position, float64(c.sel.Position))
}

func (c *Controller) snapshot(acc input.Accepted, justArmed bool, now time.Time) Snapshot {
	return Snapshot{
		Selection: c.sel,
		Segments:  hexgeom.Segments(c.center, c.radius, c.sel.Side, c.sel.Position),
		Present:   c.gate.Present(),
		Armed:     c.gate.Armed(),
		JustArmed: justArmed,
		Accepted:  acc,
		Tick:      c.tick,
		Time:      now,
	}
}
