package engine

import (
	"testing"
	"time"

	"github.com/golang/geo/r2"

	"github.com/lixenwraith/coral-compass/compass"
	"github.com/lixenwraith/coral-compass/hexgeom"
	"github.com/lixenwraith/coral-compass/input"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// scriptedSource replays frames, one per Poll
type scriptedSource struct {
	frames  []input.Frame
	present bool
	polls   int
}

func (s *scriptedSource) Poll(now time.Time) (input.Frame, bool) {
	var f input.Frame
	if s.polls < len(s.frames) {
		f = s.frames[s.polls]
	}
	s.polls++
	f.Now = now
	return f, s.present
}

func (s *scriptedSource) Close() error { return nil }

type recordingSink map[string]float64

func (r recordingSink) PutNumber(key string, value float64) { r[key] = value }

var armMask = input.ButtonMask(6, 7)

func TestControllerDefaults(t *testing.T) {
	c := NewController(DefaultOptions(), NewMockTimeProvider(epoch))
	snap := c.Last()

	if snap.Selection.Position != 1 || snap.Selection.Side != compass.SideBottom {
		t.Errorf("Unexpected default selection %+v", snap.Selection)
	}
	if len(snap.Segments) == 0 {
		t.Error("Expected geometry before the first tick")
	}
	if snap.Armed || snap.Present {
		t.Error("Controller should start disarmed with no device")
	}
}

func TestControllerIgnoresInputUntilArmed(t *testing.T) {
	c := NewController(DefaultOptions(), nil)

	snap := c.Tick(input.Frame{DPadX: 1, Now: epoch}, true)
	if snap.Selection.Column != 0 {
		t.Error("Unarmed controller must not step the column")
	}
	if !snap.Present || snap.Armed {
		t.Errorf("Expected present and unarmed, got present=%v armed=%v", snap.Present, snap.Armed)
	}

	snap = c.Tick(input.Frame{Buttons: armMask, Now: epoch.Add(time.Millisecond)}, true)
	if !snap.Armed || !snap.JustArmed {
		t.Errorf("Expected arming edge, got armed=%v justArmed=%v", snap.Armed, snap.JustArmed)
	}

	snap = c.Tick(input.Frame{DPadX: 1, Now: epoch.Add(2 * time.Millisecond)}, true)
	if snap.Selection.Column != 1 || snap.Selection.Position != 2 {
		t.Errorf("Expected column 1 position 2, got %+v", snap.Selection)
	}
	if snap.JustArmed {
		t.Error("JustArmed should only be set on the arming tick")
	}
}

// TestControllerFreezesWhenDeviceLost checks selection survives disconnects unchanged
func TestControllerFreezesWhenDeviceLost(t *testing.T) {
	opts := DefaultOptions()
	opts.RequireArm = false
	c := NewController(opts, nil)

	c.Tick(input.Frame{StickX: 1, Now: epoch}, true)
	before := c.Selection()
	if before.Side != 0 {
		t.Fatalf("Expected side 0, got %d", before.Side)
	}

	snap := c.Tick(input.Frame{DPadX: 1, StickY: 1, Now: epoch.Add(time.Second)}, false)
	if snap.Selection != before {
		t.Errorf("Selection changed while absent: %+v -> %+v", before, snap.Selection)
	}
	if snap.Present || snap.Armed {
		t.Error("Expected absent and disarmed")
	}
	if _, ok := hexgeom.Highlighted(snap.Segments); !ok {
		t.Error("Frozen selection should still render a highlight")
	}

	// Device returns: state resumes from where it was
	snap = c.Tick(input.Frame{DPadX: 1, Now: epoch.Add(2 * time.Second)}, true)
	if snap.Selection.Side != 0 || snap.Selection.Column != 1 {
		t.Errorf("Expected resume on side 0 column 1, got %+v", snap.Selection)
	}
}

func TestControllerStepUsesClock(t *testing.T) {
	clock := NewMockTimeProvider(epoch)
	opts := DefaultOptions()
	opts.RequireArm = false
	c := NewController(opts, clock)

	src := &scriptedSource{present: true, frames: []input.Frame{{DPadX: 1}, {DPadX: 1}, {DPadX: 1}}}

	c.Step(src)
	clock.Advance(100 * time.Millisecond)
	c.Step(src)
	if got := c.Selection().Column; got != 1 {
		t.Errorf("Second press within debounce should be ignored, column %d", got)
	}

	clock.Advance(100 * time.Millisecond)
	snap := c.Step(src)
	if got := snap.Selection.Column; got != 2 {
		t.Errorf("Third press after debounce should step, column %d", got)
	}
	if !snap.Time.Equal(clock.Now()) {
		t.Errorf("Snapshot time %v, want %v", snap.Time, clock.Now())
	}
	if snap.Tick != 3 {
		t.Errorf("Expected tick 3, got %d", snap.Tick)
	}
}

func TestControllerLayout(t *testing.T) {
	c := NewController(DefaultOptions(), nil)
	c.SetLayout(r2.Point{X: 40, Y: 12}, 10)

	for _, s := range c.Last().Segments {
		if d := s.Start.Sub(r2.Point{X: 40, Y: 12}).Norm(); d > 10.0001 {
			t.Errorf("Segment start %v outside radius", s.Start)
		}
	}

	snap := c.Tick(input.Frame{Now: epoch}, false)
	hi, ok := hexgeom.Highlighted(snap.Segments)
	if !ok || hi.Edge != compass.SideBottom {
		t.Errorf("Expected highlight on the bottom side, got %+v", hi)
	}
}

func TestControllerReport(t *testing.T) {
	opts := DefaultOptions()
	opts.RequireArm = false
	c := NewController(opts, nil)
	c.Tick(input.Frame{DPadX: -1, DPadY: 1, Now: epoch}, true)

	sink := recordingSink{}
	c.Report(sink, DefaultKeys())

	if sink["column"] != 2 || sink["row"] != 3 || sink["position"] != 3 {
		t.Errorf("Unexpected telemetry %v", sink)
	}
}
