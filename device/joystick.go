// Package device reads a game controller through the Linux/Windows/macOS joystick API and
// reports it as an input.Source, reconnecting when the controller is unplugged.
package device

import (
	"log"
	"math"
	"time"

	"github.com/0xcafed00d/joystick"
	"github.com/pkg/errors"

	"github.com/lixenwraith/coral-compass/input"
)

// ErrNoDevice is returned when no controller answers at the configured index
var ErrNoDevice = errors.New("no joystick detected")

// axisMax is the full-scale reading of a joystick axis
const axisMax = 32767.0

// hatThreshold splits hat axis readings into -1/0/1
const hatThreshold = axisMax / 2

// DefaultRescanInterval is how often an absent controller is probed
const DefaultRescanInterval = time.Second

// Opener opens joystick id; joystick.Open in production
type Opener func(id int) (joystick.Joystick, error)

// Axes holds axis indices for the stick and the d-pad hat
// Xbox-style pads on Linux report the hat as axes 6/7
type Axes struct {
	StickX int
	StickY int
	HatX   int
	HatY   int
}

// DefaultAxes returns the layout of an Xbox controller on Linux
func DefaultAxes() Axes {
	return Axes{StickX: 0, StickY: 1, HatX: 6, HatY: 7}
}

// Config describes which controller to read and how
type Config struct {
	Index int
	Axes  Axes

	// InvertHatY flips the hat vertical axis so that up reads +1
	InvertHatY bool

	RescanInterval time.Duration

	// Open defaults to joystick.Open
	Open Opener
}

// DefaultConfig returns the settings for the first controller
func DefaultConfig() Config {
	return Config{
		Index:          0,
		Axes:           DefaultAxes(),
		InvertHatY:     true,
		RescanInterval: DefaultRescanInterval,
		Open:           joystick.Open,
	}
}

// Joystick is an input.Source backed by a physical controller
// Not safe for concurrent use; owned by the polling loop
type Joystick struct {
	cfg Config
	js  joystick.Joystick

	name     string
	raw      joystick.State
	lastScan time.Time
	scanned  bool
}

// NewJoystick creates a source; the device is opened lazily on the first Poll
func NewJoystick(cfg Config) *Joystick {
	if cfg.Open == nil {
		cfg.Open = joystick.Open
	}
	if cfg.RescanInterval <= 0 {
		cfg.RescanInterval = DefaultRescanInterval
	}
	return &Joystick{cfg: cfg}
}

// Connect opens the configured controller
func (j *Joystick) Connect() error {
	js, err := j.cfg.Open(j.cfg.Index)
	if err != nil {
		return errors.Wrapf(ErrNoDevice, "open joystick %d: %v", j.cfg.Index, err)
	}
	if js == nil {
		return errors.Wrapf(ErrNoDevice, "open joystick %d", j.cfg.Index)
	}

	j.js = js
	j.name = js.Name()
	log.Printf("Controller %d connected: %s (%d axes, %d buttons)", j.cfg.Index, j.name, js.AxisCount(), js.ButtonCount())
	return nil
}

// Poll implements input.Source
// While absent, the controller is re-probed every RescanInterval
func (j *Joystick) Poll(now time.Time) (input.Frame, bool) {
	if j.js == nil {
		if j.scanned && now.Sub(j.lastScan) < j.cfg.RescanInterval {
			return input.Frame{Now: now}, false
		}
		j.scanned = true
		j.lastScan = now
		if err := j.Connect(); err != nil {
			return input.Frame{Now: now}, false
		}
	}

	state, err := j.js.Read()
	if err != nil {
		log.Printf("Controller %d lost: %v", j.cfg.Index, errors.Wrap(err, "read joystick"))
		j.disconnect(now)
		return input.Frame{Now: now}, false
	}

	j.raw = state
	return j.frame(state, now), true
}

// Raw returns the last unmapped state read from the controller
func (j *Joystick) Raw() joystick.State {
	return j.raw
}

// Present reports whether a controller is currently open
func (j *Joystick) Present() bool {
	return j.js != nil
}

// Name returns the controller name, empty while absent
func (j *Joystick) Name() string {
	return j.name
}

// Close implements input.Source
func (j *Joystick) Close() error {
	if j.js != nil {
		j.js.Close()
		j.js = nil
	}
	return nil
}

func (j *Joystick) disconnect(now time.Time) {
	j.Close()
	j.name = ""
	j.raw = joystick.State{}
	j.lastScan = now
}

func (j *Joystick) frame(state joystick.State, now time.Time) input.Frame {
	ax := j.cfg.Axes

	hatY := hatValue(axis(state, ax.HatY))
	if j.cfg.InvertHatY {
		hatY = -hatY
	}

	return input.Frame{
		DPadX:   hatValue(axis(state, ax.HatX)),
		DPadY:   hatY,
		StickX:  normalize(axis(state, ax.StickX)),
		StickY:  normalize(axis(state, ax.StickY)),
		Buttons: state.Buttons,
		Now:     now,
	}
}

// axis reads index i, treating missing axes as centered
func axis(state joystick.State, i int) int {
	if i < 0 || i >= len(state.AxisData) {
		return 0
	}
	return state.AxisData[i]
}

func normalize(v int) float64 {
	return math.Max(-1, math.Min(1, float64(v)/axisMax))
}

func hatValue(v int) int {
	switch {
	case float64(v) > hatThreshold:
		return 1
	case float64(v) < -hatThreshold:
		return -1
	}
	return 0
}
