package main

import (
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/coral-compass/audio"
	"github.com/lixenwraith/coral-compass/compass"
	"github.com/lixenwraith/coral-compass/config"
	"github.com/lixenwraith/coral-compass/device"
	"github.com/lixenwraith/coral-compass/engine"
	"github.com/lixenwraith/coral-compass/input"
	"github.com/lixenwraith/coral-compass/network"
	"github.com/lixenwraith/coral-compass/service"
	"github.com/lixenwraith/coral-compass/telemetry"
)

// overrides holds command-line values layered over the config file
type overrides struct {
	source   string
	device   int
	debounce time.Duration
	noAudio  bool
	tcp      string
	redis    string
	ws       string
}

// apply copies every set flag into cfg
func (o overrides) apply(cfg *config.Config) {
	if o.source != "" {
		cfg.Input.Source = o.source
	}
	if o.device >= 0 {
		cfg.Input.DeviceIndex = o.device
	}
	if o.debounce > 0 {
		cfg.Input.DebounceMs = int(o.debounce / time.Millisecond)
	}
	if o.noAudio {
		cfg.Audio.Enabled = false
	}
	if o.tcp != "" {
		cfg.Telemetry.TCP.Enabled = true
		cfg.Telemetry.TCP.Address = o.tcp
	}
	if o.redis != "" {
		cfg.Telemetry.Redis.Enabled = true
		cfg.Telemetry.Redis.Address = o.redis
	}
	if o.ws != "" {
		cfg.Telemetry.Websocket.Enabled = true
		cfg.Telemetry.Websocket.Address = o.ws
	}
}

func controllerOptions(cfg *config.Config) engine.Options {
	opts := engine.DefaultOptions()
	opts.Debounce = cfg.Debounce()
	opts.Deadzone = cfg.Input.Deadzone
	opts.RequireArm = cfg.Input.RequireArm
	opts.ArmButtons = [2]int{cfg.Input.ArmButtons[0], cfg.Input.ArmButtons[1]}
	opts.Origin = compass.Side(cfg.Input.NumberingOrigin)
	return opts
}

func telemetryKeys(cfg *config.Config) engine.Keys {
	return engine.Keys{
		Column:   cfg.Telemetry.Keys.Column,
		Row:      cfg.Telemetry.Keys.Row,
		Position: cfg.Telemetry.Keys.Position,
	}
}

// buildSource returns the polled input source; the keyboard always exists for quit keys
func buildSource(cfg *config.Config) (input.Source, *input.Keyboard) {
	kb := input.NewKeyboard(input.DefaultKeyTable(), input.ButtonMask(cfg.Input.ArmButtons...))
	if cfg.Input.Source == config.SourceKeyboard {
		return kb, kb
	}

	js := device.NewJoystick(device.Config{
		Index: cfg.Input.DeviceIndex,
		Axes: device.Axes{
			StickX: cfg.Input.Axes.StickX,
			StickY: cfg.Input.Axes.StickY,
			HatX:   cfg.Input.Axes.HatX,
			HatY:   cfg.Input.Axes.HatY,
		},
		InvertHatY:     cfg.Input.InvertHatY,
		RescanInterval: cfg.Rescan(),
	})
	return js, kb
}

// buildServices registers the enabled publishers, the flusher and audio on a hub
func buildServices(cfg *config.Config, table *telemetry.Table) (*service.Hub, *audio.Feedback, error) {
	hub := service.NewHub()
	flusher := telemetry.NewService(table, cfg.Flush())

	tc := cfg.Telemetry
	var pubs []interface {
		service.Service
		telemetry.Publisher
	}

	if tc.TCP.Enabled {
		ncfg := network.DefaultConfig()
		ncfg.Role = network.ParseRole(tc.TCP.Role)
		ncfg.Address = tc.TCP.Address
		ncfg.ClientID = uuid.NewString()
		pubs = append(pubs, telemetry.NewTCPPublisher(ncfg))
	}
	if tc.Redis.Enabled {
		pubs = append(pubs, telemetry.NewRedisPublisher(tc.Redis.Address, tc.Redis.Password, tc.Redis.DB))
	}
	if tc.Websocket.Enabled {
		pubs = append(pubs, telemetry.NewWebsocketPublisher(tc.Websocket.Address))
	}

	for _, p := range pubs {
		if err := hub.Register(p); err != nil {
			return nil, nil, err
		}
		flusher.Add(p)
	}
	if err := hub.Register(flusher); err != nil {
		return nil, nil, err
	}

	fb := audio.NewFeedback(cfg.Audio.Enabled, cfg.Audio.Volume)
	if err := hub.Register(fb); err != nil {
		return nil, nil, err
	}
	return hub, fb, nil
}

// cuePlayer is the audio surface the loop drives
type cuePlayer interface {
	PlayStep()
	PlaySide()
	PlayArmed()
}

// playCues sounds at most one cue per tick, arming first
func playCues(p cuePlayer, s engine.Snapshot) {
	switch {
	case s.JustArmed:
		p.PlayArmed()
	case s.Accepted.SideChanged():
		p.PlaySide()
	case s.Accepted.Steps():
		p.PlayStep()
	}
}
