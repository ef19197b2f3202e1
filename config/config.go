// Package config loads operator console settings from YAML over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Input source names
const (
	SourceJoystick = "joystick"
	SourceKeyboard = "keyboard"
)

// TCP table roles
const (
	RoleServer = "server"
	RoleClient = "client"
)

// Config holds all console configuration
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Display   DisplayConfig   `yaml:"display"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Audio     AudioConfig     `yaml:"audio"`
}

// InputConfig selects the controller and tunes selection input
type InputConfig struct {
	Source      string     `yaml:"source"` // joystick | keyboard
	DeviceIndex int        `yaml:"device_index"`
	DebounceMs  int        `yaml:"debounce_ms"`
	Deadzone    float64    `yaml:"deadzone"`
	RequireArm  bool       `yaml:"require_arm"`
	ArmButtons  []int      `yaml:"arm_buttons"` // exactly two button indices
	Axes        AxesConfig `yaml:"axes"`
	InvertHatY  bool       `yaml:"invert_hat_y"`
	RescanMs    int        `yaml:"rescan_ms"`

	// NumberingOrigin is the hexagon side holding positions 1-3
	NumberingOrigin int `yaml:"numbering_origin"`
}

// AxesConfig maps controller axes
type AxesConfig struct {
	StickX int `yaml:"stick_x"`
	StickY int `yaml:"stick_y"`
	HatX   int `yaml:"hat_x"`
	HatY   int `yaml:"hat_y"`
}

// DisplayConfig holds render loop settings
type DisplayConfig struct {
	TickMs int `yaml:"tick_ms"`
	Radius int `yaml:"radius"` // 0 sizes the hexagon to the terminal
}

// TelemetryConfig holds the published table and its transports
type TelemetryConfig struct {
	Table     string          `yaml:"table"`
	Keys      KeysConfig      `yaml:"keys"`
	FlushMs   int             `yaml:"flush_ms"`
	TCP       TCPConfig       `yaml:"tcp"`
	Redis     RedisConfig     `yaml:"redis"`
	Websocket WebsocketConfig `yaml:"websocket"`
}

// KeysConfig names the published values
type KeysConfig struct {
	Column   string `yaml:"column"`
	Row      string `yaml:"row"`
	Position string `yaml:"position"`
}

// TCPConfig configures the framed TCP table transport
type TCPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Role    string `yaml:"role"` // server | client
	Address string `yaml:"address"`
}

// RedisConfig configures the Redis hash publisher
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// WebsocketConfig configures the WebSocket feed
type WebsocketConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// AudioConfig controls feedback tones
type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"` // 0..1
}

// Default returns the stock configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Source:          SourceJoystick,
			DeviceIndex:     0,
			DebounceMs:      150,
			Deadzone:        0.2,
			RequireArm:      true,
			ArmButtons:      []int{6, 7},
			Axes:            AxesConfig{StickX: 0, StickY: 1, HatX: 6, HatY: 7},
			InvertHatY:      true,
			RescanMs:        1000,
			NumberingOrigin: 3,
		},
		Display: DisplayConfig{
			TickMs: 16,
			Radius: 0,
		},
		Telemetry: TelemetryConfig{
			Table:   "Coral",
			Keys:    KeysConfig{Column: "column", Row: "row", Position: "position"},
			FlushMs: 50,
			TCP:     TCPConfig{Enabled: false, Role: RoleServer, Address: ":5810"},
			Redis:   RedisConfig{Enabled: false, Address: "localhost:6379"},
			Websocket: WebsocketConfig{
				Enabled: false,
				Address: ":5811",
			},
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  0.5,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate reports every out-of-range setting
func (c *Config) Validate() error {
	var errs []error

	switch c.Input.Source {
	case SourceJoystick, SourceKeyboard:
	default:
		errs = append(errs, fmt.Errorf("input.source %q: want %s or %s", c.Input.Source, SourceJoystick, SourceKeyboard))
	}
	if c.Input.DeviceIndex < 0 {
		errs = append(errs, fmt.Errorf("input.device_index %d is negative", c.Input.DeviceIndex))
	}
	if c.Input.DebounceMs <= 0 {
		errs = append(errs, fmt.Errorf("input.debounce_ms %d must be positive", c.Input.DebounceMs))
	}
	if c.Input.Deadzone < 0 || c.Input.Deadzone >= 1 {
		errs = append(errs, fmt.Errorf("input.deadzone %v outside [0,1)", c.Input.Deadzone))
	}
	if len(c.Input.ArmButtons) != 2 {
		errs = append(errs, fmt.Errorf("input.arm_buttons needs exactly two buttons, got %d", len(c.Input.ArmButtons)))
	} else {
		for _, b := range c.Input.ArmButtons {
			if b < 0 || b > 31 {
				errs = append(errs, fmt.Errorf("input.arm_buttons index %d outside [0,31]", b))
			}
		}
		if c.Input.ArmButtons[0] == c.Input.ArmButtons[1] {
			errs = append(errs, errors.New("input.arm_buttons must name two different buttons"))
		}
	}
	if c.Input.RescanMs <= 0 {
		errs = append(errs, fmt.Errorf("input.rescan_ms %d must be positive", c.Input.RescanMs))
	}
	if c.Input.NumberingOrigin < 0 || c.Input.NumberingOrigin > 5 {
		errs = append(errs, fmt.Errorf("input.numbering_origin %d outside [0,5]", c.Input.NumberingOrigin))
	}

	if c.Display.TickMs <= 0 {
		errs = append(errs, fmt.Errorf("display.tick_ms %d must be positive", c.Display.TickMs))
	}
	if c.Display.Radius < 0 {
		errs = append(errs, fmt.Errorf("display.radius %d is negative", c.Display.Radius))
	}

	t := c.Telemetry
	if t.Table == "" {
		errs = append(errs, errors.New("telemetry.table is empty"))
	}
	if t.Keys.Column == "" || t.Keys.Row == "" || t.Keys.Position == "" {
		errs = append(errs, errors.New("telemetry.keys must all be named"))
	}
	if t.FlushMs <= 0 {
		errs = append(errs, fmt.Errorf("telemetry.flush_ms %d must be positive", t.FlushMs))
	}
	if t.TCP.Enabled {
		if t.TCP.Role != RoleServer && t.TCP.Role != RoleClient {
			errs = append(errs, fmt.Errorf("telemetry.tcp.role %q: want %s or %s", t.TCP.Role, RoleServer, RoleClient))
		}
		if t.TCP.Address == "" {
			errs = append(errs, errors.New("telemetry.tcp.address is empty"))
		}
	}
	if t.Redis.Enabled && t.Redis.Address == "" {
		errs = append(errs, errors.New("telemetry.redis.address is empty"))
	}
	if t.Websocket.Enabled && t.Websocket.Address == "" {
		errs = append(errs, errors.New("telemetry.websocket.address is empty"))
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio.volume %v outside [0,1]", c.Audio.Volume))
	}

	return errors.Join(errs...)
}

// Debounce returns the debounce interval
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Input.DebounceMs) * time.Millisecond
}

// Rescan returns the controller rescan interval
func (c *Config) Rescan() time.Duration {
	return time.Duration(c.Input.RescanMs) * time.Millisecond
}

// Tick returns the render tick interval
func (c *Config) Tick() time.Duration {
	return time.Duration(c.Display.TickMs) * time.Millisecond
}

// Flush returns the telemetry flush interval
func (c *Config) Flush() time.Duration {
	return time.Duration(c.Telemetry.FlushMs) * time.Millisecond
}
