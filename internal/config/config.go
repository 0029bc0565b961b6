package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	WindowWidth  = 1280
	WindowHeight = 720

	// Particle parameters
	DefaultParticleCount = 120
	MinSize              = 0.5
	MaxSize              = 2.0
	MaxSpeed             = 0.4
	MaxOpacity           = 0.5
	OpacityFloor         = 0.1
	OpacityDecay         = 0.002

	// Palette (cyan-green band of the colour wheel)
	HueMin     = 120
	HueMax     = 180
	Saturation = 0.7
	Lightness  = 0.5

	// Pointer attraction
	AttractionRadius = 100
	AttractionGain   = 0.01

	// Connective lines
	ConnectDistance = 120
	ConnectMaxAlpha = 0.3
	LowPowerBudget  = 150

	// Frame effects
	TrailAlpha = 0.12
	GlowBlur   = 10
	GlowGain   = 1.5
)

// ErrInvalid is returned by Validate for configurations that cannot be normalized.
var ErrInvalid = errors.New("invalid config")

// Breakpoint maps viewports up to MaxWidth pixels wide to a particle count.
// A MaxWidth of zero matches any width.
type Breakpoint struct {
	MaxWidth int `yaml:"max_width"`
	Count    int `yaml:"count"`
}

// Density is a breakpoint table ordered by MaxWidth, open-ended entry last.
type Density []Breakpoint

// CountFor returns the particle count for a viewport of the given width.
func (d Density) CountFor(width int) int {
	for _, bp := range d {
		if bp.MaxWidth == 0 || width <= bp.MaxWidth {
			return max(bp.Count, 0)
		}
	}
	if len(d) == 0 {
		return DefaultParticleCount
	}
	return max(d[len(d)-1].Count, 0)
}

type Particle struct {
	MinSize      float64 `yaml:"min_size"`
	MaxSize      float64 `yaml:"max_size"`
	MaxSpeed     float64 `yaml:"max_speed"`
	MaxOpacity   float64 `yaml:"max_opacity"`
	OpacityFloor float64 `yaml:"opacity_floor"`
	OpacityDecay float64 `yaml:"opacity_decay"`
}

// Palette selects between hue-derived colours and one fixed colour.
type Palette struct {
	Mode       string  `yaml:"mode"` // "hue" or "fixed"
	HueMin     float64 `yaml:"hue_min"`
	HueMax     float64 `yaml:"hue_max"`
	Saturation float64 `yaml:"saturation"`
	Lightness  float64 `yaml:"lightness"`
	Color      string  `yaml:"color"`
}

func (p Palette) HueBased() bool { return p.Mode != "fixed" }

type Attraction struct {
	Radius float64 `yaml:"radius"`
	Gain   float64 `yaml:"gain"`
	// RequireActive gates attraction on the pointer's active flag. Off by
	// default: the last known position (origin before any input) still pulls.
	RequireActive bool `yaml:"require_active"`
}

type Connections struct {
	Distance float64 `yaml:"distance"`
	// Budget caps lines drawn per frame; zero means unlimited.
	Budget   int     `yaml:"budget"`
	Color    string  `yaml:"color"`
	MaxAlpha float64 `yaml:"max_alpha"`
}

type Ambience struct {
	Track    string  `yaml:"track"`
	GlowGain float64 `yaml:"glow_gain"`
}

type Log struct {
	Level       string `yaml:"level"`
	Environment string `yaml:"environment"`
}

// Config is the full set of tunables, usually loaded from a YAML file.
type Config struct {
	Density        Density     `yaml:"density"`
	Particle       Particle    `yaml:"particle"`
	Palette        Palette     `yaml:"palette"`
	Attraction     Attraction  `yaml:"attraction"`
	Connections    Connections `yaml:"connections"`
	TrailAlpha     float64     `yaml:"trail_alpha"`
	GlowBlur       float64     `yaml:"glow_blur"`
	AutoTier       bool        `yaml:"auto_tier"`
	LowPowerBudget int         `yaml:"low_power_budget"`
	Ambience       Ambience    `yaml:"ambience"`
	Log            Log         `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Density: Density{
			{MaxWidth: 480, Count: 40},
			{MaxWidth: 768, Count: 70},
			{MaxWidth: 0, Count: DefaultParticleCount},
		},
		Particle: Particle{
			MinSize:      MinSize,
			MaxSize:      MaxSize,
			MaxSpeed:     MaxSpeed,
			MaxOpacity:   MaxOpacity,
			OpacityFloor: OpacityFloor,
			OpacityDecay: OpacityDecay,
		},
		Palette: Palette{
			Mode:       "hue",
			HueMin:     HueMin,
			HueMax:     HueMax,
			Saturation: Saturation,
			Lightness:  Lightness,
			Color:      "#00ff88",
		},
		Attraction: Attraction{
			Radius: AttractionRadius,
			Gain:   AttractionGain,
		},
		Connections: Connections{
			Distance: ConnectDistance,
			Color:    "#00ff88",
			MaxAlpha: ConnectMaxAlpha,
		},
		TrailAlpha:     TrailAlpha,
		GlowBlur:       GlowBlur,
		AutoTier:       true,
		LowPowerBudget: LowPowerBudget,
		Ambience:       Ambience{GlowGain: GlowGain},
		Log:            Log{Level: "info", Environment: "production"},
	}
}

// Load reads a YAML config from path on top of the defaults. A missing file
// is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Normalize clamps out-of-range values so the animation degrades instead of
// misbehaving.
func (c *Config) Normalize() {
	sort.SliceStable(c.Density, func(i, j int) bool {
		a, b := c.Density[i].MaxWidth, c.Density[j].MaxWidth
		if a == 0 || b == 0 {
			return b == 0 && a != 0
		}
		return a < b
	})
	for i := range c.Density {
		c.Density[i].Count = max(c.Density[i].Count, 0)
		c.Density[i].MaxWidth = max(c.Density[i].MaxWidth, 0)
	}

	p := &c.Particle
	p.MinSize = max(p.MinSize, 0)
	if p.MaxSize < p.MinSize {
		p.MaxSize = p.MinSize
	}
	p.MaxSpeed = max(p.MaxSpeed, 0)
	p.OpacityFloor = clamp01(p.OpacityFloor)
	p.MaxOpacity = clamp01(p.MaxOpacity)
	if p.MaxOpacity < p.OpacityFloor {
		p.MaxOpacity = p.OpacityFloor
	}
	p.OpacityDecay = max(p.OpacityDecay, 0)

	if c.Palette.HueMax < c.Palette.HueMin {
		c.Palette.HueMin, c.Palette.HueMax = c.Palette.HueMax, c.Palette.HueMin
	}
	c.Palette.Saturation = clamp01(c.Palette.Saturation)
	c.Palette.Lightness = clamp01(c.Palette.Lightness)

	c.Attraction.Radius = max(c.Attraction.Radius, 0)
	c.Connections.Distance = max(c.Connections.Distance, 0)
	c.Connections.Budget = max(c.Connections.Budget, 0)
	c.Connections.MaxAlpha = clamp01(c.Connections.MaxAlpha)
	c.LowPowerBudget = max(c.LowPowerBudget, 0)

	c.TrailAlpha = clamp01(c.TrailAlpha)
	c.GlowBlur = max(c.GlowBlur, 0)
	c.Ambience.GlowGain = max(c.Ambience.GlowGain, 0)
}

// Validate reports values Normalize cannot repair.
func (c *Config) Validate() error {
	switch c.Palette.Mode {
	case "hue", "fixed", "":
	default:
		return fmt.Errorf("%w: palette mode %q", ErrInvalid, c.Palette.Mode)
	}
	if _, err := ParseHex(c.Palette.Color); c.Palette.Mode == "fixed" && err != nil {
		return fmt.Errorf("%w: palette color: %v", ErrInvalid, err)
	}
	if c.Connections.Color != "" {
		if _, err := ParseHex(c.Connections.Color); err != nil {
			return fmt.Errorf("%w: connections color: %v", ErrInvalid, err)
		}
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
