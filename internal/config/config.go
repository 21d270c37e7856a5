package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/organelle/internal/breathing"
	"github.com/san-kum/organelle/internal/engine"
	"github.com/san-kum/organelle/internal/physics"
)

const (
	DefaultWidth           = 960.0
	DefaultHeight          = 720.0
	DefaultEntityRadius    = 40.0
	DefaultExpansionFactor = 2.2
	DefaultFPS             = 60
	DefaultFrames          = 600
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Width           float64         `yaml:"width"`
	Height          float64         `yaml:"height"`
	Compact         bool            `yaml:"compact"`
	EntityRadius    float64         `yaml:"entity_radius"`
	ExpansionFactor float64         `yaml:"expansion_factor"`
	Entities        []string        `yaml:"entities"`
	FPS             int             `yaml:"fps"`
	Frames          int             `yaml:"frames"`
	Seed            int64           `yaml:"seed"`
	Smoothing       bool            `yaml:"smoothing"`
	Physics         PhysicsConfig   `yaml:"physics"`
	Breathing       BreathingConfig `yaml:"breathing"`
}

type PhysicsConfig struct {
	MinSpeed           float64 `yaml:"min_speed"`
	MaxSpeed           float64 `yaml:"max_speed"`
	SpawnSpeedMin      float64 `yaml:"spawn_speed_min"`
	SpawnSpeedMax      float64 `yaml:"spawn_speed_max"`
	Damping            float64 `yaml:"damping"`
	PerturbChance      float64 `yaml:"perturb_chance"`
	PerturbStrength    float64 `yaml:"perturb_strength"`
	HoverSpeed         float64 `yaml:"hover_speed"`
	Restitution        float64 `yaml:"restitution"`
	MinSeparationSpeed float64 `yaml:"min_separation_speed"`
	SeparationPadding  float64 `yaml:"separation_padding"`
	ExpandMargin       float64 `yaml:"expand_margin"`
	ExpandPush         float64 `yaml:"expand_push"`
	BounceStrength     float64 `yaml:"bounce_strength"`
	BreathingForce     float64 `yaml:"breathing_force"`
	CornerFraction     float64 `yaml:"corner_fraction"`
	CollisionTTL       string  `yaml:"collision_ttl"`
}

type BreathingConfig struct {
	Period         string  `yaml:"period"`
	InhaleFraction float64 `yaml:"inhale_fraction"`
	MinRadius      float64 `yaml:"min_radius"`
	MaxRadius      float64 `yaml:"max_radius"`
	WavePeriod     string  `yaml:"wave_period"`
}

// DefaultEntities are the project organelles shown when none are configured.
var DefaultEntities = []string{"genome", "protein", "membrane", "ribosome", "mitochondria", "lysosome"}

func DefaultConfig() *Config {
	p := physics.DefaultParams()
	b := breathing.DefaultParams()
	return &Config{
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		EntityRadius:    DefaultEntityRadius,
		ExpansionFactor: DefaultExpansionFactor,
		Entities:        append([]string(nil), DefaultEntities...),
		FPS:             DefaultFPS,
		Frames:          DefaultFrames,
		Smoothing:       true,
		Physics: PhysicsConfig{
			MinSpeed:           p.MinSpeed,
			MaxSpeed:           p.MaxSpeed,
			SpawnSpeedMin:      p.SpawnSpeedMin,
			SpawnSpeedMax:      p.SpawnSpeedMax,
			Damping:            p.Damping,
			PerturbChance:      p.PerturbChance,
			PerturbStrength:    p.PerturbStrength,
			HoverSpeed:         p.HoverSpeed,
			Restitution:        p.Restitution,
			MinSeparationSpeed: p.MinSeparationSpeed,
			SeparationPadding:  p.SeparationPadding,
			ExpandMargin:       p.ExpandMargin,
			ExpandPush:         p.ExpandPush,
			BounceStrength:     p.BounceStrength,
			BreathingForce:     p.BreathingForce,
			CornerFraction:     p.CornerFraction,
			CollisionTTL:       p.CollisionTTL.String(),
		},
		Breathing: BreathingConfig{
			Period:         b.Period.String(),
			InhaleFraction: b.InhaleFraction,
			MinRadius:      b.MinRadius,
			MaxRadius:      b.MaxRadius,
			WavePeriod:     b.WavePeriod.String(),
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidConfig, c.FPS)
	case c.EntityRadius <= 0:
		return fmt.Errorf("%w: entity_radius must be positive, got %f", ErrInvalidConfig, c.EntityRadius)
	case c.ExpansionFactor <= 0:
		return fmt.Errorf("%w: expansion_factor must be positive, got %f", ErrInvalidConfig, c.ExpansionFactor)
	case len(c.Entities) == 0:
		return fmt.Errorf("%w: at least one entity is required", ErrInvalidConfig)
	case c.Physics.MinSpeed <= 0 || c.Physics.MaxSpeed < c.Physics.MinSpeed:
		return fmt.Errorf("%w: invalid speed range [%f, %f]", ErrInvalidConfig, c.Physics.MinSpeed, c.Physics.MaxSpeed)
	}
	seen := make(map[string]bool, len(c.Entities))
	for _, id := range c.Entities {
		if id == "" || seen[id] {
			return fmt.Errorf("%w: entity ids must be unique and non-empty, got %q", ErrInvalidConfig, id)
		}
		seen[id] = true
	}
	if _, err := c.PhysicsParams(); err != nil {
		return err
	}
	b, err := c.BreathingParams()
	if err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) PhysicsParams() (physics.Params, error) {
	ttl, err := time.ParseDuration(c.Physics.CollisionTTL)
	if err != nil {
		return physics.Params{}, fmt.Errorf("%w: collision_ttl: %v", ErrInvalidConfig, err)
	}
	p := physics.DefaultParams()
	p.MinSpeed = c.Physics.MinSpeed
	p.MaxSpeed = c.Physics.MaxSpeed
	p.SpawnSpeedMin = c.Physics.SpawnSpeedMin
	p.SpawnSpeedMax = c.Physics.SpawnSpeedMax
	p.Damping = c.Physics.Damping
	p.PerturbChance = c.Physics.PerturbChance
	p.PerturbStrength = c.Physics.PerturbStrength
	p.HoverSpeed = c.Physics.HoverSpeed
	p.Restitution = c.Physics.Restitution
	p.MinSeparationSpeed = c.Physics.MinSeparationSpeed
	p.SeparationPadding = c.Physics.SeparationPadding
	p.ExpandMargin = c.Physics.ExpandMargin
	p.ExpandPush = c.Physics.ExpandPush
	p.BounceStrength = c.Physics.BounceStrength
	p.BreathingForce = c.Physics.BreathingForce
	p.CornerFraction = c.Physics.CornerFraction
	p.CollisionTTL = ttl
	return p, nil
}

func (c *Config) BreathingParams() (breathing.Params, error) {
	period, err := time.ParseDuration(c.Breathing.Period)
	if err != nil {
		return breathing.Params{}, fmt.Errorf("%w: breathing period: %v", ErrInvalidConfig, err)
	}
	wave, err := time.ParseDuration(c.Breathing.WavePeriod)
	if err != nil {
		return breathing.Params{}, fmt.Errorf("%w: wave period: %v", ErrInvalidConfig, err)
	}
	return breathing.Params{
		Period:         period,
		InhaleFraction: c.Breathing.InhaleFraction,
		MinRadius:      c.Breathing.MinRadius,
		MaxRadius:      c.Breathing.MaxRadius,
		WavePeriod:     wave,
	}, nil
}

// EngineOptions converts the configuration into simulation options.
func (c *Config) EngineOptions() (engine.Options, error) {
	if err := c.Validate(); err != nil {
		return engine.Options{}, err
	}
	p, _ := c.PhysicsParams()
	b, _ := c.BreathingParams()
	return engine.Options{
		Width:           c.Width,
		Height:          c.Height,
		Compact:         c.Compact,
		EntityRadius:    c.EntityRadius,
		ExpansionFactor: c.ExpansionFactor,
		IDs:             append([]string(nil), c.Entities...),
		Physics:         p,
		Breathing:       b,
		Seed:            c.Seed,
	}, nil
}
