package config

import "sort"

// Presets maps a name to a function that adjusts the default configuration.
var Presets = map[string]func(*Config){
	"desktop": func(c *Config) {},
	"mobile": func(c *Config) {
		c.Compact = true
		c.Width, c.Height = 390, 640
		c.EntityRadius = 28
		c.ExpansionFactor = 2.5
	},
	"crowded": func(c *Config) {
		c.EntityRadius = 32
		c.Entities = append(c.Entities, "golgi", "vacuole", "centriole", "peroxisome", "nucleolus", "chloroplast")
	},
	"calm": func(c *Config) {
		c.Physics.MinSpeed, c.Physics.MaxSpeed = 0.8, 1.6
		c.Physics.SpawnSpeedMin, c.Physics.SpawnSpeedMax = 0.8, 1.2
		c.Physics.PerturbChance = 0.005
		c.Breathing.Period = "16s"
	},
}

// GetPreset returns a fresh configuration for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
