package config

import "sort"

// Preset is a named horizon with an optional integrator choice.
type Preset struct {
	EndYear    int
	Integrator string
}

var Presets = map[string]Preset{
	"short":  {EndYear: 2030},
	"medium": {EndYear: 2040},
	"long":   {EndYear: 2050},
	"fast":   {EndYear: 2040, Integrator: "rk4"},
}

func GetPreset(name string) (Preset, bool) {
	p, ok := Presets[name]
	return p, ok
}

// Apply overwrites the fields the preset sets.
func (p Preset) Apply(c *Config) {
	if p.EndYear != 0 {
		c.EndYear = p.EndYear
	}
	if p.Integrator != "" {
		c.Integrator = p.Integrator
	}
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
