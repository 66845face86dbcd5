package config

import (
	"sort"
	"time"

	"github.com/san-kum/seekbot/internal/servo"
)

// Preset is a named set of overrides applied on top of DefaultConfig.
type Preset struct {
	Description string
	Apply       func(c *Config)
}

var Presets = map[string]Preset{
	"waveshare": {
		Description: "Waveshare rover over USB serial, 2 Hz, abort on loss",
		Apply:       func(c *Config) {},
	},
	"legacy": {
		Description: "1 Hz loop that only reports a lost target and keeps searching",
		Apply: func(c *Config) {
			c.TickHz = 1
			c.Controller.LossPolicy = servo.LossReport
			c.Controller.FeedbackStyle = servo.FeedbackCompass8
		},
	},
	"cautious": {
		Description: "slower approach with tighter centring and a longer halt distance",
		Apply: func(c *Config) {
			c.TickHz = 4
			c.Controller.MaxLinSpeed = 0.2
			c.Controller.MaxAngSpeed = 0.8
			c.Controller.SearchRotSpeed = -0.6
			c.Controller.CrawlSpeed = 0.03
			c.Controller.CenterTolerancePx = 20
			c.Controller.DepthTarget = 0.35
			c.Controller.LostTickThreshold = 10
			c.Controller.FeedbackStyle = servo.FeedbackState
			c.Fusion.MinScore = 0.5
			c.Fusion.Sync.Slop = 50 * time.Millisecond
		},
	},
}

// GetPreset returns the defaults with the named preset applied, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.Apply(cfg)
	return cfg
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
