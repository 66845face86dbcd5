package config

import (
	"fmt"
	"os"

	"github.com/san-kum/seekbot/internal/action"
	"github.com/san-kum/seekbot/internal/bridge"
	"github.com/san-kum/seekbot/internal/fusion"
	"github.com/san-kum/seekbot/internal/ingest"
	"github.com/san-kum/seekbot/internal/scene"
	"github.com/san-kum/seekbot/internal/servo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTickHz  = action.DefaultTickRate
	DefaultDataDir = ".seekbot"
)

type Config struct {
	TickHz     float64        `yaml:"tick_hz"`
	Topics     ingest.Topics  `yaml:"topics"`
	Fusion     fusion.Config  `yaml:"fusion"`
	Controller servo.Params   `yaml:"controller"`
	Serial     bridge.Config  `yaml:"serial"`
	Ingest     ingest.Config  `yaml:"ingest"`
	Scene      scene.Config   `yaml:"scene"`
	DataDir    string         `yaml:"data_dir"`
	Feedback   FeedbackConfig `yaml:"feedback"`
}

type FeedbackConfig struct {
	Buffer int `yaml:"buffer"`
}

func DefaultConfig() *Config {
	return &Config{
		TickHz:     DefaultTickHz,
		Topics:     ingest.DefaultTopics(),
		Fusion:     fusion.DefaultConfig(),
		Controller: servo.DefaultParams(),
		Serial:     bridge.DefaultConfig(),
		Ingest:     ingest.DefaultConfig(),
		Scene:      scene.DefaultConfig(),
		DataDir:    DefaultDataDir,
		Feedback:   FeedbackConfig{Buffer: action.DefaultFeedbackBuffer},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

// Marshal renders cfg as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Config) Validate() error {
	if err := c.Action().Validate(); err != nil {
		return err
	}
	if c.Topics.Detections == "" || c.Topics.Depth == "" {
		return fmt.Errorf("detection and depth topics must be set")
	}
	if c.Topics.Detections == c.Topics.Depth {
		return fmt.Errorf("detection and depth topics must differ, both are %q", c.Topics.Depth)
	}
	if c.Fusion.Sync.Slop < 0 {
		return fmt.Errorf("sync slop must not be negative, got %s", c.Fusion.Sync.Slop)
	}
	if c.Fusion.Limits.Max <= c.Fusion.Limits.Min {
		return fmt.Errorf("depth_max %.3f must exceed depth_min %.3f", c.Fusion.Limits.Max, c.Fusion.Limits.Min)
	}
	if _, err := c.Serial.Normalize(); err != nil {
		return fmt.Errorf("serial: %w", err)
	}
	return nil
}

// Action returns the goal server settings.
func (c *Config) Action() action.Config {
	return action.Config{
		TickRate:       c.TickHz,
		Params:         c.Controller,
		Fusion:         c.Fusion,
		FeedbackBuffer: c.Feedback.Buffer,
	}
}

// SimScene returns the scene settings with the camera matched to the
// controller's image size.
func (c *Config) SimScene() scene.Config {
	sc := c.Scene
	sc.ImageWidth = c.Controller.ImageWidth
	sc.ImageHeight = c.Controller.ImageHeight
	return sc
}
