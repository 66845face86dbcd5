package scene

import (
	"fmt"
	"math"
)

const (
	DefaultDt         = 0.01
	DefaultHFOV       = 69.0
	DefaultVFOV       = 42.0
	DefaultTargetSize = 0.3
	DefaultBackground = 4.0
	DefaultScore      = 0.9
)

// Config places the robot and the target and describes the camera.
// Angles are in degrees, distances in metres.
type Config struct {
	Integrator   string  `yaml:"integrator"`
	Dt           float64 `yaml:"dt"`
	Seed         int64   `yaml:"seed"`
	StartX       float64 `yaml:"start_x"`
	StartY       float64 `yaml:"start_y"`
	StartHeading float64 `yaml:"start_heading"`
	TargetX      float64 `yaml:"target_x"`
	TargetY      float64 `yaml:"target_y"`
	TargetSize   float64 `yaml:"target_size"`
	HFOV         float64 `yaml:"hfov"`
	VFOV         float64 `yaml:"vfov"`
	ImageWidth   int     `yaml:"image_width"`
	ImageHeight  int     `yaml:"image_height"`
	Background   float64 `yaml:"background"`
	Dropout      float64 `yaml:"dropout"`
	DepthNoise   float64 `yaml:"depth_noise"`
	Score        float64 `yaml:"score"`
}

func DefaultConfig() Config {
	return Config{
		Integrator:  "rk4",
		Dt:          DefaultDt,
		Seed:        1,
		TargetX:     2.0,
		TargetY:     -0.5,
		TargetSize:  DefaultTargetSize,
		HFOV:        DefaultHFOV,
		VFOV:        DefaultVFOV,
		ImageWidth:  640,
		ImageHeight: 480,
		Background:  DefaultBackground,
		Score:       DefaultScore,
	}
}

func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("scene dt must be positive, got %f", c.Dt)
	}
	if c.HFOV <= 0 || c.HFOV >= 180 || c.VFOV <= 0 || c.VFOV >= 180 {
		return fmt.Errorf("field of view must be in (0, 180), got %.1fx%.1f", c.HFOV, c.VFOV)
	}
	if c.ImageWidth <= 0 || c.ImageHeight <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", c.ImageWidth, c.ImageHeight)
	}
	if c.Dropout < 0 || c.Dropout > 1 {
		return fmt.Errorf("dropout must be in [0, 1], got %f", c.Dropout)
	}
	if math.Hypot(c.TargetX-c.StartX, c.TargetY-c.StartY) == 0 {
		return fmt.Errorf("target coincides with the robot start position")
	}
	return nil
}
