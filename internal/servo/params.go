package servo

import (
	"fmt"
	"strings"
)

const (
	DefaultSearchRotSpeed    = -1.0
	DefaultCrawlSpeed        = 0.05
	DefaultMaxAngSpeed       = 1.25
	DefaultMaxLinSpeed       = 0.4
	DefaultCenterTolerancePx = 30.0
	DefaultDepthTarget       = 0.2
	DefaultDepthTolerance    = 0.05
	DefaultImageWidth        = 640
	DefaultImageHeight       = 480
	DefaultLostTickThreshold = 5
)

// LossPolicy selects what happens when the target is lost past the threshold.
type LossPolicy string

const (
	// LossAbort ends the goal with ABORTED once the threshold is hit outside SEARCHING.
	LossAbort LossPolicy = "abort"
	// LossReport only reports "Lost object" and keeps the goal running.
	LossReport LossPolicy = "report"
)

// FeedbackStyle selects the granularity of per-tick feedback text.
type FeedbackStyle string

const (
	FeedbackState    FeedbackStyle = "state"
	FeedbackCompass3 FeedbackStyle = "compass3"
	FeedbackCompass8 FeedbackStyle = "compass8"
)

// Params holds the control-law gains and thresholds.
type Params struct {
	SearchRotSpeed    float64       `yaml:"search_rot_speed"`
	CrawlSpeed        float64       `yaml:"crawl_speed"`
	MaxAngSpeed       float64       `yaml:"max_ang_speed"`
	MaxLinSpeed       float64       `yaml:"max_lin_speed"`
	CenterTolerancePx float64       `yaml:"center_tolerance_px"`
	DepthTarget       float64       `yaml:"depth_target"`
	DepthTolerance    float64       `yaml:"depth_tolerance"`
	ImageWidth        int           `yaml:"image_width"`
	ImageHeight       int           `yaml:"image_height"`
	LostTickThreshold int           `yaml:"lost_tick_threshold"`
	LossPolicy        LossPolicy    `yaml:"loss_policy"`
	FeedbackStyle     FeedbackStyle `yaml:"feedback_style"`
}

func DefaultParams() Params {
	return Params{
		SearchRotSpeed:    DefaultSearchRotSpeed,
		CrawlSpeed:        DefaultCrawlSpeed,
		MaxAngSpeed:       DefaultMaxAngSpeed,
		MaxLinSpeed:       DefaultMaxLinSpeed,
		CenterTolerancePx: DefaultCenterTolerancePx,
		DepthTarget:       DefaultDepthTarget,
		DepthTolerance:    DefaultDepthTolerance,
		ImageWidth:        DefaultImageWidth,
		ImageHeight:       DefaultImageHeight,
		LostTickThreshold: DefaultLostTickThreshold,
		LossPolicy:        LossAbort,
		FeedbackStyle:     FeedbackCompass8,
	}
}

// ImageCenter returns the pixel the controller centres the target on.
func (p Params) ImageCenter() (float64, float64) {
	return float64(p.ImageWidth) / 2, float64(p.ImageHeight) / 2
}

func (p Params) Validate() error {
	if p.ImageWidth <= 0 || p.ImageHeight <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", p.ImageWidth, p.ImageHeight)
	}
	if p.MaxAngSpeed <= 0 {
		return fmt.Errorf("max_ang_speed must be positive, got %f", p.MaxAngSpeed)
	}
	if p.MaxLinSpeed <= 0 {
		return fmt.Errorf("max_lin_speed must be positive, got %f", p.MaxLinSpeed)
	}
	if p.CrawlSpeed < 0 || p.CrawlSpeed > p.MaxLinSpeed {
		return fmt.Errorf("crawl_speed must be in [0, max_lin_speed], got %f", p.CrawlSpeed)
	}
	if p.CenterTolerancePx <= 0 {
		return fmt.Errorf("center_tolerance_px must be positive, got %f", p.CenterTolerancePx)
	}
	if p.DepthTarget < 0 || p.DepthTolerance <= 0 {
		return fmt.Errorf("depth_target must be >= 0 and depth_tolerance > 0")
	}
	if p.LostTickThreshold < 0 {
		return fmt.Errorf("lost_tick_threshold must be >= 0, got %d", p.LostTickThreshold)
	}
	if _, err := ParseLossPolicy(string(p.LossPolicy)); err != nil {
		return err
	}
	if _, err := ParseFeedbackStyle(string(p.FeedbackStyle)); err != nil {
		return err
	}
	return nil
}

func ParseLossPolicy(value string) (LossPolicy, error) {
	switch LossPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case LossAbort:
		return LossAbort, nil
	case LossReport:
		return LossReport, nil
	default:
		return LossAbort, fmt.Errorf("unknown loss policy %q", value)
	}
}

func ParseFeedbackStyle(value string) (FeedbackStyle, error) {
	switch FeedbackStyle(strings.ToLower(strings.TrimSpace(value))) {
	case FeedbackState:
		return FeedbackState, nil
	case FeedbackCompass3:
		return FeedbackCompass3, nil
	case FeedbackCompass8:
		return FeedbackCompass8, nil
	default:
		return FeedbackCompass8, fmt.Errorf("unknown feedback style %q", value)
	}
}
