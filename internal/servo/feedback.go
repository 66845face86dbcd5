package servo

import (
	"fmt"
	"math"

	"github.com/san-kum/seekbot/internal/fusion"
)

// Feedback renders the per-tick feedback text. A loss event overrides the
// state description.
func Feedback(step Step, obs fusion.Observation, loss LossEvent, p Params) string {
	if loss != LossNone {
		return loss.String()
	}
	switch step.To {
	case Halted:
		return "Target reached"
	case Searching:
		return "Searching"
	}
	if !obs.Detected {
		return "Searching"
	}

	switch p.FeedbackStyle {
	case FeedbackState:
		if step.To == Approaching && obs.DepthValid {
			return fmt.Sprintf("Approaching (%.2f m)", obs.DepthM)
		}
		if step.To == Approaching {
			return "Approaching"
		}
		return "Tracking"
	case FeedbackCompass3:
		return horizontal(obs.BBoxX, p)
	default:
		return compass8(obs, p)
	}
}

func horizontal(x float64, p Params) string {
	cx, _ := p.ImageCenter()
	switch {
	case x < cx-p.CenterTolerancePx:
		return "left"
	case x > cx+p.CenterTolerancePx:
		return "right"
	default:
		return "center"
	}
}

func vertical(y float64, p Params) string {
	_, cy := p.ImageCenter()
	switch {
	case y < cy-p.CenterTolerancePx:
		return "top"
	case y > cy+p.CenterTolerancePx:
		return "bottom"
	default:
		return ""
	}
}

func compass8(obs fusion.Observation, p Params) string {
	if math.IsNaN(obs.BBoxX) || math.IsNaN(obs.BBoxY) {
		return "unknown"
	}
	h := horizontal(obs.BBoxX, p)
	v := vertical(obs.BBoxY, p)
	switch {
	case v == "":
		return h
	case h == "center":
		return v
	default:
		return v + " " + h
	}
}
